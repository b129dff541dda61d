package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"b.ext-1.0.0.vsix": "bbbb",
		"a.ext-2.0.0.vsix": "aa",
		"notes.txt":        "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestListPackages(t *testing.T) {
	entries, err := ListPackages(setupDir(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(entries))
	}
	if entries[0].Name != "a.ext-2.0.0.vsix" || entries[0].Size != 2 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].SizeText != "4 B" {
		t.Errorf("unexpected size text: %s", entries[1].SizeText)
	}
}

func TestHandleList(t *testing.T) {
	srv := httptest.NewServer(New(setupDir(t)).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/packages")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Total    int            `json:"total"`
		Packages []PackageEntry `json:"packages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Total != 2 || len(body.Packages) != 2 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHandlePackage(t *testing.T) {
	srv := httptest.NewServer(New(setupDir(t)).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/packages/b.ext-1.0.0.vsix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(data) != "bbbb" {
		t.Errorf("unexpected content: %q", data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestHandlePackage_NotFound(t *testing.T) {
	srv := httptest.NewServer(New(setupDir(t)).Router())
	defer srv.Close()

	for _, path := range []string{"/api/packages/missing-1.0.0.vsix", "/api/packages/notes.txt", "/nothing"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(New(setupDir(t)).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/packages", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestListenAndServe_TLSRequiresCertificate(t *testing.T) {
	dir := t.TempDir()
	srv := NewWithTLS(dir, filepath.Join(dir, "missing.crt"), filepath.Join(dir, "missing.key"))
	if err := srv.ListenAndServe("127.0.0.1:0"); err == nil || err == http.ErrServerClosed {
		t.Fatalf("expected certificate load error, got %v", err)
	}
}
