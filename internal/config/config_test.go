package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg := FromViper(v)

	if cfg.Marketplace != "microsoft" {
		t.Errorf("expected microsoft marketplace, got %s", cfg.Marketplace)
	}
	if cfg.QueryTimeout != 10*time.Second {
		t.Errorf("expected 10s query timeout, got %v", cfg.QueryTimeout)
	}
	if cfg.DownloadTimeout != 30*time.Second {
		t.Errorf("expected 30s download timeout, got %v", cfg.DownloadTimeout)
	}
	if cfg.ChunkSize != 8192 {
		t.Errorf("expected chunk size 8192, got %d", cfg.ChunkSize)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != "ms-python.black-formatter" {
		t.Errorf("unexpected default extensions: %v", cfg.Extensions)
	}
}

func TestFromViper_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
marketplace:
  type: open-vsx
download:
  directory: /tmp/vsix
extensions:
  items:
    - golang.go
    - redhat.vscode-yaml
http:
  query_timeout: 3s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := FromViper(v)

	if cfg.Marketplace != "open-vsx" {
		t.Errorf("expected open-vsx, got %s", cfg.Marketplace)
	}
	if cfg.DownloadDir != "/tmp/vsix" {
		t.Errorf("expected /tmp/vsix, got %s", cfg.DownloadDir)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[1] != "redhat.vscode-yaml" {
		t.Errorf("unexpected extensions: %v", cfg.Extensions)
	}
	if cfg.QueryTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.QueryTimeout)
	}
	if cfg.DownloadTimeout != 30*time.Second {
		t.Errorf("expected default 30s, got %v", cfg.DownloadTimeout)
	}
}

func TestFromViper_TLS(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	if cfg := FromViper(v); cfg.CertFile != "" || cfg.KeyFile != "" {
		t.Errorf("expected TLS disabled by default, got %q %q", cfg.CertFile, cfg.KeyFile)
	}

	v.Set("server.tls_cert", "/etc/vsixget/cert.pem")
	v.Set("server.tls_key", "/etc/vsixget/key.pem")
	v.Set("log.debug", true)
	cfg := FromViper(v)
	if cfg.CertFile != "/etc/vsixget/cert.pem" || cfg.KeyFile != "/etc/vsixget/key.pem" {
		t.Errorf("unexpected TLS files: %q %q", cfg.CertFile, cfg.KeyFile)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
}
