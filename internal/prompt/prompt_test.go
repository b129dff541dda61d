package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLineConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"no\n", false},
		{"NO\n", false},
		{"  No  \n", false},
		{"\n", true},
		{"yes\n", true},
		{"nope\n", true},
		{"", true},
		{"no", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := NewLineConfirmer(strings.NewReader(tt.input), &out)
		got, err := c.Confirm(context.Background(), "Download? ")
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.want, got)
		}
		if out.String() != "Download? " {
			t.Errorf("expected prompt to be written, got %q", out.String())
		}
	}
}

func TestLineConfirmer_ReadsOneLinePerQuestion(t *testing.T) {
	c := NewLineConfirmer(strings.NewReader("\nno\nyes\n"), &bytes.Buffer{})
	want := []bool{true, false, true}
	for i, w := range want {
		got, err := c.Confirm(context.Background(), "? ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != w {
			t.Errorf("answer %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestLineConfirmer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewLineConfirmer(strings.NewReader("\n"), &bytes.Buffer{})
	if _, err := c.Confirm(ctx, "? "); err == nil {
		t.Error("expected context error")
	}
}

func TestAlwaysConfirm(t *testing.T) {
	ok, err := AlwaysConfirm{}.Confirm(context.Background(), "?")
	if err != nil || !ok {
		t.Errorf("expected true, nil; got %v, %v", ok, err)
	}
}

func TestYesNoConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"\n", false},
		{"n\n", false},
		{"", false},
	}

	for _, tt := range tests {
		c := NewYesNoConfirmer(strings.NewReader(tt.input), &bytes.Buffer{})
		got, err := c.Confirm(context.Background(), "Continue? (y/N): ")
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestLineConfirmer_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewLineConfirmer(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Confirm(ctx, "? ")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Confirm did not return after cancellation")
	}

	// The line typed after cancellation is not lost.
	go pw.Write([]byte("no\n"))
	ok, err := c.Confirm(context.Background(), "? ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected the pending answer to decline")
	}
}
