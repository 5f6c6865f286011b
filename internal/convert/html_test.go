package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-renderer.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestHTMLConverterSuccess(t *testing.T) {
	bin := writeScript(t, "cat >/dev/null\nprintf '%%PDF-1.4 fake'")
	conv := NewHTMLConverter(bin, 10*time.Second)

	data, err := conv.Convert(context.Background(), []byte("<p>hi</p>"), "a.html")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF: %q", data)
	}
}

func TestHTMLConverterFailure(t *testing.T) {
	bin := writeScript(t, "echo 'render boom' >&2\nexit 1")
	conv := NewHTMLConverter(bin, 10*time.Second)

	_, err := conv.Convert(context.Background(), []byte("<p>hi</p>"), "a.html")
	if err == nil {
		t.Fatal("expected error")
	}

	var convErr *Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *convert.Error, got %T", err)
	}
	if convErr.Message == "" {
		t.Fatal("expected non-empty message")
	}
	if !bytes.Contains([]byte(convErr.Trace), []byte("render boom")) {
		t.Fatalf("trace missing stderr output: %q", convErr.Trace)
	}
}

func TestHTMLConverterEmptyOutput(t *testing.T) {
	bin := writeScript(t, "cat >/dev/null\nexit 0")
	conv := NewHTMLConverter(bin, 10*time.Second)

	_, err := conv.Convert(context.Background(), []byte("<p>hi</p>"), "a.html")
	if err == nil {
		t.Fatal("expected error for empty output")
	}
	var convErr *Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *convert.Error, got %T", err)
	}
}

func TestHTMLConverterTimeout(t *testing.T) {
	bin := writeScript(t, "exec sleep 5")
	conv := NewHTMLConverter(bin, 100*time.Millisecond)

	_, err := conv.Convert(context.Background(), []byte("<p>hi</p>"), "a.html")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHTMLConverterMissingBinary(t *testing.T) {
	conv := NewHTMLConverter(filepath.Join(t.TempDir(), "no-such-binary"), time.Second)

	_, err := conv.Convert(context.Background(), []byte("<p>hi</p>"), "a.html")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	var convErr *Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *convert.Error, got %T", err)
	}
}
