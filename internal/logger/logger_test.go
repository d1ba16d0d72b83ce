// ABOUTME: Tests for logger construction.
// ABOUTME: Checks the file sink, debug stderr output and level filtering.
package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesLogDir(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Errorf("log directory not created: %v", err)
	}

	l.Warn("cache write failed", "key", "bio_profile")
	data, err := os.ReadFile(filepath.Join(dir, "logs", "rhythm.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "cache write failed") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestNewQuietByDefault(t *testing.T) {
	var stderr bytes.Buffer
	l, err := New(Config{Dir: t.TempDir(), Stderr: &stderr})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("synced")
	l.Error("remote write failed")
	if stderr.Len() != 0 {
		t.Errorf("stderr should be silent without debug, got %q", stderr.String())
	}
}

func TestNewDebugWritesStderr(t *testing.T) {
	var stderr bytes.Buffer
	l, err := New(Config{Debug: true, Stderr: &stderr})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Debug("reading remote document", "user", "u1")
	if !strings.Contains(stderr.String(), "reading remote document") {
		t.Errorf("debug output missing, got %q", stderr.String())
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic.
	Discard().Error("dropped")
}
