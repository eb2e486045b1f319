package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("Log must not be nil")
	}
	l.Log.Info("discarded")
}

func TestInit_InvalidLevel(t *testing.T) {
	l := New()
	if err := l.Init("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New()
	if err := l.Init("warn", path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	l.Log.Info("hidden")
	l.Log.Warn("visible")
	_ = l.Log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Errorf("unexpected log output: %s", out)
	}
}
