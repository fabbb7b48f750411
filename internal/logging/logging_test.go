package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hflow.log")
	closer, err := Setup(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() {
		_, _ = Setup(Options{})
	})

	log.WithField("op", "plan").Debug("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "op=plan") {
		t.Errorf("log file missing field: %q", data)
	}
}

func TestSetupLevels(t *testing.T) {
	t.Cleanup(func() { _, _ = Setup(Options{}) })

	if _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := Setup(Options{Level: "debug", Quiet: true}); err != nil {
		t.Fatal(err)
	}
	if got := log.GetLevel(); got != log.ErrorLevel {
		t.Errorf("quiet level = %v, want error", got)
	}
}
