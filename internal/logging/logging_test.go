package logging

import (
	"bytes"
	"strings"
	"testing"

	gologging "github.com/op/go-logging"
)

func TestInitWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter(&buf, "INFO"); err != nil {
		t.Fatalf("InitWriter error: %v", err)
	}
	defer Init("INFO")

	log := gologging.MustGetLogger("test")
	log.Debug("hidden")
	log.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "INFO") {
		t.Fatalf("missing level in %q", out)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := InitWriter(&bytes.Buffer{}, "LOUD"); err == nil {
		t.Fatalf("expected error")
	}
}
