package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gookit/color"
)

func TestPrinter(t *testing.T) {
	color.Disable()
	defer func() { color.Enable = true }()

	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Step("Generating %s", "IP.BIN")
	p.Success("Build completed")
	p.Warn("missing %d files", 2)

	out := buf.String()
	for _, want := range []string{"-> Generating IP.BIN", IconSuccess + " Build completed", "missing 2 files"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	quiet := NewLogger(false, &buf)
	quiet.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug output must be hidden without verbose")
	}

	verbose := NewLogger(true, &buf)
	verbose.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("debug output must be shown with verbose")
	}
}
