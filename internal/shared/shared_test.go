package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateID(t *testing.T) {
	t.Run("returns distinct IDs", func(t *testing.T) {
		a := GenerateID()
		b := GenerateID()
		if a == "" || b == "" {
			t.Fatal("expected non-empty IDs")
		}
		if a == b {
			t.Errorf("expected distinct IDs, got %q twice", a)
		}
	})
}

func TestLoggers(t *testing.T) {
	t.Run("WithLogger annotates entries", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		child := WithLogger(logger, "component", "enrich")
		child.Info("started")

		if !strings.Contains(buf.String(), "component") || !strings.Contains(buf.String(), "enrich") {
			t.Errorf("child entry missing key-value pair: %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters below the level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("quiet")
		if buf.Len() != 0 {
			t.Errorf("info entry should be filtered: %q", buf.String())
		}

		SetLogLevel(logger, log.DebugLevel)
		logger.Debug("loud")
		if !strings.Contains(buf.String(), "loud") {
			t.Errorf("debug entry should pass: %q", buf.String())
		}
	})
}
