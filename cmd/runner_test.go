package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/desertmoss/linkhive/internal/shared"
	tu "github.com/desertmoss/linkhive/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 4 {
			t.Fatalf("registered %d commands, want 4", len(commands))
		}

		names := map[string]bool{}
		for _, c := range commands {
			names[c.Name] = true
		}
		for _, want := range []string{"setup", "import", "enrich", "progress"} {
			if !names[want] {
				t.Errorf("missing command %q", want)
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("output = %q", output.String())
		}
	})

	t.Run("writePlainln", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("writePlainln failed: %v", err)
		}
		if !strings.HasSuffix(output.String(), "done\n") {
			t.Errorf("output = %q", output.String())
		}
	})

	t.Run("writePlain with failing writer", func(t *testing.T) {
		failing := &tu.FWriter{}
		runner := NewRunner(RunnerOpts{Output: failing})

		if err := runner.writePlain("hello"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("writePlainln with failing writer", func(t *testing.T) {
		failing := &tu.FWriter{}
		runner := NewRunner(RunnerOpts{Output: failing})

		if err := runner.writePlainln("done"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("loadConfig falls back when file missing", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		config := runner.loadConfig("does-not-exist.toml")
		if config != runner.config {
			t.Error("missing file should fall back to current config")
		}
	})
}
