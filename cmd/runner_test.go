package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/arofill/internal/shared"
	"github.com/urfave/cli/v3"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Tracker.Path = filepath.Join(dir, "job_tracker.json")
	config.Database.Path = filepath.Join(dir, "arofill.db")
	return config
}

func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "arofill", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"arofill"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("TrackerShow", func(t *testing.T) {
		t.Run("reports the default when no file exists", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: output})

			if err := runApp(t, runner, "tracker", "show"); err != nil {
				t.Fatalf("tracker show failed: %v", err)
			}
			if !strings.Contains(output.String(), "3411") {
				t.Errorf("expected default watermark 3411 in output, got %q", output.String())
			}
		})

		t.Run("reports a persisted watermark", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: output})

			if err := runApp(t, runner, "tracker", "reset", "--to", "3500"); err != nil {
				t.Fatalf("tracker reset failed: %v", err)
			}
			if err := runApp(t, runner, "tracker", "show"); err != nil {
				t.Fatalf("tracker show failed: %v", err)
			}
			if !strings.Contains(output.String(), "3500") {
				t.Errorf("expected watermark 3500 in output, got %q", output.String())
			}
		})
	})

	t.Run("TrackerReset", func(t *testing.T) {
		t.Run("rejects non-positive ids", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: io.Discard})

			err := runApp(t, runner, "tracker", "reset", "--to", "0")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})

	t.Run("History", func(t *testing.T) {
		t.Run("empty database", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: output})

			if err := runApp(t, runner, "history"); err != nil {
				t.Fatalf("history failed: %v", err)
			}
			if !strings.Contains(output.String(), "no history recorded yet") {
				t.Errorf("expected empty-history message, got %q", output.String())
			}
		})

		t.Run("json output on empty database", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: output})

			if err := runApp(t, runner, "history", "--json"); err != nil {
				t.Fatalf("history --json failed: %v", err)
			}
			if !strings.Contains(output.String(), "null") {
				t.Errorf("expected JSON output, got %q", output.String())
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "arofill.db")

		content := "[database]\npath = \"" + dbPath + "\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: io.Discard})

		if err := runApp(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := os.Stat(dbPath); err != nil {
			t.Errorf("history database should exist after setup: %v", err)
		}
	})

	t.Run("Run", func(t *testing.T) {
		t.Run("fails fast without credentials", func(t *testing.T) {
			t.Setenv("AROFLO_USERNAME", "")
			t.Setenv("AROFLO_PASSWORD", "")

			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: log.New(io.Discard), Output: io.Discard})

			err := runApp(t, runner, "run")
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("verbose flag enables debug logging", func(t *testing.T) {
			t.Setenv("AROFLO_USERNAME", "")
			t.Setenv("AROFLO_PASSWORD", "")

			logger := log.New(io.Discard)
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Logger: logger, Output: io.Discard})

			_ = runApp(t, runner, "run", "--verbose")
			if logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level after --verbose, got %v", logger.GetLevel())
			}
		})
	})
}
