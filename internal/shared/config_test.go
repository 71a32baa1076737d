package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Site.BaseURL != "https://office.aroflo.com" {
			t.Errorf("expected base URL https://office.aroflo.com, got %s", config.Site.BaseURL)
		}

		if config.Site.DefaultEmail != "default@aroflo.com" {
			t.Errorf("expected default email default@aroflo.com, got %s", config.Site.DefaultEmail)
		}

		if config.Tracker.DefaultStart != 3411 {
			t.Errorf("expected default start 3411, got %d", config.Tracker.DefaultStart)
		}

		if config.Site.ExcludedTaskType != "Installer Checkin" {
			t.Errorf("expected excluded task type Installer Checkin, got %s", config.Site.ExcludedTaskType)
		}

		if config.Timeouts.Login() != 30*time.Second {
			t.Errorf("expected 30s login timeout, got %v", config.Timeouts.Login())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Tracker.Path != defaultConfig.Tracker.Path {
			t.Errorf("created config tracker path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[site]
base_url = "https://example.aroflo.com"
login_path = "/login"
email_domain = "example.com"
default_email = "fallback@example.com"
excluded_task_type = "Installer Checkin"

[tracker]
path = "/tmp/tracker.json"
default_start = 100

[timeouts]
login_seconds = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Site.LoginURL() != "https://example.aroflo.com/login" {
			t.Errorf("expected login URL https://example.aroflo.com/login, got %s", config.Site.LoginURL())
		}

		if config.Tracker.DefaultStart != 100 {
			t.Errorf("expected default start 100, got %d", config.Tracker.DefaultStart)
		}
	})

	t.Run("LoadConfigMissingFile", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("loading a missing config file should fail")
		}
	})
}

func TestLoadCredentials(t *testing.T) {
	t.Run("BothSet", func(t *testing.T) {
		t.Setenv("AROFLO_USERNAME", "operator")
		t.Setenv("AROFLO_PASSWORD", "hunter2")

		creds, err := LoadCredentials()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Username != "operator" || creds.Password != "hunter2" {
			t.Errorf("unexpected credentials: %+v", creds)
		}
	})

	t.Run("MissingUsername", func(t *testing.T) {
		t.Setenv("AROFLO_USERNAME", "")
		t.Setenv("AROFLO_PASSWORD", "hunter2")

		if _, err := LoadCredentials(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("MissingPassword", func(t *testing.T) {
		t.Setenv("AROFLO_USERNAME", "operator")
		t.Setenv("AROFLO_PASSWORD", "")

		if _, err := LoadCredentials(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
