package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Site     SiteConfig     `toml:"site"`
	Tracker  TrackerConfig  `toml:"tracker"`
	Database DatabaseConfig `toml:"database"`
	Browser  BrowserConfig  `toml:"browser"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Rate     RateConfig     `toml:"rate"`
}

// SiteConfig describes the remote AroFlo deployment being automated.
type SiteConfig struct {
	BaseURL          string `toml:"base_url"`
	LoginPath        string `toml:"login_path"`
	EmailDomain      string `toml:"email_domain"`
	DefaultEmail     string `toml:"default_email"`
	ExcludedTaskType string `toml:"excluded_task_type"`
}

// TrackerConfig contains watermark persistence settings.
type TrackerConfig struct {
	Path         string `toml:"path"`
	DefaultStart int    `toml:"default_start"`
}

// DatabaseConfig contains run-history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BrowserConfig contains headless Chrome settings.
type BrowserConfig struct {
	Headless     bool `toml:"headless"`
	WindowWidth  int  `toml:"window_width"`
	WindowHeight int  `toml:"window_height"`
}

// TimeoutConfig holds per-operation wait bounds in seconds.
type TimeoutConfig struct {
	LoginSeconds   int `toml:"login_seconds"`
	FindSeconds    int `toml:"find_seconds"`
	ClickSeconds   int `toml:"click_seconds"`
	FieldSeconds   int `toml:"field_seconds"`
	CreateSeconds  int `toml:"create_seconds"`
	VisibleSeconds int `toml:"visible_seconds"`
}

// RateConfig paces the task loop.
type RateConfig struct {
	TasksPerSecond float64 `toml:"tasks_per_second"`
}

// LoginURL joins the base URL with the login path.
func (s SiteConfig) LoginURL() string {
	return s.BaseURL + s.LoginPath
}

// Duration helpers convert the integer second fields into [time.Duration] values.

func (t TimeoutConfig) Login() time.Duration   { return time.Duration(t.LoginSeconds) * time.Second }
func (t TimeoutConfig) Find() time.Duration    { return time.Duration(t.FindSeconds) * time.Second }
func (t TimeoutConfig) Click() time.Duration   { return time.Duration(t.ClickSeconds) * time.Second }
func (t TimeoutConfig) Field() time.Duration   { return time.Duration(t.FieldSeconds) * time.Second }
func (t TimeoutConfig) Create() time.Duration  { return time.Duration(t.CreateSeconds) * time.Second }
func (t TimeoutConfig) Visible() time.Duration { return time.Duration(t.VisibleSeconds) * time.Second }

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Credentials holds the AroFlo login pair supplied via the environment.
type Credentials struct {
	Username string
	Password string
}

// LoadCredentials reads AROFLO_USERNAME and AROFLO_PASSWORD from the environment.
//
// Both are required; a missing value returns [ErrMissingCredentials] naming the variable.
func LoadCredentials() (*Credentials, error) {
	username := os.Getenv("AROFLO_USERNAME")
	password := os.Getenv("AROFLO_PASSWORD")

	if username == "" {
		return nil, fmt.Errorf("%w: AROFLO_USERNAME not set", ErrMissingCredentials)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: AROFLO_PASSWORD not set", ErrMissingCredentials)
	}

	return &Credentials{Username: username, Password: password}, nil
}
