package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds connection settings for the pousada backend.
type APIConfig struct {
	// BaseURL is the root of the REST API, including the /api prefix.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each REST call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// NotificationsConfig holds delivery-client tuning.
type NotificationsConfig struct {
	// PollIntervalSec is how often the unread count is refreshed while
	// no push channel is connected.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// Realtime controls whether the push channel is opened at all.
	Realtime bool `mapstructure:"realtime" yaml:"realtime"`

	// SearchDebounceMs collapses bursts of search keystrokes into one
	// fetch after a quiet period.
	SearchDebounceMs int `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	// Theme is "claro" or "escuro".
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level console configuration.
type AppConfig struct {
	API           APIConfig           `mapstructure:"api" yaml:"api"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pousada-console/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pousada-console", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080/api",
			TimeoutSec: 30,
		},
		Notifications: NotificationsConfig{
			PollIntervalSec:  5,
			Realtime:         true,
			SearchDebounceMs: 250,
		},
		Display: DisplayConfig{
			Theme: "claro",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("notifications.poll_interval_sec", 5)
	v.SetDefault("notifications.realtime", true)
	v.SetDefault("notifications.search_debounce_ms", 250)
	v.SetDefault("display.theme", "claro")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Notifications.PollIntervalSec <= 0 {
		cfg.Notifications.PollIntervalSec = 5
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
