package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cursor-stats configuration.
type Config struct {
	// APIBase is the dashboard endpoint root.
	APIBase string `yaml:"api_base"`
	// RatesURL is the exchange-rate feed endpoint.
	RatesURL string `yaml:"rates_url"`
	// Currency is the display currency code, e.g. "EUR". "USD" disables
	// conversion entirely.
	Currency string `yaml:"currency"`
	// SessionToken is the dashboard session token. Usually supplied via
	// ${CURSOR_SESSION_TOKEN} expansion rather than written into the file.
	SessionToken string `yaml:"session_token"`
	DBPath       string `yaml:"db_path"`

	Billing    BillingConfig    `yaml:"billing"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Watch      WatchConfig      `yaml:"watch"`
	Alerts     AlertConfig      `yaml:"alerts"`
}

// BillingConfig carries billing-policy constants asserted by the upstream
// service. They live in configuration rather than code because the provider
// may change them.
type BillingConfig struct {
	// CutoffDay: before this day of the month, the active usage-based
	// billing period is still the previous calendar month.
	CutoffDay int `yaml:"cutoff_day"`
	// ExcludeWeekends controls whether period progress counts weekdays only.
	ExcludeWeekends bool `yaml:"exclude_weekends"`
	// TrackedModel is the model category whose counters make up the premium
	// quota.
	TrackedModel string `yaml:"tracked_model"`
}

// ClassifierConfig tunes invoice line classification.
type ClassifierConfig struct {
	// ExtraBlocklist adds terms to the built-in generic-keyword blocklist
	// used to suppress bogus unknown-model reports.
	ExtraBlocklist []string `yaml:"extra_blocklist"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Burst is how many immediate refreshes the rate limiter allows before
	// throttling manual triggers.
	Burst int `yaml:"burst"`
}

// AlertConfig controls usage alerts.
type AlertConfig struct {
	Enabled bool `yaml:"enabled"`
	// Thresholds are quota percentages that trigger an alert when crossed.
	Thresholds []int `yaml:"thresholds"`
	// SpendLimitDollars triggers an alert when the display month's total
	// exceeds it. Zero disables the check.
	SpendLimitDollars float64 `yaml:"spend_limit_dollars"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		APIBase:  "https://cursor.com",
		RatesURL: "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/usd.min.json",
		Currency: "USD",
		DBPath:   "cursor-stats.db",
		Billing: BillingConfig{
			CutoffDay:       3,
			ExcludeWeekends: false,
			TrackedModel:    "gpt-4",
		},
		Watch: WatchConfig{
			Interval: time.Minute,
			Burst:    2,
		},
		Alerts: AlertConfig{
			Enabled:    true,
			Thresholds: []int{10, 50, 75, 90, 100},
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
