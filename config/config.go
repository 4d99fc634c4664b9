// Package config loads the trading session configuration from YAML or
// JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Session  SessionConfig  `json:"session" yaml:"session"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Bridge   BridgeConfig   `json:"bridge" yaml:"bridge"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// AccountConfig identifies the brokerage account.
type AccountConfig struct {
	Number string `json:"number" yaml:"number"`
}

// StrategyConfig names the screening conditions and sets sizing
// parameters. Condition names must match the broker-side saved
// conditions exactly.
type StrategyConfig struct {
	BuyCondition  string  `json:"buy_condition" yaml:"buy_condition"`
	SellCondition string  `json:"sell_condition" yaml:"sell_condition"`
	Budget        int64   `json:"budget" yaml:"budget"`
	TargetPct     float64 `json:"target_pct" yaml:"target_pct"`
}

// SessionConfig holds session timing: the cancel window, timer
// periods, and inter-order spacing. Times are local "HH:MM"; durations
// use Go syntax ("60s", "300ms").
type SessionConfig struct {
	CancelFrom     string `json:"cancel_from" yaml:"cancel_from"`
	Close          string `json:"close" yaml:"close"`
	SweepInterval  string `json:"sweep_interval" yaml:"sweep_interval"`
	ReportInterval string `json:"report_interval" yaml:"report_interval"`
	OrderSpacing   string `json:"order_spacing" yaml:"order_spacing"`
}

// JournalConfig selects the trade ledger backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// BridgeConfig points at the trading-terminal bridge.
type BridgeConfig struct {
	URL string `json:"url" yaml:"url"`
}

// MetricsConfig controls the Prometheus endpoint. Empty listen address
// disables it.
type MetricsConfig struct {
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML with JSON
// fallback) and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Strategy.BuyCondition == "" {
		return fmt.Errorf("strategy.buy_condition is required")
	}
	if c.Strategy.SellCondition == "" {
		return fmt.Errorf("strategy.sell_condition is required")
	}
	if c.Strategy.BuyCondition == c.Strategy.SellCondition {
		return fmt.Errorf("buy and sell conditions must differ")
	}
	if c.Strategy.Budget <= 0 {
		return fmt.Errorf("strategy.budget must be positive")
	}
	if c.Strategy.TargetPct <= 0 || c.Strategy.TargetPct >= 1 {
		return fmt.Errorf("strategy.target_pct must be between 0 and 1")
	}

	cancelFrom, err := c.Session.CancelFromMinutes()
	if err != nil {
		return fmt.Errorf("session.cancel_from: %w", err)
	}
	closeAt, err := c.Session.CloseMinutes()
	if err != nil {
		return fmt.Errorf("session.close: %w", err)
	}
	if cancelFrom >= closeAt {
		return fmt.Errorf("session.cancel_from must precede session.close")
	}
	for name, raw := range map[string]string{
		"session.sweep_interval":  c.Session.SweepInterval,
		"session.report_interval": c.Session.ReportInterval,
		"session.order_spacing":   c.Session.OrderSpacing,
	} {
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" {
			return fmt.Errorf("journal.trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}

	return nil
}

// CancelFromMinutes returns the cancel-window start as minutes past
// local midnight.
func (s SessionConfig) CancelFromMinutes() (int, error) {
	return parseClock(s.CancelFrom)
}

// CloseMinutes returns the session close as minutes past local
// midnight.
func (s SessionConfig) CloseMinutes() (int, error) {
	return parseClock(s.Close)
}

// SweepEvery returns the expiry sweep period.
func (s SessionConfig) SweepEvery() time.Duration {
	return mustDuration(s.SweepInterval, 60*time.Second)
}

// ReportEvery returns the slippage report period.
func (s SessionConfig) ReportEvery() time.Duration {
	return mustDuration(s.ReportInterval, 300*time.Second)
}

// SpacingEvery returns the minimum delay between consecutive order
// submissions within one scan batch.
func (s SessionConfig) SpacingEvery() time.Duration {
	return mustDuration(s.OrderSpacing, 300*time.Millisecond)
}

func mustDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func parseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Default returns a configuration with the stock session parameters.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Budget:    1_000_000,
			TargetPct: 0.05,
		},
		Session: SessionConfig{
			CancelFrom:     "15:20",
			Close:          "15:30",
			SweepInterval:  "60s",
			ReportInterval: "300s",
			OrderSpacing:   "300ms",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
		},
		Bridge: BridgeConfig{
			URL: "ws://127.0.0.1:7330/api",
		},
	}
}
