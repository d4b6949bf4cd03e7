package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Env vars carrying the broker credentials. Credentials never live in the
// config file; these are required and the process refuses to start without
// them.
const (
	EnvAPIKey    = "APCA_API_KEY_ID"
	EnvAPISecret = "APCA_API_SECRET_KEY"
)

// Config represents the complete bot configuration
type Config struct {
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// BrokerConfig contains broker connection parameters. APIKey and APISecret
// are filled from the environment, never from the file.
type BrokerConfig struct {
	Paper     bool   `json:"paper" yaml:"paper"`
	APIKey    string `json:"-" yaml:"-"`
	APISecret string `json:"-" yaml:"-"`
}

// TradingConfig contains the traded instrument and the cycle timing.
// Durations are in whole seconds.
type TradingConfig struct {
	Symbol          string `json:"symbol" yaml:"symbol"`       // data API symbol, e.g. "DOGE/USD"
	AssetID         string `json:"asset_id" yaml:"asset_id"`   // trading API asset id, e.g. "DOGEUSD"
	SleepSeconds    int    `json:"sleep_seconds" yaml:"sleep_seconds"`
	RetrySeconds    int    `json:"retry_seconds" yaml:"retry_seconds"`
	DecisionSeconds int    `json:"decision_seconds" yaml:"decision_seconds"`
	MaxWaitSeconds  int    `json:"max_wait_seconds" yaml:"max_wait_seconds"`
}

// Sleep is the pause after a healthy cycle.
func (t TradingConfig) Sleep() time.Duration { return time.Duration(t.SleepSeconds) * time.Second }

// Retry is the pause after a recoverable failure.
func (t TradingConfig) Retry() time.Duration { return time.Duration(t.RetrySeconds) * time.Second }

// DecisionDeadline bounds the wait for a Strategy Engine instruction.
func (t TradingConfig) DecisionDeadline() time.Duration {
	return time.Duration(t.DecisionSeconds) * time.Second
}

// MaxOrderWait bounds the order polling loop.
func (t TradingConfig) MaxOrderWait() time.Duration {
	return time.Duration(t.MaxWaitSeconds) * time.Second
}

// StrategyConfig locates the Strategy Engine binary to spawn.
type StrategyConfig struct {
	Command string   `json:"command" yaml:"command"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	StatusFile string `json:"status_file,omitempty" yaml:"status_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// extension), applies the environment credentials, and validates.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if isYAMLPath(path) {
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

// isYAMLPath picks the codec for load and save; anything that is not
// .yaml/.yml is treated as JSON.
func isYAMLPath(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (c *Config) applyEnv() {
	c.Broker.APIKey = os.Getenv(EnvAPIKey)
	c.Broker.APISecret = os.Getenv(EnvAPISecret)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Broker.APIKey == "" || c.Broker.APISecret == "" {
		return fmt.Errorf("broker credentials missing: set %s and %s", EnvAPIKey, EnvAPISecret)
	}
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.AssetID == "" {
		return fmt.Errorf("trading.asset_id is required")
	}
	if c.Trading.SleepSeconds <= 0 {
		return fmt.Errorf("trading.sleep_seconds must be positive")
	}
	if c.Trading.RetrySeconds <= 0 {
		return fmt.Errorf("trading.retry_seconds must be positive")
	}
	if c.Trading.DecisionSeconds <= 0 {
		return fmt.Errorf("trading.decision_seconds must be positive")
	}
	if c.Trading.MaxWaitSeconds <= 0 {
		return fmt.Errorf("trading.max_wait_seconds must be positive")
	}
	if c.Strategy.Command == "" {
		return fmt.Errorf("strategy.command is required")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.StatusFile == "") {
		return fmt.Errorf("journal trades_file and status_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Paper: true,
		},
		Trading: TradingConfig{
			Symbol:          "DOGE/USD",
			AssetID:         "DOGEUSD",
			SleepSeconds:    300,
			RetrySeconds:    5,
			DecisionSeconds: 2,
			MaxWaitSeconds:  60,
		},
		Strategy: StrategyConfig{
			Command: "./brain",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./data.csv",
			StatusFile: "./status.json",
		},
	}
}
