// Package config loads the tunable economics parameters from an optional
// YAML file, an optional .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/CarbonGrid-Network/carbon_layer/services/ledger"
)

// Config holds the carbon layer configuration.
type Config struct {
	Economics Economics `yaml:"economics"`
}

// Economics mirrors ledger.Economics with file and environment bindings.
type Economics struct {
	BaseCreditRate   int64  `yaml:"base_credit_rate" env:"CARBON_BASE_CREDIT_RATE"`
	CreditMultiplier int64  `yaml:"credit_multiplier" env:"CARBON_CREDIT_MULTIPLIER"`
	ClaimInterval    uint64 `yaml:"claim_interval" env:"CARBON_CLAIM_INTERVAL"`
	ReadingMin       int64  `yaml:"reading_min" env:"CARBON_READING_MIN"`
	ReadingMax       int64  `yaml:"reading_max" env:"CARBON_READING_MAX"`
}

// Default returns the stock configuration.
func Default() Config {
	e := ledger.DefaultEconomics()
	return Config{Economics: Economics{
		BaseCreditRate:   e.BaseCreditRate,
		CreditMultiplier: e.CreditMultiplier,
		ClaimInterval:    e.ClaimInterval,
		ReadingMin:       e.ReadingMin,
		ReadingMax:       e.ReadingMax,
	}}
}

// Load builds the configuration starting from defaults, overlaying the YAML
// file at path (skipped when path is empty), a .env file in the working
// directory (skipped when absent) and finally environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration or falls back to defaults when the
// file is missing or invalid.
func LoadOrDefault(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects parameter combinations the ledger cannot run on.
func (c Config) Validate() error {
	e := c.Economics
	if e.BaseCreditRate < 0 {
		return fmt.Errorf("config: base_credit_rate must not be negative, got %d", e.BaseCreditRate)
	}
	if e.CreditMultiplier < 0 {
		return fmt.Errorf("config: credit_multiplier must not be negative, got %d", e.CreditMultiplier)
	}
	if e.ClaimInterval == 0 {
		return fmt.Errorf("config: claim_interval must be positive")
	}
	if e.ReadingMin > e.ReadingMax {
		return fmt.Errorf("config: reading_min %d exceeds reading_max %d", e.ReadingMin, e.ReadingMax)
	}
	return nil
}

// LedgerEconomics converts the configuration into the ledger's parameter set.
func (c Config) LedgerEconomics() ledger.Economics {
	return ledger.Economics{
		BaseCreditRate:   c.Economics.BaseCreditRate,
		CreditMultiplier: c.Economics.CreditMultiplier,
		ClaimInterval:    c.Economics.ClaimInterval,
		ReadingMin:       c.Economics.ReadingMin,
		ReadingMax:       c.Economics.ReadingMax,
	}
}
