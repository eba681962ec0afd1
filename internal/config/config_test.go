package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarbonGrid-Network/carbon_layer/services/ledger"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ledger.DefaultEconomics(), cfg.LedgerEconomics())
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("economics:\n  base_credit_rate: 2000\n  claim_interval: 10\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(2000), cfg.Economics.BaseCreditRate)
	assert.Equal(t, uint64(10), cfg.Economics.ClaimInterval)
	// Untouched fields keep their defaults.
	assert.Equal(t, int64(ledger.DefaultCreditMultiplier), cfg.Economics.CreditMultiplier)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CARBON_BASE_CREDIT_RATE", "1500")
	t.Setenv("CARBON_CLAIM_INTERVAL", "288")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(1500), cfg.Economics.BaseCreditRate)
	assert.Equal(t, uint64(288), cfg.Economics.ClaimInterval)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("economics:\n  base_credit_rate: 2000\n"), 0o600))
	t.Setenv("CARBON_BASE_CREDIT_RATE", "3000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(3000), cfg.Economics.BaseCreditRate)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NegativeRate", func(c *Config) { c.Economics.BaseCreditRate = -1 }},
		{"NegativeMultiplier", func(c *Config) { c.Economics.CreditMultiplier = -1 }},
		{"ZeroInterval", func(c *Config) { c.Economics.ClaimInterval = 0 }},
		{"InvertedBounds", func(c *Config) { c.Economics.ReadingMin = 50; c.Economics.ReadingMax = 10 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, Default(), cfg)
}
