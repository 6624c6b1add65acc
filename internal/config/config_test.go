package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "on-total", cfg.Fees.CommissionMode)
	assert.True(t, cfg.Networks["base"].Enabled)
	assert.False(t, cfg.Networks["degen"].Enabled)
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := Path(dir)

	cfg := Defaults()
	cfg.Relay.Endpoint = "https://relay.example.com"
	cfg.Fees.CommissionBps = 50
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://relay.example.com", loaded.Relay.Endpoint)
	assert.Equal(t, int64(50), loaded.Fees.CommissionBps)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("networks: [not a map"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, payerr.ErrConfigInvalid)
}

func TestRPCEndpoints(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Networks["base"] = NetworkConfig{Enabled: true, RPC: "https://base.example.com"}
	cfg.Networks["optimism"] = NetworkConfig{Enabled: false, RPC: "https://op.example.com"}
	cfg.Networks["bogus"] = NetworkConfig{Enabled: true, RPC: "https://x.example.com"}

	endpoints := cfg.RPCEndpoints()
	assert.Equal(t, "https://base.example.com", endpoints[chain.Base])
	assert.NotContains(t, endpoints, chain.Optimism, "disabled networks are skipped")
}

func TestFeePolicy(t *testing.T) {
	t.Parallel()

	t.Run("valid policy with surcharge table", func(t *testing.T) {
		t.Parallel()

		cfg := Defaults()
		cfg.Fees = FeesConfig{
			CommissionBps:  100,
			CommissionMode: "on-base",
			DeploymentCostWei: map[string]string{
				"base": "500000",
			},
		}

		policy, err := cfg.FeePolicy()
		require.NoError(t, err)
		assert.Equal(t, fee.CommissionOnBase, policy.Mode)
		assert.Equal(t, int64(100), policy.CommissionBps)
		require.Contains(t, policy.DeploymentCost, chain.Base)
		assert.Equal(t, "500000", policy.DeploymentCost[chain.Base].String())
	})

	t.Run("empty mode defaults to on-total", func(t *testing.T) {
		t.Parallel()

		cfg := Defaults()
		cfg.Fees.CommissionMode = ""

		policy, err := cfg.FeePolicy()
		require.NoError(t, err)
		assert.Equal(t, fee.CommissionOnTotal, policy.Mode)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		t.Parallel()

		cfg := Defaults()
		cfg.Fees.CommissionMode = "sideways"

		_, err := cfg.FeePolicy()
		require.Error(t, err)
		assert.ErrorIs(t, err, payerr.ErrConfigInvalid)
	})

	t.Run("malformed deployment cost rejected", func(t *testing.T) {
		t.Parallel()

		cfg := Defaults()
		cfg.Fees.DeploymentCostWei = map[string]string{"base": "lots"}

		_, err := cfg.FeePolicy()
		require.Error(t, err)
		assert.ErrorIs(t, err, payerr.ErrConfigInvalid)
	})
}
