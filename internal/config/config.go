// Package config provides configuration management for Payflow.
package config

import (
	"math/big"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int                      `yaml:"version"`
	Home     string                   `yaml:"home"`
	Networks map[string]NetworkConfig `yaml:"networks"`
	Relay    RelayConfig              `yaml:"relay"`
	Profile  ProfileConfig            `yaml:"profile"`
	Fees     FeesConfig               `yaml:"fees"`
	Output   OutputConfig             `yaml:"output"`
	Logging  LoggingConfig            `yaml:"logging"`
}

// NetworkConfig defines per-network settings, keyed by network name.
type NetworkConfig struct {
	Enabled bool   `yaml:"enabled"`
	RPC     string `yaml:"rpc"`
}

// RelayConfig defines the meta-transaction relay settings.
type RelayConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ProfileConfig defines the profile backend settings.
type ProfileConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// FeesConfig defines the fee policy knobs.
type FeesConfig struct {
	CommissionBps     int64             `yaml:"commission_bps"`
	CommissionMode    string            `yaml:"commission_mode"` // on-total or on-base
	DeploymentCostWei map[string]string `yaml:"deployment_cost_wei,omitempty"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, payerr.WithCause(payerr.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default payflow home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".payflow"
	}
	return filepath.Join(home, ".payflow")
}

// RPCEndpoints returns the configured RPC URL per enabled network.
// Unknown network names are skipped.
func (c *Config) RPCEndpoints() map[chain.Network]string {
	endpoints := make(map[chain.Network]string)
	for name, nc := range c.Networks {
		if !nc.Enabled || nc.RPC == "" {
			continue
		}
		n, err := chain.ParseNetwork(name)
		if err != nil {
			continue
		}
		endpoints[n] = nc.RPC
	}
	return endpoints
}

// FeePolicy converts the fee knobs into the estimator's policy.
func (c *Config) FeePolicy() (fee.Policy, error) {
	policy := fee.Policy{
		CommissionBps: c.Fees.CommissionBps,
		Mode:          fee.CommissionMode(c.Fees.CommissionMode),
	}
	switch policy.Mode {
	case "", fee.CommissionOnTotal:
		policy.Mode = fee.CommissionOnTotal
	case fee.CommissionOnBase:
	default:
		return fee.Policy{}, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"commission_mode": c.Fees.CommissionMode,
			"reason":          "must be on-total or on-base",
		})
	}

	if len(c.Fees.DeploymentCostWei) > 0 {
		policy.DeploymentCost = make(map[chain.Network]*big.Int, len(c.Fees.DeploymentCostWei))
		for name, raw := range c.Fees.DeploymentCostWei {
			n, err := chain.ParseNetwork(name)
			if err != nil {
				return fee.Policy{}, err
			}
			cost, ok := new(big.Int).SetString(raw, 10)
			if !ok || cost.Sign() < 0 {
				return fee.Policy{}, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
					"network":             name,
					"deployment_cost_wei": raw,
				})
			}
			policy.DeploymentCost[n] = cost
		}
	}

	return policy, nil
}

// LoggingLevel returns the configured logging level.
func (c *Config) LoggingLevel() string {
	return c.Logging.Level
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}
