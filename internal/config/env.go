package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome            = "PAYFLOW_HOME"
	EnvRelayEndpoint   = "PAYFLOW_RELAY_ENDPOINT"
	EnvProfileEndpoint = "PAYFLOW_PROFILE_ENDPOINT"
	EnvCommissionBps   = "PAYFLOW_COMMISSION_BPS"
	EnvVerbose         = "PAYFLOW_VERBOSE"
	EnvLogLevel        = "PAYFLOW_LOG_LEVEL"

	// EnvRPCPrefix + upper network name overrides that network's RPC
	// endpoint, e.g. PAYFLOW_RPC_BASE.
	EnvRPCPrefix = "PAYFLOW_RPC_"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvRelayEndpoint); v != "" {
		cfg.Relay.Endpoint = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvProfileEndpoint); v != "" {
		cfg.Profile.Endpoint = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvCommissionBps); v != "" {
		if bps, err := strconv.ParseInt(v, 10, 64); err == nil && bps >= 0 {
			cfg.Fees.CommissionBps = bps
		}
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	for name, nc := range cfg.Networks {
		if v := os.Getenv(EnvRPCPrefix + strings.ToUpper(name)); v != "" {
			nc.RPC = strings.TrimSpace(v)
			cfg.Networks[name] = nc
		}
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
