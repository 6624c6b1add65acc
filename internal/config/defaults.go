package config

// Default public RPC endpoints per network. All are free, no-API-key
// providers; production deployments should override them.
const (
	DefaultEthereumRPCURL = "https://ethereum-rpc.publicnode.com"
	DefaultOptimismRPCURL = "https://optimism-rpc.publicnode.com"
	DefaultBaseRPCURL     = "https://base-rpc.publicnode.com"
	DefaultArbitrumRPCURL = "https://arbitrum-one-rpc.publicnode.com"
	DefaultZoraRPCURL     = "https://rpc.zora.energy"
	DefaultDegenRPCURL    = "https://rpc.degen.tips"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.payflow",
		Networks: map[string]NetworkConfig{
			"ethereum": {Enabled: true, RPC: DefaultEthereumRPCURL},
			"optimism": {Enabled: true, RPC: DefaultOptimismRPCURL},
			"base":     {Enabled: true, RPC: DefaultBaseRPCURL},
			"arbitrum": {Enabled: true, RPC: DefaultArbitrumRPCURL},
			"zora":     {Enabled: false, RPC: DefaultZoraRPCURL},
			"degen":    {Enabled: false, RPC: DefaultDegenRPCURL},
		},
		Relay:   RelayConfig{Endpoint: ""},
		Profile: ProfileConfig{Endpoint: ""},
		Fees: FeesConfig{
			CommissionBps:  0,
			CommissionMode: "on-total",
		},
		Output: OutputConfig{Verbose: false},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
