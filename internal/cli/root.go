// Package cli implements the Payflow command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sidrisov/payflow-sub001/internal/config"
	"github.com/sidrisov/payflow-sub001/internal/logger"
	"github.com/sidrisov/payflow-sub001/internal/output"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	log       logger.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "payflow",
	Short: "Cross-chain payments from smart-account wallets",
	Long: `Payflow sends native-asset payments from smart-account or EOA wallets
across EVM networks. Smart-wallet transfers are executed through a gas
relay, bundling the account deployment when needed; recipients can be
registered profiles or bare addresses.

Example:
  payflow send --flow 2f1a... --to @alice --amount 0.05 --network base
  payflow balance --address 0x... --network base
  payflow networks`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if formatter != nil {
			_ = output.FormatError(os.Stderr, err, formatter.Format())
		} else {
			_ = output.FormatError(os.Stderr, err, output.FormatText)
		}
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return payerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		// Use defaults if the config doesn't exist yet
		cfg = config.Defaults()
	}
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}

	log = logger.NewZapLogger(cfg.Logging.Level)

	explicit := output.ParseFormat(outputFormat)
	formatter = output.NewFormatter(output.DetectFormat(os.Stdout, explicit), os.Stdout)

	return nil
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "payflow data directory (default: ~/.payflow)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
