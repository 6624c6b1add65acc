package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/output"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List supported networks",
	RunE:  runNetworks,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(networksCmd)
}

func runNetworks(_ *cobra.Command, _ []string) error {
	endpoints := cfg.RPCEndpoints()

	type row struct {
		Network string `json:"network"`
		ChainID uint64 `json:"chain_id"`
		Enabled bool   `json:"enabled"`
	}

	rows := make([]row, 0)
	for _, n := range chain.SupportedNetworks() {
		_, enabled := endpoints[n]
		rows = append(rows, row{Network: n.Name(), ChainID: uint64(n), Enabled: enabled})
	}

	if formatter.IsJSON() {
		return formatter.Print(rows)
	}

	table := output.NewTable("NETWORK", "CHAIN ID", "ENABLED")
	for _, r := range rows {
		table.AddRow(r.Network, strconv.FormatUint(r.ChainID, 10), strconv.FormatBool(r.Enabled))
	}
	return formatter.Print(table)
}
