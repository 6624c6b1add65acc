package cli

import (
	"math/big"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sidrisov/payflow-sub001/internal/cache"
	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/chain/eth"
	"github.com/sidrisov/payflow-sub001/internal/output"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

var (
	balanceAddress string
	balanceNetwork string
	balanceRefresh bool
	balancePrice   string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show native balances for an address",
	Long: `Show the native-asset balance of an address on the enabled networks.

Balances are cached briefly to keep repeated checks cheap; use
--refresh to force live RPC reads.`,
	RunE: runBalance,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	balanceCmd.Flags().StringVar(&balanceAddress, "address", "", "address to inspect (required)")
	balanceCmd.Flags().StringVar(&balanceNetwork, "network", "", "limit to one network")
	balanceCmd.Flags().BoolVar(&balanceRefresh, "refresh", false, "bypass the cache and read from RPC")
	balanceCmd.Flags().StringVar(&balancePrice, "price", "", "native asset unit price in fiat, adds a fiat column")

	_ = balanceCmd.MarkFlagRequired("address")

	rootCmd.AddCommand(balanceCmd)
}

//nolint:gocognit // Per-network loop with cache handling reads better inline
func runBalance(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if !eth.IsValidAddress(balanceAddress) {
		return payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"address": balanceAddress,
		})
	}

	price, hasPrice, err := parseUnitPrice(balancePrice)
	if err != nil {
		return err
	}
	fiat := func(wei *big.Int) string {
		if !hasPrice {
			return ""
		}
		return output.FormatFiat(wei, price)
	}

	endpoints := cfg.RPCEndpoints()
	if balanceNetwork != "" {
		n, err := chain.ParseNetwork(balanceNetwork)
		if err != nil {
			return err
		}
		rpc, ok := endpoints[n]
		if !ok {
			return payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
				"network": n.Name(),
				"reason":  "network is not enabled in the configuration",
			})
		}
		endpoints = map[chain.Network]string{n: rpc}
	}

	storage := cache.NewFileStorage(filepath.Join(cfg.Home, "cache", "balances.json"))
	balances, err := storage.Load()
	if err != nil {
		log.Warn("balance cache unreadable, starting fresh", map[string]any{"error": err.Error()})
		balances = cache.NewBalanceCache()
	}

	networks := make([]chain.Network, 0, len(endpoints))
	for n := range endpoints {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })

	type row struct {
		Network string `json:"network"`
		Balance string `json:"balance"`
		Fiat    string `json:"fiat,omitempty"`
		Cached  bool   `json:"cached"`
	}
	rows := make([]row, 0, len(networks))

	for _, n := range networks {
		if !balanceRefresh {
			if entry, ok, _ := balances.Get(n, balanceAddress); ok && !balances.IsStale(n, balanceAddress) {
				if wei, weiOK := new(big.Int).SetString(entry.WeiAmount, 10); weiOK {
					rows = append(rows, row{Network: n.Name(), Balance: output.FormatNative(wei), Fiat: fiat(wei), Cached: true})
					continue
				}
			}
		}

		client, cErr := eth.NewClient(endpoints[n], &eth.ClientOptions{Network: n})
		if cErr != nil {
			return cErr
		}
		wei, bErr := client.GetBalance(ctx, balanceAddress)
		client.Close()
		if bErr != nil {
			log.Warn("balance read failed", map[string]any{"network": n.Name(), "error": bErr.Error()})
			rows = append(rows, row{Network: n.Name(), Balance: "unavailable"})
			continue
		}

		balances.Set(cache.Entry{Network: n, Address: balanceAddress, WeiAmount: wei.String()})
		rows = append(rows, row{Network: n.Name(), Balance: output.FormatNative(wei), Fiat: fiat(wei)})
	}

	if err := storage.Save(balances); err != nil {
		log.Warn("balance cache write failed", map[string]any{"error": err.Error()})
	}

	if formatter.IsJSON() {
		return formatter.Print(rows)
	}

	headers := []string{"NETWORK", "BALANCE", "SOURCE"}
	if hasPrice {
		headers = []string{"NETWORK", "BALANCE", "FIAT", "SOURCE"}
	}
	table := output.NewTable(headers...)
	for _, r := range rows {
		source := "rpc"
		if r.Cached {
			source = "cache"
		}
		if hasPrice {
			table.AddRow(r.Network, r.Balance, r.Fiat, source)
			continue
		}
		table.AddRow(r.Network, r.Balance, source)
	}
	return formatter.Print(table)
}
