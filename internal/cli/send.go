package cli

import (
	"context"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/chain/eth"
	"github.com/sidrisov/payflow-sub001/internal/metrics"
	"github.com/sidrisov/payflow-sub001/internal/notify"
	"github.com/sidrisov/payflow-sub001/internal/output"
	"github.com/sidrisov/payflow-sub001/internal/profile"
	"github.com/sidrisov/payflow-sub001/internal/relay"
	"github.com/sidrisov/payflow-sub001/internal/service/compat"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	"github.com/sidrisov/payflow-sub001/internal/service/ledger"
	"github.com/sidrisov/payflow-sub001/internal/service/transfer"
	"github.com/sidrisov/payflow-sub001/internal/signer"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// EnvPrivateKey supplies the hex private key for direct EOA transfers.
const EnvPrivateKey = "PAYFLOW_PRIVATE_KEY" // #nosec G101 -- env var name, not a credential

var (
	sendFlowID  string
	sendTo      string
	sendAmount  string
	sendNetwork string
	sendPrice   string
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a native-asset payment",
	Long: `Send a native-asset payment from one of your flow's wallets.

The recipient can be a registered profile (@username) or a bare 0x
address. Smart-wallet transfers are executed through the gas relay and
bundle the account deployment when the wallet is not on-chain yet; EOA
transfers are signed locally with the key from ` + EnvPrivateKey + `.`,
	RunE: runSend,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	sendCmd.Flags().StringVar(&sendFlowID, "flow", "", "sender flow UUID (required)")
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient: @username or 0x address (required)")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", "amount in native units, e.g. 0.05 (required)")
	sendCmd.Flags().StringVar(&sendNetwork, "network", "", "settlement network (default: resolver's choice)")
	sendCmd.Flags().StringVar(&sendPrice, "price", "", "native asset unit price in fiat, adds fiat amounts to the result")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 3*time.Minute, "how long to wait for confirmation")

	_ = sendCmd.MarkFlagRequired("flow")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(sendCmd)
}

//nolint:gocognit,gocyclo // Transfer wiring is sequential and clearer inline
func runSend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	amount, err := chain.ParseWei(strings.TrimSpace(sendAmount), payerr.ErrInvalidAmount)
	if err != nil {
		return err
	}

	price, hasPrice, err := parseUnitPrice(sendPrice)
	if err != nil {
		return err
	}

	profiles, err := profile.NewClient(cfg.Profile.Endpoint, nil)
	if err != nil {
		return err
	}

	flow, err := profiles.GetFlow(ctx, sendFlowID)
	if err != nil {
		return err
	}

	recipient, err := profiles.ResolveIdentity(ctx, sendTo)
	if err != nil {
		return err
	}

	from, err := pickWallet(flow, recipient)
	if err != nil {
		return err
	}

	destination, ok := recipient.Destination(from.Network)
	if !ok {
		return payerr.WithDetails(payerr.ErrRecipientUnresolved, map[string]string{
			"recipient": recipient.DisplayName(),
			"network":   from.Network.Name(),
		})
	}

	rpcURL, ok := cfg.RPCEndpoints()[from.Network]
	if !ok {
		return payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
			"network": from.Network.Name(),
			"reason":  "network is not enabled in the configuration",
		})
	}
	client, err := eth.NewClient(rpcURL, &eth.ClientOptions{Network: from.Network})
	if err != nil {
		return err
	}
	defer client.Close()

	relayClient, err := relay.NewClient(cfg.Relay.Endpoint, &relay.ClientOptions{Metrics: metrics.NoopRecorder{}})
	if err != nil && from.IsSmart() {
		return err
	}

	policy, err := cfg.FeePolicy()
	if err != nil {
		return err
	}

	var signerProvider signer.Provider
	if !from.IsSmart() {
		signerProvider, err = localSignerFromEnv(from.Network, client)
		if err != nil {
			return err
		}
		if est, gErr := client.EstimateTransferGas(ctx); gErr == nil {
			output.Infof("estimated network gas: %s ETH", chain.FormatWei(est.Total))
		}
	}

	bridge := notify.NewBridge(newConsoleSurface(os.Stderr), log)
	orch := transfer.NewOrchestrator(
		map[chain.Network]transfer.ChainClient{from.Network: client},
		relayClient,
		signerProvider,
		ledger.New(profiles, log),
		&transfer.Options{
			Estimator: fee.NewEstimator(relayClient, policy, log, metrics.NoopRecorder{}),
			Notifier:  bridge,
			Logger:    log,
		},
	)

	attempt, err := orch.Submit(ctx, transfer.Request{
		FromWallet: from,
		FlowID:     flow.UUID,
		SaltNonce:  flow.SaltNonce,
		ToAddress:  destination,
		Amount:     amount,
		Network:    from.Network,
	})
	if err != nil {
		return err
	}

	final, err := waitForSettlement(ctx, orch, sendTimeout)
	if err != nil {
		return err
	}

	if final.Status != transfer.StatusConfirmed {
		if final.Err != nil {
			return final.Err
		}
		return payerr.ErrGeneral
	}

	result := map[string]string{
		"status":  string(final.Status),
		"hash":    final.TxHash.Hex(),
		"amount":  output.FormatNative(attempt.Request.Amount),
		"to":      destination,
		"network": from.Network.Name(),
	}
	if final.Quote != nil {
		result["fee"] = output.FormatNative(final.Quote.AmountWei)
	}
	if hasPrice {
		result["fiat"] = output.FormatFiat(attempt.Request.Amount, price)
		if final.Quote != nil {
			result["fee_fiat"] = output.FormatFiat(final.Quote.AmountWei, price)
		}
	}
	return formatter.Print(result)
}

// pickWallet resolves the paying wallet through a compatibility
// session: the candidate on the requested network, or the resolver's
// default when no network was given.
func pickWallet(flow *wallet.Flow, recipient wallet.Identity) (wallet.Wallet, error) {
	var connected chain.Network
	if sendNetwork != "" {
		n, err := chain.ParseNetwork(sendNetwork)
		if err != nil {
			return wallet.Wallet{}, err
		}
		connected = n
	}

	session := compat.NewSession(connected)
	session.SetSenderWallets(flow.Wallets)
	session.SetRecipient(recipient)

	result, err := session.Result()
	if err != nil {
		return wallet.Wallet{}, err
	}

	if sendNetwork != "" {
		var picked bool
		for _, c := range result.Candidates {
			if c.Network == connected {
				if _, err := session.Select(c); err != nil {
					return wallet.Wallet{}, err
				}
				picked = true
				break
			}
		}
		if !picked {
			return wallet.Wallet{}, payerr.WithDetails(payerr.ErrNoCompatibleWallet, map[string]string{
				"network": connected.Name(),
			})
		}
	}

	selected, ok := session.Selected()
	if !ok {
		return wallet.Wallet{}, payerr.ErrNoCompatibleWallet
	}
	return selected, nil
}

// localSignerFromEnv builds the direct EOA signer from the private key
// environment variable.
func localSignerFromEnv(network chain.Network, client *eth.Client) (*signer.LocalSigner, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(os.Getenv(EnvPrivateKey)), "0x")
	if raw == "" {
		return nil, payerr.WithSuggestion(payerr.ErrSignerUnavailable,
			"set "+EnvPrivateKey+" to send from an EOA wallet")
	}

	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, payerr.WithCause(payerr.ErrSignerUnavailable, err)
	}

	return signer.NewLocalSigner(key, map[chain.Network]*eth.Client{network: client}, network)
}

// waitForSettlement polls the orchestrator until the attempt reaches a
// terminal state or the timeout elapses.
func waitForSettlement(ctx context.Context, orch *transfer.Orchestrator, timeout time.Duration) (*transfer.Attempt, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, payerr.WithSuggestion(
				payerr.WithDetails(payerr.ErrRPCUnavailable, map[string]string{
					"reason": "confirmation not observed before timeout",
				}),
				"the transaction may still confirm; check the hash on a block explorer",
			)
		case <-ticker.C:
			if a := orch.Attempt(); a != nil && a.Status.Terminal() {
				return a, nil
			}
		}
	}
}
