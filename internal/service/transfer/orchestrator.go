package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/logger"
	"github.com/sidrisov/payflow-sub001/internal/metrics"
	"github.com/sidrisov/payflow-sub001/internal/notify"
	"github.com/sidrisov/payflow-sub001/internal/relay"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	"github.com/sidrisov/payflow-sub001/internal/signer"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

const defaultPollInterval = 3 * time.Second

// ChainClient is the subset of the EVM RPC client the orchestrator
// needs: balance validation and receipt polling.
type ChainClient interface {
	ValidateAddress(address string) error
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// RelaySubmitter executes smart-wallet transfers through the relay.
type RelaySubmitter interface {
	Submit(ctx context.Context, deploy bool, tx relay.TxIntent) (common.Hash, error)
}

// DeployRecorder persists a wallet's first deployment.
type DeployRecorder interface {
	MarkDeployed(ctx context.Context, flowID string, w *wallet.Wallet) error
}

// FeeEstimator quotes the transfer fee for display.
type FeeEstimator interface {
	Estimate(ctx context.Context, w wallet.Wallet, network chain.Network) (*fee.Quote, error)
}

// Notifier receives attempt progress, one notification per attempt.
type Notifier interface {
	Report(attemptID uint64, content string, terminal notify.TerminalKind)
	Clear(attemptID uint64)
}

// Options carries the orchestrator's optional collaborators.
type Options struct {
	Estimator    FeeEstimator
	Notifier     Notifier
	Logger       logger.Logger
	Metrics      metrics.Recorder
	PollInterval time.Duration
}

// Orchestrator drives a single transfer attempt at a time. A mutex
// serializes every state transition; the receipt watcher runs on its
// own goroutine and is guarded by the attempt id, so a superseded
// attempt can never flip state for a newer one.
type Orchestrator struct {
	mu sync.Mutex

	clients map[chain.Network]ChainClient
	relay   RelaySubmitter
	signer  signer.Provider
	ledger  DeployRecorder

	estimator FeeEstimator
	notifier  Notifier
	log       logger.Logger
	metrics   metrics.Recorder
	poll      time.Duration

	attempt     *Attempt
	nextID      uint64
	watchCancel context.CancelFunc
}

// NewOrchestrator creates a transfer orchestrator. The clients map
// provides one RPC client per supported network; relaySubmitter and
// signerProvider cover the smart-wallet and EOA paths respectively.
func NewOrchestrator(
	clients map[chain.Network]ChainClient,
	relaySubmitter RelaySubmitter,
	signerProvider signer.Provider,
	deployLedger DeployRecorder,
	opts *Options,
) *Orchestrator {
	o := &Orchestrator{
		clients: clients,
		relay:   relaySubmitter,
		signer:  signerProvider,
		ledger:  deployLedger,
		log:     logger.Noop{},
		metrics: metrics.NoopRecorder{},
		poll:    defaultPollInterval,
	}
	if opts != nil {
		if opts.Estimator != nil {
			o.estimator = opts.Estimator
		}
		if opts.Notifier != nil {
			o.notifier = opts.Notifier
		}
		if opts.Logger != nil {
			o.log = opts.Logger
		}
		if opts.Metrics != nil {
			o.metrics = opts.Metrics
		}
		if opts.PollInterval > 0 {
			o.poll = opts.PollInterval
		}
	}
	return o
}

// Status returns the current attempt status, StatusIdle when no attempt
// is live.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt == nil {
		return StatusIdle
	}
	return o.attempt.Status
}

// Attempt returns a snapshot of the current attempt, or nil when idle.
func (o *Orchestrator) Attempt() *Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt == nil {
		return nil
	}
	snapshot := *o.attempt
	return &snapshot
}

// Submit validates the request and executes the transfer. Validation is
// synchronous and happens before any state change or notification: an
// invalid request leaves the orchestrator idle. A valid request creates
// an attempt, routes it through the relay or the signer, and leaves it
// pending with a receipt watcher running; Submit returns once the
// transaction has been accepted (or the attempt has settled in failed
// or rejected).
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Attempt, error) {
	o.mu.Lock()
	if o.attempt != nil {
		o.mu.Unlock()
		return nil, payerr.WithSuggestion(payerr.ErrAttemptInFlight,
			"reset the current attempt before submitting a new transfer")
	}
	o.mu.Unlock()

	client, err := o.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.attempt != nil {
		o.mu.Unlock()
		return nil, payerr.ErrAttemptInFlight
	}
	o.nextID++
	a := &Attempt{ID: o.nextID, Request: req, Status: StatusIdle}
	o.attempt = a
	o.mu.Unlock()

	if o.estimator != nil && req.FromWallet.IsSmart() {
		o.transition(a.ID, StatusEstimating, common.Hash{}, nil)
		if q, qErr := o.estimator.Estimate(ctx, req.FromWallet, req.Network); qErr == nil {
			o.setQuote(a.ID, q)
		} else {
			// Quote stays unknown; the transfer itself is unaffected.
			o.log.Warn("fee estimate unavailable", map[string]any{
				"network": req.Network.Name(),
				"error":   qErr.Error(),
			})
		}
	}

	o.transition(a.ID, StatusAwaitingSignature, common.Hash{}, nil)

	var hash common.Hash
	if req.FromWallet.IsSmart() {
		hash, err = o.relay.Submit(ctx, !req.FromWallet.Deployed, relay.TxIntent{
			From:          req.FromWallet.Address,
			To:            req.ToAddress,
			Value:         req.Amount.String(),
			Network:       req.Network,
			SaltNonce:     req.SaltNonce,
			WalletVersion: req.FromWallet.Version,
		})
	} else {
		hash, err = o.signer.SignAndSendTransaction(ctx, signer.Tx{
			From:    req.FromWallet.Address,
			To:      req.ToAddress,
			Value:   req.Amount,
			Network: req.Network,
		})
	}
	if err != nil {
		return o.settleSubmitFailure(a.ID, req, err)
	}

	o.transition(a.ID, StatusPending, hash, nil)
	o.metrics.IncCounter(metrics.CounterTransferSubmitted, map[string]string{
		"type":    pathLabel(req.FromWallet),
		"network": req.Network.Name(),
	})

	o.startWatcher(a.ID, client, hash)
	return o.Attempt(), nil
}

// Reset discards the current attempt, stops its receipt watcher, and
// frees the attempt slot. The attempt's notification handle is cleared
// so the next attempt starts fresh; the old watcher can no longer flip
// state because its attempt id is stale.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	cancel := o.watchCancel
	o.watchCancel = nil
	a := o.attempt
	o.attempt = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if a != nil && o.notifier != nil {
		o.notifier.Clear(a.ID)
	}
}

// validate checks the request without touching orchestrator state.
func (o *Orchestrator) validate(ctx context.Context, req Request) (ChainClient, error) {
	if !req.Network.IsValid() {
		return nil, payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
			"network": fmt.Sprintf("%d", uint64(req.Network)),
		})
	}

	client, ok := o.clients[req.Network]
	if !ok {
		return nil, payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
			"network": req.Network.Name(),
			"reason":  "no RPC endpoint configured",
		})
	}

	if req.ToAddress == "" {
		return nil, payerr.WithSuggestion(payerr.ErrRecipientUnresolved,
			"resolve the recipient to a concrete address before submitting")
	}
	if err := client.ValidateAddress(req.ToAddress); err != nil {
		return nil, err
	}
	if err := client.ValidateAddress(req.FromWallet.Address); err != nil {
		return nil, err
	}
	if req.Network != req.FromWallet.Network {
		return nil, payerr.WithDetails(payerr.ErrNetworkMismatch, map[string]string{
			"wallet":  req.FromWallet.Network.Name(),
			"request": req.Network.Name(),
		})
	}

	if req.Amount == nil {
		return nil, payerr.ErrAmountRequired
	}
	if req.Amount.Sign() <= 0 {
		return nil, payerr.WithDetails(payerr.ErrInvalidAmount, map[string]string{
			"amount": req.Amount.String(),
		})
	}

	// The EOA path needs the connected signer on the request network
	// before it can sign. A mismatch first asks the signer to switch;
	// only a declined or failed switch rejects the request.
	if !req.FromWallet.IsSmart() {
		if o.signer == nil {
			return nil, payerr.ErrSignerUnavailable
		}
		active, err := o.signer.ActiveNetwork(ctx)
		if err != nil {
			return nil, payerr.WithCause(payerr.ErrSignerUnavailable, err)
		}
		if active != req.Network {
			if sErr := o.signer.RequestNetworkSwitch(ctx, req.Network); sErr != nil {
				return nil, payerr.WithCause(payerr.WithDetails(payerr.ErrNetworkMismatch, map[string]string{
					"connected": active.Name(),
					"request":   req.Network.Name(),
				}), sErr)
			}
		}
	}

	balance, err := client.GetBalance(ctx, req.FromWallet.Address)
	if err != nil {
		return nil, payerr.WithCause(payerr.ErrRPCUnavailable, err)
	}
	if balance.Cmp(req.Amount) < 0 {
		return nil, payerr.WithDetails(payerr.ErrInsufficientFunds, map[string]string{
			"balance": chain.FormatWei(balance),
			"amount":  chain.FormatWei(req.Amount),
		})
	}

	return client, nil
}

// settleSubmitFailure maps a submission error to its terminal state:
// a user decline is rejected, everything else is failed.
func (o *Orchestrator) settleSubmitFailure(attemptID uint64, req Request, err error) (*Attempt, error) {
	if errors.Is(err, payerr.ErrSignatureDeclined) {
		o.transition(attemptID, StatusRejected, common.Hash{}, err)
		o.metrics.IncCounter(metrics.CounterTransferRejected, map[string]string{
			"type":    pathLabel(req.FromWallet),
			"network": req.Network.Name(),
		})
	} else {
		o.transition(attemptID, StatusFailed, common.Hash{}, err)
		o.metrics.IncCounter(metrics.CounterTransferFailed, map[string]string{
			"type":    pathLabel(req.FromWallet),
			"network": req.Network.Name(),
		})
	}
	return o.Attempt(), err
}

// transition moves the current attempt to the given status and reports
// it on the notification surface. A stale attempt id is a no-op.
func (o *Orchestrator) transition(attemptID uint64, status Status, hash common.Hash, err error) {
	o.mu.Lock()
	if o.attempt == nil || o.attempt.ID != attemptID {
		o.mu.Unlock()
		return
	}
	o.attempt.Status = status
	if hash != (common.Hash{}) {
		o.attempt.TxHash = hash
	}
	if err != nil {
		o.attempt.Err = err
	}
	content := o.describe(o.attempt)
	o.mu.Unlock()

	o.log.Info("transfer state changed", map[string]any{
		"attempt": attemptID,
		"status":  string(status),
	})

	if o.notifier != nil {
		o.notifier.Report(attemptID, content, terminalKind(status))
	}
}

func (o *Orchestrator) setQuote(attemptID uint64, q *fee.Quote) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt != nil && o.attempt.ID == attemptID {
		o.attempt.Quote = q
	}
}

// startWatcher launches the receipt poller for the pending attempt.
func (o *Orchestrator) startWatcher(attemptID uint64, client ChainClient, hash common.Hash) {
	ctx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	o.watchCancel = cancel
	o.mu.Unlock()

	go o.watch(ctx, attemptID, client, hash)
}

// watch polls for the transaction receipt until the attempt settles or
// the context is canceled. Cancellation stops observation only: it
// never mutates attempt state.
func (o *Orchestrator) watch(ctx context.Context, attemptID uint64, client ChainClient, hash common.Hash) {
	start := time.Now()
	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		receipt, err := client.TransactionReceipt(ctx, hash)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Transient RPC failure; keep polling.
			o.log.Debug("receipt poll failed", map[string]any{
				"attempt": attemptID,
				"error":   err.Error(),
			})
			continue
		}
		if receipt == nil {
			continue // still pending
		}

		o.metrics.ObserveLatency(metrics.OpConfirm, time.Since(start), nil)

		if receipt.Status == types.ReceiptStatusSuccessful {
			o.confirm(ctx, attemptID, hash)
		} else {
			o.transition(attemptID, StatusFailed, hash,
				payerr.WithDetails(payerr.ErrTransactionReverted, map[string]string{
					"hash": hash.Hex(),
				}))
			o.metrics.IncCounter(metrics.CounterTransferFailed, nil)
		}
		return
	}
}

// confirm settles the attempt as confirmed and records a first
// deployment exactly once. A ledger write failure is logged and does
// not alter the terminal state.
func (o *Orchestrator) confirm(ctx context.Context, attemptID uint64, hash common.Hash) {
	o.mu.Lock()
	if o.attempt == nil || o.attempt.ID != attemptID {
		o.mu.Unlock()
		return
	}
	req := o.attempt.Request
	o.mu.Unlock()

	if o.ledger != nil && req.FromWallet.IsSmart() && !req.FromWallet.Deployed {
		w := req.FromWallet
		if err := o.ledger.MarkDeployed(ctx, req.FlowID, &w); err != nil {
			o.log.Warn("deployment record failed", map[string]any{
				"flow":    req.FlowID,
				"address": w.Address,
				"network": w.Network.Name(),
				"error":   err.Error(),
			})
			o.metrics.IncCounter(metrics.CounterLedgerWriteFailed, map[string]string{
				"network": req.Network.Name(),
			})
		} else {
			o.mu.Lock()
			if o.attempt != nil && o.attempt.ID == attemptID {
				o.attempt.Request.FromWallet.Deployed = true
			}
			o.mu.Unlock()
		}
	}

	o.transition(attemptID, StatusConfirmed, hash, nil)
	o.metrics.IncCounter(metrics.CounterTransferConfirmed, map[string]string{
		"type":    pathLabel(req.FromWallet),
		"network": req.Network.Name(),
	})
}

// describe renders the notification content for the attempt. Caller
// holds the lock.
func (o *Orchestrator) describe(a *Attempt) string {
	amount := chain.FormatWei(a.Request.Amount)
	switch a.Status {
	case StatusEstimating:
		return fmt.Sprintf("Estimating fees for %s on %s", amount, a.Request.Network.Name())
	case StatusAwaitingSignature:
		return fmt.Sprintf("Waiting for signature: %s to %s on %s", amount, a.Request.ToAddress, a.Request.Network.Name())
	case StatusPending:
		return fmt.Sprintf("Transfer pending: %s (%s)", amount, a.TxHash.Hex())
	case StatusConfirmed:
		return fmt.Sprintf("Transfer confirmed: %s to %s", amount, a.Request.ToAddress)
	case StatusRejected:
		return "Transfer canceled: signature declined"
	case StatusFailed:
		reason := "unknown error"
		if a.Err != nil {
			reason = a.Err.Error()
		}
		return "Transfer failed: " + reason
	default:
		return fmt.Sprintf("Transfer %s", a.Status)
	}
}

func terminalKind(status Status) notify.TerminalKind {
	switch status {
	case StatusConfirmed:
		return notify.TerminalSuccess
	case StatusFailed, StatusRejected:
		return notify.TerminalError
	default:
		return notify.TerminalNone
	}
}

func pathLabel(w wallet.Wallet) string {
	if w.IsSmart() {
		return "relay"
	}
	return "direct"
}
