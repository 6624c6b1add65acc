// Package ledger persists smart-wallet deployment state. Deployment is
// monotonic: once a wallet is recorded as deployed it never goes back.
package ledger

import (
	"context"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/logger"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
)

// Store is the backend write target, satisfied by the profile client.
type Store interface {
	MarkDeployed(ctx context.Context, flowID, address string, network chain.Network) error
}

// DeploymentLedger records first deployments of smart wallets.
type DeploymentLedger struct {
	store Store
	log   logger.Logger
}

// New creates a deployment ledger over the given store.
func New(store Store, log logger.Logger) *DeploymentLedger {
	if log == nil {
		log = logger.Noop{}
	}
	return &DeploymentLedger{store: store, log: log}
}

// MarkDeployed flips the wallet's deployed flag and persists the change.
// Idempotent: a wallet already marked deployed is a no-op success, so a
// repeated confirmation never produces a duplicate write.
func (l *DeploymentLedger) MarkDeployed(ctx context.Context, flowID string, w *wallet.Wallet) error {
	if w == nil || w.Deployed {
		return nil
	}

	if err := l.store.MarkDeployed(ctx, flowID, w.Address, w.Network); err != nil {
		return err
	}

	w.Deployed = true
	l.log.Info("wallet deployment recorded", map[string]any{
		"flow":    flowID,
		"address": w.Address,
		"network": w.Network.Name(),
	})
	return nil
}
