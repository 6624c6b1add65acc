package wallet

import (
	"sync"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// Registry is an in-memory table of flows keyed by owner. It is pure
// data access: reads and registrations only, no side effects.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]*Flow
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*Flow)}
}

// Register stores the owner's flow after validating it.
func (r *Registry) Register(owner string, f *Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[owner] = f
	return nil
}

// FlowOf returns the owner's flow.
func (r *Registry) FlowOf(owner string) (*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flows[owner]
	if !ok {
		return nil, payerr.WithDetails(payerr.ErrFlowNotFound, map[string]string{
			"owner": owner,
		})
	}
	return f, nil
}

// WalletsOf returns the owner's wallets across all networks.
func (r *Registry) WalletsOf(owner string) ([]Wallet, error) {
	f, err := r.FlowOf(owner)
	if err != nil {
		return nil, err
	}
	wallets := make([]Wallet, len(f.Wallets))
	copy(wallets, f.Wallets)
	return wallets, nil
}

// WalletOn returns the owner's wallet on the given network.
func (r *Registry) WalletOn(owner string, network chain.Network) (Wallet, error) {
	f, err := r.FlowOf(owner)
	if err != nil {
		return Wallet{}, err
	}

	w, ok := f.WalletOn(network)
	if !ok {
		return Wallet{}, payerr.WithDetails(payerr.ErrWalletNotFound, map[string]string{
			"owner":   owner,
			"network": network.Name(),
		})
	}
	return w, nil
}
