// Package wallet defines the wallet, flow, and identity data model the
// transfer services operate on.
package wallet

import (
	"github.com/sidrisov/payflow-sub001/internal/chain"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// Wallet is a single per-network account owned by a flow.
type Wallet struct {
	Address string        `json:"address"`
	Network chain.Network `json:"network"`
	// Version is the smart-account implementation version (e.g. "1.4.1").
	// Empty for an externally-owned account.
	Version string `json:"version,omitempty"`
	// Deployed tracks whether the smart-account code exists on-chain.
	// Starts false for smart wallets and only ever flips false to true.
	Deployed bool `json:"deployed"`
}

// IsSmart reports whether the wallet is a smart-contract account whose
// transfers are routed through the relay.
func (w Wallet) IsSmart() bool {
	return w.Version != ""
}

// Flow is a named collection of one wallet per supported network,
// sharing one deterministic-deployment salt.
type Flow struct {
	UUID      string   `json:"uuid"`
	Title     string   `json:"title"`
	SaltNonce string   `json:"saltNonce"`
	Wallets   []Wallet `json:"wallets"`
}

// Validate checks the flow's structural invariants.
func (f *Flow) Validate() error {
	seen := make(map[chain.Network]struct{}, len(f.Wallets))
	for _, w := range f.Wallets {
		if !w.Network.IsValid() {
			return payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
				"flow":    f.UUID,
				"network": w.Network.Name(),
			})
		}
		if _, dup := seen[w.Network]; dup {
			return payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
				"flow":    f.UUID,
				"network": w.Network.Name(),
				"reason":  "duplicate wallet for network",
			})
		}
		seen[w.Network] = struct{}{}
	}
	return nil
}

// WalletOn returns the flow's wallet on the given network, if any.
func (f *Flow) WalletOn(network chain.Network) (Wallet, bool) {
	for _, w := range f.Wallets {
		if w.Network == network {
			return w, true
		}
	}
	return Wallet{}, false
}

// Networks returns the networks this flow has wallets on, in wallet order.
func (f *Flow) Networks() []chain.Network {
	networks := make([]chain.Network, 0, len(f.Wallets))
	for _, w := range f.Wallets {
		networks = append(networks, w.Network)
	}
	return networks
}

// MarkDeployed flips the deployed flag for the wallet on the given
// network. Returns false if the flow has no wallet there. The flag is
// monotonic: an already-deployed wallet stays deployed.
func (f *Flow) MarkDeployed(network chain.Network) bool {
	for i := range f.Wallets {
		if f.Wallets[i].Network == network {
			f.Wallets[i].Deployed = true
			return true
		}
	}
	return false
}
