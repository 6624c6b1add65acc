// Package compat resolves which of the sender's wallets can pay a given
// recipient. A bare-address recipient can receive on any network, so
// every sender wallet is compatible; a profile recipient only receives
// on networks its own flow has a wallet on.
package compat

import (
	"strings"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// Result is the outcome of a compatibility resolution. Candidates
// preserve the order of the sender's wallets; Default is the suggested
// pre-selection.
type Result struct {
	Candidates []wallet.Wallet
	Default    wallet.Wallet
}

// Contains reports whether w matches a candidate by address and network.
func (r *Result) Contains(w wallet.Wallet) bool {
	for _, c := range r.Candidates {
		if strings.EqualFold(c.Address, w.Address) && c.Network == w.Network {
			return true
		}
	}
	return false
}

// Resolve computes the compatible payment wallets for the recipient.
// The result is deterministic for identical inputs and candidates are
// always a subset of senderWallets. Default is the candidate on the
// connected network when one exists, the first candidate otherwise.
// An empty candidate set is an error: the transfer cannot proceed.
func Resolve(senderWallets []wallet.Wallet, recipient wallet.Identity, connected chain.Network) (*Result, error) {
	if recipient.IsZero() {
		return nil, payerr.ErrRecipientUnresolved
	}

	candidates := make([]wallet.Wallet, 0, len(senderWallets))
	for _, w := range senderWallets {
		if !w.Network.IsValid() {
			continue
		}
		if _, ok := recipient.Destination(w.Network); ok {
			candidates = append(candidates, w)
		}
	}

	if len(candidates) == 0 {
		return nil, payerr.WithDetails(payerr.ErrNoCompatibleWallet, map[string]string{
			"recipient": recipient.DisplayName(),
		})
	}

	def := candidates[0]
	for _, c := range candidates {
		if c.Network == connected {
			def = c
			break
		}
	}

	return &Result{Candidates: candidates, Default: def}, nil
}
