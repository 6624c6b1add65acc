package compat

import (
	"sync"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// Session tracks the latest compatibility result for a payment the user
// is composing. Every input change bumps the generation counter and
// recomputes; a selection that is no longer a candidate is cleared, and
// an async fee quote is applied only if it was requested for the
// current generation. Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	senderWallets []wallet.Wallet
	recipient     wallet.Identity
	connected     chain.Network

	generation  uint64
	result      *Result
	resolveErr  error
	selected    wallet.Wallet
	hasSelected bool
	quote       *fee.Quote
}

// NewSession creates a session pinned to the connected network.
func NewSession(connected chain.Network) *Session {
	return &Session{connected: connected}
}

// SetSenderWallets replaces the sender's wallet set and recomputes.
// Returns the new generation.
func (s *Session) SetSenderWallets(wallets []wallet.Wallet) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.senderWallets = append([]wallet.Wallet(nil), wallets...)
	return s.recompute()
}

// SetRecipient replaces the recipient and recomputes. Returns the new
// generation.
func (s *Session) SetRecipient(recipient wallet.Identity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipient = recipient
	return s.recompute()
}

// SetConnectedNetwork updates the connected network and recomputes the
// default candidate. Returns the new generation.
func (s *Session) SetConnectedNetwork(network chain.Network) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = network
	return s.recompute()
}

// recompute re-runs resolution under the lock, bumps the generation,
// and clears a selection (and its quote) that did not survive.
func (s *Session) recompute() uint64 {
	s.generation++
	s.result, s.resolveErr = Resolve(s.senderWallets, s.recipient, s.connected)

	if s.hasSelected && (s.result == nil || !s.result.Contains(s.selected)) {
		s.hasSelected = false
		s.selected = wallet.Wallet{}
		s.quote = nil
	}
	return s.generation
}

// Result returns the latest resolution outcome.
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.resolveErr
}

// Generation returns the current generation counter.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Select picks a wallet out of the current candidates and returns the
// generation to request a fee quote against. A quote depends on the
// selection, not just the candidate inputs, so selecting a different
// wallet discards the stored quote and bumps the generation: an
// in-flight estimate for the previous selection can no longer land.
func (s *Session) Select(w wallet.Wallet) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil || !s.result.Contains(w) {
		return s.generation, payerr.WithDetails(payerr.ErrNoCompatibleWallet, map[string]string{
			"wallet":  w.Address,
			"network": w.Network.Name(),
		})
	}

	if !s.hasSelected || s.selected.Address != w.Address || s.selected.Network != w.Network {
		s.quote = nil
		s.generation++
	}
	s.selected = w
	s.hasSelected = true
	return s.generation, nil
}

// Selected returns the currently selected wallet, falling back to the
// resolver's default when the user has not picked one.
func (s *Session) Selected() (wallet.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasSelected {
		return s.selected, true
	}
	if s.result != nil {
		return s.result.Default, true
	}
	return wallet.Wallet{}, false
}

// ApplyQuote installs an asynchronously computed fee quote. The quote
// is discarded when its generation is stale, so the last writer for the
// current inputs always wins.
func (s *Session) ApplyQuote(generation uint64, q *fee.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	s.quote = q
	return true
}

// Quote returns the fee quote for the current selection, if one has
// been applied and is still current.
func (s *Session) Quote() (*fee.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quote == nil {
		return nil, false
	}
	return s.quote, true
}
