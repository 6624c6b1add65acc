package compat

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
)

func TestSessionRecomputeOnInputChange(t *testing.T) {
	t.Parallel()

	s := NewSession(chain.Base)
	gen1 := s.SetSenderWallets(senderWallets())
	gen2 := s.SetRecipient(wallet.AddressIdentity(recipientAddr))
	assert.Greater(t, gen2, gen1, "every input change bumps the generation")

	res, err := s.Result()
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 3)

	// Narrowing the recipient recomputes the candidates.
	s.SetRecipient(profileOn(chain.Degen))
	res, err = s.Result()
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 1)
}

func TestSessionSelectionClearedWhenNoLongerCandidate(t *testing.T) {
	t.Parallel()

	s := NewSession(chain.Base)
	s.SetSenderWallets(senderWallets())
	s.SetRecipient(wallet.AddressIdentity(recipientAddr))

	degen := senderWallets()[2]
	_, err := s.Select(degen)
	require.NoError(t, err)

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, chain.Degen, sel.Network)

	// The new recipient cannot receive on degen, so the selection falls
	// back to the recomputed default.
	s.SetRecipient(profileOn(chain.Base))
	sel, ok = s.Selected()
	require.True(t, ok)
	assert.Equal(t, chain.Base, sel.Network)
}

func TestSessionSelectRejectsNonCandidate(t *testing.T) {
	t.Parallel()

	s := NewSession(chain.Base)
	s.SetSenderWallets(senderWallets())
	s.SetRecipient(profileOn(chain.Base))

	_, err := s.Select(senderWallets()[2]) // degen is not compatible
	require.Error(t, err)
}

func TestSessionStaleQuoteDiscarded(t *testing.T) {
	t.Parallel()

	s := NewSession(chain.Base)
	s.SetSenderWallets(senderWallets())
	gen := s.SetRecipient(wallet.AddressIdentity(recipientAddr))

	// Input changes again before the async estimate lands.
	s.SetConnectedNetwork(chain.Optimism)

	stale := &fee.Quote{Network: chain.Base, AmountWei: big.NewInt(100)}
	assert.False(t, s.ApplyQuote(gen, stale), "a stale-generation quote must be discarded")
	_, ok := s.Quote()
	assert.False(t, ok)

	fresh := &fee.Quote{Network: chain.Optimism, AmountWei: big.NewInt(200)}
	assert.True(t, s.ApplyQuote(s.Generation(), fresh))
	q, ok := s.Quote()
	require.True(t, ok)
	assert.Equal(t, "200", q.AmountWei.String())
}

func TestSessionQuoteClearedOnWalletChange(t *testing.T) {
	t.Parallel()

	s := NewSession(chain.Base)
	s.SetSenderWallets(senderWallets())
	s.SetRecipient(wallet.AddressIdentity(recipientAddr))

	base := senderWallets()[0]
	gen, err := s.Select(base)
	require.NoError(t, err)
	require.True(t, s.ApplyQuote(gen, &fee.Quote{Network: chain.Base, AmountWei: big.NewInt(100)}))

	// Selecting a different wallet invalidates the previous quote.
	_, err = s.Select(senderWallets()[1])
	require.NoError(t, err)
	_, ok := s.Quote()
	assert.False(t, ok)
}

func TestSessionQuoteForPreviousSelectionDiscarded(t *testing.T) {
	t.Parallel()

	s := NewSession(chain.Base)
	s.SetSenderWallets(senderWallets())
	s.SetRecipient(wallet.AddressIdentity(recipientAddr))

	base := senderWallets()[0]
	genA, err := s.Select(base)
	require.NoError(t, err)

	// The user switches wallets before the estimate for the first
	// selection lands.
	genB, err := s.Select(senderWallets()[1])
	require.NoError(t, err)
	require.Greater(t, genB, genA, "a new selection bumps the generation")

	late := &fee.Quote{Network: base.Network, Wallet: base, AmountWei: big.NewInt(100)}
	assert.False(t, s.ApplyQuote(genA, late), "a quote for the previous selection must be discarded")
	_, ok := s.Quote()
	assert.False(t, ok)

	// Re-selecting the same wallet does not bump: the current quote
	// request stays valid.
	genB2, err := s.Select(senderWallets()[1])
	require.NoError(t, err)
	assert.Equal(t, genB, genB2)

	fresh := &fee.Quote{Network: senderWallets()[1].Network, Wallet: senderWallets()[1], AmountWei: big.NewInt(200)}
	require.True(t, s.ApplyQuote(genB, fresh))
	q, ok := s.Quote()
	require.True(t, ok)
	assert.Equal(t, "200", q.AmountWei.String())
}
