package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

func TestNetworkName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		network chain.Network
		want    string
	}{
		{chain.Ethereum, "ethereum"},
		{chain.Optimism, "optimism"},
		{chain.Base, "base"},
		{chain.Arbitrum, "arbitrum"},
		{chain.Zora, "zora"},
		{chain.Degen, "degen"},
		{chain.Network(999), "chain-999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.network.Name())
			assert.Equal(t, tt.want, tt.network.String())
		})
	}
}

func TestNetworkIsValid(t *testing.T) {
	t.Parallel()

	for _, n := range chain.SupportedNetworks() {
		assert.True(t, n.IsValid(), n.Name())
	}
	assert.False(t, chain.Network(0).IsValid())
	assert.False(t, chain.Network(5).IsValid())
}

func TestParseNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    chain.Network
		wantErr bool
	}{
		{"by name", "base", chain.Base, false},
		{"by chain id", "10", chain.Optimism, false},
		{"degen by id", "666666666", chain.Degen, false},
		{"unknown name", "solana", 0, true},
		{"unknown id", "31337", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chain.ParseNetwork(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, payerr.ErrUnsupportedNetwork)
				assert.Contains(t, err.Error(), tt.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNetworkChainID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(8453), chain.Base.ChainID())
	assert.Equal(t, uint64(1), chain.Ethereum.ChainID())
}
