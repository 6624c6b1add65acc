package fee

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
)

type mockQuoter struct {
	fee   *big.Int
	err   error
	calls int
}

func (m *mockQuoter) QuoteFee(_ context.Context, _ wallet.Wallet, _ chain.Network) (*big.Int, error) {
	m.calls++
	return m.fee, m.err
}

func smartWallet(deployed bool) wallet.Wallet {
	return wallet.Wallet{
		Address:  "0x1111111111111111111111111111111111111111",
		Network:  chain.Base,
		Version:  "1.4.1",
		Deployed: deployed,
	}
}

func eoaWallet() wallet.Wallet {
	return wallet.Wallet{
		Address: "0x2222222222222222222222222222222222222222",
		Network: chain.Base,
	}
}

func TestEstimatorEstimate(t *testing.T) {
	t.Parallel()

	deployCost := big.NewInt(500_000)

	tests := []struct {
		name      string
		wallet    wallet.Wallet
		relayFee  *big.Int
		policy    Policy
		wantTotal string
	}{
		{
			name:      "EOA quotes zero without hitting the relay",
			wallet:    eoaWallet(),
			policy:    DefaultPolicy(),
			wantTotal: "0",
		},
		{
			name:      "deployed smart wallet pays base only",
			wallet:    smartWallet(true),
			relayFee:  big.NewInt(1_000_000),
			policy:    DefaultPolicy(),
			wantTotal: "1000000",
		},
		{
			name:     "undeployed smart wallet pays deployment surcharge",
			wallet:   smartWallet(false),
			relayFee: big.NewInt(1_000_000),
			policy: Policy{
				Mode:           CommissionOnTotal,
				DeploymentCost: map[chain.Network]*big.Int{chain.Base: deployCost},
			},
			wantTotal: "1500000",
		},
		{
			name:     "commission on total includes the surcharge",
			wallet:   smartWallet(false),
			relayFee: big.NewInt(1_000_000),
			policy: Policy{
				CommissionBps:  100, // 1%
				Mode:           CommissionOnTotal,
				DeploymentCost: map[chain.Network]*big.Int{chain.Base: deployCost},
			},
			wantTotal: "1515000",
		},
		{
			name:     "commission on base excludes the surcharge",
			wallet:   smartWallet(false),
			relayFee: big.NewInt(1_000_000),
			policy: Policy{
				CommissionBps:  100,
				Mode:           CommissionOnBase,
				DeploymentCost: map[chain.Network]*big.Int{chain.Base: deployCost},
			},
			wantTotal: "1510000",
		},
		{
			name:      "no surcharge entry for network",
			wallet:    smartWallet(false),
			relayFee:  big.NewInt(1_000_000),
			policy:    Policy{Mode: CommissionOnTotal},
			wantTotal: "1000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quoter := &mockQuoter{fee: tt.relayFee}
			e := NewEstimator(quoter, tt.policy, nil, nil)

			q, err := e.Estimate(context.Background(), tt.wallet, chain.Base)
			require.NoError(t, err)
			require.NotNil(t, q.AmountWei)
			assert.Equal(t, tt.wantTotal, q.AmountWei.String())

			if !tt.wallet.IsSmart() {
				assert.Zero(t, quoter.calls, "EOA estimate must not call the relay")
			}
		})
	}
}

func TestEstimatorFailureYieldsNoQuote(t *testing.T) {
	t.Parallel()

	quoter := &mockQuoter{err: errors.New("relay down")}
	e := NewEstimator(quoter, DefaultPolicy(), nil, nil)

	q, err := e.Estimate(context.Background(), smartWallet(true), chain.Base)
	require.Error(t, err)
	assert.Nil(t, q, "a failed estimate must not produce a quote, zero or otherwise")
}

func TestEstimatorFeeIndependentOfDeployedFlagAfterDeployment(t *testing.T) {
	t.Parallel()

	// The same wallet quoted before and after deployment differs by
	// exactly the deployment cost.
	deployCost := big.NewInt(500_000)
	policy := Policy{
		Mode:           CommissionOnTotal,
		DeploymentCost: map[chain.Network]*big.Int{chain.Base: deployCost},
	}
	quoter := &mockQuoter{fee: big.NewInt(1_000_000)}
	e := NewEstimator(quoter, policy, nil, nil)

	before, err := e.Estimate(context.Background(), smartWallet(false), chain.Base)
	require.NoError(t, err)
	after, err := e.Estimate(context.Background(), smartWallet(true), chain.Base)
	require.NoError(t, err)

	diff := new(big.Int).Sub(before.AmountWei, after.AmountWei)
	assert.Equal(t, deployCost.String(), diff.String())
}
