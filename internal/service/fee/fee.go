// Package fee estimates the total cost the user pays for a transfer:
// the relay's base execution cost, a one-time deployment surcharge for
// a not-yet-deployed smart wallet, and a proportional commission.
package fee

import (
	"context"
	"math/big"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/logger"
	"github.com/sidrisov/payflow-sub001/internal/metrics"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// CommissionMode selects the base the commission is computed on.
type CommissionMode string

const (
	// CommissionOnTotal applies the commission after the deployment
	// surcharge has been added.
	CommissionOnTotal CommissionMode = "on-total"
	// CommissionOnBase applies the commission to the relay base cost
	// only, before any surcharge.
	CommissionOnBase CommissionMode = "on-base"
)

const bpsDenominator = 10_000

// Policy holds the fee policy knobs, loaded from configuration.
type Policy struct {
	CommissionBps  int64
	Mode           CommissionMode
	DeploymentCost map[chain.Network]*big.Int
}

// DefaultPolicy returns the zero-commission policy with no deployment
// surcharge table. Real deployments load the table from config.
func DefaultPolicy() Policy {
	return Policy{Mode: CommissionOnTotal}
}

// Quote is a fee estimate for a transfer from a specific wallet.
// AmountWei is the total fee in wei; a missing quote is represented by
// the absence of a Quote, never by a zero amount.
type Quote struct {
	Network   chain.Network
	Wallet    wallet.Wallet
	AmountWei *big.Int
}

// RelayQuoter provides the relay's base execution cost for a wallet.
type RelayQuoter interface {
	QuoteFee(ctx context.Context, w wallet.Wallet, network chain.Network) (*big.Int, error)
}

// Estimator computes transfer fee quotes.
type Estimator struct {
	relay   RelayQuoter
	policy  Policy
	log     logger.Logger
	metrics metrics.Recorder
}

// NewEstimator creates a fee estimator using the given relay and policy.
func NewEstimator(relay RelayQuoter, policy Policy, log logger.Logger, rec metrics.Recorder) *Estimator {
	if log == nil {
		log = logger.Noop{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if policy.Mode == "" {
		policy.Mode = CommissionOnTotal
	}
	return &Estimator{relay: relay, policy: policy, log: log, metrics: rec}
}

// Estimate returns the fee quote for transferring from the given wallet
// on the given network. A direct EOA transfer pays no relay fee and
// quotes zero. For a smart wallet the quote is the relay base cost,
// plus the one-time deployment cost when the wallet is not deployed
// yet, plus the commission. The fee does not depend on the transfer
// amount.
func (e *Estimator) Estimate(ctx context.Context, w wallet.Wallet, network chain.Network) (*Quote, error) {
	if !w.IsSmart() {
		return &Quote{Network: network, Wallet: w, AmountWei: big.NewInt(0)}, nil
	}

	base, err := e.relay.QuoteFee(ctx, w, network)
	if err != nil {
		e.log.Warn("fee quote failed", map[string]any{
			"network": network.Name(),
			"wallet":  w.Address,
			"error":   err.Error(),
		})
		return nil, payerr.Wrap(err, "estimating fee on %s", network.Name())
	}

	total := new(big.Int).Set(base)

	var surcharge *big.Int
	if !w.Deployed {
		if cost, ok := e.policy.DeploymentCost[network]; ok && cost != nil {
			surcharge = cost
			total.Add(total, cost)
		}
	}

	if e.policy.CommissionBps > 0 {
		commissionBase := base
		if e.policy.Mode == CommissionOnTotal {
			commissionBase = total
		}
		commission := new(big.Int).Mul(commissionBase, big.NewInt(e.policy.CommissionBps))
		commission.Div(commission, big.NewInt(bpsDenominator))
		total.Add(total, commission)
	}

	e.log.Debug("fee quoted", map[string]any{
		"network":   network.Name(),
		"wallet":    w.Address,
		"base":      base.String(),
		"surcharge": surchargeString(surcharge),
		"total":     total.String(),
	})

	return &Quote{Network: network, Wallet: w, AmountWei: total}, nil
}

func surchargeString(s *big.Int) string {
	if s == nil {
		return "0"
	}
	return s.String()
}
