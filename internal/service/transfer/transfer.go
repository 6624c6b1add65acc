// Package transfer orchestrates a payment attempt end to end: validate,
// route through the relay (smart wallet) or the connected signer (EOA),
// watch for the on-chain receipt, and settle into a terminal state.
package transfer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/service/fee"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
)

// Status is the state of a transfer attempt.
type Status string

// Transfer attempt states. An attempt moves idle → estimating
// (optional) → awaiting_signature → pending and settles in exactly one
// of confirmed, failed, or rejected. Reset is the only exit from a
// terminal state.
const (
	StatusIdle              Status = "idle"
	StatusEstimating        Status = "estimating"
	StatusAwaitingSignature Status = "awaiting_signature"
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusFailed            Status = "failed"
	StatusRejected          Status = "rejected"
)

// Terminal reports whether the status is final for the attempt.
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusFailed, StatusRejected:
		return true
	default:
		return false
	}
}

// Request describes a transfer to submit. It is immutable once
// submitted: the amount that goes on chain is exactly Amount, never a
// value derived from a fee quote.
type Request struct {
	FromWallet wallet.Wallet
	FlowID     string // owning flow, for the deployment ledger
	SaltNonce  string // flow salt, for counterfactual deployment
	ToAddress  string
	Amount     *big.Int // wei
	Network    chain.Network
}

// Attempt is a snapshot of a transfer attempt's progress.
type Attempt struct {
	ID      uint64
	Request Request
	Status  Status
	TxHash  common.Hash
	Quote   *fee.Quote // display only, nil when unknown
	Err     error
}
