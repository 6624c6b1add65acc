// Package signer defines the connected-signer provider consumed by the
// transfer orchestrator, plus a local key-backed implementation.
package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sidrisov/payflow-sub001/internal/chain"
)

// Tx describes a native-asset transfer for the signer to execute.
type Tx struct {
	From     string
	To       string
	Value    *big.Int // wei
	Network  chain.Network
	GasLimit uint64 // optional override; 0 uses the transfer default
}

// Provider is the connected signer: it knows which network the user's
// wallet is currently on, can ask it to switch, and can sign and
// broadcast a transaction. Implementations may decline (user rejection)
// or fail (provider error) — the two are distinct conditions.
type Provider interface {
	// ActiveNetwork returns the network the signer is currently connected to.
	ActiveNetwork(ctx context.Context) (chain.Network, error)

	// RequestNetworkSwitch asks the signer to move to the given network.
	RequestNetworkSwitch(ctx context.Context, network chain.Network) error

	// SignAndSendTransaction signs and broadcasts the transaction,
	// returning its hash. Returns ErrSignatureDeclined (pkg/errors) when
	// the user rejects the prompt.
	SignAndSendTransaction(ctx context.Context, tx Tx) (common.Hash, error)
}
