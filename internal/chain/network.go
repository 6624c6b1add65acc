// Package chain provides the supported network table and common
// utilities shared by the transfer services.
package chain

import (
	"fmt"
	"strconv"

	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// Network identifies a blockchain network by its chain ID.
type Network uint64

// Supported networks.
const (
	Ethereum Network = 1
	Optimism Network = 10
	Base     Network = 8453
	Arbitrum Network = 42161
	Zora     Network = 7777777
	Degen    Network = 666666666
)

// NativeDecimals is the number of decimals for the native asset on all
// supported networks.
const NativeDecimals = 18

// Name returns the human-readable network name.
func (n Network) Name() string {
	switch n {
	case Ethereum:
		return "ethereum"
	case Optimism:
		return "optimism"
	case Base:
		return "base"
	case Arbitrum:
		return "arbitrum"
	case Zora:
		return "zora"
	case Degen:
		return "degen"
	default:
		return fmt.Sprintf("chain-%d", uint64(n))
	}
}

// String returns the network name.
func (n Network) String() string {
	return n.Name()
}

// ChainID returns the numeric chain ID.
func (n Network) ChainID() uint64 {
	return uint64(n)
}

// IsValid returns true if the network is in the supported table.
func (n Network) IsValid() bool {
	switch n {
	case Ethereum, Optimism, Base, Arbitrum, Zora, Degen:
		return true
	default:
		return false
	}
}

// SupportedNetworks returns the networks transfers may settle on.
func SupportedNetworks() []Network {
	return []Network{Ethereum, Optimism, Base, Arbitrum, Zora, Degen}
}

// ParseNetwork parses a network name or numeric chain ID.
func ParseNetwork(s string) (Network, error) {
	for _, n := range SupportedNetworks() {
		if n.Name() == s {
			return n, nil
		}
	}

	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n := Network(id); n.IsValid() {
			return n, nil
		}
	}
	return 0, payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
		"network": s,
	})
}
