package eth

import (
	"context"
	"math/big"
)

// GasEstimate contains gas price and limit for a transaction.
type GasEstimate struct {
	GasPrice *big.Int // Price per gas unit in wei
	GasLimit uint64   // Maximum gas units
	Total    *big.Int // Total cost (GasPrice * GasLimit)
}

// EstimateTransferGas estimates the gas cost of a simple native transfer
// at the network's suggested gas price. This cost is paid natively by the
// signer and is informational for direct transfers; it never enters the
// relay fee quote.
func (c *Client) EstimateTransferGas(ctx context.Context) (*GasEstimate, error) {
	gasPrice, err := c.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	return &GasEstimate{
		GasPrice: gasPrice,
		GasLimit: GasLimitTransfer,
		Total:    new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(GasLimitTransfer)),
	}, nil
}
