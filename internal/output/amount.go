package output

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/sidrisov/payflow-sub001/internal/chain"
)

// FormatNative renders a wei amount as a native-unit decimal string
// with the network's ticker, e.g. "0.5 ETH".
func FormatNative(wei *big.Int) string {
	if wei == nil {
		return "unknown"
	}
	return chain.FormatWei(wei) + " ETH"
}

// FormatFiat renders the fiat value of a wei amount at the given unit
// price, rounded to cents. Display only: fiat values never feed back
// into validation or submission.
func FormatFiat(wei *big.Int, unitPrice decimal.Decimal) string {
	if wei == nil || unitPrice.IsZero() {
		return ""
	}
	return "$" + chain.FiatValue(wei, unitPrice).StringFixed(2)
}
