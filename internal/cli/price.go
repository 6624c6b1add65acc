package cli

import (
	"strings"

	"github.com/shopspring/decimal"

	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// parseUnitPrice parses the optional fiat unit-price flag. An empty
// flag means no fiat display; a non-positive or malformed price is an
// input error.
func parseUnitPrice(raw string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, false, nil
	}

	price, err := decimal.NewFromString(raw)
	if err != nil || price.Sign() <= 0 {
		return decimal.Decimal{}, false, payerr.WithDetails(payerr.ErrInvalidAmount, map[string]string{
			"price": raw,
		})
	}
	return price, true, nil
}
