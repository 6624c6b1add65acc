package chain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalAmount parses a decimal amount string to big.Int with the given decimal places.
// For example, "1.5" with 18 decimals returns 1500000000000000000.
//
//nolint:gocognit,gocyclo // Decimal parsing requires sequential validation steps
func ParseDecimalAmount(amount string, decimalPlaces int, invalidAmountErr error) (*big.Int, error) {
	if amount == "" {
		return nil, invalidAmountErr
	}

	// Negative amounts are never valid on-chain values
	if strings.HasPrefix(amount, "-") {
		return nil, invalidAmountErr
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, invalidAmountErr
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if intPart == "" {
		intPart = "0"
	}
	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, invalidAmountErr
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalPlaces)), nil)
	result := new(big.Int).Mul(intVal, multiplier)

	if decPart != "" {
		for _, c := range decPart {
			if c < '0' || c > '9' {
				return nil, invalidAmountErr
			}
		}

		// More fractional digits than the asset can represent is an
		// input error, never a silent truncation.
		if len(decPart) > decimalPlaces {
			return nil, invalidAmountErr
		}
		for len(decPart) < decimalPlaces {
			decPart += "0"
		}

		decVal, ok := new(big.Int).SetString(decPart, 10)
		if !ok {
			return nil, invalidAmountErr
		}

		result = result.Add(result, decVal)
	}

	return result, nil
}

// FormatDecimalAmount converts a big.Int to a human-readable string with the given decimal places.
// Trailing zeros after the decimal point are removed.
// For example, 1500000000000000000 with 18 decimals returns "1.5".
func FormatDecimalAmount(amount *big.Int, decimalPlaces int) string {
	if amount == nil {
		return "0"
	}

	str := amount.String()

	for len(str) <= decimalPlaces {
		str = "0" + str
	}

	decimalPos := len(str) - decimalPlaces
	result := str[:decimalPos] + "." + str[decimalPos:]

	for len(result) > 1 && result[len(result)-1] == '0' && result[len(result)-2] != '.' {
		result = result[:len(result)-1]
	}

	return result
}

// ParseWei parses a decimal native-asset amount string into wei.
func ParseWei(amount string, invalidAmountErr error) (*big.Int, error) {
	return ParseDecimalAmount(amount, NativeDecimals, invalidAmountErr)
}

// FormatWei converts a wei value to a human-readable native-asset string.
func FormatWei(amount *big.Int) string {
	return FormatDecimalAmount(amount, NativeDecimals)
}

// FiatValue converts a wei amount to a fiat display value at the given
// unit price. The result is for display only: validation and submission
// always operate on the integer wei value, never on this derivation.
func FiatValue(wei *big.Int, unitPrice decimal.Decimal) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	native := decimal.NewFromBigInt(wei, -NativeDecimals)
	return native.Mul(unitPrice)
}
