package chain_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidrisov/payflow-sub001/internal/chain"
)

var errBadAmount = errors.New("bad amount")

func TestParseDecimalAmount_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		decimals int
		want     *big.Int
	}{
		{"1 ether", "1.0", 18, big.NewInt(1000000000000000000)},
		{"0.001 ether", "0.001", 18, big.NewInt(1000000000000000)},
		{"integer only", "2", 18, new(big.Int).Mul(big.NewInt(2), big.NewInt(1000000000000000000))},
		{"six decimals", "1.5", 6, big.NewInt(1500000)},
		{"leading dot", ".5", 6, big.NewInt(500000)},
		{"exact precision", "0.123456", 6, big.NewInt(123456)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chain.ParseDecimalAmount(tt.amount, tt.decimals, errBadAmount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecimalAmount_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
	}{
		{"empty", ""},
		{"negative", "-1.0"},
		{"two dots", "1.2.3"},
		{"letters", "abc"},
		{"letters in fraction", "1.2a"},
		{"excess precision", "0.1234567890123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.ParseDecimalAmount(tt.amount, 18, errBadAmount)
			require.ErrorIs(t, err, errBadAmount)
		})
	}
}

func TestParseDecimalAmountRejectsSubUnitPrecision(t *testing.T) {
	t.Parallel()

	// Seven fractional digits against six decimal places must error, not
	// quietly drop the seventh digit.
	_, err := chain.ParseDecimalAmount("0.1234567", 6, errBadAmount)
	require.ErrorIs(t, err, errBadAmount)
}

func TestFormatDecimalAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   *big.Int
		decimals int
		want     string
	}{
		{"1.5 ether", big.NewInt(1500000000000000000), 18, "1.5"},
		{"one wei", big.NewInt(1), 18, "0.000000000000000001"},
		{"zero", big.NewInt(0), 18, "0.0"},
		{"nil", nil, 18, "0"},
		{"round number", big.NewInt(2000000), 6, "2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chain.FormatDecimalAmount(tt.amount, tt.decimals))
		})
	}
}

func TestParseWeiRoundTrip(t *testing.T) {
	t.Parallel()

	wei, err := chain.ParseWei("1.25", errBadAmount)
	require.NoError(t, err)
	assert.Equal(t, "1.25", chain.FormatWei(wei))
}

func TestFiatValue(t *testing.T) {
	t.Parallel()

	oneEth := big.NewInt(1000000000000000000)
	price := decimal.NewFromInt(2500)

	got := chain.FiatValue(oneEth, price)
	assert.True(t, got.Equal(decimal.NewFromInt(2500)), got.String())

	half := big.NewInt(500000000000000000)
	got = chain.FiatValue(half, price)
	assert.True(t, got.Equal(decimal.NewFromInt(1250)), got.String())

	assert.True(t, chain.FiatValue(nil, price).IsZero())
}
