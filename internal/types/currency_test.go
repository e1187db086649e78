package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundToCurrencyScale(t *testing.T) {
	// Half-up at two decimal places
	assert.True(t, decimal.RequireFromString("10.01").Equal(
		RoundToCurrencyScale(decimal.RequireFromString("10.005"), "usd")))
	assert.True(t, decimal.RequireFromString("10.00").Equal(
		RoundToCurrencyScale(decimal.RequireFromString("10.004"), "usd")))

	// Zero-scale currencies round to whole units
	assert.True(t, decimal.RequireFromString("101").Equal(
		RoundToCurrencyScale(decimal.RequireFromString("100.5"), "jpy")))

	// Unknown currencies fall back to two decimal places
	assert.Equal(t, int32(2), GetCurrencyRoundingScale("xyz"))
	assert.Equal(t, int32(0), GetCurrencyRoundingScale("krw"))
}
