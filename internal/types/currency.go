package types

import "github.com/shopspring/decimal"

// zeroScaleCurrencies are ISO codes whose display scale is 0 decimal places.
// Everything else uses the default of 2.
var zeroScaleCurrencies = map[string]bool{
	"jpy": true,
	"krw": true,
	"vnd": true,
	"clp": true,
}

// GetCurrencyRoundingScale returns the display scale for a currency code
func GetCurrencyRoundingScale(code string) int32 {
	if zeroScaleCurrencies[code] {
		return 0
	}
	return DEFAULT_FLOATING_PRECISION
}

// RoundToCurrencyScale rounds an amount to the currency's display scale using
// round-half-up. This must happen exactly once, on the final amount of an
// invoice item, never on intermediate per-day rates.
func RoundToCurrencyScale(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(GetCurrencyRoundingScale(currency))
}
