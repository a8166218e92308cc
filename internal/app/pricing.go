/**
 * @description
 * Pure pricing computation for product checkout amounts. The fee percentage
 * is advisory only: the final amount is shown to merchants so they know what
 * the buyer-facing platform fee looks like, but the amount sent to the
 * payment link provider is always the merchant's base amount.
 */
package app

import (
	"fmt"

	"github.com/zelipay/monetization-service/internal/domain"
)

// PriceQuote is the result of applying a fee percentage to a base amount.
// FinalAmount keeps full float precision; rounding happens only in Display.
type PriceQuote struct {
	BaseAmount    int64   `json:"base_amount"`
	FeePercentage float64 `json:"fee_percentage"`
	FinalAmount   float64 `json:"final_amount"`
}

// displayDecimals maps each supported currency to the number of fractional
// digits shown to users. XOF has no minor unit.
var displayDecimals = map[string]int{
	domain.CurrencyXOF: 0,
	domain.CurrencyUSD: 2,
	domain.CurrencyEUR: 2,
}

// Quote computes the fee-inclusive amount for a base price.
// final = base + base * fee / 100.
func Quote(baseAmount int64, feePercentage float64) PriceQuote {
	base := float64(baseAmount)
	return PriceQuote{
		BaseAmount:    baseAmount,
		FeePercentage: feePercentage,
		FinalAmount:   base + base*feePercentage/100,
	}
}

// Display formats the final amount for the given currency. The currency must
// already have passed boundary validation; an unknown currency falls back to
// two decimals rather than failing a display-only path.
func (q PriceQuote) Display(currency string) string {
	decimals, ok := displayDecimals[currency]
	if !ok {
		decimals = 2
	}
	return fmt.Sprintf("%.*f %s", decimals, q.FinalAmount, currency)
}
