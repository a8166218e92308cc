package app

import (
	"math"
	"testing"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name          string
		baseAmount    int64
		feePercentage float64
		wantFinal     float64
	}{
		{
			name:          "zero fee returns base amount",
			baseAmount:    1000,
			feePercentage: 0,
			wantFinal:     1000,
		},
		{
			name:          "whole percentage",
			baseAmount:    200,
			feePercentage: 10,
			wantFinal:     220,
		},
		{
			name:          "fractional percentage keeps precision",
			baseAmount:    1000,
			feePercentage: 2.5,
			wantFinal:     1025,
		},
		{
			name:          "fee producing fractional result",
			baseAmount:    333,
			feePercentage: 1.5,
			wantFinal:     337.995,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(tt.baseAmount, tt.feePercentage)
			if got.BaseAmount != tt.baseAmount {
				t.Fatalf("expected base %d, got %d", tt.baseAmount, got.BaseAmount)
			}
			if got.FeePercentage != tt.feePercentage {
				t.Fatalf("expected fee %v, got %v", tt.feePercentage, got.FeePercentage)
			}
			if math.Abs(got.FinalAmount-tt.wantFinal) > 1e-9 {
				t.Fatalf("expected final %v, got %v", tt.wantFinal, got.FinalAmount)
			}
		})
	}
}

func TestQuoteDisplay(t *testing.T) {
	tests := []struct {
		name     string
		quote    PriceQuote
		currency string
		want     string
	}{
		{
			name:     "XOF has no decimals",
			quote:    Quote(1000, 2.5),
			currency: "XOF",
			want:     "1025 XOF",
		},
		{
			name:     "XOF rounds to whole FCFA",
			quote:    Quote(333, 10),
			currency: "XOF",
			want:     "366 XOF",
		},
		{
			name:     "USD keeps two decimals",
			quote:    Quote(1000, 2.5),
			currency: "USD",
			want:     "1025.00 USD",
		},
		{
			name:     "EUR keeps two decimals",
			quote:    Quote(200, 10),
			currency: "EUR",
			want:     "220.00 EUR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.quote.Display(tt.currency); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
