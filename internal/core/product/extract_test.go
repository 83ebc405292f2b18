package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		currency string
		min      float64
		max      float64
		absent   bool
	}{
		{name: "range", input: "USD 10 - 12", currency: "USD", min: 10, max: 12},
		{name: "single value", input: "USD 10", currency: "USD", min: 10, max: 10},
		{name: "thousands separators", input: "USD 1,250.50 - 2,000", currency: "USD", min: 1250.50, max: 2000},
		{name: "embedded in noise", input: "FOB price: EUR 3.20-4.80 / piece", currency: "EUR", min: 3.20, max: 4.80},
		{name: "no currency code", input: "10 - 12", absent: true},
		{name: "no numbers", input: "USD contact supplier", absent: true},
		{name: "empty", input: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := ParsePriceRange(tt.input)
			if tt.absent {
				assert.Nil(t, pr)
				return
			}
			require.NotNil(t, pr)
			assert.Equal(t, tt.currency, pr.Currency)
			assert.Equal(t, tt.min, pr.Min)
			assert.Equal(t, tt.max, pr.Max)
		})
	}
}

func TestParseMOQ(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		absent bool
	}{
		{name: "with separator", input: "MOQ 1,000 pieces", want: 1000},
		{name: "plain", input: "100 pieces", want: 100},
		{name: "decimal rounds", input: "2.6 sets", want: 3},
		{name: "no digits", input: "negotiable", absent: true},
		{name: "empty", input: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMOQ(tt.input)
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseLeadTime(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		absent bool
	}{
		{name: "range rounds mean", input: "15-20 days", want: 18},
		{name: "single", input: "10 days", want: 10},
		{name: "singular unit", input: "1 day", want: 1},
		{name: "case insensitive", input: "7 DAYS", want: 7},
		{name: "spaced range", input: "5 - 10 days", want: 8},
		{name: "no unit", input: "15-20", absent: true},
		{name: "empty", input: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLeadTime(tt.input)
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseSupplierRating(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		absent bool
	}{
		{name: "plain", input: "4.8/5", want: 4.8},
		{name: "spaced", input: "4.2 / 5 (150)", want: 4.2},
		{name: "clamped above", input: "7.5/5", want: 5},
		{name: "no pattern", input: "4.8 stars", absent: true},
		{name: "empty", input: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSupplierRating(tt.input)
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseSupplierReviewCount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		absent bool
	}{
		{name: "plain", input: "(150)", want: 150},
		{name: "with separator", input: "4.8/5 (1,150)", want: 1150},
		{name: "no parentheses", input: "150 reviews", absent: true},
		{name: "empty", input: "", absent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSupplierReviewCount(tt.input)
			if tt.absent {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
