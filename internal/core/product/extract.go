package product

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field extractors for the free-text fragments marketplace pages expose.
// Each one fails soft: a nil result means "field absent", never an error.
// Partial data is the norm with this kind of markup.

var (
	priceRe       = regexp.MustCompile(`([A-Z]{3})\s*([\d.,]+)(?:\s*-\s*([\d.,]+))?`)
	moqRe         = regexp.MustCompile(`([\d.,]+)`)
	leadTimeRe    = regexp.MustCompile(`(?i)(\d+)(?:\s*-\s*(\d+))?\s*days?`)
	ratingRe      = regexp.MustCompile(`([\d.]+)\s*/\s*5`)
	reviewCountRe = regexp.MustCompile(`\(([\d,]+)\)`)
)

// PriceRange is a parsed "CCY min - max" price expression. Min equals Max
// when the text carried a single value.
type PriceRange struct {
	Currency string
	Min      float64
	Max      float64
}

// ParsePriceRange extracts a currency code and one or two dash-separated
// amounts from text like "USD 10.50 - 12,000".
func ParsePriceRange(text string) *PriceRange {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	min, ok := parseAmount(m[2])
	if !ok {
		return nil
	}
	max := min
	if m[3] != "" {
		if v, ok := parseAmount(m[3]); ok {
			max = v
		}
	}
	return &PriceRange{Currency: m[1], Min: min, Max: max}
}

// ParseMOQ extracts the first numeric token from MOQ text, e.g.
// "MOQ 1,000 pieces" -> 1000.
func ParseMOQ(text string) *int {
	m := moqRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, ok := parseAmount(m[1])
	if !ok {
		return nil
	}
	n := int(math.Round(v))
	return &n
}

// ParseLeadTime matches "<n> days" or "<n>-<m> days" and returns the
// rounded mean of a range.
func ParseLeadTime(text string) *int {
	m := leadTimeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	min, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	max := min
	if m[2] != "" {
		if v, err := strconv.Atoi(m[2]); err == nil {
			max = v
		}
	}
	n := int(math.Round(float64(min+max) / 2))
	return &n
}

// ParseSupplierRating matches an "<x>/5" pattern, clamped to [0,5].
func ParseSupplierRating(text string) *float64 {
	m := ratingRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = math.Max(0, math.Min(5, v))
	return &v
}

// ParseSupplierReviewCount matches a parenthesized integer, e.g. "(1,150)".
func ParseSupplierReviewCount(text string) *int {
	m := reviewCountRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &v
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
