package product

import (
	"math"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize maps a raw capture into the canonical product shape. It is a
// total function: every branch has an absent/empty fallback, so any raw
// input produces a well-formed result.
func Normalize(raw RawScrapedProduct) NormalizedProduct {
	description := cleanDescription(raw.Description)
	priceMin, priceMax, currency := resolvePrice(raw)
	moq := resolveMOQ(raw)

	var leadTimeDays *int
	if raw.LeadTimeText != nil {
		leadTimeDays = ParseLeadTime(*raw.LeadTimeText)
	}

	categoryTrail := raw.CategoryTrail
	if categoryTrail == nil {
		categoryTrail = []string{}
	}

	return NormalizedProduct{
		Marketplace:         raw.Marketplace,
		SourceURL:           raw.SourceURL,
		Name:                collapseWhitespace(raw.Title),
		Description:         description,
		PriceMin:            priceMin,
		PriceMax:            priceMax,
		Currency:            currency,
		MOQ:                 moq,
		LeadTimeDays:        leadTimeDays,
		Images:              dedupe(raw.Images),
		SupplierName:        trimPtr(raw.SupplierName),
		SupplierRating:      raw.SupplierRating,
		SupplierReviewCount: raw.SupplierReviewCount,
		CategoryTrail:       categoryTrail,
		CapturedAt:          raw.CapturedAt,
		Quality: ScoreQuality(QualityInputs{
			Description:         description,
			Images:              raw.Images,
			SupplierRating:      raw.SupplierRating,
			SupplierReviewCount: raw.SupplierReviewCount,
		}),
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// cleanDescription collapses whitespace and folds the empty string into
// nil so callers treat "no description" uniformly.
func cleanDescription(description *string) *string {
	if description == nil {
		return nil
	}
	normalized := collapseWhitespace(*description)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// resolvePrice prefers the structured fields the adapter already parsed
// and only re-parses the free-text price when something is missing.
func resolvePrice(raw RawScrapedProduct) (priceMin, priceMax *float64, currency *string) {
	priceMin = raw.PriceMin
	priceMax = raw.PriceMax
	currency = raw.Currency

	if (priceMin == nil || priceMax == nil || currency == nil) && raw.PriceText != nil {
		if pr := ParsePriceRange(*raw.PriceText); pr != nil {
			if currency == nil {
				c := pr.Currency
				currency = &c
			}
			min := roundCents(pr.Min)
			max := roundCents(pr.Max)
			priceMin = &min
			priceMax = &max
		}
	}
	return priceMin, priceMax, currency
}

func resolveMOQ(raw RawScrapedProduct) *int {
	if raw.MOQ != nil {
		return raw.MOQ
	}
	if raw.MOQText == nil {
		return nil
	}
	return ParseMOQ(*raw.MOQText)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// dedupe drops empty values and exact duplicates, keeping first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
