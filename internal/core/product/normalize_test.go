package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFullListing(t *testing.T) {
	capturedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	description := "Stainless steel insulated bottle, 500ml, double wall vacuum. " +
		"Custom logo printing supported, food grade 304 steel, BPA free, leakproof lid."

	raw := RawScrapedProduct{
		Marketplace:         MarketplaceAlibaba,
		SourceURL:           "https://www.alibaba.com/product-detail/bottle_100.html",
		Title:               "  Insulated   Water\n\tBottle  ",
		Description:         &description,
		PriceText:           strp("USD 2.50 - 4.00 / piece"),
		MOQText:             strp("MOQ 1,000 pieces"),
		LeadTimeText:        strp("15-20 days"),
		Images:              []string{"https://sc01.alicdn.com/a.jpg", "", "https://sc01.alicdn.com/b.jpg", "https://sc01.alicdn.com/a.jpg"},
		SupplierName:        strp("  Yiwu Homeware Co., Ltd.  "),
		SupplierRating:      f64p(4.8),
		SupplierReviewCount: intp(150),
		CategoryTrail:       []string{"Home & Garden", "Drinkware"},
		CapturedAt:          capturedAt,
	}

	got := Normalize(raw)

	assert.Equal(t, MarketplaceAlibaba, got.Marketplace)
	assert.Equal(t, raw.SourceURL, got.SourceURL)
	assert.Equal(t, "Insulated Water Bottle", got.Name)
	require.NotNil(t, got.Description)

	require.NotNil(t, got.PriceMin)
	require.NotNil(t, got.PriceMax)
	require.NotNil(t, got.Currency)
	assert.Equal(t, 2.50, *got.PriceMin)
	assert.Equal(t, 4.00, *got.PriceMax)
	assert.Equal(t, "USD", *got.Currency)

	require.NotNil(t, got.MOQ)
	assert.Equal(t, 1000, *got.MOQ)
	require.NotNil(t, got.LeadTimeDays)
	assert.Equal(t, 18, *got.LeadTimeDays)

	assert.Equal(t, []string{"https://sc01.alicdn.com/a.jpg", "https://sc01.alicdn.com/b.jpg"}, got.Images)
	require.NotNil(t, got.SupplierName)
	assert.Equal(t, "Yiwu Homeware Co., Ltd.", *got.SupplierName)
	assert.Equal(t, []string{"Home & Garden", "Drinkware"}, got.CategoryTrail)
	assert.Equal(t, capturedAt, got.CapturedAt)

	assert.Nil(t, got.PackagingLengthCm)
	assert.Nil(t, got.PackagingWidthCm)
	assert.Nil(t, got.PackagingHeightCm)
	assert.Nil(t, got.PackagingWeightKg)

	assert.Equal(t, 100, got.Quality.Overall)
	assert.Empty(t, got.Quality.Reasons)
}

func TestNormalizeSparseListing(t *testing.T) {
	raw := RawScrapedProduct{
		Marketplace: MarketplaceAlibaba,
		SourceURL:   "https://www.alibaba.com/product-detail/widget_200.html",
		Title:       "Widget",
	}

	got := Normalize(raw)

	assert.Equal(t, "Widget", got.Name)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.PriceMin)
	assert.Nil(t, got.PriceMax)
	assert.Nil(t, got.Currency)
	assert.Nil(t, got.MOQ)
	assert.Nil(t, got.LeadTimeDays)
	assert.Nil(t, got.SupplierName)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)
	assert.NotNil(t, got.CategoryTrail)
	assert.Empty(t, got.CategoryTrail)

	assert.Less(t, got.Quality.Overall, 50)
	assert.ElementsMatch(t, []string{
		ReasonMissingImagery,
		ReasonShortDescription,
		ReasonMissingRating,
	}, got.Quality.Reasons)
}

func TestNormalizePrefersStructuredPrice(t *testing.T) {
	raw := RawScrapedProduct{
		Title:     "Widget",
		PriceMin:  f64p(1.25),
		PriceMax:  f64p(1.75),
		Currency:  strp("EUR"),
		PriceText: strp("USD 99 - 120"),
	}

	got := Normalize(raw)

	require.NotNil(t, got.PriceMin)
	assert.Equal(t, 1.25, *got.PriceMin)
	assert.Equal(t, 1.75, *got.PriceMax)
	assert.Equal(t, "EUR", *got.Currency)
}

func TestNormalizeFallsBackToPriceText(t *testing.T) {
	raw := RawScrapedProduct{
		Title:     "Widget",
		PriceText: strp("USD 10.567 - 12.333"),
	}

	got := Normalize(raw)

	require.NotNil(t, got.PriceMin)
	assert.Equal(t, 10.57, *got.PriceMin)
	assert.Equal(t, 12.33, *got.PriceMax)
	assert.Equal(t, "USD", *got.Currency)
}

func TestNormalizePrefersStructuredMOQ(t *testing.T) {
	raw := RawScrapedProduct{
		Title:   "Widget",
		MOQ:     intp(250),
		MOQText: strp("500 pieces"),
	}

	got := Normalize(raw)

	require.NotNil(t, got.MOQ)
	assert.Equal(t, 250, *got.MOQ)
}

func TestNormalizeEmptyDescriptionBecomesNil(t *testing.T) {
	raw := RawScrapedProduct{
		Title:       "Widget",
		Description: strp("   \n\t  "),
	}

	got := Normalize(raw)

	assert.Nil(t, got.Description)
}

func TestNormalizeIsTotal(t *testing.T) {
	assert.NotPanics(t, func() {
		got := Normalize(RawScrapedProduct{})
		assert.NotNil(t, got.Images)
		assert.NotNil(t, got.CategoryTrail)
		assert.NotNil(t, got.Quality.Reasons)
	})
}
