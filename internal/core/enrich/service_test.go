package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sourcing/internal/core/product"
)

func strp(s string) *string   { return &s }
func f64p(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }

func TestListingDataIncludesOnlyPresentFields(t *testing.T) {
	p := product.NormalizedProduct{
		Name:         "Insulated Water Bottle",
		Description:  strp("Double wall vacuum bottle."),
		Currency:     strp("USD"),
		PriceMin:     f64p(2.5),
		PriceMax:     f64p(4),
		MOQ:          intp(1000),
		LeadTimeDays: intp(18),
		SupplierName: strp("Yiwu Homeware Co., Ltd."),
		CategoryTrail: []string{
			"Home & Garden", "Drinkware",
		},
	}

	got := listingData(p)

	assert.Contains(t, got, "Name: Insulated Water Bottle")
	assert.Contains(t, got, "Supplier description: Double wall vacuum bottle.")
	assert.Contains(t, got, "Price: USD 2.50 - 4.00")
	assert.Contains(t, got, "Minimum order quantity: 1000")
	assert.Contains(t, got, "Lead time: 18 days")
	assert.Contains(t, got, "Supplier: Yiwu Homeware Co., Ltd.")
	assert.Contains(t, got, "Category: Home & Garden > Drinkware")
}

func TestListingDataSparseProduct(t *testing.T) {
	got := listingData(product.NormalizedProduct{Name: "Widget"})

	assert.Equal(t, "Name: Widget\n", got)
}
