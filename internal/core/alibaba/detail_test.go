package alibaba

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailFixture = `
<html><body>
  <ul data-role="breadcrumb">
    <li> Home &amp; Garden </li>
    <li>Drinkware</li>
    <li></li>
  </ul>
  <h1 data-role="product-title"> Insulated Water Bottle 500ml </h1>
  <div data-role="price-wrapper"><span data-role="price">USD 2.50 - 4.00</span></div>
  <span data-role="moq">MOQ 1,000 pieces</span>
  <span data-role="lead-time">15-20 days</span>
  <a data-role="company-name"> Yiwu Homeware Co., Ltd. </a>
  <span data-role="supplier-rating">4.8/5 (150)</span>
  <img src="//sc01.alicdn.com/kf/a.jpg"/>
  <img src="https://sc01.alicdn.com/kf/b.jpg"/>
  <img src="https://sc01.alicdn.com/kf/a.jpg"/>
  <img src="https://cdn.other.com/tracking.gif"/>
  <div data-role="product-detail">
    <p>Double wall vacuum insulated bottle made of food grade 304 stainless steel.</p>
    <script>trackView()</script>
  </div>
</body></html>`

const fallbackFixture = `
<html><body>
  <h1> Fallback Widget </h1>
  <div class="Price--1x2ab">USD 9.99</div>
  <div class="MOQ--9zzzz">50 pieces</div>
  <div class="LeadTime--8yyyy">10 days</div>
  <div class="SupplierName--7xxxx">Shenzhen Widgets Ltd.</div>
  <div class="RatingScore--6wwww">4.1/5 (88)</div>
  <div id="J-rich-text-description"><p>Legacy layout description.</p></div>
</body></html>`

func parseFixture(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractDetailPrimarySelectors(t *testing.T) {
	capturedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := parseFixture(t, detailFixture)

	raw := extractDetail(doc, "https://www.alibaba.com/product-detail/bottle_100.html", DefaultSelectors(), capturedAt)

	assert.Equal(t, "Insulated Water Bottle 500ml", raw.Title)
	assert.Equal(t, "https://www.alibaba.com/product-detail/bottle_100.html", raw.SourceURL)
	assert.Equal(t, capturedAt, raw.CapturedAt)

	require.NotNil(t, raw.PriceText)
	assert.Equal(t, "USD 2.50 - 4.00", *raw.PriceText)
	require.NotNil(t, raw.MOQText)
	assert.Equal(t, "MOQ 1,000 pieces", *raw.MOQText)
	require.NotNil(t, raw.LeadTimeText)
	assert.Equal(t, "15-20 days", *raw.LeadTimeText)

	require.NotNil(t, raw.SupplierName)
	assert.Equal(t, "Yiwu Homeware Co., Ltd.", *raw.SupplierName)
	require.NotNil(t, raw.SupplierRating)
	assert.Equal(t, 4.8, *raw.SupplierRating)
	require.NotNil(t, raw.SupplierReviewCount)
	assert.Equal(t, 150, *raw.SupplierReviewCount)

	// alicdn images only, protocol-relative fixed up, doc order, deduped.
	assert.Equal(t, []string{
		"https://sc01.alicdn.com/kf/a.jpg",
		"https://sc01.alicdn.com/kf/b.jpg",
	}, raw.Images)

	assert.Equal(t, []string{"Home & Garden", "Drinkware"}, raw.CategoryTrail)

	require.NotNil(t, raw.Description)
	assert.Contains(t, *raw.Description, "Double wall vacuum insulated bottle")
	require.NotNil(t, raw.DescriptionMarkdown)
	assert.Contains(t, *raw.DescriptionMarkdown, "Double wall vacuum insulated bottle")
	assert.NotContains(t, *raw.DescriptionMarkdown, "trackView")
}

func TestExtractDetailFallbackSelectors(t *testing.T) {
	doc := parseFixture(t, fallbackFixture)

	raw := extractDetail(doc, "https://www.alibaba.com/product-detail/widget_200.html", DefaultSelectors(), time.Now())

	assert.Equal(t, "Fallback Widget", raw.Title)
	require.NotNil(t, raw.PriceText)
	assert.Equal(t, "USD 9.99", *raw.PriceText)
	require.NotNil(t, raw.MOQText)
	assert.Equal(t, "50 pieces", *raw.MOQText)
	require.NotNil(t, raw.LeadTimeText)
	assert.Equal(t, "10 days", *raw.LeadTimeText)
	require.NotNil(t, raw.SupplierName)
	assert.Equal(t, "Shenzhen Widgets Ltd.", *raw.SupplierName)
	require.NotNil(t, raw.SupplierRating)
	assert.Equal(t, 4.1, *raw.SupplierRating)
	require.NotNil(t, raw.Description)
	assert.Contains(t, *raw.Description, "Legacy layout description.")
}

func TestExtractDetailEmptyPage(t *testing.T) {
	doc := parseFixture(t, "<html><body></body></html>")

	raw := extractDetail(doc, "https://www.alibaba.com/product-detail/empty.html", DefaultSelectors(), time.Now())

	assert.Empty(t, raw.Title)
	assert.Nil(t, raw.Description)
	assert.Nil(t, raw.PriceText)
	assert.Nil(t, raw.MOQText)
	assert.Nil(t, raw.SupplierName)
	assert.Nil(t, raw.SupplierRating)
	assert.NotNil(t, raw.Images)
	assert.Empty(t, raw.Images)
	assert.Empty(t, raw.CategoryTrail)
}
