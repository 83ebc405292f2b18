package alibaba

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/internal/core/product"
)

func TestSearchURL(t *testing.T) {
	got := SearchURL("water bottle")
	assert.Equal(t, "https://www.alibaba.com/trade/search?fsb=y&IndexArea=product_en&SearchText=water+bottle", got)
}

func TestFilterProductURLs(t *testing.T) {
	hrefs := []string{
		"https://www.alibaba.com/product-detail/a_1.html?spm=tracking",
		"",
		"//www.alibaba.com/product-detail/b_2.html",
		"https://www.alibaba.com/product-detail/c_3.html",
		"https://www.alibaba.com/product-detail/d_4.html",
	}

	got := filterProductURLs(hrefs, 3)

	assert.Equal(t, []string{
		"https://www.alibaba.com/product-detail/a_1.html",
		"https://www.alibaba.com/product-detail/b_2.html",
		"https://www.alibaba.com/product-detail/c_3.html",
	}, got)
}

func TestCollectSearchResultURLsCapsAnchors(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<a class="list-no-v2__product-title" href="https://www.alibaba.com/product-detail/item_%d.html"></a>`, i)
	}
	b.WriteString("</body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	require.NoError(t, err)

	got := collectSearchResultURLs(doc, DefaultSelectors().SearchResultLinks, 50)

	// 30 anchors on the page, but only the first 20 are considered.
	assert.Len(t, got, 20)
	assert.Equal(t, "https://www.alibaba.com/product-detail/item_0.html", got[0])
	assert.Equal(t, "https://www.alibaba.com/product-detail/item_19.html", got[19])
}

func TestCollectSearchResultURLsEmptyPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	got := collectSearchResultURLs(doc, DefaultSelectors().SearchResultLinks, 5)
	assert.Empty(t, got)
}

func TestScrapeEachIsolatesItemFailures(t *testing.T) {
	urls := []string{
		"https://www.alibaba.com/product-detail/a_1.html",
		"https://www.alibaba.com/product-detail/b_2.html",
		"https://www.alibaba.com/product-detail/c_3.html",
	}
	attempted := []string{}

	products, scrapeErrors := scrapeEach(context.Background(), urls, func(u string) (*product.RawScrapedProduct, error) {
		attempted = append(attempted, u)
		if strings.Contains(u, "b_2") {
			return nil, errors.New("selector timeout")
		}
		return &product.RawScrapedProduct{Marketplace: product.MarketplaceAlibaba, SourceURL: u}, nil
	})

	// The middle failure is recorded and the last item is still scraped.
	assert.Equal(t, urls, attempted)
	require.Len(t, products, 2)
	assert.Equal(t, urls[0], products[0].SourceURL)
	assert.Equal(t, urls[2], products[1].SourceURL)
	require.Len(t, scrapeErrors, 1)
	assert.Equal(t, urls[1], scrapeErrors[0].URL)
	assert.Equal(t, "selector timeout", scrapeErrors[0].Message)
}

func TestScrapeEachStopsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	urls := []string{
		"https://www.alibaba.com/product-detail/a_1.html",
		"https://www.alibaba.com/product-detail/b_2.html",
		"https://www.alibaba.com/product-detail/c_3.html",
	}
	attempted := []string{}

	products, scrapeErrors := scrapeEach(ctx, urls, func(u string) (*product.RawScrapedProduct, error) {
		attempted = append(attempted, u)
		cancel()
		return &product.RawScrapedProduct{Marketplace: product.MarketplaceAlibaba, SourceURL: u}, nil
	})

	// Cancellation lands between items: the first finishes, the second
	// records the cancellation, the third is never attempted.
	assert.Equal(t, urls[:1], attempted)
	assert.Len(t, products, 1)
	require.Len(t, scrapeErrors, 1)
	assert.Equal(t, urls[1], scrapeErrors[0].URL)
	assert.Contains(t, scrapeErrors[0].Message, "context canceled")
}

func TestScrapeEachCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	products, scrapeErrors := scrapeEach(ctx, []string{"https://www.alibaba.com/product-detail/a_1.html"}, func(u string) (*product.RawScrapedProduct, error) {
		t.Fatal("no item should be scraped after cancellation")
		return nil, nil
	})

	assert.Empty(t, products)
	require.Len(t, scrapeErrors, 1)
	assert.Contains(t, scrapeErrors[0].Message, "context canceled")
}
