package alibaba

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sourcing/internal/core/product"
	"sourcing/internal/utils/markdown"
)

// extractDetail pulls every product field out of a parsed detail page.
// Extraction never fails: fields the markup does not expose come back
// nil and the normalizer deals with the gaps.
func extractDetail(doc *goquery.Document, sourceURL string, sel Selectors, capturedAt time.Time) product.RawScrapedProduct {
	raw := product.RawScrapedProduct{
		Marketplace: product.MarketplaceAlibaba,
		SourceURL:   sourceURL,
		Images:      []string{},
		CapturedAt:  capturedAt,
	}

	if title := firstText(doc, sel.Title); title != nil {
		raw.Title = *title
	}

	raw.Description = firstText(doc, sel.Description)
	if html := firstHTML(doc, sel.Description); html != nil {
		if md := markdown.ConvertDescriptionHTML(*html); md != "" {
			raw.DescriptionMarkdown = &md
		}
	}

	raw.PriceText = firstText(doc, sel.Price)
	raw.MOQText = firstText(doc, sel.MOQ)
	raw.LeadTimeText = firstText(doc, sel.LeadTime)
	raw.SupplierName = firstText(doc, sel.SupplierName)

	if ratingText := firstText(doc, sel.SupplierRating); ratingText != nil {
		raw.SupplierRating = product.ParseSupplierRating(*ratingText)
		raw.SupplierReviewCount = product.ParseSupplierReviewCount(*ratingText)
	}

	raw.Images = collectImages(doc, sel.Images)
	raw.CategoryTrail = collectBreadcrumbs(doc, sel.Breadcrumbs)

	return raw
}

// firstText tries each selector in order and returns the first
// non-empty trimmed text.
func firstText(doc *goquery.Document, selectors []string) *string {
	for _, s := range selectors {
		text := strings.TrimSpace(doc.Find(s).First().Text())
		if text != "" {
			return &text
		}
	}
	return nil
}

func firstHTML(doc *goquery.Document, selectors []string) *string {
	for _, s := range selectors {
		node := doc.Find(s).First()
		if node.Length() == 0 {
			continue
		}
		html, err := node.Html()
		if err != nil || strings.TrimSpace(html) == "" {
			continue
		}
		return &html
	}
	return nil
}

// collectImages gathers img srcs in document order, deduplicated on
// first appearance so the primary image stays first.
func collectImages(doc *goquery.Document, selectors []string) []string {
	seen := make(map[string]struct{})
	images := []string{}
	for _, s := range selectors {
		doc.Find(s).Each(func(_ int, img *goquery.Selection) {
			src, ok := img.Attr("src")
			if !ok {
				return
			}
			src = strings.TrimSpace(src)
			if src == "" {
				return
			}
			if strings.HasPrefix(src, "//") {
				src = "https:" + src
			}
			if _, dup := seen[src]; dup {
				return
			}
			seen[src] = struct{}{}
			images = append(images, src)
		})
	}
	return images
}

func collectBreadcrumbs(doc *goquery.Document, selectors []string) []string {
	trail := []string{}
	for _, s := range selectors {
		doc.Find(s).Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				trail = append(trail, text)
			}
		})
		if len(trail) > 0 {
			break
		}
	}
	return trail
}
