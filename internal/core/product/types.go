package product

import "time"

// Marketplace identifies the external source site a listing came from.
type Marketplace string

const MarketplaceAlibaba Marketplace = "alibaba"

// RawScrapedProduct is the untouched capture of one detail page. It is
// produced once per successfully scraped page and never mutated; the
// normalizer is its only consumer.
type RawScrapedProduct struct {
	Marketplace         Marketplace `json:"marketplace"`
	SourceURL           string      `json:"sourceUrl"`
	Title               string      `json:"title"`
	Description         *string     `json:"description,omitempty"`
	DescriptionMarkdown *string     `json:"descriptionMarkdown,omitempty"`
	PriceText           *string     `json:"priceText,omitempty"`
	Currency            *string     `json:"currency,omitempty"`
	PriceMin            *float64    `json:"priceMin,omitempty"`
	PriceMax            *float64    `json:"priceMax,omitempty"`
	MOQText             *string     `json:"moqText,omitempty"`
	MOQ                 *int        `json:"moq,omitempty"`
	LeadTimeText        *string     `json:"leadTimeText,omitempty"`
	Images              []string    `json:"images"`
	SupplierName        *string     `json:"supplierName,omitempty"`
	SupplierRating      *float64    `json:"supplierRating,omitempty"`
	SupplierReviewCount *int        `json:"supplierReviewCount,omitempty"`
	CategoryTrail       []string    `json:"categoryTrail,omitempty"`
	CapturedAt          time.Time   `json:"capturedAt"`
}

// NormalizedProduct is the canonical shape handed to the review queue.
// Field names on the wire match what the dashboard already consumes.
type NormalizedProduct struct {
	Marketplace         Marketplace  `json:"marketplace"`
	SourceURL           string       `json:"sourceUrl"`
	Name                string       `json:"name"`
	Description         *string      `json:"description"`
	PriceMin            *float64     `json:"priceMin"`
	PriceMax            *float64     `json:"priceMax"`
	Currency            *string      `json:"currency"`
	MOQ                 *int         `json:"moq"`
	LeadTimeDays        *int         `json:"leadTimeDays"`
	PackagingLengthCm   *float64     `json:"packagingLengthCm"`
	PackagingWidthCm    *float64     `json:"packagingWidthCm"`
	PackagingHeightCm   *float64     `json:"packagingHeightCm"`
	PackagingWeightKg   *float64     `json:"packagingWeightKg"`
	Images              []string     `json:"images"`
	SupplierName        *string      `json:"supplierName"`
	SupplierRating      *float64     `json:"supplierRating"`
	SupplierReviewCount *int         `json:"supplierReviewCount"`
	CategoryTrail       []string     `json:"categoryTrail"`
	CapturedAt          time.Time    `json:"capturedAt"`
	Quality             QualityScore `json:"quality"`
}

// QualityScore is a heuristic 0-100 rating of listing completeness.
type QualityScore struct {
	Overall int            `json:"overall"`
	Reasons []string       `json:"reasons"`
	Metrics QualityMetrics `json:"metrics"`
}

// QualityMetrics records which scoring signals were present.
type QualityMetrics struct {
	HasImages           bool     `json:"hasImages"`
	HasDescription      bool     `json:"hasDescription"`
	SupplierRating      *float64 `json:"supplierRating,omitempty"`
	SupplierReviewCount *int     `json:"supplierReviewCount,omitempty"`
}
