package alibaba

import (
	"time"

	"sourcing/internal/core/product"
)

// ScrapeJobOptions configure one scraping run.
type ScrapeJobOptions struct {
	Marketplace product.Marketplace `json:"marketplace"`
	Query       string              `json:"query"`
	MaxResults  int                 `json:"maxResults"`
	Headless    bool                `json:"headless"`
	ProxyURL    string              `json:"proxyUrl,omitempty"`
}

// ScrapeError records a single failed page without aborting the run.
type ScrapeError struct {
	URL       string    `json:"url"`
	Message   string    `json:"message"`
	Stack     *string   `json:"stack,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ScrapeJobResult is the outcome of a query-driven run. Products and
// Errors are independent: a run can carry both.
type ScrapeJobResult struct {
	Options  ScrapeJobOptions            `json:"options"`
	Products []product.RawScrapedProduct `json:"products"`
	Errors   []ScrapeError               `json:"errors"`
	Duration time.Duration               `json:"durationMs"`
}

// URLScrapeResult is the outcome of scraping one known detail page.
type URLScrapeResult struct {
	Product  *product.RawScrapedProduct `json:"product,omitempty"`
	Errors   []ScrapeError              `json:"errors"`
	Duration time.Duration              `json:"durationMs"`
}
