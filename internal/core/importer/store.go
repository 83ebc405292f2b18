package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	supa "github.com/antoineross/supabase-go"

	"sourcing/internal/core/product"
	"sourcing/internal/logger"
)

const (
	jobsTable     = "import_jobs"
	productsTable = "imported_products"
)

// Store persists import jobs and product rows through the Supabase
// REST layer. The dashboard reads the same tables, so column names are
// part of the contract.
type Store struct {
	client *supa.Client
	log    *logger.Logger
}

func NewStore(client *supa.Client) *Store {
	return &Store{client: client, log: logger.New("ImportStore")}
}

type jobRow struct {
	ID          string  `json:"id,omitempty"`
	Marketplace string  `json:"marketplace"`
	Query       *string `json:"query"`
	SourceURL   *string `json:"source_url,omitempty"`
	MaxResults  int     `json:"max_results"`
	Status      string  `json:"status"`
	StartedAt   string  `json:"started_at"`
	FinishedAt  *string `json:"finished_at,omitempty"`
	Error       *string `json:"error,omitempty"`
}

type jobUpdate struct {
	Status     string  `json:"status"`
	FinishedAt string  `json:"finished_at"`
	Error      *string `json:"error,omitempty"`
}

type productRow struct {
	JobID                string                    `json:"job_id"`
	Marketplace          string                    `json:"marketplace"`
	SourceURL            string                    `json:"source_url"`
	Name                 string                    `json:"name"`
	Description          *string                   `json:"description"`
	GeneratedDescription *string                   `json:"generated_description,omitempty"`
	PriceMin             *float64                  `json:"price_min"`
	PriceMax             *float64                  `json:"price_max"`
	Currency             *string                   `json:"currency"`
	MOQ                  *int                      `json:"moq"`
	LeadTimeDays         *int                      `json:"lead_time_days"`
	Images               []string                  `json:"images"`
	SupplierName         *string                   `json:"supplier_name"`
	SupplierRating       *float64                  `json:"supplier_rating"`
	SupplierReviewCount  *int                      `json:"supplier_review_count"`
	CategoryTrail        []string                  `json:"category_trail"`
	QualityOverall       int                       `json:"quality_overall"`
	QualityReasons       []string                  `json:"quality_reasons"`
	QualityMetrics       product.QualityMetrics    `json:"quality_metrics"`
	NormalizedPayload    product.NormalizedProduct `json:"normalized_payload"`
	RawPayload           product.RawScrapedProduct `json:"raw_payload"`
}

type idRow struct {
	ID string `json:"id"`
}

// StartJob inserts a running job row and returns its id.
func (s *Store) StartJob(ctx context.Context, marketplace product.Marketplace, query, sourceURL string, maxResults int) (string, error) {
	row := jobRow{
		Marketplace: string(marketplace),
		MaxResults:  maxResults,
		Status:      "running",
		StartedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if query != "" {
		row.Query = &query
	}
	if sourceURL != "" {
		row.SourceURL = &sourceURL
	}

	data, _, err := s.client.From(jobsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return "", fmt.Errorf("insert import job: %w", err)
	}

	var inserted []idRow
	if err := json.Unmarshal(data, &inserted); err != nil {
		return "", fmt.Errorf("decode import job row: %w", err)
	}
	if len(inserted) == 0 {
		return "", fmt.Errorf("insert import job: no row returned")
	}
	return inserted[0].ID, nil
}

// CompleteJob marks a job finished.
func (s *Store) CompleteJob(ctx context.Context, jobID string) error {
	update := jobUpdate{Status: "completed", FinishedAt: time.Now().UTC().Format(time.RFC3339)}
	if _, _, err := s.client.From(jobsTable).Update(update, "", "").Eq("id", jobID).Execute(); err != nil {
		return fmt.Errorf("complete import job: %w", err)
	}
	return nil
}

// FailJob marks a job failed with a message.
func (s *Store) FailJob(ctx context.Context, jobID, message string) error {
	update := jobUpdate{Status: "failed", FinishedAt: time.Now().UTC().Format(time.RFC3339), Error: &message}
	if _, _, err := s.client.From(jobsTable).Update(update, "", "").Eq("id", jobID).Execute(); err != nil {
		return fmt.Errorf("fail import job: %w", err)
	}
	return nil
}

// CountBySourceURL returns how many product rows already reference a
// normalized source URL.
func (s *Store) CountBySourceURL(ctx context.Context, sourceURL string) (int64, error) {
	_, count, err := s.client.From(productsTable).Select("id", "exact", true).Eq("source_url", sourceURL).Execute()
	if err != nil {
		return 0, fmt.Errorf("count products by source url: %w", err)
	}
	return count, nil
}

// InsertProducts bulk-inserts product records and returns the new row
// ids. An empty batch is a no-op.
func (s *Store) InsertProducts(ctx context.Context, jobID string, records []ProductRecord) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]productRow, 0, len(records))
	for _, rec := range records {
		p := rec.Normalized
		rows = append(rows, productRow{
			JobID:                jobID,
			Marketplace:          string(p.Marketplace),
			SourceURL:            p.SourceURL,
			Name:                 p.Name,
			Description:          p.Description,
			GeneratedDescription: rec.GeneratedDescription,
			PriceMin:             p.PriceMin,
			PriceMax:             p.PriceMax,
			Currency:             p.Currency,
			MOQ:                  p.MOQ,
			LeadTimeDays:         p.LeadTimeDays,
			Images:               p.Images,
			SupplierName:         p.SupplierName,
			SupplierRating:       p.SupplierRating,
			SupplierReviewCount:  p.SupplierReviewCount,
			CategoryTrail:        p.CategoryTrail,
			QualityOverall:       p.Quality.Overall,
			QualityReasons:       p.Quality.Reasons,
			QualityMetrics:       p.Quality.Metrics,
			NormalizedPayload:    p,
			RawPayload:           rec.Raw,
		})
	}

	data, _, err := s.client.From(productsTable).Insert(rows, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}

	var inserted []idRow
	if err := json.Unmarshal(data, &inserted); err != nil {
		return nil, fmt.Errorf("decode product rows: %w", err)
	}
	ids := make([]string, 0, len(inserted))
	for _, r := range inserted {
		ids = append(ids, r.ID)
	}
	s.log.Info().Str("job_id", jobID).Int("rows", len(ids)).Msg("products inserted")
	return ids, nil
}
