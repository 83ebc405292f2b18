package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"sourcing/internal/core/alibaba"
	"sourcing/internal/core/job"
	"sourcing/internal/core/product"
	"sourcing/internal/logger"
)

const TaskTypeImport = "import:scrape"

const importQueue = "imports"

var (
	// ErrDuplicateProduct refuses a URL import whose normalized source
	// URL is already present in the product table.
	ErrDuplicateProduct = errors.New("product already imported for this source url")

	// ErrInvalidSourceURL rejects URLs that are not http(s) marketplace
	// detail pages.
	ErrInvalidSourceURL = errors.New("source url must be an http(s) alibaba.com link")
)

// Scraper is the browser-driving side of the pipeline.
type Scraper interface {
	Run(ctx context.Context, opts alibaba.ScrapeJobOptions) (*alibaba.ScrapeJobResult, error)
	ScrapeByURL(ctx context.Context, productURL string) (*alibaba.URLScrapeResult, error)
}

// JobStore is the persistence side: job rows plus bulk product inserts.
type JobStore interface {
	StartJob(ctx context.Context, marketplace product.Marketplace, query, sourceURL string, maxResults int) (string, error)
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID, message string) error
	CountBySourceURL(ctx context.Context, sourceURL string) (int64, error)
	InsertProducts(ctx context.Context, jobID string, records []ProductRecord) ([]string, error)
}

// Enricher generates merchandising copy for a normalized product.
type Enricher interface {
	GenerateDescription(ctx context.Context, p product.NormalizedProduct) (string, error)
}

// ImageMirror re-hosts marketplace image URLs and returns the stable
// replacements, falling back to the originals per image on failure.
type ImageMirror interface {
	Mirror(ctx context.Context, jobID string, urls []string) []string
}

// JobTracker keeps the redis status snapshot in step with a run.
// Satisfied by *job.JobService.
type JobTracker interface {
	InitPending(ctx context.Context, snapshot job.Job) error
	SetRunning(ctx context.Context, jobID, storeJobID string) error
	SetCompleted(ctx context.Context, jobID string, inserted, errorCount int) error
	SetFailed(ctx context.Context, jobID, message string) error
}

// TaskEnqueuer pushes work onto the queue. Satisfied by *tasks.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, queue string, maxRetries int) error
}

// ProductRecord is one scraped product ready for persistence.
type ProductRecord struct {
	Raw                  product.RawScrapedProduct
	Normalized           product.NormalizedProduct
	GeneratedDescription *string
}

// Report summarizes a finished import run.
type Report struct {
	JobID       string                `json:"jobId"`
	StoreJobID  string                `json:"storeJobId"`
	Inserted    int                   `json:"inserted"`
	InsertedIDs []string              `json:"insertedIds,omitempty"`
	Errors      []alibaba.ScrapeError `json:"errors"`
	Duration    time.Duration         `json:"durationMs"`
}

// taskPayload travels through the queue. SourceURL and Query are
// mutually exclusive.
type taskPayload struct {
	JobID      string `json:"job_id"`
	Query      string `json:"query,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Service orchestrates import runs end to end: scrape, normalize,
// enrich, persist, and keep both the database row and the redis
// snapshot in sync. A database job row is never left in "running".
type Service struct {
	log        *logger.Logger
	store      JobStore
	scraper    Scraper
	tasks      TaskEnqueuer
	jobs       JobTracker
	enricher   Enricher
	mirror     ImageMirror
	metrics    *Metrics
	maxRetries int
	maxResults int
}

type ServiceOptions struct {
	Store      JobStore
	Scraper    Scraper
	Tasks      TaskEnqueuer
	Jobs       JobTracker
	Enricher   Enricher
	Mirror     ImageMirror
	Metrics    *Metrics
	MaxRetries int
	MaxResults int
}

func NewService(opts ServiceOptions) *Service {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	return &Service{
		log:        logger.New("ImportService"),
		store:      opts.Store,
		scraper:    opts.Scraper,
		tasks:      opts.Tasks,
		jobs:       opts.Jobs,
		enricher:   opts.Enricher,
		mirror:     opts.Mirror,
		metrics:    opts.Metrics,
		maxRetries: opts.MaxRetries,
		maxResults: opts.MaxResults,
	}
}

func (s *Service) Metrics() *Metrics { return s.metrics }

// EnqueueQuery queues a query-driven import and returns the API job id.
func (s *Service) EnqueueQuery(ctx context.Context, query string, maxResults int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}
	jobID := uuid.NewString()
	payload := taskPayload{JobID: jobID, Query: query, MaxResults: maxResults}
	if err := s.enqueue(ctx, payload, job.Job{JobID: jobID, Marketplace: string(product.MarketplaceAlibaba), Query: query, MaxResults: maxResults}); err != nil {
		return "", err
	}
	return jobID, nil
}

// EnqueueURL queues a single-URL import. The URL is validated and
// dup-checked up front so the caller gets an immediate refusal instead
// of a failed job.
func (s *Service) EnqueueURL(ctx context.Context, rawURL string) (string, error) {
	sourceURL, err := NormalizeSourceURL(rawURL)
	if err != nil {
		return "", err
	}
	count, err := s.store.CountBySourceURL(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("duplicate check: %w", err)
	}
	if count > 0 {
		return "", ErrDuplicateProduct
	}

	jobID := uuid.NewString()
	payload := taskPayload{JobID: jobID, SourceURL: sourceURL}
	if err := s.enqueue(ctx, payload, job.Job{JobID: jobID, Marketplace: string(product.MarketplaceAlibaba), SourceURL: sourceURL, MaxResults: 1}); err != nil {
		return "", err
	}
	return jobID, nil
}

func (s *Service) enqueue(ctx context.Context, payload taskPayload, snapshot job.Job) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := s.jobs.InitPending(ctx, snapshot); err != nil {
		return fmt.Errorf("init job snapshot: %w", err)
	}
	if err := s.tasks.Enqueue(asynq.NewTask(TaskTypeImport, b), importQueue, s.maxRetries); err != nil {
		return fmt.Errorf("enqueue import task: %w", err)
	}
	s.log.Info().Str("job_id", payload.JobID).Str("query", payload.Query).Str("source_url", payload.SourceURL).Msg("import enqueued")
	return nil
}

// HandleImportTask is the asynq worker entrypoint.
func (s *Service) HandleImportTask(ctx context.Context, task *asynq.Task) error {
	var payload taskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode import task: %w", err)
	}
	var err error
	if payload.SourceURL != "" {
		_, err = s.RunURLJob(ctx, payload.JobID, payload.SourceURL)
	} else {
		_, err = s.RunQueryJob(ctx, payload.JobID, payload.Query, payload.MaxResults)
	}
	return err
}

// RunQueryJob executes one query-driven import run. Item-level scrape
// failures are tolerated as long as at least one product lands; a run
// with zero products is a failed job.
func (s *Service) RunQueryJob(ctx context.Context, jobID, query string, maxResults int) (*Report, error) {
	start := time.Now()
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	storeJobID, err := s.store.StartJob(ctx, product.MarketplaceAlibaba, query, "", maxResults)
	if err != nil {
		_ = s.jobs.SetFailed(ctx, jobID, err.Error())
		s.metrics.ObserveJob("failed", 0, 0, time.Since(start).Seconds())
		return nil, fmt.Errorf("start import job: %w", err)
	}
	_ = s.jobs.SetRunning(ctx, jobID, storeJobID)

	res, err := s.scraper.Run(ctx, alibaba.ScrapeJobOptions{
		Marketplace: product.MarketplaceAlibaba,
		Query:       query,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, s.fail(ctx, jobID, storeJobID, start, 0, fmt.Errorf("scrape run: %w", err))
	}
	if len(res.Products) == 0 {
		msg := "scrape produced no products"
		if len(res.Errors) > 0 {
			msg = fmt.Sprintf("scrape produced no products: %s", res.Errors[0].Message)
		}
		return nil, s.fail(ctx, jobID, storeJobID, start, len(res.Errors), errors.New(msg))
	}

	records := s.buildRecords(ctx, storeJobID, res.Products)
	ids, err := s.store.InsertProducts(ctx, storeJobID, records)
	if err != nil {
		return nil, s.fail(ctx, jobID, storeJobID, start, len(res.Errors), fmt.Errorf("insert products: %w", err))
	}

	if err := s.store.CompleteJob(ctx, storeJobID); err != nil {
		return nil, s.fail(ctx, jobID, storeJobID, start, len(res.Errors), fmt.Errorf("complete import job: %w", err))
	}
	_ = s.jobs.SetCompleted(ctx, jobID, len(ids), len(res.Errors))
	s.metrics.ObserveJob("completed", len(ids), len(res.Errors), time.Since(start).Seconds())

	s.log.Info().Str("job_id", jobID).Str("store_job_id", storeJobID).Int("inserted", len(ids)).Int("errors", len(res.Errors)).Msg("import completed")
	return &Report{
		JobID:       jobID,
		StoreJobID:  storeJobID,
		Inserted:    len(ids),
		InsertedIDs: ids,
		Errors:      res.Errors,
		Duration:    time.Since(start),
	}, nil
}

// RunURLJob imports a single detail page. Validation and the duplicate
// check run again here because the worker cannot trust that the task
// came through EnqueueURL.
func (s *Service) RunURLJob(ctx context.Context, jobID, rawURL string) (*Report, error) {
	start := time.Now()

	sourceURL, err := NormalizeSourceURL(rawURL)
	if err != nil {
		_ = s.jobs.SetFailed(ctx, jobID, err.Error())
		s.metrics.ObserveJob("failed", 0, 0, time.Since(start).Seconds())
		return nil, err
	}
	count, err := s.store.CountBySourceURL(ctx, sourceURL)
	if err != nil {
		_ = s.jobs.SetFailed(ctx, jobID, err.Error())
		s.metrics.ObserveJob("failed", 0, 0, time.Since(start).Seconds())
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if count > 0 {
		_ = s.jobs.SetFailed(ctx, jobID, ErrDuplicateProduct.Error())
		s.metrics.ObserveJob("refused", 0, 0, time.Since(start).Seconds())
		return nil, ErrDuplicateProduct
	}

	storeJobID, err := s.store.StartJob(ctx, product.MarketplaceAlibaba, "", sourceURL, 1)
	if err != nil {
		_ = s.jobs.SetFailed(ctx, jobID, err.Error())
		s.metrics.ObserveJob("failed", 0, 0, time.Since(start).Seconds())
		return nil, fmt.Errorf("start import job: %w", err)
	}
	_ = s.jobs.SetRunning(ctx, jobID, storeJobID)

	res, err := s.scraper.ScrapeByURL(ctx, sourceURL)
	if err != nil {
		return nil, s.fail(ctx, jobID, storeJobID, start, 0, fmt.Errorf("scrape url: %w", err))
	}
	if res.Product == nil {
		msg := "scrape produced no product"
		if len(res.Errors) > 0 {
			msg = res.Errors[0].Message
		}
		return nil, s.fail(ctx, jobID, storeJobID, start, len(res.Errors), errors.New(msg))
	}

	records := s.buildRecords(ctx, storeJobID, []product.RawScrapedProduct{*res.Product})
	ids, err := s.store.InsertProducts(ctx, storeJobID, records)
	if err != nil {
		return nil, s.fail(ctx, jobID, storeJobID, start, len(res.Errors), fmt.Errorf("insert products: %w", err))
	}

	if err := s.store.CompleteJob(ctx, storeJobID); err != nil {
		return nil, s.fail(ctx, jobID, storeJobID, start, len(res.Errors), fmt.Errorf("complete import job: %w", err))
	}
	_ = s.jobs.SetCompleted(ctx, jobID, len(ids), len(res.Errors))
	s.metrics.ObserveJob("completed", len(ids), len(res.Errors), time.Since(start).Seconds())

	return &Report{
		JobID:       jobID,
		StoreJobID:  storeJobID,
		Inserted:    len(ids),
		InsertedIDs: ids,
		Errors:      res.Errors,
		Duration:    time.Since(start),
	}, nil
}

// Preview scrapes and normalizes without persisting anything.
func (s *Service) Preview(ctx context.Context, query string, maxResults int) ([]product.NormalizedProduct, []alibaba.ScrapeError, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}
	res, err := s.scraper.Run(ctx, alibaba.ScrapeJobOptions{
		Marketplace: product.MarketplaceAlibaba,
		Query:       query,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, nil, err
	}
	normalized := make([]product.NormalizedProduct, 0, len(res.Products))
	for _, raw := range res.Products {
		normalized = append(normalized, product.Normalize(raw))
	}
	return normalized, res.Errors, nil
}

// fail marks both the database row and the snapshot failed, exactly
// once, and propagates the original error.
func (s *Service) fail(ctx context.Context, jobID, storeJobID string, start time.Time, scrapeErrors int, cause error) error {
	if err := s.store.FailJob(ctx, storeJobID, cause.Error()); err != nil {
		s.log.Error().Err(err).Str("store_job_id", storeJobID).Msg("failed to mark job failed")
	}
	_ = s.jobs.SetFailed(ctx, jobID, cause.Error())
	s.metrics.ObserveJob("failed", 0, scrapeErrors, time.Since(start).Seconds())
	return cause
}

// buildRecords normalizes each capture and runs the optional mirror and
// enrich steps. Enrichment failures degrade to a missing generated
// description rather than failing the run.
func (s *Service) buildRecords(ctx context.Context, storeJobID string, raws []product.RawScrapedProduct) []ProductRecord {
	records := make([]ProductRecord, 0, len(raws))
	for _, raw := range raws {
		normalized := product.Normalize(raw)

		if s.mirror != nil && len(normalized.Images) > 0 {
			normalized.Images = s.mirror.Mirror(ctx, storeJobID, normalized.Images)
		}

		rec := ProductRecord{Raw: raw, Normalized: normalized}
		// Only products without a usable supplier description get
		// generated copy; existing descriptions are never replaced.
		if s.enricher != nil && !normalized.Quality.Metrics.HasDescription {
			if text, err := s.enricher.GenerateDescription(ctx, normalized); err != nil {
				s.log.Warn().Err(err).Str("source_url", normalized.SourceURL).Msg("description generation failed")
			} else if text != "" {
				rec.GeneratedDescription = &text
			}
		}
		records = append(records, rec)
	}
	return records
}

// NormalizeSourceURL reduces a detail-page URL to scheme, host, and
// path so tracking parameters cannot defeat duplicate detection.
func NormalizeSourceURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidSourceURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidSourceURL
	}
	host := strings.ToLower(u.Hostname())
	if host != "alibaba.com" && !strings.HasSuffix(host, ".alibaba.com") {
		return "", ErrInvalidSourceURL
	}
	return u.Scheme + "://" + u.Host + u.Path, nil
}
