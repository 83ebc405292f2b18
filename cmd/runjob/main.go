package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"sourcing/internal/config"
	"sourcing/internal/core/alibaba"
	"sourcing/internal/core/enrich"
	"sourcing/internal/core/importer"
	"sourcing/internal/core/job"
	"sourcing/internal/platform/eino"
	rds "sourcing/internal/platform/redis"
	supaplatform "sourcing/internal/platform/supabase"
	tasks "sourcing/internal/platform/tasks"
)

// Runs one import job end to end in the foreground, without the HTTP
// service or queue worker. The same code path the worker executes.
func main() {
	query := flag.String("query", "", "search query")
	sourceURL := flag.String("url", "", "import a single detail page instead of searching")
	max := flag.Int("max", 0, "max products (default from SCRAPER_MAX_RESULTS)")
	flag.Parse()

	if *query == "" && *sourceURL == "" {
		log.Fatal("either -query or -url is required")
	}

	cfg := config.Load()

	redisSvc, err := rds.New(rds.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	supaClient, err := supaplatform.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	selectors, err := alibaba.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		log.Fatalf("load selectors: %v", err)
	}

	var enricher importer.Enricher
	if cfg.GeminiAPIKey != "" {
		einoSvc, err := eino.NewService(eino.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.DefaultLLMModel,
		})
		if err != nil {
			log.Fatalf("init eino: %v", err)
		}
		enricher = enrich.New(einoSvc)
	}

	var mirror importer.ImageMirror
	if cfg.MirrorImages {
		mirror = importer.NewImageService(supaClient, cfg.SupabaseURL, cfg.SupabaseBucket)
	}

	svc := importer.NewService(importer.ServiceOptions{
		Store:      importer.NewStore(supaClient),
		Scraper:    alibaba.New(selectors, cfg.ScraperHeadless, cfg.ScraperProxyURL),
		Tasks:      tasks.New(redisSvc),
		Jobs:       job.NewJobService(redisSvc),
		Enricher:   enricher,
		Mirror:     mirror,
		MaxRetries: cfg.TaskMaxRetries,
		MaxResults: cfg.ScraperMaxResults,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	jobID := uuid.NewString()

	var report *importer.Report
	if *sourceURL != "" {
		report, err = svc.RunURLJob(ctx, jobID, *sourceURL)
	} else {
		report, err = svc.RunQueryJob(ctx, jobID, *query, *max)
	}
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("job %s (store row %s): inserted %d products, %d scrape errors in %s",
		report.JobID, report.StoreJobID, report.Inserted, len(report.Errors), report.Duration)
}
