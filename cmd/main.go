package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sourcing/internal/config"
	"sourcing/internal/core/alibaba"
	"sourcing/internal/core/enrich"
	"sourcing/internal/core/importer"
	"sourcing/internal/core/job"
	"sourcing/internal/logger"
	"sourcing/internal/platform/eino"
	rds "sourcing/internal/platform/redis"
	supaplatform "sourcing/internal/platform/supabase"
	tasks "sourcing/internal/platform/tasks"
	"sourcing/internal/server"
	"sourcing/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[sourcing] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{"imports": 1},
	})

	// Supabase-backed persistence
	supaClient, err := supaplatform.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	store := importer.NewStore(supaClient)

	// Scraper
	selectors, err := alibaba.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		log.Fatalf("failed to load selectors: %v", err)
	}
	scraperSvc := alibaba.New(selectors, cfg.ScraperHeadless, cfg.ScraperProxyURL)

	// Optional enrichment: only wired when a Gemini key is configured.
	var enricher importer.Enricher
	if cfg.GeminiAPIKey != "" {
		einoSvc, err := eino.NewService(eino.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.DefaultLLMModel,
		})
		if err != nil {
			log.Fatalf("failed to initialize Eino service: %v", err)
		}
		enricher = enrich.New(einoSvc)
	}

	// Optional image mirroring into Supabase storage.
	var mirror importer.ImageMirror
	if cfg.MirrorImages {
		mirror = importer.NewImageService(supaClient, cfg.SupabaseURL, cfg.SupabaseBucket)
	}

	jobSvc := job.NewJobService(redisSvc)
	importSvc := importer.NewService(importer.ServiceOptions{
		Store:      store,
		Scraper:    scraperSvc,
		Tasks:      taskClient,
		Jobs:       jobSvc,
		Enricher:   enricher,
		Mirror:     mirror,
		MaxRetries: cfg.TaskMaxRetries,
		MaxResults: cfg.ScraperMaxResults,
	})

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(importer.TaskTypeImport, importSvc.HandleImportTask)

	_, workerCancel := context.WithCancel(context.Background())
	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// Metrics listener on its own port
	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(importSvc.Metrics().Registry(), promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
			log.Printf("[metrics] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "Sourcing Engine",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Job:      jobSvc,
		Importer: importSvc,
		Redis:    redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after all services are initialized
	go func() {
		time.Sleep(5 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		workerCancel()
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
