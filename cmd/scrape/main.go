package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sourcing/internal/config"
	"sourcing/internal/core/alibaba"
	"sourcing/internal/core/product"
)

// Scrapes a query and writes normalized products as NDJSON to stdout.
// No database required; useful for selector debugging and piping into
// other tools.
func main() {
	query := flag.String("query", "", "search query")
	sourceURL := flag.String("url", "", "scrape a single detail page instead of searching")
	max := flag.Int("max", 0, "max products (default from SCRAPER_MAX_RESULTS)")
	flag.Parse()

	if *query == "" && *sourceURL == "" {
		log.Fatal("either -query or -url is required")
	}

	cfg := config.Load()
	if *max <= 0 {
		*max = cfg.ScraperMaxResults
	}

	selectors, err := alibaba.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		log.Fatalf("load selectors: %v", err)
	}
	scraper := alibaba.New(selectors, cfg.ScraperHeadless, cfg.ScraperProxyURL)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	enc := json.NewEncoder(os.Stdout)

	if *sourceURL != "" {
		res, err := scraper.ScrapeByURL(ctx, *sourceURL)
		if err != nil {
			log.Fatalf("scrape: %v", err)
		}
		if res.Product == nil {
			for _, e := range res.Errors {
				log.Printf("error: %s: %s", e.URL, e.Message)
			}
			os.Exit(1)
		}
		_ = enc.Encode(product.Normalize(*res.Product))
		return
	}

	res, err := scraper.Run(ctx, alibaba.ScrapeJobOptions{
		Marketplace: product.MarketplaceAlibaba,
		Query:       *query,
		MaxResults:  *max,
	})
	if err != nil {
		log.Fatalf("scrape: %v", err)
	}
	for _, raw := range res.Products {
		_ = enc.Encode(product.Normalize(raw))
	}
	for _, e := range res.Errors {
		log.Printf("error: %s: %s", e.URL, e.Message)
	}
	if len(res.Products) == 0 {
		os.Exit(1)
	}
}
