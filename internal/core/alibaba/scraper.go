package alibaba

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"sourcing/internal/core/product"
	"sourcing/internal/logger"
)

const (
	searchBaseURL      = "https://www.alibaba.com/trade/search"
	maxSearchAnchors   = 20
	defaultMaxResults  = 5
	navigationTimeout  = 60000
	readinessTimeout   = 10000
	settleFallbackWait = 2000
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Service drives a headless browser through marketplace search and
// detail pages and emits raw product captures.
type Service struct {
	log       *logger.Logger
	selectors Selectors
	headless  bool
	proxyURL  string
}

func New(selectors Selectors, headless bool, proxyURL string) *Service {
	return &Service{log: logger.New("AlibabaScraper"), selectors: selectors, headless: headless, proxyURL: proxyURL}
}

// session bundles the playwright driver, browser, and context so
// teardown always happens together, in reverse order of creation.
type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

func newSession(headless bool, proxyURL string) (*session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright run: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
		},
	}
	if proxyURL != "" {
		opts.Proxy = &playwright.Proxy{Server: proxyURL}
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new context: %w", err)
	}

	return &session{pw: pw, browser: browser, context: browserCtx}, nil
}

func (s *session) Close() {
	_ = s.context.Close()
	_ = s.browser.Close()
	_ = s.pw.Stop()
}

// Run executes a query-driven scrape: search, collect detail links,
// then scrape each detail page. A failed item is recorded and the run
// moves on; only failures before any page is reached abort the run.
func (s *Service) Run(ctx context.Context, opts ScrapeJobOptions) (*ScrapeJobResult, error) {
	start := time.Now()
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	result := &ScrapeJobResult{Options: opts, Products: []product.RawScrapedProduct{}, Errors: []ScrapeError{}}

	sess, err := newSession(s.headless, s.proxyURL)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	page, err := sess.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	target := SearchURL(opts.Query)
	s.log.Info().Str("query", opts.Query).Int("max", opts.MaxResults).Msg("search start")

	if _, err := page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeout),
	}); err != nil {
		return nil, fmt.Errorf("navigate search: %w", err)
	}
	s.waitForReady(page, s.selectors.SearchResultLinks)

	content, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("read search page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	urls := collectSearchResultURLs(doc, s.selectors.SearchResultLinks, opts.MaxResults)
	if len(urls) == 0 {
		s.log.Warn().Str("query", opts.Query).Msg("no product links detected on search results page")
	} else {
		s.log.Info().Int("found", len(urls)).Msg("search results collected")
	}

	result.Products, result.Errors = scrapeEach(ctx, urls, func(productURL string) (*product.RawScrapedProduct, error) {
		raw, err := s.scrapeDetail(page, productURL)
		if err != nil {
			s.log.Warn().Str("url", productURL).Err(err).Msg("detail scrape failed")
		}
		return raw, err
	})

	result.Duration = time.Since(start)
	s.log.Info().Int("products", len(result.Products)).Int("errors", len(result.Errors)).Dur("duration", result.Duration).Msg("search run complete")
	return result, nil
}

// ScrapeByURL scrapes a single known detail page, skipping search.
func (s *Service) ScrapeByURL(ctx context.Context, productURL string) (*URLScrapeResult, error) {
	start := time.Now()
	result := &URLScrapeResult{Errors: []ScrapeError{}}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := newSession(s.headless, s.proxyURL)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	page, err := sess.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	raw, err := s.scrapeDetail(page, productURL)
	if err != nil {
		result.Errors = append(result.Errors, newScrapeError(productURL, err))
	} else {
		result.Product = raw
	}

	result.Duration = time.Since(start)
	return result, nil
}

// scrapeEach runs the sequential per-item loop. A failed item is
// recorded and the loop moves on; a cancelled context is recorded for
// the next URL and stops the loop there.
func scrapeEach(ctx context.Context, urls []string, scrape func(string) (*product.RawScrapedProduct, error)) ([]product.RawScrapedProduct, []ScrapeError) {
	products := []product.RawScrapedProduct{}
	scrapeErrors := []ScrapeError{}
	for _, productURL := range urls {
		if err := ctx.Err(); err != nil {
			scrapeErrors = append(scrapeErrors, newScrapeError(productURL, err))
			break
		}
		raw, err := scrape(productURL)
		if err != nil {
			scrapeErrors = append(scrapeErrors, newScrapeError(productURL, err))
			continue
		}
		products = append(products, *raw)
	}
	return products, scrapeErrors
}

// scrapeDetail navigates to one detail page and extracts the product.
// A panic inside extraction is converted into an error so one broken
// page cannot take down the whole run.
func (s *Service) scrapeDetail(page playwright.Page, productURL string) (raw *product.RawScrapedProduct, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			err = &panicError{value: fmt.Sprintf("%v", r), stack: stack}
			raw = nil
		}
	}()

	if _, err := page.Goto(productURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeout),
	}); err != nil {
		return nil, fmt.Errorf("navigate detail: %w", err)
	}
	s.waitForReady(page, s.selectors.Title)

	content, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("read detail page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	extracted := extractDetail(doc, productURL, s.selectors, time.Now().UTC())
	return &extracted, nil
}

// waitForReady waits until one of the given selectors is attached,
// falling back to a fixed settle delay when none shows up in time.
// Client-rendered pages often paint well after domcontentloaded.
func (s *Service) waitForReady(page playwright.Page, selectors []string) {
	for _, sel := range selectors {
		if _, err := page.WaitForSelector(sel, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(readinessTimeout),
		}); err == nil {
			return
		}
	}
	s.log.Debug().Msg("readiness selectors timed out, settling on fixed delay")
	page.WaitForTimeout(settleFallbackWait)
}

// SearchURL builds the marketplace search URL for a free-text query.
func SearchURL(query string) string {
	return fmt.Sprintf("%s?fsb=y&IndexArea=product_en&SearchText=%s", searchBaseURL, url.QueryEscape(query))
}

// collectSearchResultURLs pulls detail-page links off a search results
// document: at most maxSearchAnchors anchors are inspected, empty hrefs
// are dropped, query strings are stripped, and the list is capped at
// max.
func collectSearchResultURLs(doc *goquery.Document, linkSelectors []string, max int) []string {
	hrefs := []string{}
	for _, sel := range linkSelectors {
		doc.Find(sel).EachWithBreak(func(i int, a *goquery.Selection) bool {
			if i >= maxSearchAnchors {
				return false
			}
			href, _ := a.Attr("href")
			hrefs = append(hrefs, href)
			return true
		})
		if len(hrefs) > 0 {
			break
		}
	}
	return filterProductURLs(hrefs, max)
}

func filterProductURLs(hrefs []string, max int) []string {
	out := []string{}
	for _, href := range hrefs {
		href = strings.TrimSpace(href)
		if href == "" {
			continue
		}
		if strings.HasPrefix(href, "//") {
			href = "https:" + href
		}
		if i := strings.Index(href, "?"); i >= 0 {
			href = href[:i]
		}
		out = append(out, href)
		if len(out) >= max {
			break
		}
	}
	return out
}

func newScrapeError(url string, err error) ScrapeError {
	se := ScrapeError{URL: url, Message: err.Error(), Timestamp: time.Now().UTC()}
	var pe *panicError
	if errors.As(err, &pe) {
		se.Stack = &pe.stack
	}
	return se
}

type panicError struct {
	value string
	stack string
}

func (e *panicError) Error() string { return "panic during extraction: " + e.value }
