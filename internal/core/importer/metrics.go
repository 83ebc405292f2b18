package importer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the pipeline counters on a dedicated registry so the
// metrics listener serves only what the service itself emits.
type Metrics struct {
	registry *prometheus.Registry

	jobsTotal       *prometheus.CounterVec
	productsScraped prometheus.Counter
	scrapeErrors    prometheus.Counter
	jobDuration     prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sourcing_import_jobs_total",
			Help: "Import jobs by final outcome.",
		}, []string{"outcome"}),
		productsScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sourcing_products_scraped_total",
			Help: "Product detail pages scraped successfully.",
		}),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sourcing_scrape_errors_total",
			Help: "Detail pages that failed to scrape.",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sourcing_import_job_duration_seconds",
			Help:    "Wall-clock duration of import jobs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
	m.registry.MustRegister(m.jobsTotal, m.productsScraped, m.scrapeErrors, m.jobDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveJob(outcome string, products, errors int, seconds float64) {
	m.jobsTotal.WithLabelValues(outcome).Inc()
	m.productsScraped.Add(float64(products))
	m.scrapeErrors.Add(float64(errors))
	m.jobDuration.Observe(seconds)
}
