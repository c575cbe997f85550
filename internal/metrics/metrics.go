package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of the service.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Catalog metrics
	ProductViews    *prometheus.CounterVec
	CatalogProducts *prometheus.GaugeVec
	CatalogImports  *prometheus.CounterVec

	// Contact metrics
	ContactSubmissions *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
}

// New registers the collectors on reg under the given name prefix.
func New(reg prometheus.Registerer, prefix string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ProductViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_views_total",
				Help: "Total number of product detail views",
			},
			[]string{"category"},
		),
		CatalogProducts: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_catalog_products",
				Help: "Number of products per category",
			},
			[]string{"category"},
		),
		CatalogImports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_imports_total",
				Help: "Total number of catalog imports",
			},
			[]string{"result"},
		),
		ContactSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_contact_submissions_total",
				Help: "Contact form submissions by outcome",
			},
			[]string{"result"},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_contact_notifications_total",
				Help: "Contact notifications by channel and outcome",
			},
			[]string{"channel", "result"},
		),
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, started time.Time) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(started).Seconds())
}

// RecordProductView increments the counter for product views
func (m *Metrics) RecordProductView(category string) {
	m.ProductViews.WithLabelValues(category).Inc()
}

// SetCatalogSize publishes the product count of every category.
func (m *Metrics) SetCatalogSize(counts map[string]int) {
	m.CatalogProducts.Reset()
	for category, n := range counts {
		m.CatalogProducts.WithLabelValues(category).Set(float64(n))
	}
}

// RecordImport counts a catalog import by result.
func (m *Metrics) RecordImport(result string) {
	m.CatalogImports.WithLabelValues(result).Inc()
}

// RecordContact counts a contact submission by result.
func (m *Metrics) RecordContact(result string) {
	m.ContactSubmissions.WithLabelValues(result).Inc()
}

// RecordNotification counts a notification attempt.
func (m *Metrics) RecordNotification(channel, result string) {
	m.Notifications.WithLabelValues(channel, result).Inc()
}
