package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsPosted   *prometheus.CounterVec
	TransactionsReversed prometheus.Counter
	TransactionDuration  prometheus.Histogram
	TransactionAmount    prometheus.Histogram

	// Closing metrics
	ClosingsCreated     *prometheus.CounterVec
	ClosingDiscrepancy  prometheus.Histogram
	CorrectionsApproved prometheus.Counter
	CommissionsComputed prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics and registers them on the given registerer.
// Tests use this with an isolated registry so repeated construction does
// not collide on the process-wide default.
func NewWith(r prometheus.Registerer) *Metrics {
	factory := promauto.With(r)

	return &Metrics{
		// Ledger metrics
		TransactionsPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdash_transactions_posted_total",
				Help: "Total number of transactions posted",
			},
			[]string{"type", "method"},
		),
		TransactionsReversed: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowdash_transactions_reversed_total",
			Help: "Total number of transactions reversed",
		}),
		TransactionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowdash_transaction_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowdash_transaction_amount",
			Help:    "Gross transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		// Closing metrics
		ClosingsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdash_closings_total",
				Help: "Total number of daily closings by resulting status",
			},
			[]string{"status"},
		),
		ClosingDiscrepancy: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowdash_closing_discrepancy",
			Help:    "Absolute closing discrepancies",
			Buckets: []float64{0.01, 0.1, 1, 5, 10, 50, 100},
		}),
		CorrectionsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowdash_corrections_approved_total",
			Help: "Total number of approved closing corrections",
		}),
		CommissionsComputed: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowdash_commissions_computed_total",
			Help: "Total number of commission reports computed",
		}),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowdash_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdash_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowdash_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Authentication metrics
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdash_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowdash_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}
