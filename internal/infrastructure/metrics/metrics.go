package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Posting engine metrics
	TransactionsPosted   prometheus.Counter
	TransactionsReversed prometheus.Counter
	PostingDuration      prometheus.Histogram
	PostingErrors        *prometheus.CounterVec
	IdempotentReplays    *prometheus.CounterVec
	LockWaitDuration     prometheus.Histogram
	LockTimeouts         prometheus.Counter

	// Account metrics
	AccountsCreated     prometheus.Counter
	AccountsDeactivated prometheus.Counter
	BalanceQueries      prometheus.Counter

	// Loan metrics
	LoansDisbursed  prometheus.Counter
	LoansRepaid     prometheus.Counter
	LoansWrittenOff prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransactionsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_posted_total",
			Help: "Total number of transactions posted",
		}),
		TransactionsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_reversed_total",
			Help: "Total number of transactions reversed",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),
		IdempotentReplays: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_idempotent_replays_total",
				Help: "Total number of idempotency key replays by tier",
			},
			[]string{"tier"},
		),
		LockWaitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_lock_wait_duration_seconds",
			Help:    "Time spent waiting for account locks",
			Buckets: prometheus.DefBuckets,
		}),
		LockTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_lock_timeouts_total",
			Help: "Total number of lock acquisition timeouts",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_deactivated_total",
			Help: "Total number of accounts deactivated",
		}),
		BalanceQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_queries_total",
			Help: "Total number of balance queries",
		}),

		LoansDisbursed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loans_disbursed_total",
			Help: "Total number of loans disbursed",
		}),
		LoansRepaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loan_repayments_total",
			Help: "Total number of loan repayments posted",
		}),
		LoansWrittenOff: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loans_written_off_total",
			Help: "Total number of loans written off",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_cache_hits_total",
				Help: "Total cache hits by cache",
			},
			[]string{"cache"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_cache_misses_total",
				Help: "Total cache misses by cache",
			},
			[]string{"cache"},
		),
	}
}
