package usecase

import "time"

const (
	// LockAcquireTimeout bounds the wait for a contended account lock.
	// A timeout surfaces as a retryable concurrency error with nothing
	// written.
	LockAcquireTimeout = 30 * time.Second

	// IdempotencyCacheTTL is how long committed results stay in the
	// fast tier. The durable unique key outlives the cache.
	IdempotencyCacheTTL = 6 * time.Hour

	// ReportCacheTTL bounds staleness of cached reporting projections
	// between explicit invalidations.
	ReportCacheTTL = 10 * time.Minute

	// MinEntriesPerTransaction is the smallest balanced movement:
	// one debit and one credit.
	MinEntriesPerTransaction = 2
)
