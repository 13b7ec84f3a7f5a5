package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
)

// AccountRepository defines data access for the chart of accounts. The
// posting engine only reads; writes belong to the account directory.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error)
	// SetActive flips the active flag at the expected version; a stale
	// version yields domain.ErrVersionConflict.
	SetActive(ctx context.Context, id string, active bool, expectedVersion int64, updatedAt time.Time) error
}

// TransactionRepository defines data access for posted transactions.
type TransactionRepository interface {
	// CreateTx persists the transaction and all of its entries inside
	// tx as one atomic unit. A committed duplicate of the idempotency
	// key surfaces as domain.ErrDuplicateIdempotencyKey.
	CreateTx(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// UpdateStatus is a compare-and-swap on (id, expectedVersion); a
	// stale version yields domain.ErrVersionConflict.
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, expectedVersion int64, updatedAt time.Time) error
	ListPosted(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.Transaction, error)
}

// EntryRepository defines read access to posted entries.
type EntryRepository interface {
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionEntry, error)
	GetByAccount(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionEntry, error)
	// BalanceAsOf returns sum(debit - credit) over entries of
	// non-PENDING transactions posted at or before asOf.
	BalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	// Update persists the loan at its expected version; a stale version
	// yields domain.ErrVersionConflict.
	Update(ctx context.Context, loan *domain.Loan, expectedVersion int64) error
	ListByStatuses(ctx context.Context, statuses []domain.LoanStatus) ([]*domain.Loan, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AccountLocker grants exclusive per-account locks for the duration of
// a posting. Implementations sort the IDs internally so overlapping
// acquisitions cannot deadlock.
type AccountLocker interface {
	AcquireAll(ctx context.Context, accountIDs []string) (release func(), err error)
}

// IdempotencyCache is the fast tier of the idempotency store. The
// durable unique key on transactions is the source of truth; the cache
// is only ever written after a durable commit.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReportCache caches derived reporting projections.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
