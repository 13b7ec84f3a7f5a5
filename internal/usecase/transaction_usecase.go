package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/infrastructure/metrics"
)

// TransactionUseCase is the posting engine. It owns validation,
// idempotent commit semantics, per-account locking and the reversal
// algorithm. Everything it writes is balanced, durable and posted at
// most once.
type TransactionUseCase struct {
	txManager       TransactionManager
	transactionRepo TransactionRepository
	entryRepo       EntryRepository
	accountRepo     AccountRepository
	locker          AccountLocker
	cache           IdempotencyCache
	reportCache     ReportCache
	retrier         Retrier
	idGen           IDGenerator
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase. reportCache,
// retrier and m are optional.
func NewTransactionUseCase(
	txManager TransactionManager,
	transactionRepo TransactionRepository,
	entryRepo EntryRepository,
	accountRepo AccountRepository,
	locker AccountLocker,
	cache IdempotencyCache,
	reportCache ReportCache,
	retrier Retrier,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		entryRepo:       entryRepo,
		accountRepo:     accountRepo,
		locker:          locker,
		cache:           cache,
		reportCache:     reportCache,
		retrier:         retrier,
		idGen:           idGen,
		metrics:         m,
	}
}

// EntryInput is one leg of a posting request.
type EntryInput struct {
	AccountID string
	Currency  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// PostTransactionInput is a request to move value between accounts.
type PostTransactionInput struct {
	ReversalOf     *string
	IdempotencyKey string
	Description    string
	Entries        []EntryInput
}

// PostTransaction validates, locks, durably commits and caches one
// balanced transaction. A duplicate idempotency key replays the
// original result without validating, locking or writing anything.
func (uc *TransactionUseCase) PostTransaction(ctx context.Context, input PostTransactionInput) (*domain.Transaction, error) {
	start := time.Now()

	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return nil, domain.ErrMissingKey
	}

	// Fast tier first, durable store on a miss.
	if cached, ok := uc.cacheGet(ctx, key); ok {
		uc.countReplay("fast")
		return cached, nil
	}

	existing, err := uc.transactionRepo.GetByIdempotencyKey(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, err
	}

	if existing != nil {
		uc.countReplay("durable")
		uc.cacheSet(ctx, key, existing)

		return existing, nil
	}

	entries, err := uc.validate(ctx, input)
	if err != nil {
		uc.countPostingError("validation")
		return nil, err
	}

	// All validation passed; only now take locks, so a failed request
	// never holds anything.
	accountIDs := domain.AccountIDs(entries)

	lockStart := time.Now()

	release, err := uc.locker.AcquireAll(ctx, accountIDs)
	if err != nil {
		if uc.metrics != nil && errors.Is(err, domain.ErrLockTimeout) {
			uc.metrics.LockTimeouts.Inc()
		}

		return nil, err
	}
	defer release()

	if uc.metrics != nil {
		uc.metrics.LockWaitDuration.Observe(time.Since(lockStart).Seconds())
	}

	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		IdempotencyKey: key,
		Description:    input.Description,
		Status:         domain.TransactionStatusPosted,
		PostedAt:       now,
		ReversalOf:     input.ReversalOf,
		CreatedAt:      now,
		UpdatedAt:      now,
		Entries:        entries,
	}

	for _, e := range entries {
		e.ID = uc.idGen.Generate()
		e.TransactionID = txn.ID
		e.PostedAt = now
	}

	err = uc.commit(ctx, txn)
	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		// A concurrent duplicate won the race on the unique key. The
		// committed row is the result the caller asked for.
		winner, lookupErr := uc.transactionRepo.GetByIdempotencyKey(ctx, key)
		if lookupErr != nil {
			return nil, lookupErr
		}

		uc.countReplay("durable")
		uc.cacheSet(ctx, key, winner)

		return winner, nil
	}

	if err != nil {
		uc.countPostingError("commit")
		return nil, err
	}

	// Cache population strictly follows the durable commit; a failure
	// here costs a future durable lookup, nothing more.
	uc.cacheSet(ctx, key, txn)
	uc.invalidateReports(ctx)

	if uc.metrics != nil {
		uc.metrics.TransactionsPosted.Inc()
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
	}

	return txn, nil
}

func (uc *TransactionUseCase) countReplay(tier string) {
	if uc.metrics != nil {
		uc.metrics.IdempotentReplays.WithLabelValues(tier).Inc()
	}
}

func (uc *TransactionUseCase) countPostingError(errorType string) {
	if uc.metrics != nil {
		uc.metrics.PostingErrors.WithLabelValues(errorType).Inc()
	}
}

func (uc *TransactionUseCase) commit(ctx context.Context, txn *domain.Transaction) error {
	op := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.transactionRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func (uc *TransactionUseCase) validate(ctx context.Context, input PostTransactionInput) ([]*domain.TransactionEntry, error) {
	if len(input.Entries) < MinEntriesPerTransaction {
		return nil, domain.ErrTooFewEntries
	}

	entries := make([]*domain.TransactionEntry, 0, len(input.Entries))
	for _, in := range input.Entries {
		entries = append(entries, &domain.TransactionEntry{
			AccountID: in.AccountID,
			Currency:  strings.ToUpper(strings.TrimSpace(in.Currency)),
			Debit:     in.Debit,
			Credit:    in.Credit,
		})
	}

	// Balance first: an unbalanced request is an accounting fault and
	// reports both totals.
	if err := domain.ValidateBalanced(entries); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}

	accountIDs := domain.AccountIDs(entries)

	accounts, err := uc.accountRepo.GetByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	for _, e := range entries {
		account, ok := byID[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, e.AccountID)
		}

		if !account.IsActive {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountInactive, account.Code)
		}

		if account.Currency != e.Currency {
			return nil, fmt.Errorf("%w: account %s expects %s, got %s",
				domain.ErrCurrencyMismatch, account.Code, account.Currency, e.Currency)
		}

		e.AccountCode = account.Code
	}

	return entries, nil
}

// ReverseTransaction negates a posted transaction by posting a new one
// with debit and credit swapped per entry, then marks the original
// REVERSED. The reversal's idempotency key is derived from the original
// ID, so retrying a reversal is itself idempotent. A transaction can be
// reversed at most once.
func (uc *TransactionUseCase) ReverseTransaction(ctx context.Context, transactionID, reason string) (*domain.Transaction, error) {
	original, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if original.Status == domain.TransactionStatusReversed {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, transactionID)
	}

	reversalEntries := make([]EntryInput, 0, len(original.Entries))
	for _, e := range original.Entries {
		reversalEntries = append(reversalEntries, EntryInput{
			AccountID: e.AccountID,
			Debit:     e.Credit,
			Credit:    e.Debit,
			Currency:  e.Currency,
		})
	}

	reversal, err := uc.PostTransaction(ctx, PostTransactionInput{
		IdempotencyKey: ReversalKey(original.ID),
		Description:    fmt.Sprintf("Reversal: %s | Reason: %s", original.Description, reason),
		Entries:        reversalEntries,
		ReversalOf:     &original.ID,
	})
	if err != nil {
		return nil, err
	}

	err = uc.transactionRepo.UpdateStatus(ctx,
		original.ID, domain.TransactionStatusReversed, original.Version, time.Now().UTC())
	if errors.Is(err, domain.ErrVersionConflict) {
		// Lost the race to a concurrent reversal: report the same
		// conflict a retry would see.
		if current, getErr := uc.transactionRepo.GetByID(ctx, original.ID); getErr == nil &&
			current.Status == domain.TransactionStatusReversed {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, transactionID)
		}

		return nil, err
	}
	if err != nil {
		return nil, err
	}

	uc.invalidateReports(ctx)

	if uc.metrics != nil {
		uc.metrics.TransactionsReversed.Inc()
	}

	return reversal, nil
}

// ReversalKey derives the deterministic idempotency key of the reversal
// of a given transaction.
func ReversalKey(transactionID string) string {
	return "reversal_" + transactionID
}

// GetAccountBalance returns the as-of balance of an account: the exact
// decimal sum of (debit - credit) over entries of non-PENDING
// transactions posted at or before asOf. Read-only; it never touches
// the account locks. A nil asOf means now.
func (uc *TransactionUseCase) GetAccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	if uc.metrics != nil {
		uc.metrics.BalanceQueries.Inc()
	}

	return uc.entryRepo.BalanceAsOf(ctx, accountID, at)
}

// GetTransaction retrieves a transaction with its entries.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactionsInput represents input for listing posted transactions.
type ListTransactionsInput struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ListTransactions lists posted transactions in a date range, newest
// first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	from := time.Time{}
	if input.From != nil {
		from = *input.From
	}

	to := time.Now().UTC()
	if input.To != nil {
		to = *input.To
	}

	return uc.transactionRepo.ListPosted(ctx, from, to, limit, offset)
}

func (uc *TransactionUseCase) cacheGet(ctx context.Context, key string) (*domain.Transaction, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency cache lookup failed")
		return nil, false
	}

	if !ok {
		if uc.metrics != nil {
			uc.metrics.CacheMisses.WithLabelValues("idempotency").Inc()
		}

		return nil, false
	}

	if uc.metrics != nil {
		uc.metrics.CacheHits.WithLabelValues("idempotency").Inc()
	}

	var txn domain.Transaction
	if err := json.Unmarshal(raw, &txn); err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency cache entry corrupt")
		return nil, false
	}

	return &txn, true
}

func (uc *TransactionUseCase) cacheSet(ctx context.Context, key string, txn *domain.Transaction) {
	if uc.cache == nil || txn == nil {
		return
	}

	raw, err := json.Marshal(txn)
	if err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to encode transaction for cache")
		return
	}

	if err := uc.cache.Set(ctx, key, raw, IdempotencyCacheTTL); err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to populate idempotency cache")
	}
}

func (uc *TransactionUseCase) invalidateReports(ctx context.Context) {
	if uc.reportCache == nil {
		return
	}

	if err := uc.reportCache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}
