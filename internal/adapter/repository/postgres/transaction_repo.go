package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. The
// UNIQUE constraint on idempotency_key is the durable half of the
// idempotency store; a violated insert surfaces as
// domain.ErrDuplicateIdempotencyKey so the engine can replay the winner.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, idempotency_key, description, status, posted_at, reversal_of, version, created_at, updated_at`

// CreateTx persists the transaction and its entries inside tx as one
// atomic unit.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.IdempotencyKey,
		txn.Description,
		string(txn.Status),
		timeToPgTimestamptz(txn.PostedAt),
		stringPtrToPgText(txn.ReversalOf),
		txn.Version,
		timeToPgTimestamptz(txn.CreatedAt),
		timeToPgTimestamptz(txn.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateIdempotencyKey
	}
	if err != nil {
		return err
	}

	entryQuery := `
		INSERT INTO transaction_entries (id, transaction_id, account_id, currency, debit, credit, running_balance, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, e := range txn.Entries {
		_, err := pgxTx.Exec(ctx, entryQuery,
			e.ID,
			e.TransactionID,
			e.AccountID,
			e.Currency,
			decimalToNumeric(e.Debit),
			decimalToNumeric(e.Credit),
			decimalPtrToNumeric(e.RunningBalance),
			timeToPgTimestamptz(e.PostedAt),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a transaction with its entries.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	if err := r.loadEntries(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// GetByIdempotencyKey retrieves a transaction by its idempotency key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	if err := r.loadEntries(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// UpdateStatus is a compare-and-swap on (id, expectedVersion).
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, expectedVersion int64, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`

	tag, err := r.pool.Exec(ctx, query, string(status), timeToPgTimestamptz(updatedAt), id, expectedVersion)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}

		if !exists {
			return domain.ErrTransactionNotFound
		}

		return domain.ErrVersionConflict
	}

	return nil
}

// ListPosted lists non-PENDING transactions in a posted_at range,
// newest first, entries included.
func (r *TransactionRepository) ListPosted(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status <> 'PENDING' AND posted_at >= $1 AND posted_at <= $2
		ORDER BY posted_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, timeToPgTimestamptz(from), timeToPgTimestamptz(to), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, txn := range txns {
		if err := r.loadEntries(ctx, txn); err != nil {
			return nil, err
		}
	}

	return txns, nil
}

func (r *TransactionRepository) loadEntries(ctx context.Context, txn *domain.Transaction) error {
	query := `
		SELECT e.id, e.transaction_id, e.account_id, a.code, e.currency, e.debit, e.credit, e.running_balance, e.posted_at
		FROM transaction_entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.transaction_id = $1
		ORDER BY e.id
	`

	rows, err := r.pool.Query(ctx, query, txn.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return err
	}

	txn.Entries = entries

	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn        domain.Transaction
		status     string
		reversalOf pgtype.Text
		postedAt   pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.IdempotencyKey,
		&txn.Description,
		&status,
		&postedAt,
		&reversalOf,
		&txn.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Status = domain.TransactionStatus(status)
	txn.ReversalOf = pgTextToStringPtr(reversalOf)
	txn.PostedAt = postedAt.Time
	txn.CreatedAt = createdAt.Time
	txn.UpdatedAt = updatedAt.Time

	return &txn, nil
}
