package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// GetByTransaction retrieves the entries of one transaction.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionEntry, error) {
	query := `
		SELECT e.id, e.transaction_id, e.account_id, a.code, e.currency, e.debit, e.credit, e.running_balance, e.posted_at
		FROM transaction_entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.transaction_id = $1
		ORDER BY e.id
	`

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByAccount retrieves an account's entries in a posted_at range,
// oldest first. Entries of PENDING transactions are excluded.
func (r *EntryRepository) GetByAccount(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionEntry, error) {
	query := `
		SELECT e.id, e.transaction_id, e.account_id, a.code, e.currency, e.debit, e.credit, e.running_balance, e.posted_at
		FROM transaction_entries e
		JOIN transactions t ON t.id = e.transaction_id
		JOIN accounts a ON a.id = e.account_id
		WHERE e.account_id = $1
		  AND t.status <> 'PENDING'
		  AND e.posted_at >= $2 AND e.posted_at <= $3
		ORDER BY e.posted_at, e.id
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query, accountID,
		timeToPgTimestamptz(from), timeToPgTimestamptz(to), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// BalanceAsOf computes sum(debit - credit) over the account's entries
// of non-PENDING transactions posted at or before asOf. The sum runs in
// the database as an exact numeric, never in floating point.
func (r *EntryRepository) BalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(e.debit - e.credit), 0)
		FROM transaction_entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = $1
		  AND t.status <> 'PENDING'
		  AND e.posted_at <= $2
	`

	var balance pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, accountID, timeToPgTimestamptz(asOf)).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

func scanEntries(rows pgx.Rows) ([]*domain.TransactionEntry, error) {
	var entries []*domain.TransactionEntry
	for rows.Next() {
		var (
			e              domain.TransactionEntry
			debit          pgtype.Numeric
			credit         pgtype.Numeric
			runningBalance pgtype.Numeric
			postedAt       pgtype.Timestamptz
		)

		err := rows.Scan(
			&e.ID,
			&e.TransactionID,
			&e.AccountID,
			&e.AccountCode,
			&e.Currency,
			&debit,
			&credit,
			&runningBalance,
			&postedAt,
		)
		if err != nil {
			return nil, err
		}

		e.Debit = numericToDecimal(debit)
		e.Credit = numericToDecimal(credit)
		e.RunningBalance = numericToDecimalPtr(runningBalance)
		e.PostedAt = postedAt.Time

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
