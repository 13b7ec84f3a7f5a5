package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kitabu/ledger/internal/domain"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, account_id, currency, status, principal_amount, interest_rate, outstanding_balance,
	due_date, disbursement_date, last_payment_date, version, created_at, updated_at`

// Create creates a new loan.
func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		loan.ID,
		loan.AccountID,
		loan.Currency,
		string(loan.Status),
		decimalToNumeric(loan.PrincipalAmount),
		decimalToNumeric(loan.InterestRate),
		decimalToNumeric(loan.OutstandingBalance),
		timePtrToPgTimestamptz(loan.DueDate),
		timePtrToPgTimestamptz(loan.DisbursementDate),
		timePtrToPgTimestamptz(loan.LastPaymentDate),
		loan.Version,
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)

	return err
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return loan, nil
}

// Update persists the loan at its expected version.
func (r *LoanRepository) Update(ctx context.Context, loan *domain.Loan, expectedVersion int64) error {
	query := `
		UPDATE loans
		SET status = $1, outstanding_balance = $2, disbursement_date = $3,
		    last_payment_date = $4, version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`

	tag, err := r.pool.Exec(ctx, query,
		string(loan.Status),
		decimalToNumeric(loan.OutstandingBalance),
		timePtrToPgTimestamptz(loan.DisbursementDate),
		timePtrToPgTimestamptz(loan.LastPaymentDate),
		timeToPgTimestamptz(loan.UpdatedAt),
		loan.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, loan.ID); err != nil {
			return err
		}

		return domain.ErrVersionConflict
	}

	return nil
}

// ListByStatuses lists loans whose status is one of statuses.
func (r *LoanRepository) ListByStatuses(ctx context.Context, statuses []domain.LoanStatus) ([]*domain.Loan, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = ANY($1) ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}

		loans = append(loans, loan)
	}

	return loans, rows.Err()
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan             domain.Loan
		status           string
		principal        pgtype.Numeric
		rate             pgtype.Numeric
		outstanding      pgtype.Numeric
		dueDate          pgtype.Timestamptz
		disbursementDate pgtype.Timestamptz
		lastPaymentDate  pgtype.Timestamptz
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&loan.ID,
		&loan.AccountID,
		&loan.Currency,
		&status,
		&principal,
		&rate,
		&outstanding,
		&dueDate,
		&disbursementDate,
		&lastPaymentDate,
		&loan.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatus(status)
	loan.PrincipalAmount = numericToDecimal(principal)
	loan.InterestRate = numericToDecimal(rate)
	loan.OutstandingBalance = numericToDecimal(outstanding)
	loan.DueDate = pgTimestamptzToTimePtr(dueDate)
	loan.DisbursementDate = pgTimestamptzToTimePtr(disbursementDate)
	loan.LastPaymentDate = pgTimestamptzToTimePtr(lastPaymentDate)
	loan.CreatedAt = createdAt.Time
	loan.UpdatedAt = updatedAt.Time

	return &loan, nil
}
