package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/infrastructure/metrics"
)

// LoanUseCase orchestrates the loan lifecycle. It is deliberately a
// client of the posting engine: every balance-affecting step posts a
// balanced transaction through the same path as everyone else, with
// idempotency keys derived from the caller's key.
type LoanUseCase struct {
	loanRepo    LoanRepository
	accountRepo AccountRepository
	engine      *TransactionUseCase
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLoanUseCase creates a new LoanUseCase. m is optional.
func NewLoanUseCase(loanRepo LoanRepository, accountRepo AccountRepository, engine *TransactionUseCase, idGen IDGenerator, m *metrics.Metrics) *LoanUseCase {
	return &LoanUseCase{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		engine:      engine,
		idGen:       idGen,
		metrics:     m,
	}
}

// ApplyLoanInput represents a loan application.
type ApplyLoanInput struct {
	DueDate         *time.Time
	AccountID       string
	Currency        string
	PrincipalAmount decimal.Decimal
	InterestRate    decimal.Decimal
}

// ApplyForLoan records a PENDING loan application.
func (uc *LoanUseCase) ApplyForLoan(ctx context.Context, input ApplyLoanInput) (*domain.Loan, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if !input.PrincipalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", domain.ErrNegativeAmount)
	}

	now := time.Now().UTC()

	loan := &domain.Loan{
		ID:                 uc.idGen.Generate(),
		AccountID:          input.AccountID,
		PrincipalAmount:    input.PrincipalAmount,
		InterestRate:       input.InterestRate,
		Currency:           input.Currency,
		DueDate:            input.DueDate,
		OutstandingBalance: input.PrincipalAmount,
		Status:             domain.LoanStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := uc.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// ApproveLoan moves a PENDING loan to APPROVED.
func (uc *LoanUseCase) ApproveLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := assertLoanStatus(loan, domain.LoanStatusPending); err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatusApproved

	return uc.saveLoan(ctx, loan)
}

// DisburseLoanInput represents a disbursement request. The accounts are
// the GL legs the disbursement posts against.
type DisburseLoanInput struct {
	IdempotencyKey             string
	Currency                   string
	LoansReceivableAccountID   string
	OrigFeeReceivableAccountID string
	FeeIncomeAccountID         string
	Amount                     decimal.Decimal
	OriginationFee             decimal.Decimal
}

// DisburseLoan posts the disbursement and origination-fee transactions
// and moves an APPROVED loan to DISBURSED. The two postings carry keys
// derived from the caller's key, so a retried disbursement replays
// rather than double-posts.
func (uc *LoanUseCase) DisburseLoan(ctx context.Context, loanID string, input DisburseLoanInput) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := assertLoanStatus(loan, domain.LoanStatusApproved); err != nil {
		return nil, err
	}

	_, err = uc.engine.PostTransaction(ctx, PostTransactionInput{
		IdempotencyKey: input.IdempotencyKey + "_disbursement",
		Description:    "Loan disbursement " + loanID,
		Entries: []EntryInput{
			{AccountID: loan.AccountID, Debit: input.Amount, Credit: decimal.Zero, Currency: input.Currency},
			{AccountID: input.LoansReceivableAccountID, Debit: decimal.Zero, Credit: input.Amount, Currency: input.Currency},
		},
	})
	if err != nil {
		return nil, err
	}

	if input.OriginationFee.IsPositive() {
		_, err = uc.engine.PostTransaction(ctx, PostTransactionInput{
			IdempotencyKey: input.IdempotencyKey + "_fee",
			Description:    "Loan origination fee " + loanID,
			Entries: []EntryInput{
				{AccountID: input.OrigFeeReceivableAccountID, Debit: input.OriginationFee, Credit: decimal.Zero, Currency: input.Currency},
				{AccountID: input.FeeIncomeAccountID, Debit: decimal.Zero, Credit: input.OriginationFee, Currency: input.Currency},
			},
		})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	loan.OutstandingBalance = input.Amount
	loan.DisbursementDate = &now
	loan.Status = domain.LoanStatusDisbursed

	if uc.metrics != nil {
		uc.metrics.LoansDisbursed.Inc()
	}

	return uc.saveLoan(ctx, loan)
}

// RepayLoanInput represents a repayment split into principal and
// interest portions.
type RepayLoanInput struct {
	IdempotencyKey          string
	Currency                string
	CashAccountID           string
	InterestIncomeAccountID string
	Amount                  decimal.Decimal
	PrincipalPortion        decimal.Decimal
	InterestPortion         decimal.Decimal
}

// RepayLoan posts the repayment transaction, reduces the outstanding
// balance by the principal portion and closes the loan at zero. The
// posting engine rejects a repayment whose portions do not sum to the
// amount.
func (uc *LoanUseCase) RepayLoan(ctx context.Context, loanID string, input RepayLoanInput) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	entries := []EntryInput{
		{AccountID: input.CashAccountID, Debit: input.Amount, Credit: decimal.Zero, Currency: input.Currency},
		{AccountID: loan.AccountID, Debit: decimal.Zero, Credit: input.PrincipalPortion, Currency: input.Currency},
	}

	if input.InterestPortion.IsPositive() {
		entries = append(entries, EntryInput{
			AccountID: input.InterestIncomeAccountID,
			Debit:     decimal.Zero,
			Credit:    input.InterestPortion,
			Currency:  input.Currency,
		})
	}

	_, err = uc.engine.PostTransaction(ctx, PostTransactionInput{
		IdempotencyKey: input.IdempotencyKey,
		Description:    "Loan repayment " + loanID,
		Entries:        entries,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loan.OutstandingBalance = loan.OutstandingBalance.Sub(input.PrincipalPortion)
	loan.LastPaymentDate = &now

	if !loan.OutstandingBalance.IsPositive() {
		loan.Status = domain.LoanStatusClosed
	}

	if uc.metrics != nil {
		uc.metrics.LoansRepaid.Inc()
	}

	return uc.saveLoan(ctx, loan)
}

// WriteOffLoanInput represents a write-off request.
type WriteOffLoanInput struct {
	IdempotencyKey           string
	Currency                 string
	BadDebtExpenseAccountID  string
	LoansReceivableAccountID string
	Amount                   decimal.Decimal
}

// WriteOffLoan posts the bad-debt transaction, zeroes the outstanding
// balance and marks the loan WRITTEN_OFF.
func (uc *LoanUseCase) WriteOffLoan(ctx context.Context, loanID string, input WriteOffLoanInput) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	_, err = uc.engine.PostTransaction(ctx, PostTransactionInput{
		IdempotencyKey: input.IdempotencyKey,
		Description:    "Loan write-off " + loanID,
		Entries: []EntryInput{
			{AccountID: input.BadDebtExpenseAccountID, Debit: input.Amount, Credit: decimal.Zero, Currency: input.Currency},
			{AccountID: input.LoansReceivableAccountID, Debit: decimal.Zero, Credit: input.Amount, Currency: input.Currency},
		},
	})
	if err != nil {
		return nil, err
	}

	loan.OutstandingBalance = decimal.Zero
	loan.Status = domain.LoanStatusWrittenOff

	if uc.metrics != nil {
		uc.metrics.LoansWrittenOff.Inc()
	}

	return uc.saveLoan(ctx, loan)
}

// ListOpenLoans lists loans that are approved or disbursed.
func (uc *LoanUseCase) ListOpenLoans(ctx context.Context) ([]*domain.Loan, error) {
	return uc.loanRepo.ListByStatuses(ctx, []domain.LoanStatus{
		domain.LoanStatusApproved,
		domain.LoanStatusDisbursed,
	})
}

// GetLoan retrieves a loan by ID.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

func (uc *LoanUseCase) saveLoan(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	expected := loan.Version

	loan.UpdatedAt = time.Now().UTC()

	if err := uc.loanRepo.Update(ctx, loan, expected); err != nil {
		return nil, err
	}

	loan.Version = expected + 1

	return loan, nil
}

func assertLoanStatus(loan *domain.Loan, want domain.LoanStatus) error {
	if loan.Status != want {
		return fmt.Errorf("%w: loan %s is %s, wants %s", domain.ErrLoanStatus, loan.ID, loan.Status, want)
	}

	return nil
}
