package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	ParentID *string `json:"parent_id,omitempty"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Type     string  `json:"type"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		ParentID: r.ParentID,
		Code:     r.Code,
		Name:     r.Name,
		Currency: r.Currency,
		Type:     domain.AccountType(r.Type),
	}
}

// EntryItem represents a single leg of a posting request.
type EntryItem struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// PostTransactionRequest represents a request to post a transaction.
type PostTransactionRequest struct {
	IdempotencyKey string      `json:"idempotency_key"`
	Description    string      `json:"description"`
	Entries        []EntryItem `json:"entries"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransactionRequest) ToUseCaseInput() usecase.PostTransactionInput {
	entries := make([]usecase.EntryInput, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = usecase.EntryInput{
			AccountID: e.AccountID,
			Currency:  e.Currency,
			Debit:     e.Debit,
			Credit:    e.Credit,
		}
	}

	return usecase.PostTransactionInput{
		IdempotencyKey: r.IdempotencyKey,
		Description:    r.Description,
		Entries:        entries,
	}
}

// ReverseTransactionRequest represents a request to reverse a transaction.
type ReverseTransactionRequest struct {
	Reason string `json:"reason"`
}

// ApplyLoanRequest represents a loan application.
type ApplyLoanRequest struct {
	DueDate         *time.Time      `json:"due_date,omitempty"`
	AccountID       string          `json:"account_id"`
	Currency        string          `json:"currency"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyLoanRequest) ToUseCaseInput() usecase.ApplyLoanInput {
	return usecase.ApplyLoanInput{
		DueDate:         r.DueDate,
		AccountID:       r.AccountID,
		Currency:        r.Currency,
		PrincipalAmount: r.PrincipalAmount,
		InterestRate:    r.InterestRate,
	}
}

// DisburseLoanRequest represents a request to disburse an approved loan.
type DisburseLoanRequest struct {
	IdempotencyKey             string          `json:"idempotency_key"`
	Currency                   string          `json:"currency"`
	LoansReceivableAccountID   string          `json:"loans_receivable_account_id"`
	OrigFeeReceivableAccountID string          `json:"orig_fee_receivable_account_id"`
	FeeIncomeAccountID         string          `json:"fee_income_account_id"`
	Amount                     decimal.Decimal `json:"amount"`
	OriginationFee             decimal.Decimal `json:"origination_fee"`
}

// ToUseCaseInput converts to use case input.
func (r *DisburseLoanRequest) ToUseCaseInput() usecase.DisburseLoanInput {
	return usecase.DisburseLoanInput{
		IdempotencyKey:             r.IdempotencyKey,
		Currency:                   r.Currency,
		LoansReceivableAccountID:   r.LoansReceivableAccountID,
		OrigFeeReceivableAccountID: r.OrigFeeReceivableAccountID,
		FeeIncomeAccountID:         r.FeeIncomeAccountID,
		Amount:                     r.Amount,
		OriginationFee:             r.OriginationFee,
	}
}

// RepayLoanRequest represents a loan repayment.
type RepayLoanRequest struct {
	IdempotencyKey          string          `json:"idempotency_key"`
	Currency                string          `json:"currency"`
	CashAccountID           string          `json:"cash_account_id"`
	InterestIncomeAccountID string          `json:"interest_income_account_id"`
	Amount                  decimal.Decimal `json:"amount"`
	PrincipalPortion        decimal.Decimal `json:"principal_portion"`
	InterestPortion         decimal.Decimal `json:"interest_portion"`
}

// ToUseCaseInput converts to use case input.
func (r *RepayLoanRequest) ToUseCaseInput() usecase.RepayLoanInput {
	return usecase.RepayLoanInput{
		IdempotencyKey:          r.IdempotencyKey,
		Currency:                r.Currency,
		CashAccountID:           r.CashAccountID,
		InterestIncomeAccountID: r.InterestIncomeAccountID,
		Amount:                  r.Amount,
		PrincipalPortion:        r.PrincipalPortion,
		InterestPortion:         r.InterestPortion,
	}
}

// WriteOffLoanRequest represents a loan write-off.
type WriteOffLoanRequest struct {
	IdempotencyKey           string          `json:"idempotency_key"`
	Currency                 string          `json:"currency"`
	BadDebtExpenseAccountID  string          `json:"bad_debt_expense_account_id"`
	LoansReceivableAccountID string          `json:"loans_receivable_account_id"`
	Amount                   decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *WriteOffLoanRequest) ToUseCaseInput() usecase.WriteOffLoanInput {
	return usecase.WriteOffLoanInput{
		IdempotencyKey:           r.IdempotencyKey,
		Currency:                 r.Currency,
		BadDebtExpenseAccountID:  r.BadDebtExpenseAccountID,
		LoansReceivableAccountID: r.LoansReceivableAccountID,
		Amount:                   r.Amount,
	}
}
