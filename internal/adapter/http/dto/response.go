package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"is_active"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		ParentID:  a.ParentID,
		Code:      a.Code,
		Name:      a.Name,
		Currency:  a.Currency,
		Type:      string(a.Type),
		IsActive:  a.IsActive,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// BalanceResponse represents an account balance in API responses.
type BalanceResponse struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	AsOf        time.Time       `json:"as_of"`
}

// BalanceFromUseCase converts a use case balance to response.
func BalanceFromUseCase(b *usecase.AccountBalance) *BalanceResponse {
	return &BalanceResponse{
		AccountID:   b.AccountID,
		AccountCode: b.AccountCode,
		AccountName: b.AccountName,
		Currency:    b.Currency,
		Balance:     b.Balance,
		AsOf:        b.AsOf,
	}
}

// EntryResponse represents a transaction entry in API responses.
// RunningBalance is omitted when the entry does not carry one.
type EntryResponse struct {
	ID             string           `json:"id"`
	TransactionID  string           `json:"transaction_id"`
	AccountID      string           `json:"account_id"`
	AccountCode    string           `json:"account_code"`
	Currency       string           `json:"currency"`
	Debit          decimal.Decimal  `json:"debit"`
	Credit         decimal.Decimal  `json:"credit"`
	RunningBalance *decimal.Decimal `json:"running_balance,omitempty"`
	PostedAt       time.Time        `json:"posted_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.TransactionEntry) *EntryResponse {
	return &EntryResponse{
		ID:             e.ID,
		TransactionID:  e.TransactionID,
		AccountID:      e.AccountID,
		AccountCode:    e.AccountCode,
		Currency:       e.Currency,
		Debit:          e.Debit,
		Credit:         e.Credit,
		RunningBalance: e.RunningBalance,
		PostedAt:       e.PostedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.TransactionEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID             string           `json:"id"`
	IdempotencyKey string           `json:"idempotency_key"`
	Description    string           `json:"description"`
	Status         string           `json:"status"`
	ReversalOf     *string          `json:"reversal_of,omitempty"`
	Entries        []*EntryResponse `json:"entries"`
	Version        int64            `json:"version"`
	PostedAt       time.Time        `json:"posted_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		IdempotencyKey: t.IdempotencyKey,
		Description:    t.Description,
		Status:         string(t.Status),
		ReversalOf:     t.ReversalOf,
		Entries:        EntriesFromDomain(t.Entries),
		Version:        t.Version,
		PostedAt:       t.PostedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID                 string          `json:"id"`
	AccountID          string          `json:"account_id"`
	Currency           string          `json:"currency"`
	Status             string          `json:"status"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	DisbursementDate   *time.Time      `json:"disbursement_date,omitempty"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	LastPaymentDate    *time.Time      `json:"last_payment_date,omitempty"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// LoanFromDomain converts domain loan to response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:                 l.ID,
		AccountID:          l.AccountID,
		Currency:           l.Currency,
		Status:             string(l.Status),
		PrincipalAmount:    l.PrincipalAmount,
		InterestRate:       l.InterestRate,
		OutstandingBalance: l.OutstandingBalance,
		DisbursementDate:   l.DisbursementDate,
		DueDate:            l.DueDate,
		LastPaymentDate:    l.LastPaymentDate,
		Version:            l.Version,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
