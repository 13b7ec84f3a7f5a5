package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/infrastructure/metrics"
)

// ReportingUseCase builds read-only projections over posted entries.
// It never takes engine locks; a report is a consistent-enough snapshot
// for humans, not part of the posting path.
type ReportingUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	loanRepo    LoanRepository
	cache       ReportCache
	metrics     *metrics.Metrics
}

// NewReportingUseCase creates a new ReportingUseCase. cache and m are
// optional.
func NewReportingUseCase(accountRepo AccountRepository, entryRepo EntryRepository, loanRepo LoanRepository, cache ReportCache, m *metrics.Metrics) *ReportingUseCase {
	return &ReportingUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		loanRepo:    loanRepo,
		cache:       cache,
		metrics:     m,
	}
}

// TypeSummary aggregates one account type's debit and credit columns.
type TypeSummary struct {
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
}

// TrialBalance is the classic two-column proof that the ledger balances.
type TrialBalance struct {
	AsOf         time.Time                           `json:"as_of"`
	ByType       map[domain.AccountType]*TypeSummary `json:"by_type"`
	TotalDebits  decimal.Decimal                     `json:"total_debits"`
	TotalCredits decimal.Decimal                     `json:"total_credits"`
	IsBalanced   bool                                `json:"is_balanced"`
}

// GetTrialBalance computes the trial balance over active accounts as of
// the given time (nil means now). Balances land in the debit or credit
// column according to the account type's normal side.
func (uc *ReportingUseCase) GetTrialBalance(ctx context.Context, asOf *time.Time) (*TrialBalance, error) {
	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	cacheKey := fmt.Sprintf("trial_balance:%d", at.Unix())

	var cached TrialBalance
	if uc.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	accounts, err := uc.accountRepo.ListActive(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}

	report := &TrialBalance{
		AsOf:         at,
		ByType:       make(map[domain.AccountType]*TypeSummary, len(domain.AccountTypes)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, t := range domain.AccountTypes {
		report.ByType[t] = &TypeSummary{TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
	}

	for _, account := range accounts {
		balance, err := uc.entryRepo.BalanceAsOf(ctx, account.ID, at)
		if err != nil {
			return nil, err
		}

		debit, credit := normalSide(account.Type, balance)

		summary := report.ByType[account.Type]
		summary.TotalDebits = summary.TotalDebits.Add(debit)
		summary.TotalCredits = summary.TotalCredits.Add(credit)

		report.TotalDebits = report.TotalDebits.Add(debit)
		report.TotalCredits = report.TotalCredits.Add(credit)
	}

	report.IsBalanced = report.TotalDebits.Equal(report.TotalCredits)

	uc.cacheSet(ctx, cacheKey, report)

	return report, nil
}

// normalSide places a signed (debit minus credit) balance into the
// trial-balance column where the account type normally sits.
func normalSide(t domain.AccountType, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	if balance.Sign() >= 0 {
		if t.DebitNormal() {
			return balance, decimal.Zero
		}

		return decimal.Zero, balance.Abs()
	}

	if t.DebitNormal() {
		return decimal.Zero, balance.Abs()
	}

	return balance.Abs(), decimal.Zero
}

// AccountBalanceLine is one account's contribution to a balance sheet
// section.
type AccountBalanceLine struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSheet groups account balances by statement section. Net income
// (income minus expenses) is folded into equity, so a balanced ledger
// shows assets equal to liabilities plus equity.
type BalanceSheet struct {
	AsOf             time.Time            `json:"as_of"`
	Assets           []AccountBalanceLine `json:"assets"`
	Liabilities      []AccountBalanceLine `json:"liabilities"`
	Equity           []AccountBalanceLine `json:"equity"`
	TotalAssets      decimal.Decimal      `json:"total_assets"`
	TotalLiabilities decimal.Decimal      `json:"total_liabilities"`
	TotalEquity      decimal.Decimal      `json:"total_equity"`
	IsBalanced       bool                 `json:"is_balanced"`
}

// GetBalanceSheet computes the balance sheet as of the given time (nil
// means now).
func (uc *ReportingUseCase) GetBalanceSheet(ctx context.Context, asOf *time.Time) (*BalanceSheet, error) {
	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	cacheKey := fmt.Sprintf("balance_sheet:%d", at.Unix())

	var cached BalanceSheet
	if uc.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	accounts, err := uc.accountRepo.ListActive(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}

	report := &BalanceSheet{
		AsOf:             at,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero

	for _, account := range accounts {
		balance, err := uc.entryRepo.BalanceAsOf(ctx, account.ID, at)
		if err != nil {
			return nil, err
		}

		line := AccountBalanceLine{
			AccountID:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
			Balance:     balance,
		}

		switch account.Type {
		case domain.AccountTypeAsset:
			report.Assets = append(report.Assets, line)
			report.TotalAssets = report.TotalAssets.Add(balance)
		case domain.AccountTypeLiability:
			report.Liabilities = append(report.Liabilities, line)
			report.TotalLiabilities = report.TotalLiabilities.Add(balance.Neg())
		case domain.AccountTypeEquity:
			report.Equity = append(report.Equity, line)
			report.TotalEquity = report.TotalEquity.Add(balance.Neg())
		case domain.AccountTypeIncome:
			totalIncome = totalIncome.Add(balance.Neg())
		case domain.AccountTypeExpense:
			totalExpenses = totalExpenses.Add(balance)
		}
	}

	netIncome := totalIncome.Sub(totalExpenses)
	report.TotalEquity = report.TotalEquity.Add(netIncome)

	report.IsBalanced = report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity))

	uc.cacheSet(ctx, cacheKey, report)

	return report, nil
}

// TransactionHistoryInput represents input for an account statement.
type TransactionHistoryInput struct {
	From      *time.Time
	To        *time.Time
	AccountID string
	Limit     int
	Offset    int
}

// GetTransactionHistory returns an account's posted entries in a date
// range, oldest first.
func (uc *ReportingUseCase) GetTransactionHistory(ctx context.Context, input TransactionHistoryInput) ([]*domain.TransactionEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	from := time.Time{}
	if input.From != nil {
		from = *input.From
	}

	to := time.Now().UTC()
	if input.To != nil {
		to = *input.To
	}

	return uc.entryRepo.GetByAccount(ctx, input.AccountID, from, to, limit, offset)
}

// AgingBucketSummary is one delinquency bucket of the aging report.
type AgingBucketSummary struct {
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// LoanAgingReport groups open loans by how overdue they are.
type LoanAgingReport struct {
	GeneratedAt time.Time                                  `json:"generated_at"`
	Buckets     map[domain.AgingBucket]*AgingBucketSummary `json:"buckets"`
}

// GetLoanAging buckets active and disbursed loans by days past due.
func (uc *ReportingUseCase) GetLoanAging(ctx context.Context) (*LoanAgingReport, error) {
	loans, err := uc.loanRepo.ListByStatuses(ctx, []domain.LoanStatus{
		domain.LoanStatusActive,
		domain.LoanStatusDisbursed,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	report := &LoanAgingReport{
		GeneratedAt: now,
		Buckets:     make(map[domain.AgingBucket]*AgingBucketSummary, len(domain.AgingBuckets)),
	}

	for _, b := range domain.AgingBuckets {
		report.Buckets[b] = &AgingBucketSummary{TotalAmount: decimal.Zero}
	}

	for _, loan := range loans {
		bucket, ok := loan.BucketFor(now)
		if !ok {
			continue
		}

		summary := report.Buckets[bucket]
		summary.Count++
		summary.TotalAmount = summary.TotalAmount.Add(loan.OutstandingBalance)
	}

	return report, nil
}

func (uc *ReportingUseCase) cacheGet(ctx context.Context, key string, out any) bool {
	if uc.cache == nil {
		return false
	}

	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("report", key).Msg("report cache lookup failed")
		return false
	}

	if !ok {
		if uc.metrics != nil {
			uc.metrics.CacheMisses.WithLabelValues("report").Inc()
		}

		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("report", key).Msg("report cache entry corrupt")
		return false
	}

	if uc.metrics != nil {
		uc.metrics.CacheHits.WithLabelValues("report").Inc()
	}

	return true
}

func (uc *ReportingUseCase) cacheSet(ctx context.Context, key string, report any) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, raw, ReportCacheTTL); err != nil {
		log.Warn().Err(err).Str("report", key).Msg("failed to cache report")
	}
}
