package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/infrastructure/metrics"
)

// AccountUseCase owns the account directory: the chart of accounts and
// its lifecycle. The posting engine consumes it read-only.
type AccountUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. m is optional.
func NewAccountUseCase(accountRepo AccountRepository, entryRepo EntryRepository, idGen IDGenerator, m *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	ParentID *string
	Code     string
	Name     string
	Currency string
	Type     domain.AccountType
}

// CreateAccount creates a new account in the chart of accounts. Codes
// are unique; a child account must share its parent's type.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := uc.validateCreate(input); err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByCode(ctx, input.Code); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCodeTaken, input.Code)
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Code:      input.Code,
		Name:      strings.TrimSpace(input.Name),
		Type:      input.Type,
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		ParentID:  input.ParentID,
		IsActive:  true,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.ParentID != nil {
		parent, err := uc.accountRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}

		if err := account.CanParent(parent); err != nil {
			return nil, err
		}
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

func (uc *AccountUseCase) validateCreate(input CreateAccountInput) error {
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return err
	}

	if err := domain.ValidateAccountType(input.Type); err != nil {
		return err
	}

	return domain.ValidateCurrency(input.Currency)
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByCode retrieves an account by its unique code.
func (uc *AccountUseCase) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, code)
}

// ListActiveAccountsInput represents input for listing accounts.
type ListActiveAccountsInput struct {
	Limit  int
	Offset int
}

// ListActiveAccounts lists active accounts with pagination.
func (uc *AccountUseCase) ListActiveAccounts(ctx context.Context, input ListActiveAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.ListActive(ctx, limit, offset)
}

// ListAccountsByType lists active accounts of one type.
func (uc *AccountUseCase) ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error) {
	if err := domain.ValidateAccountType(accountType); err != nil {
		return nil, err
	}

	return uc.accountRepo.ListByType(ctx, accountType)
}

// DeactivateAccount flips an account inactive. Only an account with a
// zero balance can be deactivated; the check and the flip race benignly
// because a posting that slips in between fails its own active check or
// leaves a non-zero balance visible to the caller.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, err := uc.entryRepo.BalanceAsOf(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if !balance.IsZero() {
		return nil, fmt.Errorf("%w: %s has balance %s", domain.ErrNonZeroBalance, account.Code, balance)
	}

	now := time.Now().UTC()

	if err := uc.accountRepo.SetActive(ctx, id, false, account.Version, now); err != nil {
		return nil, err
	}

	account.IsActive = false
	account.Version++
	account.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.AccountsDeactivated.Inc()
	}

	return account, nil
}

// AccountBalance is an as-of balance with the account identity the
// caller needs to render it.
type AccountBalance struct {
	AsOf        time.Time
	AccountID   string
	AccountCode string
	AccountName string
	Currency    string
	Balance     decimal.Decimal
}

// GetBalance returns the as-of balance for an account, defaulting asOf
// to now.
func (uc *AccountUseCase) GetBalance(ctx context.Context, accountID string, asOf *time.Time) (*AccountBalance, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	at := time.Now().UTC()
	if asOf != nil {
		at = *asOf
	}

	balance, err := uc.entryRepo.BalanceAsOf(ctx, accountID, at)
	if err != nil {
		return nil, err
	}

	return &AccountBalance{
		AccountID:   account.ID,
		AccountCode: account.Code,
		AccountName: account.Name,
		Currency:    account.Currency,
		Balance:     balance,
		AsOf:        at,
	}, nil
}
