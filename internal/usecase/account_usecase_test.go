package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
	"github.com/kitabu/ledger/internal/usecase/mocks"
)

type directoryFixture struct {
	accounts *mocks.MockAccountRepository
	entries  *mocks.MockEntryRepository
	dir      *usecase.AccountUseCase
}

func newDirectoryFixture() *directoryFixture {
	f := &directoryFixture{
		accounts: mocks.NewMockAccountRepository(),
		entries:  mocks.NewMockEntryRepository(),
	}
	f.dir = usecase.NewAccountUseCase(f.accounts, f.entries, mocks.NewMockIDGenerator(), nil)
	return f
}

func TestCreateAccount(t *testing.T) {
	f := newDirectoryFixture()

	account, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code:     "1000",
		Name:     "Cash at Bank",
		Currency: "kes",
		Type:     domain.AccountTypeAsset,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.ID == "" {
		t.Fatal("expected generated ID")
	}
	if account.Currency != "KES" {
		t.Fatalf("currency = %q, want normalized KES", account.Currency)
	}
	if !account.IsActive {
		t.Fatal("new account should be active")
	}

	got, err := f.dir.GetAccountByCode(context.Background(), "1000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != account.ID {
		t.Fatalf("lookup by code returned %s, want %s", got.ID, account.ID)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	f := newDirectoryFixture()

	if _, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1000", Name: "Cash", Currency: "KES", Type: domain.AccountTypeAsset,
	}); err != nil {
		t.Fatalf("seed account failed: %v", err)
	}

	tests := []struct {
		name        string
		input       usecase.CreateAccountInput
		expectedErr error
	}{
		{
			name:        "duplicate code",
			input:       usecase.CreateAccountInput{Code: "1000", Name: "Other Cash", Currency: "KES", Type: domain.AccountTypeAsset},
			expectedErr: domain.ErrCodeTaken,
		},
		{
			name:        "invalid type",
			input:       usecase.CreateAccountInput{Code: "9000", Name: "Mystery", Currency: "KES", Type: domain.AccountType("WEIRD")},
			expectedErr: domain.ErrInvalidAccountType,
		},
		{
			name:        "unsupported currency",
			input:       usecase.CreateAccountInput{Code: "9100", Name: "Offshore", Currency: "XXX", Type: domain.AccountTypeAsset},
			expectedErr: domain.ErrInvalidCurrency,
		},
		{
			name:        "bad code",
			input:       usecase.CreateAccountInput{Code: "has space", Name: "Bad Code", Currency: "KES", Type: domain.AccountTypeAsset},
			expectedErr: domain.ErrInvalidAccountCode,
		},
		{
			name:        "empty name",
			input:       usecase.CreateAccountInput{Code: "9200", Name: "  ", Currency: "KES", Type: domain.AccountTypeAsset},
			expectedErr: domain.ErrInvalidAccountName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.dir.CreateAccount(context.Background(), tt.input)
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("error = %v, want %v", err, tt.expectedErr)
			}
		})
	}
}

func TestCreateAccount_ParentTypeMustMatch(t *testing.T) {
	f := newDirectoryFixture()

	parent, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1000", Name: "Current Assets", Currency: "KES", Type: domain.AccountTypeAsset,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1010", Name: "Petty Cash", Currency: "KES", Type: domain.AccountTypeAsset,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Fatalf("child.ParentID = %v, want %s", child.ParentID, parent.ID)
	}

	_, err = f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "4000", Name: "Interest Income", Currency: "KES", Type: domain.AccountTypeIncome,
		ParentID: &parent.ID,
	})
	if !errors.Is(err, domain.ErrParentTypeMismatch) {
		t.Fatalf("error = %v, want ErrParentTypeMismatch", err)
	}
}

func TestDeactivateAccount(t *testing.T) {
	f := newDirectoryFixture()

	account, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1000", Name: "Cash", Currency: "KES", Type: domain.AccountTypeAsset,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deactivated, err := f.dir.DeactivateAccount(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deactivated.IsActive {
		t.Fatal("account still active after deactivation")
	}

	stored, _ := f.accounts.GetByID(context.Background(), account.ID)
	if stored.IsActive {
		t.Fatal("stored account still active")
	}
}

func TestDeactivateAccount_NonZeroBalance(t *testing.T) {
	f := newDirectoryFixture()

	account, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1000", Name: "Cash", Currency: "KES", Type: domain.AccountTypeAsset,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.entries.Add(&domain.TransactionEntry{
		ID: "e1", AccountID: account.ID, Currency: "KES",
		Debit: decimal.NewFromInt(100), PostedAt: time.Now().UTC().Add(-time.Hour),
	})

	_, err = f.dir.DeactivateAccount(context.Background(), account.ID)
	if !errors.Is(err, domain.ErrNonZeroBalance) {
		t.Fatalf("error = %v, want ErrNonZeroBalance", err)
	}

	stored, _ := f.accounts.GetByID(context.Background(), account.ID)
	if !stored.IsActive {
		t.Fatal("account deactivated despite non-zero balance")
	}
}

func TestGetBalance(t *testing.T) {
	f := newDirectoryFixture()

	account, err := f.dir.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Code: "1000", Name: "Cash", Currency: "KES", Type: domain.AccountTypeAsset,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posted := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f.entries.Add(
		&domain.TransactionEntry{ID: "e1", AccountID: account.ID, Currency: "KES", Debit: decimal.NewFromInt(250), PostedAt: posted},
		&domain.TransactionEntry{ID: "e2", AccountID: account.ID, Currency: "KES", Credit: decimal.NewFromInt(50), PostedAt: posted.Add(time.Hour)},
	)

	balance, err := f.dir.GetBalance(context.Background(), account.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance = %s, want 200", balance.Balance)
	}
	if balance.AccountCode != "1000" || balance.Currency != "KES" {
		t.Fatalf("balance identity wrong: %+v", balance)
	}

	asOf := posted.Add(time.Minute)
	earlier, err := f.dir.GetBalance(context.Background(), account.ID, &asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !earlier.Balance.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("as-of balance = %s, want 250", earlier.Balance)
	}

	_, err = f.dir.GetBalance(context.Background(), "acc-missing", nil)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("error = %v, want ErrAccountNotFound", err)
	}
}
