package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Loans Receivable"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateAccountCode(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"1000", "CASH", "loans.receivable", "ASSET-01"} {
		if err := ValidateAccountCode(code); err != nil {
			t.Fatalf("expected %q to be valid, got %v", code, err)
		}
	}

	for _, code := range []string{"", "-leading", "has space", strings.Repeat("x", 65)} {
		if err := ValidateAccountCode(code); !errors.Is(err, ErrInvalidAccountCode) {
			t.Fatalf("expected %q to be rejected, got %v", code, err)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("KES"); err != nil {
		t.Fatalf("expected KES to be valid, got %v", err)
	}

	if err := ValidateCurrency("kes"); err != nil {
		t.Fatalf("expected lowercase to normalise, got %v", err)
	}

	if err := ValidateCurrency("XXX"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestAccountType(t *testing.T) {
	t.Parallel()

	for _, at := range AccountTypes {
		if !at.Valid() {
			t.Fatalf("expected %s to be valid", at)
		}
	}

	if AccountType("FOO").Valid() {
		t.Fatal("expected FOO to be invalid")
	}

	if !AccountTypeAsset.DebitNormal() || !AccountTypeExpense.DebitNormal() {
		t.Fatal("assets and expenses are debit-normal")
	}

	if AccountTypeLiability.DebitNormal() || AccountTypeIncome.DebitNormal() {
		t.Fatal("liabilities and income are credit-normal")
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -1)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected clamp to 1000, got %d", limit)
	}
}

func TestLoan_BucketFor(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	due := func(days int) *time.Time {
		d := now.AddDate(0, 0, -days)
		return &d
	}

	tests := []struct {
		name    string
		dueDate *time.Time
		want    AgingBucket
		bucketed bool
	}{
		{"no due date", nil, "", false},
		{"not yet due", due(-10), AgingCurrent, true},
		{"29 days overdue", due(29), AgingCurrent, true},
		{"45 days overdue", due(45), Aging30To59, true},
		{"75 days overdue", due(75), Aging60To89, true},
		{"200 days overdue", due(200), Aging90Plus, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loan{DueDate: tt.dueDate}

			bucket, ok := l.BucketFor(now)
			if ok != tt.bucketed || bucket != tt.want {
				t.Fatalf("expected (%s, %v), got (%s, %v)", tt.want, tt.bucketed, bucket, ok)
			}
		})
	}
}
