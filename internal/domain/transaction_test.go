package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionEntry_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		debit   decimal.Decimal
		credit  decimal.Decimal
		wantErr error
	}{
		{
			name:   "debit only",
			debit:  decimal.NewFromInt(100),
			credit: decimal.Zero,
		},
		{
			name:   "credit only",
			debit:  decimal.Zero,
			credit: decimal.NewFromInt(100),
		},
		{
			name:    "both sides set",
			debit:   decimal.NewFromInt(100),
			credit:  decimal.NewFromInt(100),
			wantErr: ErrEntryBothSides,
		},
		{
			name:    "neither side set",
			debit:   decimal.Zero,
			credit:  decimal.Zero,
			wantErr: ErrEntryNoAmount,
		},
		{
			name:    "negative debit",
			debit:   decimal.NewFromInt(-5),
			credit:  decimal.Zero,
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "negative credit",
			debit:   decimal.Zero,
			credit:  decimal.NewFromInt(-5),
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &TransactionEntry{Debit: tt.debit, Credit: tt.credit}

			err := e.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateBalanced(t *testing.T) {
	t.Parallel()

	t.Run("balanced entries", func(t *testing.T) {
		entries := []*TransactionEntry{
			{Debit: decimal.RequireFromString("33.34"), Credit: decimal.Zero},
			{Debit: decimal.RequireFromString("66.66"), Credit: decimal.Zero},
			{Debit: decimal.Zero, Credit: decimal.RequireFromString("100.00")},
		}

		if err := ValidateBalanced(entries); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("unbalanced entries report both totals", func(t *testing.T) {
		entries := []*TransactionEntry{
			{Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
			{Debit: decimal.Zero, Credit: decimal.NewFromInt(50)},
		}

		err := ValidateBalanced(entries)
		if !errors.Is(err, ErrUnbalanced) {
			t.Fatalf("expected ErrUnbalanced, got %v", err)
		}
	})

	t.Run("exact decimal comparison survives repeated addition", func(t *testing.T) {
		// 0.1 added ten times equals exactly 1 in decimal arithmetic,
		// which is the whole reason floats are banned here.
		var entries []*TransactionEntry
		for i := 0; i < 10; i++ {
			entries = append(entries, &TransactionEntry{
				Debit:  decimal.RequireFromString("0.1"),
				Credit: decimal.Zero,
			})
		}

		entries = append(entries, &TransactionEntry{
			Debit:  decimal.Zero,
			Credit: decimal.NewFromInt(1),
		})

		if err := ValidateBalanced(entries); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestAccountIDs(t *testing.T) {
	t.Parallel()

	entries := []*TransactionEntry{
		{AccountID: "b"},
		{AccountID: "a"},
		{AccountID: "b"},
		{AccountID: "c"},
	}

	ids := AccountIDs(entries)
	if len(ids) != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", len(ids))
	}
}

func TestEntry_Amount(t *testing.T) {
	t.Parallel()

	debit := &TransactionEntry{Debit: decimal.NewFromInt(75), Credit: decimal.Zero}
	if !debit.Amount().Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected +75, got %s", debit.Amount())
	}

	credit := &TransactionEntry{Debit: decimal.Zero, Credit: decimal.NewFromInt(75)}
	if !credit.Amount().Equal(decimal.NewFromInt(-75)) {
		t.Fatalf("expected -75, got %s", credit.Amount())
	}
}
