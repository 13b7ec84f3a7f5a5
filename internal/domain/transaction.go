package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction. The only
// legal moves are (none) -> POSTED on commit and POSTED -> REVERSED.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusPosted   TransactionStatus = "POSTED"
	TransactionStatusReversed TransactionStatus = "REVERSED"
)

// Transaction is one balanced movement of value. Once POSTED its entries
// are immutable; corrections happen by posting a reversal, never by
// editing history.
type Transaction struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PostedAt       time.Time
	ReversalOf     *string
	ID             string
	IdempotencyKey string
	Description    string
	Status         TransactionStatus
	Entries        []*TransactionEntry
	Version        int64
}

// TransactionEntry is one leg of a transaction. Exactly one of Debit and
// Credit is strictly positive; the other is exactly zero. AccountCode is
// denormalized from the entry's account for presentation. RunningBalance
// is persisted when a caller supplies it and nil otherwise.
type TransactionEntry struct {
	PostedAt       time.Time
	RunningBalance *decimal.Decimal
	ID             string
	TransactionID  string
	AccountID      string
	AccountCode    string
	Currency       string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
}

// Validate checks the one-sidedness invariant of a single entry.
func (e *TransactionEntry) Validate() error {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return ErrNegativeAmount
	}

	hasDebit := e.Debit.IsPositive()
	hasCredit := e.Credit.IsPositive()

	if hasDebit && hasCredit {
		return ErrEntryBothSides
	}

	if !hasDebit && !hasCredit {
		return ErrEntryNoAmount
	}

	return nil
}

// Amount is the signed contribution of this entry to its account's
// balance: debit minus credit.
func (e *TransactionEntry) Amount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// SumEntries returns total debits and total credits across entries,
// computed with exact decimal arithmetic.
func SumEntries(entries []*TransactionEntry) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero

	for _, e := range entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}

	return debits, credits
}

// ValidateBalanced enforces the ledger-wide invariant that debits equal
// credits. The returned error reports both totals.
func ValidateBalanced(entries []*TransactionEntry) error {
	debits, credits := SumEntries(entries)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s != credits %s", ErrUnbalanced, debits, credits)
	}

	return nil
}

// AccountIDs returns the set of distinct account IDs touched by entries.
func AccountIDs(entries []*TransactionEntry) []string {
	seen := make(map[string]bool, len(entries))

	var ids []string
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}

	return ids
}
