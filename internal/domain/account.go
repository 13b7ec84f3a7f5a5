package domain

import "time"

// AccountType classifies an account in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in a stable order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}

	return false
}

// DebitNormal reports whether a positive balance on this account type
// sits on the debit side of a trial balance.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account is a node in the chart of accounts. The posting engine treats
// accounts as read-only; the directory owns their lifecycle.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ParentID  *string
	ID        string
	Code      string
	Name      string
	Currency  string
	Type      AccountType
	Version   int64
	IsActive  bool
}

// CanParent reports whether parent may hold a as a child. A child must
// share its parent's type.
func (a *Account) CanParent(parent *Account) error {
	if parent != nil && parent.Type != a.Type {
		return ErrParentTypeMismatch
	}

	return nil
}
