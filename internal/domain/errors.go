package domain

import "errors"

var (
	// Accounting errors: the request would break double-entry bookkeeping.
	ErrUnbalanced = errors.New("transaction unbalanced")

	// Validation errors: the caller sent something malformed.
	ErrEntryBothSides     = errors.New("entry cannot have both debit and credit amounts")
	ErrEntryNoAmount      = errors.New("entry must have either debit or credit amount")
	ErrNegativeAmount     = errors.New("debit and credit amounts cannot be negative")
	ErrTooFewEntries      = errors.New("transaction requires at least two entries")
	ErrMissingKey         = errors.New("idempotency key is required")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrCurrencyMismatch   = errors.New("entry currency does not match account currency")
	ErrParentTypeMismatch = errors.New("child account must have same type as parent")
	ErrCodeTaken          = errors.New("account code already exists")
	ErrNonZeroBalance     = errors.New("cannot deactivate account with non-zero balance")

	// Not-found errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLoanNotFound        = errors.New("loan not found")

	// Concurrency errors: transient, safe to retry.
	ErrLockTimeout     = errors.New("timed out acquiring account lock")
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrDuplicateIdempotencyKey is raised by storage when a concurrent
	// duplicate slipped past the pre-commit checks and lost the race on
	// the unique key. The engine catches it and replays the winner.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already committed")

	// Conflict errors.
	ErrAlreadyReversed = errors.New("transaction already reversed")
	ErrLoanStatus      = errors.New("loan is not in the required status")
)

// IsRetryable reports whether the caller may safely retry the same
// request. Only concurrency failures qualify; everything else is a
// caller fault or a genuine conflict.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrVersionConflict)
}
