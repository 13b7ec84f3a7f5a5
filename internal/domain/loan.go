package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusPending    LoanStatus = "PENDING"
	LoanStatusApproved   LoanStatus = "APPROVED"
	LoanStatusDisbursed  LoanStatus = "DISBURSED"
	LoanStatusActive     LoanStatus = "ACTIVE"
	LoanStatusClosed     LoanStatus = "CLOSED"
	LoanStatusWrittenOff LoanStatus = "WRITTEN_OFF"
)

// Loan tracks a lending position. The loan lifecycle is a client of the
// posting engine: every balance-affecting move (disbursement, repayment,
// write-off) happens through a posted transaction.
type Loan struct {
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DisbursementDate   *time.Time
	DueDate            *time.Time
	LastPaymentDate    *time.Time
	ID                 string
	AccountID          string
	Currency           string
	Status             LoanStatus
	PrincipalAmount    decimal.Decimal
	InterestRate       decimal.Decimal
	OutstandingBalance decimal.Decimal
	Version            int64
}

// AgingBucket names the delinquency buckets of the aging report.
type AgingBucket string

const (
	AgingCurrent    AgingBucket = "CURRENT"
	Aging30To59     AgingBucket = "30-59_DAYS"
	Aging60To89     AgingBucket = "60-89_DAYS"
	Aging90Plus     AgingBucket = "90_PLUS_DAYS"
)

// AgingBuckets lists the buckets in report order.
var AgingBuckets = []AgingBucket{AgingCurrent, Aging30To59, Aging60To89, Aging90Plus}

// BucketFor places a loan into an aging bucket given the current date.
// Loans without a due date are not bucketed.
func (l *Loan) BucketFor(now time.Time) (AgingBucket, bool) {
	if l.DueDate == nil {
		return "", false
	}

	daysOverdue := int(now.Sub(*l.DueDate).Hours() / 24)
	switch {
	case daysOverdue <= 29:
		return AgingCurrent, true
	case daysOverdue <= 59:
		return Aging30To59, true
	case daysOverdue <= 89:
		return Aging60To89, true
	default:
		return Aging90Plus, true
	}
}
