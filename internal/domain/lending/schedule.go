package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the repayment state of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending       InstallmentStatus = "PENDING"
	InstallmentStatusPartiallyPaid InstallmentStatus = "PARTIALLY_PAID"
	InstallmentStatusPaid          InstallmentStatus = "PAID"
	InstallmentStatusOverdue       InstallmentStatus = "OVERDUE"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartiallyPaid,
		InstallmentStatusPaid, InstallmentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// Installment is one row of a loan's amortization schedule. The schedule is
// created atomically at disbursement and is immutable in count; only the paid
// amounts and status mutate afterwards, and only through the allocator.
type Installment struct {
	ID                 uuid.UUID         `json:"id"`
	LoanID             uuid.UUID         `json:"loan_id"`
	Sequence           int               `json:"sequence"`
	DueDate            time.Time         `json:"due_date"`
	ScheduledPrincipal decimal.Decimal   `json:"scheduled_principal"`
	ScheduledInterest  decimal.Decimal   `json:"scheduled_interest"`
	PaidPrincipal      decimal.Decimal   `json:"paid_principal"`
	PaidInterest       decimal.Decimal   `json:"paid_interest"`
	Status             InstallmentStatus `json:"status"`
}

// OutstandingPrincipal returns the unpaid scheduled principal
func (i *Installment) OutstandingPrincipal() decimal.Decimal {
	return i.ScheduledPrincipal.Sub(i.PaidPrincipal)
}

// OutstandingInterest returns the unpaid scheduled interest
func (i *Installment) OutstandingInterest() decimal.Decimal {
	return i.ScheduledInterest.Sub(i.PaidInterest)
}

// TotalOutstanding returns the unpaid principal plus interest
func (i *Installment) TotalOutstanding() decimal.Decimal {
	return i.OutstandingPrincipal().Add(i.OutstandingInterest())
}

// IsSettled reports whether the installment is fully paid
func (i *Installment) IsSettled() bool {
	return i.TotalOutstanding().IsZero()
}

// IsOverdue reports whether the installment has an unpaid balance past its
// due date as of the given date
func (i *Installment) IsOverdue(asOf time.Time) bool {
	return !i.IsSettled() && dateOnly(i.DueDate).Before(dateOnly(asOf))
}

// refreshStatus recomputes the status from the paid amounts and the given date
func (i *Installment) refreshStatus(asOf time.Time) {
	switch {
	case i.IsSettled():
		i.Status = InstallmentStatusPaid
	case i.PaidPrincipal.IsPositive() || i.PaidInterest.IsPositive():
		i.Status = InstallmentStatusPartiallyPaid
	case i.IsOverdue(asOf):
		i.Status = InstallmentStatusOverdue
	default:
		i.Status = InstallmentStatusPending
	}
}

// Schedule is the ordered sequence of installments owned by a loan
type Schedule []Installment

// OutstandingPrincipal returns the total unpaid principal across the schedule
func (s Schedule) OutstandingPrincipal() decimal.Decimal {
	total := decimal.Zero
	for idx := range s {
		total = total.Add(s[idx].OutstandingPrincipal())
	}
	return total
}

// OutstandingInterest returns the total unpaid interest across the schedule
func (s Schedule) OutstandingInterest() decimal.Decimal {
	total := decimal.Zero
	for idx := range s {
		total = total.Add(s[idx].OutstandingInterest())
	}
	return total
}

// TotalOutstanding returns the total unpaid balance across the schedule
func (s Schedule) TotalOutstanding() decimal.Decimal {
	return s.OutstandingPrincipal().Add(s.OutstandingInterest())
}

// ScheduledPrincipal returns the sum of scheduled principal across all rows
func (s Schedule) ScheduledPrincipal() decimal.Decimal {
	total := decimal.Zero
	for idx := range s {
		total = total.Add(s[idx].ScheduledPrincipal)
	}
	return total
}

// ScheduledInterest returns the sum of scheduled interest across all rows
func (s Schedule) ScheduledInterest() decimal.Decimal {
	total := decimal.Zero
	for idx := range s {
		total = total.Add(s[idx].ScheduledInterest)
	}
	return total
}

// EarliestUnsettled returns the first installment with an unpaid balance,
// or nil when the schedule is fully settled
func (s Schedule) EarliestUnsettled() *Installment {
	for idx := range s {
		if !s[idx].IsSettled() {
			return &s[idx]
		}
	}
	return nil
}

// OverduePrincipal returns the unpaid principal on installments past due as
// of the given date
func (s Schedule) OverduePrincipal(asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for idx := range s {
		if s[idx].IsOverdue(asOf) {
			total = total.Add(s[idx].OutstandingPrincipal())
		}
	}
	return total
}

// Clone returns a deep copy of the schedule
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

// dateOnly truncates a timestamp to its calendar date in UTC
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
