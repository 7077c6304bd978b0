package lending

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending    LoanStatus = "PENDING"
	LoanStatusApproved   LoanStatus = "APPROVED"
	LoanStatusRejected   LoanStatus = "REJECTED"
	LoanStatusCancelled  LoanStatus = "CANCELLED"
	LoanStatusDisbursed  LoanStatus = "DISBURSED"
	LoanStatusClosed     LoanStatus = "CLOSED"
	LoanStatusWrittenOff LoanStatus = "WRITTEN_OFF"
)

// IsValid checks if the status is a valid LoanStatus
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected,
		LoanStatusCancelled, LoanStatusDisbursed, LoanStatusClosed, LoanStatusWrittenOff:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave this status
func (s LoanStatus) IsTerminal() bool {
	switch s {
	case LoanStatusRejected, LoanStatusCancelled, LoanStatusClosed, LoanStatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation of LoanStatus
func (s LoanStatus) String() string {
	return string(s)
}

// Loan is the lending aggregate root. It owns its installment schedule and
// is the only writer of repayment records; every mutation goes through one
// of the lifecycle methods below, which enforce the transition guards.
type Loan struct {
	shared.BaseAggregateRoot
	LoanNumber           string          `json:"loan_number"`
	ProductID            uuid.UUID       `json:"product_id"`
	MemberID             uuid.UUID       `json:"member_id"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount"`
	ApplicationDate      time.Time       `json:"application_date"`
	Status               LoanStatus      `json:"status"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt          *time.Time      `json:"disbursed_at,omitempty"`
	ExpectedEndDate      *time.Time      `json:"expected_end_date,omitempty"`
	ClosedAt             *time.Time      `json:"closed_at,omitempty"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	WriteOffReason       string          `json:"write_off_reason,omitempty"`
	Schedule             Schedule        `json:"schedule,omitempty"`
}

// NewLoan creates a loan application against an active product
func NewLoan(
	loanNumber string,
	product *LoanProduct,
	memberID uuid.UUID,
	principal decimal.Decimal,
	applicationDate time.Time,
) (*Loan, error) {
	if loanNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOAN_NUMBER", "Loan number cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member reference cannot be empty")
	}
	if !product.Active {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is no longer offered", product.Code))
	}
	if !product.PrincipalInRange(principal) {
		return nil, shared.NewDomainError("PRINCIPAL_OUT_OF_RANGE",
			fmt.Sprintf("Principal %s is outside the product range [%s, %s]",
				principal.StringFixed(2), product.MinPrincipal.StringFixed(2), product.MaxPrincipal.StringFixed(2)))
	}

	l := &Loan{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		LoanNumber:           loanNumber,
		ProductID:            product.ID,
		MemberID:             memberID,
		PrincipalAmount:      principal,
		ApplicationDate:      dateOnly(applicationDate),
		Status:               LoanStatusPending,
		OutstandingPrincipal: decimal.Zero,
		OutstandingInterest:  decimal.Zero,
	}

	l.AddDomainEvent(NewLoanCreatedEvent(l))

	return l, nil
}

// invalidTransition builds the error every unmet guard returns, naming the
// current status and the attempted transition
func (l *Loan) invalidTransition(attempted string) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot %s loan %s in status %s", attempted, l.LoanNumber, l.Status))
}

// Approve moves a pending loan to approved
func (l *Loan) Approve(at time.Time) error {
	if l.Status != LoanStatusPending {
		return l.invalidTransition("approve")
	}
	approvedAt := at
	l.Status = LoanStatusApproved
	l.ApprovedAt = &approvedAt
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanApprovedEvent(l))
	return nil
}

// Reject declines a pending loan. Rejected is terminal.
func (l *Loan) Reject(reason string) error {
	if l.Status != LoanStatusPending {
		return l.invalidTransition("reject")
	}
	l.Status = LoanStatusRejected
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanRejectedEvent(l, reason))
	return nil
}

// Cancel withdraws an approved loan before disbursement. Cancelled is terminal.
func (l *Loan) Cancel(reason string) error {
	if l.Status != LoanStatusApproved {
		return l.invalidTransition("cancel")
	}
	l.Status = LoanStatusCancelled
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanCancelledEvent(l, reason))
	return nil
}

// Disburse releases funds on an approved loan: the amortization schedule is
// generated from the product terms, the full principal and total scheduled
// interest become outstanding, and the expected end date is fixed to the
// last installment's due date.
func (l *Loan) Disburse(product *LoanProduct, at time.Time) error {
	if l.Status != LoanStatusApproved {
		return l.invalidTransition("disburse")
	}

	schedule, err := GenerateSchedule(
		l.PrincipalAmount,
		product.AnnualRatePercent,
		product.TermCount,
		product.Frequency,
		product.Method,
		at,
	)
	if err != nil {
		return err
	}
	for idx := range schedule {
		schedule[idx].LoanID = l.ID
	}

	disbursedAt := at
	expectedEnd := schedule[len(schedule)-1].DueDate
	l.Status = LoanStatusDisbursed
	l.DisbursedAt = &disbursedAt
	l.ExpectedEndDate = &expectedEnd
	l.Schedule = schedule
	l.OutstandingPrincipal = l.PrincipalAmount
	l.OutstandingInterest = schedule.ScheduledInterest()
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanDisbursedEvent(l))
	return nil
}

// RecordRepayment allocates a payment against the schedule and appends an
// immutable repayment record. When the payment exceeds the outstanding
// balance, allowOverpayment decides whether the excess is kept on the record
// as a prepayment or the whole command is refused; either way the aggregate
// is left untouched on error.
func (l *Loan) RecordRepayment(
	amount decimal.Decimal,
	paymentDate time.Time,
	externalReference string,
	allowOverpayment bool,
) (*LoanRepayment, error) {
	if l.Status != LoanStatusDisbursed {
		return nil, l.invalidTransition("record a repayment on")
	}
	if !l.OutstandingPrincipal.IsPositive() && !l.OutstandingInterest.IsPositive() {
		return nil, shared.NewDomainError("SCHEDULE_SETTLED", "Schedule has no outstanding balance")
	}

	result, err := Allocate(l.Schedule, amount, paymentDate)
	if err != nil {
		return nil, err
	}
	if result.Overpayment.IsPositive() && !allowOverpayment {
		return nil, shared.NewDomainError("OVERPAYMENT_REJECTED",
			fmt.Sprintf("Payment exceeds outstanding balance by %s", result.Overpayment.StringFixed(2)))
	}

	repayment := NewLoanRepayment(l.ID, amount, result, paymentDate, externalReference)

	l.Schedule = result.Schedule
	l.OutstandingPrincipal = l.Schedule.OutstandingPrincipal()
	l.OutstandingInterest = l.Schedule.OutstandingInterest()
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanRepaymentRecordedEvent(l, repayment))
	return repayment, nil
}

// ReplayRepayments rebuilds the paid state of a disbursed loan from scratch
// by allocating every repayment, in payment-date order, against a pristine
// copy of the schedule. Used when a backdated repayment arrives: patching
// the existing allocation in place would break the fixed allocation order,
// so the whole history is recomputed instead. Each repayment's principal and
// interest portions are rewritten to match its position in the replayed
// order.
func (l *Loan) ReplayRepayments(product *LoanProduct, repayments []*LoanRepayment) error {
	if l.Status != LoanStatusDisbursed {
		return l.invalidTransition("replay repayments on")
	}
	if l.DisbursedAt == nil {
		return shared.NewDomainError("INVALID_STATE", "Disbursed loan has no disbursement date")
	}

	pristine, err := GenerateSchedule(
		l.PrincipalAmount,
		product.AnnualRatePercent,
		product.TermCount,
		product.Frequency,
		product.Method,
		*l.DisbursedAt,
	)
	if err != nil {
		return err
	}
	for idx := range pristine {
		pristine[idx].LoanID = l.ID
	}

	ordered := make([]*LoanRepayment, len(repayments))
	copy(ordered, repayments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PaymentDate.Before(ordered[j].PaymentDate)
	})

	schedule := pristine
	for _, r := range ordered {
		result, err := Allocate(schedule, r.Amount, r.PaymentDate)
		if err != nil {
			return err
		}
		r.PrincipalPortion = result.PrincipalApplied
		r.InterestPortion = result.InterestApplied
		r.Overpayment = result.Overpayment
		schedule = result.Schedule
	}

	l.Schedule = schedule
	l.OutstandingPrincipal = schedule.OutstandingPrincipal()
	l.OutstandingInterest = schedule.OutstandingInterest()
	return nil
}

// RecordBackdatedRepayment records a payment dated before already-recorded
// repayments. The whole repayment history, including the new record, is
// replayed against a pristine schedule so the allocation order stays
// consistent with payment dates.
func (l *Loan) RecordBackdatedRepayment(
	product *LoanProduct,
	amount decimal.Decimal,
	paymentDate time.Time,
	externalReference string,
	allowOverpayment bool,
	prior []*LoanRepayment,
) (*LoanRepayment, error) {
	if l.Status != LoanStatusDisbursed {
		return nil, l.invalidTransition("record a repayment on")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("NON_POSITIVE_PAYMENT", "Payment amount must be positive")
	}

	repayment := NewLoanRepayment(l.ID, amount, AllocationResult{
		PrincipalApplied: decimal.Zero,
		InterestApplied:  decimal.Zero,
		Overpayment:      decimal.Zero,
	}, paymentDate, externalReference)

	all := make([]*LoanRepayment, 0, len(prior)+1)
	all = append(all, prior...)
	all = append(all, repayment)

	if err := l.ReplayRepayments(product, all); err != nil {
		return nil, err
	}
	if repayment.Overpayment.IsPositive() && !allowOverpayment {
		return nil, shared.NewDomainError("OVERPAYMENT_REJECTED",
			fmt.Sprintf("Payment exceeds outstanding balance by %s", repayment.Overpayment.StringFixed(2)))
	}

	l.IncrementVersion()
	l.AddDomainEvent(NewLoanRepaymentRecordedEvent(l, repayment))
	return repayment, nil
}

// Close settles a fully repaid loan. Permitted only when nothing is outstanding.
func (l *Loan) Close(at time.Time) error {
	if l.Status != LoanStatusDisbursed {
		return l.invalidTransition("close")
	}
	if !l.OutstandingPrincipal.IsZero() || !l.OutstandingInterest.IsZero() {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot close loan %s with outstanding balance %s",
				l.LoanNumber, l.OutstandingPrincipal.Add(l.OutstandingInterest).StringFixed(2)))
	}
	closedAt := at
	l.Status = LoanStatusClosed
	l.ClosedAt = &closedAt
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanClosedEvent(l))
	return nil
}

// WriteOff administratively closes a disbursed loan deemed uncollectible,
// zeroing the outstanding balance without a matching repayment
func (l *Loan) WriteOff(reason string, at time.Time) error {
	if l.Status != LoanStatusDisbursed {
		return l.invalidTransition("write off")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Write-off reason cannot be empty")
	}
	writtenOffPrincipal := l.OutstandingPrincipal
	writtenOffInterest := l.OutstandingInterest
	closedAt := at
	l.Status = LoanStatusWrittenOff
	l.OutstandingPrincipal = decimal.Zero
	l.OutstandingInterest = decimal.Zero
	l.WriteOffReason = reason
	l.ClosedAt = &closedAt
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanWrittenOffEvent(l, reason, writtenOffPrincipal, writtenOffInterest))
	return nil
}

// ClassifyRisk ages this loan's schedule as of the given date
func (l *Loan) ClassifyRisk(asOf time.Time) RiskClassification {
	return ClassifyRisk(l.Schedule, asOf)
}
