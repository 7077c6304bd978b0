package lending

import (
	"time"

	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AllocationResult describes how a payment was spread across a schedule
type AllocationResult struct {
	Schedule         Schedule
	PrincipalApplied decimal.Decimal
	InterestApplied  decimal.Decimal
	Overpayment      decimal.Decimal
}

// Allocate spreads a payment across the schedule using the fixed allocation
// policy: oldest overdue interest first, then oldest overdue principal, then
// the next due installment's interest, then its principal, installment by
// installment until the payment is exhausted or the schedule is settled.
//
// Allocate never mutates its input; it returns a new schedule with updated
// paid amounts and statuses. It is deterministic: identical inputs always
// produce identical outputs. Any amount beyond the total outstanding balance
// is returned as Overpayment for the caller's prepayment policy to decide on.
func Allocate(schedule Schedule, amount decimal.Decimal, paymentDate time.Time) (AllocationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return AllocationResult{}, shared.NewDomainError("NON_POSITIVE_PAYMENT", "Payment amount must be positive")
	}
	if schedule.TotalOutstanding().IsZero() {
		return AllocationResult{}, shared.NewDomainError("SCHEDULE_SETTLED", "Schedule has no outstanding balance")
	}

	updated := schedule.Clone()
	remaining := amount
	principalApplied := decimal.Zero
	interestApplied := decimal.Zero

	// Arrears first: interest across all overdue installments in due-date
	// order, then their principal.
	for idx := range updated {
		if !updated[idx].IsOverdue(paymentDate) {
			continue
		}
		var applied decimal.Decimal
		remaining, applied = payInterest(&updated[idx], remaining)
		interestApplied = interestApplied.Add(applied)
	}
	for idx := range updated {
		if !updated[idx].IsOverdue(paymentDate) {
			continue
		}
		var applied decimal.Decimal
		remaining, applied = payPrincipal(&updated[idx], remaining)
		principalApplied = principalApplied.Add(applied)
	}

	// Then current installments in sequence order, interest before principal
	// within each installment.
	for idx := range updated {
		if updated[idx].IsOverdue(paymentDate) {
			continue
		}
		var applied decimal.Decimal
		remaining, applied = payInterest(&updated[idx], remaining)
		interestApplied = interestApplied.Add(applied)
		remaining, applied = payPrincipal(&updated[idx], remaining)
		principalApplied = principalApplied.Add(applied)
	}

	for idx := range updated {
		updated[idx].refreshStatus(paymentDate)
	}

	return AllocationResult{
		Schedule:         updated,
		PrincipalApplied: principalApplied,
		InterestApplied:  interestApplied,
		Overpayment:      remaining,
	}, nil
}

// payInterest applies as much of the available amount as the installment's
// outstanding interest allows, returning the amount left and the amount applied
func payInterest(inst *Installment, available decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if available.IsZero() {
		return available, decimal.Zero
	}
	due := inst.OutstandingInterest()
	applied := decimal.Min(due, available)
	if applied.IsPositive() {
		inst.PaidInterest = inst.PaidInterest.Add(applied)
	}
	return available.Sub(applied), applied
}

// payPrincipal applies as much of the available amount as the installment's
// outstanding principal allows, returning the amount left and the amount applied
func payPrincipal(inst *Installment, available decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if available.IsZero() {
		return available, decimal.Zero
	}
	due := inst.OutstandingPrincipal()
	applied := decimal.Min(due, available)
	if applied.IsPositive() {
		inst.PaidPrincipal = inst.PaidPrincipal.Add(applied)
	}
	return available.Sub(applied), applied
}
