package lending

import (
	"time"

	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateSchedule computes the amortization schedule for a loan. It is a
// pure function: the same inputs always produce the same installments.
//
// Flat method: total interest = principal * rate/100 * (termCount / periodsPerYear),
// split evenly across installments. Reducing balance: level-payment
// amortization with per-period interest on the remaining balance.
//
// In both methods the per-row amounts are truncated to cents and the final
// installment absorbs the rounding remainder, so the scheduled principal sums
// back to the input principal exactly.
func GenerateSchedule(
	principal decimal.Decimal,
	annualRatePercent decimal.Decimal,
	termCount int,
	frequency RepaymentFrequency,
	method InterestMethod,
	startDate time.Time,
) (Schedule, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_SCHEDULE_PARAMS", "Principal must be positive")
	}
	if termCount < 1 {
		return nil, shared.NewDomainError("INVALID_SCHEDULE_PARAMS", "Term count must be at least 1")
	}
	if annualRatePercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE_PARAMS", "Interest rate cannot be negative")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE_PARAMS", "Unknown repayment frequency")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE_PARAMS", "Unknown interest method")
	}

	if method == MethodFlat {
		return generateFlat(principal, annualRatePercent, termCount, frequency, startDate), nil
	}
	return generateReducingBalance(principal, annualRatePercent, termCount, frequency, startDate), nil
}

func generateFlat(
	principal decimal.Decimal,
	annualRatePercent decimal.Decimal,
	termCount int,
	frequency RepaymentFrequency,
	startDate time.Time,
) Schedule {
	n := decimal.NewFromInt(int64(termCount))
	periodsPerYear := decimal.NewFromInt(frequency.PeriodsPerYear())

	// Interest on the original principal for the whole term.
	totalInterest := principal.Mul(annualRatePercent).Div(hundred).
		Mul(n).Div(periodsPerYear).Round(2)

	principalEach := principal.Div(n).Truncate(2)
	interestEach := totalInterest.Div(n).Truncate(2)

	schedule := make(Schedule, 0, termCount)
	for seq := 1; seq <= termCount; seq++ {
		p := principalEach
		i := interestEach
		if seq == termCount {
			// Last row absorbs the truncation remainder so the sums match.
			p = principal.Sub(principalEach.Mul(n.Sub(decimal.NewFromInt(1))))
			i = totalInterest.Sub(interestEach.Mul(n.Sub(decimal.NewFromInt(1))))
		}
		schedule = append(schedule, Installment{
			Sequence:           seq,
			DueDate:            dueDateFor(startDate, frequency, seq),
			ScheduledPrincipal: p,
			ScheduledInterest:  i,
			PaidPrincipal:      decimal.Zero,
			PaidInterest:       decimal.Zero,
			Status:             InstallmentStatusPending,
		})
	}
	return schedule
}

func generateReducingBalance(
	principal decimal.Decimal,
	annualRatePercent decimal.Decimal,
	termCount int,
	frequency RepaymentFrequency,
	startDate time.Time,
) Schedule {
	n := decimal.NewFromInt(int64(termCount))
	periodicRate := annualRatePercent.Div(hundred).
		Div(decimal.NewFromInt(frequency.PeriodsPerYear()))

	var levelPayment decimal.Decimal
	if periodicRate.IsZero() {
		levelPayment = principal.Div(n).Truncate(2)
	} else {
		// P * r * (1+r)^n / ((1+r)^n - 1)
		onePlusRPowN := decimal.NewFromInt(1).Add(periodicRate).Pow(n)
		levelPayment = principal.Mul(periodicRate).Mul(onePlusRPowN).
			Div(onePlusRPowN.Sub(decimal.NewFromInt(1))).Round(2)
	}

	schedule := make(Schedule, 0, termCount)
	balance := principal
	for seq := 1; seq <= termCount; seq++ {
		interest := balance.Mul(periodicRate).Round(2)
		principalPart := levelPayment.Sub(interest)

		switch {
		case seq == termCount:
			// Final installment retires the remaining balance exactly,
			// absorbing any rounding drift from earlier rows.
			principalPart = balance
		case principalPart.GreaterThan(balance):
			principalPart = balance
		case principalPart.IsNegative():
			principalPart = decimal.Zero
		}

		balance = balance.Sub(principalPart)

		schedule = append(schedule, Installment{
			Sequence:           seq,
			DueDate:            dueDateFor(startDate, frequency, seq),
			ScheduledPrincipal: principalPart,
			ScheduledInterest:  interest,
			PaidPrincipal:      decimal.Zero,
			PaidInterest:       decimal.Zero,
			Status:             InstallmentStatusPending,
		})
	}
	return schedule
}

// dueDateFor advances the start date by the given number of repayment periods
func dueDateFor(startDate time.Time, frequency RepaymentFrequency, periods int) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return startDate.AddDate(0, 0, 7*periods)
	case FrequencyBiweekly:
		return startDate.AddDate(0, 0, 14*periods)
	default:
		return startDate.AddDate(0, periods, 0)
	}
}
