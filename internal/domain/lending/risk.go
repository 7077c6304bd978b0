package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskBucket is a portfolio-at-risk aging bucket
type RiskBucket string

const (
	RiskCurrent   RiskBucket = "CURRENT"
	RiskPAR30     RiskBucket = "PAR_30"
	RiskPAR60     RiskBucket = "PAR_60"
	RiskPAR90Plus RiskBucket = "PAR_90_PLUS"
)

// RiskClassification summarizes a loan's arrears position as of a date
type RiskClassification struct {
	Bucket           RiskBucket
	DaysOverdue      int
	OverduePrincipal decimal.Decimal
	OverdueInterest  decimal.Decimal
	AsOf             time.Time
}

// BucketForDays maps days past due to an aging bucket. Boundaries are
// inclusive on the upper edge: 30 days is PAR_30, 31 is PAR_60, 60 is
// PAR_60, 61 is PAR_90_PLUS.
func BucketForDays(days int) RiskBucket {
	switch {
	case days <= 0:
		return RiskCurrent
	case days <= 30:
		return RiskPAR30
	case days <= 60:
		return RiskPAR60
	default:
		return RiskPAR90Plus
	}
}

// ClassifyRisk ages the schedule as of the given date. Days overdue is
// measured from the due date of the oldest installment with any unpaid
// amount; fully settled installments never contribute regardless of when
// they were paid.
func ClassifyRisk(schedule Schedule, asOf time.Time) RiskClassification {
	asOfDay := dateOnly(asOf)
	classification := RiskClassification{
		Bucket:           RiskCurrent,
		OverduePrincipal: decimal.Zero,
		OverdueInterest:  decimal.Zero,
		AsOf:             asOfDay,
	}

	for _, inst := range schedule {
		if !inst.IsOverdue(asOf) {
			continue
		}
		classification.OverduePrincipal = classification.OverduePrincipal.Add(inst.OutstandingPrincipal())
		classification.OverdueInterest = classification.OverdueInterest.Add(inst.OutstandingInterest())
		days := int(asOfDay.Sub(dateOnly(inst.DueDate)).Hours() / 24)
		if days > classification.DaysOverdue {
			classification.DaysOverdue = days
		}
	}

	classification.Bucket = BucketForDays(classification.DaysOverdue)
	return classification
}
