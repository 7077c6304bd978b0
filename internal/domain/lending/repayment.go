package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanRepayment is the record of a single payment received against a loan.
// Records are append-only: corrections are new repayments, never edits. The
// only exception is a backdated replay, which rewrites the derived portions
// to match the recomputed allocation order.
type LoanRepayment struct {
	shared.BaseEntity
	LoanID            uuid.UUID       `json:"loan_id"`
	PaymentDate       time.Time       `json:"payment_date"`
	Amount            decimal.Decimal `json:"amount"`
	PrincipalPortion  decimal.Decimal `json:"principal_portion"`
	InterestPortion   decimal.Decimal `json:"interest_portion"`
	Overpayment       decimal.Decimal `json:"overpayment"`
	ExternalReference string          `json:"external_reference,omitempty"`
}

// NewLoanRepayment creates a repayment record from an allocation result
func NewLoanRepayment(
	loanID uuid.UUID,
	amount decimal.Decimal,
	allocation AllocationResult,
	paymentDate time.Time,
	externalReference string,
) *LoanRepayment {
	return &LoanRepayment{
		BaseEntity:        shared.NewBaseEntity(),
		LoanID:            loanID,
		PaymentDate:       dateOnly(paymentDate),
		Amount:            amount,
		PrincipalPortion:  allocation.PrincipalApplied,
		InterestPortion:   allocation.InterestApplied,
		Overpayment:       allocation.Overpayment,
		ExternalReference: externalReference,
	}
}
