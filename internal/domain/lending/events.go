package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanProductCreatedEvent is raised when a new loan product is created
type LoanProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID         uuid.UUID          `json:"product_id"`
	Code              string             `json:"code"`
	Name              string             `json:"name"`
	AnnualRatePercent decimal.Decimal    `json:"annual_rate_percent"`
	TermCount         int                `json:"term_count"`
	Frequency         RepaymentFrequency `json:"frequency"`
	Method            InterestMethod     `json:"method"`
}

// EventType returns the event type name
func (e *LoanProductCreatedEvent) EventType() string {
	return "LoanProductCreated"
}

// NewLoanProductCreatedEvent creates a new LoanProductCreatedEvent
func NewLoanProductCreatedEvent(p *LoanProduct) *LoanProductCreatedEvent {
	return &LoanProductCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("LoanProductCreated", "LoanProduct", p.ID),
		ProductID:         p.ID,
		Code:              p.Code,
		Name:              p.Name,
		AnnualRatePercent: p.AnnualRatePercent,
		TermCount:         p.TermCount,
		Frequency:         p.Frequency,
		Method:            p.Method,
	}
}

// LoanProductDeactivatedEvent is raised when a product is retired
type LoanProductDeactivatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
}

// EventType returns the event type name
func (e *LoanProductDeactivatedEvent) EventType() string {
	return "LoanProductDeactivated"
}

// NewLoanProductDeactivatedEvent creates a new LoanProductDeactivatedEvent
func NewLoanProductDeactivatedEvent(p *LoanProduct) *LoanProductDeactivatedEvent {
	return &LoanProductDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanProductDeactivated", "LoanProduct", p.ID),
		ProductID:       p.ID,
		Code:            p.Code,
	}
}

// LoanCreatedEvent is raised when a loan application is created
type LoanCreatedEvent struct {
	shared.BaseDomainEvent
	LoanID          uuid.UUID       `json:"loan_id"`
	LoanNumber      string          `json:"loan_number"`
	ProductID       uuid.UUID       `json:"product_id"`
	MemberID        uuid.UUID       `json:"member_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	ApplicationDate time.Time       `json:"application_date"`
}

// EventType returns the event type name
func (e *LoanCreatedEvent) EventType() string {
	return "LoanCreated"
}

// NewLoanCreatedEvent creates a new LoanCreatedEvent
func NewLoanCreatedEvent(l *Loan) *LoanCreatedEvent {
	return &LoanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanCreated", "Loan", l.ID),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		ProductID:       l.ProductID,
		MemberID:        l.MemberID,
		PrincipalAmount: l.PrincipalAmount,
		ApplicationDate: l.ApplicationDate,
	}
}

// LoanApprovedEvent is raised when a pending loan is approved
type LoanApprovedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	LoanNumber string    `json:"loan_number"`
	ApprovedAt time.Time `json:"approved_at"`
}

// EventType returns the event type name
func (e *LoanApprovedEvent) EventType() string {
	return "LoanApproved"
}

// NewLoanApprovedEvent creates a new LoanApprovedEvent
func NewLoanApprovedEvent(l *Loan) *LoanApprovedEvent {
	approvedAt := time.Now()
	if l.ApprovedAt != nil {
		approvedAt = *l.ApprovedAt
	}
	return &LoanApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanApproved", "Loan", l.ID),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		ApprovedAt:      approvedAt,
	}
}

// LoanRejectedEvent is raised when a pending loan is rejected
type LoanRejectedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	LoanNumber string    `json:"loan_number"`
	Reason     string    `json:"reason"`
}

// EventType returns the event type name
func (e *LoanRejectedEvent) EventType() string {
	return "LoanRejected"
}

// NewLoanRejectedEvent creates a new LoanRejectedEvent
func NewLoanRejectedEvent(l *Loan, reason string) *LoanRejectedEvent {
	return &LoanRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanRejected", "Loan", l.ID),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		Reason:          reason,
	}
}

// LoanCancelledEvent is raised when an approved loan is cancelled before disbursement
type LoanCancelledEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	LoanNumber string    `json:"loan_number"`
	Reason     string    `json:"reason"`
}

// EventType returns the event type name
func (e *LoanCancelledEvent) EventType() string {
	return "LoanCancelled"
}

// NewLoanCancelledEvent creates a new LoanCancelledEvent
func NewLoanCancelledEvent(l *Loan, reason string) *LoanCancelledEvent {
	return &LoanCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanCancelled", "Loan", l.ID),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		Reason:          reason,
	}
}

// LoanDisbursedEvent is raised when funds are released and the schedule is generated
type LoanDisbursedEvent struct {
	shared.BaseDomainEvent
	LoanID              uuid.UUID       `json:"loan_id"`
	LoanNumber          string          `json:"loan_number"`
	MemberID            uuid.UUID       `json:"member_id"`
	PrincipalAmount     decimal.Decimal `json:"principal_amount"`
	OutstandingInterest decimal.Decimal `json:"outstanding_interest"`
	DisbursedAt         time.Time       `json:"disbursed_at"`
	ExpectedEndDate     time.Time       `json:"expected_end_date"`
	InstallmentCount    int             `json:"installment_count"`
}

// EventType returns the event type name
func (e *LoanDisbursedEvent) EventType() string {
	return "LoanDisbursed"
}

// NewLoanDisbursedEvent creates a new LoanDisbursedEvent
func NewLoanDisbursedEvent(l *Loan) *LoanDisbursedEvent {
	disbursedAt := time.Now()
	if l.DisbursedAt != nil {
		disbursedAt = *l.DisbursedAt
	}
	expectedEnd := disbursedAt
	if l.ExpectedEndDate != nil {
		expectedEnd = *l.ExpectedEndDate
	}
	return &LoanDisbursedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent("LoanDisbursed", "Loan", l.ID),
		LoanID:              l.ID,
		LoanNumber:          l.LoanNumber,
		MemberID:            l.MemberID,
		PrincipalAmount:     l.PrincipalAmount,
		OutstandingInterest: l.OutstandingInterest,
		DisbursedAt:         disbursedAt,
		ExpectedEndDate:     expectedEnd,
		InstallmentCount:    len(l.Schedule),
	}
}

// LoanRepaymentRecordedEvent is raised when a repayment is allocated against the schedule
type LoanRepaymentRecordedEvent struct {
	shared.BaseDomainEvent
	LoanID               uuid.UUID       `json:"loan_id"`
	LoanNumber           string          `json:"loan_number"`
	RepaymentID          uuid.UUID       `json:"repayment_id"`
	Amount               decimal.Decimal `json:"amount"`
	PrincipalPortion     decimal.Decimal `json:"principal_portion"`
	InterestPortion      decimal.Decimal `json:"interest_portion"`
	Overpayment          decimal.Decimal `json:"overpayment"`
	PaymentDate          time.Time       `json:"payment_date"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
}

// EventType returns the event type name
func (e *LoanRepaymentRecordedEvent) EventType() string {
	return "LoanRepaymentRecorded"
}

// NewLoanRepaymentRecordedEvent creates a new LoanRepaymentRecordedEvent
func NewLoanRepaymentRecordedEvent(l *Loan, r *LoanRepayment) *LoanRepaymentRecordedEvent {
	return &LoanRepaymentRecordedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent("LoanRepaymentRecorded", "Loan", l.ID),
		LoanID:               l.ID,
		LoanNumber:           l.LoanNumber,
		RepaymentID:          r.ID,
		Amount:               r.Amount,
		PrincipalPortion:     r.PrincipalPortion,
		InterestPortion:      r.InterestPortion,
		Overpayment:          r.Overpayment,
		PaymentDate:          r.PaymentDate,
		OutstandingPrincipal: l.OutstandingPrincipal,
		OutstandingInterest:  l.OutstandingInterest,
	}
}

// LoanClosedEvent is raised when a fully repaid loan is closed
type LoanClosedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	LoanNumber string    `json:"loan_number"`
	ClosedAt   time.Time `json:"closed_at"`
}

// EventType returns the event type name
func (e *LoanClosedEvent) EventType() string {
	return "LoanClosed"
}

// NewLoanClosedEvent creates a new LoanClosedEvent
func NewLoanClosedEvent(l *Loan) *LoanClosedEvent {
	closedAt := time.Now()
	if l.ClosedAt != nil {
		closedAt = *l.ClosedAt
	}
	return &LoanClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LoanClosed", "Loan", l.ID),
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		ClosedAt:        closedAt,
	}
}

// LoanWrittenOffEvent is raised when a loan is written off as uncollectible
type LoanWrittenOffEvent struct {
	shared.BaseDomainEvent
	LoanID              uuid.UUID       `json:"loan_id"`
	LoanNumber          string          `json:"loan_number"`
	Reason              string          `json:"reason"`
	WrittenOffPrincipal decimal.Decimal `json:"written_off_principal"`
	WrittenOffInterest  decimal.Decimal `json:"written_off_interest"`
}

// EventType returns the event type name
func (e *LoanWrittenOffEvent) EventType() string {
	return "LoanWrittenOff"
}

// NewLoanWrittenOffEvent creates a new LoanWrittenOffEvent
func NewLoanWrittenOffEvent(l *Loan, reason string, principal, interest decimal.Decimal) *LoanWrittenOffEvent {
	return &LoanWrittenOffEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent("LoanWrittenOff", "Loan", l.ID),
		LoanID:              l.ID,
		LoanNumber:          l.LoanNumber,
		Reason:              reason,
		WrittenOffPrincipal: principal,
		WrittenOffInterest:  interest,
	}
}
