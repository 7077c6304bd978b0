package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanProductModel is the persistence model for the LoanProduct aggregate root.
type LoanProductModel struct {
	AggregateModel
	Code              string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string                     `gorm:"type:varchar(200);not null"`
	AnnualRatePercent decimal.Decimal            `gorm:"type:decimal(9,4);not null"`
	TermCount         int                        `gorm:"not null"`
	TermUnit          lending.TermUnit           `gorm:"type:varchar(10);not null"`
	Frequency         lending.RepaymentFrequency `gorm:"type:varchar(10);not null"`
	Method            lending.InterestMethod     `gorm:"type:varchar(20);not null"`
	MinPrincipal      decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	MaxPrincipal      decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	Active            bool                       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (LoanProductModel) TableName() string {
	return "loan_products"
}

// ToDomain converts the persistence model to a domain LoanProduct.
func (m *LoanProductModel) ToDomain() *lending.LoanProduct {
	p := &lending.LoanProduct{
		Code:              m.Code,
		Name:              m.Name,
		AnnualRatePercent: m.AnnualRatePercent,
		TermCount:         m.TermCount,
		TermUnit:          m.TermUnit,
		Frequency:         m.Frequency,
		Method:            m.Method,
		MinPrincipal:      m.MinPrincipal,
		MaxPrincipal:      m.MaxPrincipal,
		Active:            m.Active,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// LoanProductModelFromDomain builds the persistence model from a domain LoanProduct.
func LoanProductModelFromDomain(p *lending.LoanProduct) *LoanProductModel {
	m := &LoanProductModel{
		Code:              p.Code,
		Name:              p.Name,
		AnnualRatePercent: p.AnnualRatePercent,
		TermCount:         p.TermCount,
		TermUnit:          p.TermUnit,
		Frequency:         p.Frequency,
		Method:            p.Method,
		MinPrincipal:      p.MinPrincipal,
		MaxPrincipal:      p.MaxPrincipal,
		Active:            p.Active,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// LoanModel is the persistence model for the Loan aggregate root.
// The schedule is stored separately in installments; loan rows carry
// only the lifecycle state and running balances.
type LoanModel struct {
	AggregateModel
	LoanNumber           string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductID            uuid.UUID          `gorm:"type:uuid;not null;index"`
	MemberID             uuid.UUID          `gorm:"type:uuid;not null;index"`
	PrincipalAmount      decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	ApplicationDate      time.Time          `gorm:"type:date;not null;index"`
	Status               lending.LoanStatus `gorm:"type:varchar(20);not null;index"`
	ApprovedAt           *time.Time
	DisbursedAt          *time.Time
	ExpectedEndDate      *time.Time         `gorm:"type:date"`
	ClosedAt             *time.Time
	OutstandingPrincipal decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	OutstandingInterest  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	WriteOffReason       string             `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan.
// The schedule is not loaded here; callers attach it from the
// installment repository when they need it.
func (m *LoanModel) ToDomain() *lending.Loan {
	l := &lending.Loan{
		LoanNumber:           m.LoanNumber,
		ProductID:            m.ProductID,
		MemberID:             m.MemberID,
		PrincipalAmount:      m.PrincipalAmount,
		ApplicationDate:      m.ApplicationDate,
		Status:               m.Status,
		ApprovedAt:           m.ApprovedAt,
		DisbursedAt:          m.DisbursedAt,
		ExpectedEndDate:      m.ExpectedEndDate,
		ClosedAt:             m.ClosedAt,
		OutstandingPrincipal: m.OutstandingPrincipal,
		OutstandingInterest:  m.OutstandingInterest,
		WriteOffReason:       m.WriteOffReason,
	}
	m.PopulateAggregateRoot(&l.BaseAggregateRoot)
	return l
}

// LoanModelFromDomain builds the persistence model from a domain Loan.
func LoanModelFromDomain(l *lending.Loan) *LoanModel {
	m := &LoanModel{
		LoanNumber:           l.LoanNumber,
		ProductID:            l.ProductID,
		MemberID:             l.MemberID,
		PrincipalAmount:      l.PrincipalAmount,
		ApplicationDate:      l.ApplicationDate,
		Status:               l.Status,
		ApprovedAt:           l.ApprovedAt,
		DisbursedAt:          l.DisbursedAt,
		ExpectedEndDate:      l.ExpectedEndDate,
		ClosedAt:             l.ClosedAt,
		OutstandingPrincipal: l.OutstandingPrincipal,
		OutstandingInterest:  l.OutstandingInterest,
		WriteOffReason:       l.WriteOffReason,
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return m
}

// InstallmentModel is the persistence model for one schedule row.
type InstallmentModel struct {
	ID                 uuid.UUID                 `gorm:"type:uuid;primary_key"`
	LoanID             uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_installment_loan_sequence,priority:1"`
	Sequence           int                       `gorm:"not null;uniqueIndex:idx_installment_loan_sequence,priority:2"`
	DueDate            time.Time                 `gorm:"type:date;not null;index"`
	ScheduledPrincipal decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	ScheduledInterest  decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PaidPrincipal      decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PaidInterest       decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status             lending.InstallmentStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() lending.Installment {
	return lending.Installment{
		ID:                 m.ID,
		LoanID:             m.LoanID,
		Sequence:           m.Sequence,
		DueDate:            m.DueDate,
		ScheduledPrincipal: m.ScheduledPrincipal,
		ScheduledInterest:  m.ScheduledInterest,
		PaidPrincipal:      m.PaidPrincipal,
		PaidInterest:       m.PaidInterest,
		Status:             m.Status,
	}
}

// InstallmentModelFromDomain builds the persistence model from a domain Installment.
func InstallmentModelFromDomain(i lending.Installment) *InstallmentModel {
	return &InstallmentModel{
		ID:                 i.ID,
		LoanID:             i.LoanID,
		Sequence:           i.Sequence,
		DueDate:            i.DueDate,
		ScheduledPrincipal: i.ScheduledPrincipal,
		ScheduledInterest:  i.ScheduledInterest,
		PaidPrincipal:      i.PaidPrincipal,
		PaidInterest:       i.PaidInterest,
		Status:             i.Status,
	}
}

// LoanRepaymentModel is the persistence model for a repayment record.
type LoanRepaymentModel struct {
	BaseModel
	LoanID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentDate       time.Time       `gorm:"type:date;not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PrincipalPortion  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InterestPortion   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Overpayment       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExternalReference string          `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (LoanRepaymentModel) TableName() string {
	return "loan_repayments"
}

// ToDomain converts the persistence model to a domain LoanRepayment.
func (m *LoanRepaymentModel) ToDomain() *lending.LoanRepayment {
	return &lending.LoanRepayment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LoanID:            m.LoanID,
		PaymentDate:       m.PaymentDate,
		Amount:            m.Amount,
		PrincipalPortion:  m.PrincipalPortion,
		InterestPortion:   m.InterestPortion,
		Overpayment:       m.Overpayment,
		ExternalReference: m.ExternalReference,
	}
}

// LoanRepaymentModelFromDomain builds the persistence model from a domain LoanRepayment.
func LoanRepaymentModelFromDomain(r *lending.LoanRepayment) *LoanRepaymentModel {
	m := &LoanRepaymentModel{
		LoanID:            r.LoanID,
		PaymentDate:       r.PaymentDate,
		Amount:            r.Amount,
		PrincipalPortion:  r.PrincipalPortion,
		InterestPortion:   r.InterestPortion,
		Overpayment:       r.Overpayment,
		ExternalReference: r.ExternalReference,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
