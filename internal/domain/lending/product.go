package lending

import (
	"fmt"

	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RepaymentFrequency determines how often installments fall due
type RepaymentFrequency string

const (
	FrequencyWeekly   RepaymentFrequency = "WEEKLY"
	FrequencyBiweekly RepaymentFrequency = "BIWEEKLY"
	FrequencyMonthly  RepaymentFrequency = "MONTHLY"
)

// IsValid checks if the frequency is a valid RepaymentFrequency
func (f RepaymentFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// PeriodsPerYear returns the number of repayment periods in a year
func (f RepaymentFrequency) PeriodsPerYear() int64 {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	default:
		return 12
	}
}

// String returns the string representation of RepaymentFrequency
func (f RepaymentFrequency) String() string {
	return string(f)
}

// InterestMethod determines how interest is computed across the schedule
type InterestMethod string

const (
	// MethodFlat charges interest on the original principal, spread evenly
	MethodFlat InterestMethod = "FLAT"
	// MethodReducingBalance charges interest each period on the remaining principal
	MethodReducingBalance InterestMethod = "REDUCING_BALANCE"
)

// IsValid checks if the method is a valid InterestMethod
func (m InterestMethod) IsValid() bool {
	return m == MethodFlat || m == MethodReducingBalance
}

// String returns the string representation of InterestMethod
func (m InterestMethod) String() string {
	return string(m)
}

// TermUnit is the unit in which a product's term is expressed
type TermUnit string

const (
	TermUnitDays   TermUnit = "DAYS"
	TermUnitMonths TermUnit = "MONTHS"
)

// IsValid checks if the unit is a valid TermUnit
func (u TermUnit) IsValid() bool {
	return u == TermUnitDays || u == TermUnitMonths
}

// LoanProduct is the reference-data aggregate describing the terms under
// which loans are issued. Terms are immutable once the product exists;
// products are deactivated rather than edited while loans reference them.
type LoanProduct struct {
	shared.BaseAggregateRoot
	Code              string             `json:"code"`
	Name              string             `json:"name"`
	AnnualRatePercent decimal.Decimal    `json:"annual_rate_percent"`
	TermCount         int                `json:"term_count"`
	TermUnit          TermUnit           `json:"term_unit"`
	Frequency         RepaymentFrequency `json:"frequency"`
	Method            InterestMethod     `json:"method"`
	MinPrincipal      decimal.Decimal    `json:"min_principal"`
	MaxPrincipal      decimal.Decimal    `json:"max_principal"`
	Active            bool               `json:"active"`
}

// NewLoanProduct creates a new loan product after validating its terms
func NewLoanProduct(
	code string,
	name string,
	annualRatePercent decimal.Decimal,
	termCount int,
	termUnit TermUnit,
	frequency RepaymentFrequency,
	method InterestMethod,
	minPrincipal decimal.Decimal,
	maxPrincipal decimal.Decimal,
) (*LoanProduct, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if annualRatePercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Annual interest rate cannot be negative")
	}
	if termCount < 1 {
		return nil, shared.NewDomainError("INVALID_TERM", "Term count must be at least 1")
	}
	if !termUnit.IsValid() {
		return nil, shared.NewDomainError("INVALID_TERM_UNIT", fmt.Sprintf("Unknown term unit %q", termUnit))
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unknown repayment frequency %q", frequency))
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown interest method %q", method))
	}
	if minPrincipal.IsNegative() || maxPrincipal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRINCIPAL_RANGE", "Principal range bounds must be positive")
	}
	if maxPrincipal.LessThan(minPrincipal) {
		return nil, shared.NewDomainError("INVALID_PRINCIPAL_RANGE", "Maximum principal cannot be below minimum principal")
	}

	p := &LoanProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		AnnualRatePercent: annualRatePercent,
		TermCount:         termCount,
		TermUnit:          termUnit,
		Frequency:         frequency,
		Method:            method,
		MinPrincipal:      minPrincipal,
		MaxPrincipal:      maxPrincipal,
		Active:            true,
	}

	p.AddDomainEvent(NewLoanProductCreatedEvent(p))

	return p, nil
}

// PrincipalInRange reports whether the requested principal falls within the
// product's configured bounds
func (p *LoanProduct) PrincipalInRange(principal decimal.Decimal) bool {
	return principal.GreaterThanOrEqual(p.MinPrincipal) && principal.LessThanOrEqual(p.MaxPrincipal)
}

// Deactivate retires the product so no new loans can reference it.
// Existing loans keep their original terms.
func (p *LoanProduct) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError("INVALID_STATE", "Product is already inactive")
	}
	p.Active = false
	p.IncrementVersion()
	p.AddDomainEvent(NewLoanProductDeactivatedEvent(p))
	return nil
}
