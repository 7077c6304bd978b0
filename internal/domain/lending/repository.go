package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/shared"
)

// LoanProductFilter defines filtering options for product queries
type LoanProductFilter struct {
	shared.Filter
	Active *bool           // Filter by active flag
	Method *InterestMethod // Filter by interest method
}

// LoanProductRepository defines the interface for loan product persistence
type LoanProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LoanProduct, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*LoanProduct, error)

	// FindAll finds products with filtering
	FindAll(ctx context.Context, filter LoanProductFilter) ([]LoanProduct, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *LoanProduct) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter LoanProductFilter) (int64, error)
}

// LoanFilter defines filtering options for loan queries
type LoanFilter struct {
	shared.Filter
	MemberID  *uuid.UUID  // Filter by borrower
	ProductID *uuid.UUID  // Filter by product
	Status    *LoanStatus // Filter by lifecycle status
	FromDate  *time.Time  // Filter by application date range start
	ToDate    *time.Time  // Filter by application date range end
}

// LoanRepository defines the interface for loan persistence.
// Loads never include the schedule or repayment history; callers that need
// those go through the installment and repayment repositories.
type LoanRepository interface {
	// FindByID finds a loan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// FindByLoanNumber finds a loan by its unique number
	FindByLoanNumber(ctx context.Context, loanNumber string) (*Loan, error)

	// FindAll finds loans with filtering
	FindAll(ctx context.Context, filter LoanFilter) ([]Loan, error)

	// FindByStatus finds loans in the given lifecycle status
	FindByStatus(ctx context.Context, status LoanStatus, filter LoanFilter) ([]Loan, error)

	// Save creates or updates a loan
	Save(ctx context.Context, loan *Loan) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, loan *Loan) error

	// Count counts loans matching the filter
	Count(ctx context.Context, filter LoanFilter) (int64, error)
}

// InstallmentRepository defines the interface for schedule persistence.
// A loan's schedule is written as a unit: created once at disbursement and
// replaced wholesale on reallocation.
type InstallmentRepository interface {
	// FindByLoanID returns the loan's installments ordered by sequence
	FindByLoanID(ctx context.Context, loanID uuid.UUID) (Schedule, error)

	// SaveAll persists a freshly generated schedule
	SaveAll(ctx context.Context, schedule Schedule) error

	// ReplaceForLoan atomically swaps the loan's installment rows
	ReplaceForLoan(ctx context.Context, loanID uuid.UUID, schedule Schedule) error
}

// RepaymentRepository defines the interface for repayment record persistence
type RepaymentRepository interface {
	// FindByID finds a repayment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LoanRepayment, error)

	// FindByLoanID returns the loan's repayments ordered by payment date
	FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]*LoanRepayment, error)

	// FindByExternalReference finds a repayment on the loan carrying the
	// given external reference, nil when none exists
	FindByExternalReference(ctx context.Context, loanID uuid.UUID, reference string) (*LoanRepayment, error)

	// Save creates a repayment record
	Save(ctx context.Context, repayment *LoanRepayment) error

	// SaveAll upserts repayment records, used after a backdated replay
	SaveAll(ctx context.Context, repayments []*LoanRepayment) error
}
