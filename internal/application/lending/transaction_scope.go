package lending

import (
	"context"

	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to lending repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the lending repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - LoanRepo: repository for the Loan aggregate root; status and
//     outstanding-balance changes go through it with optimistic locking.
//   - InstallmentRepo: the loan's schedule rows. Child entities of Loan with
//     separate storage; written only together with the owning loan.
//   - RepaymentRepo: append-only repayment records, rewritten as a set only
//     on a backdated replay.
type TransactionalRepositories interface {
	// ProductRepo returns the loan product repository scoped to the current transaction
	ProductRepo() lending.LoanProductRepository
	// LoanRepo returns the loan repository scoped to the current transaction
	LoanRepo() lending.LoanRepository
	// InstallmentRepo returns the installment repository scoped to the current transaction
	InstallmentRepo() lending.InstallmentRepository
	// RepaymentRepo returns the repayment repository scoped to the current transaction
	RepaymentRepo() lending.RepaymentRepository
	// EventPublisher returns an event publisher scoped to the current
	// transaction. Events it accepts commit or roll back together with the
	// aggregate writes, which keeps the outbox consistent with the data it
	// describes. May return nil when no publisher is configured.
	EventPublisher() shared.EventPublisher
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	productRepo     lending.LoanProductRepository
	loanRepo        lending.LoanRepository
	installmentRepo lending.InstallmentRepository
	repaymentRepo   lending.RepaymentRepository
	eventPublisher  shared.EventPublisher
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given
// repositories. The event publisher may be nil when the caller does not
// observe events.
func NewNoOpTransactionScope(
	productRepo lending.LoanProductRepository,
	loanRepo lending.LoanRepository,
	installmentRepo lending.InstallmentRepository,
	repaymentRepo lending.RepaymentRepository,
	eventPublisher shared.EventPublisher,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:     productRepo,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		repaymentRepo:   repaymentRepo,
		eventPublisher:  eventPublisher,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the loan product repository
func (s *NoOpTransactionScope) ProductRepo() lending.LoanProductRepository {
	return s.productRepo
}

// LoanRepo returns the loan repository
func (s *NoOpTransactionScope) LoanRepo() lending.LoanRepository {
	return s.loanRepo
}

// InstallmentRepo returns the installment repository
func (s *NoOpTransactionScope) InstallmentRepo() lending.InstallmentRepository {
	return s.installmentRepo
}

// RepaymentRepo returns the repayment repository
func (s *NoOpTransactionScope) RepaymentRepo() lending.RepaymentRepository {
	return s.repaymentRepo
}

// EventPublisher returns the configured event publisher, if any
func (s *NoOpTransactionScope) EventPublisher() shared.EventPublisher {
	return s.eventPublisher
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
