package persistence

import (
	"context"

	applending "github.com/mfin/backend/internal/application/lending"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/mfin/backend/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations, and hands
// the executed function an event publisher bound to the same transaction so
// outbox entries commit or roll back together with the aggregate writes.
type GormTransactionScope struct {
	db        *gorm.DB
	publisher *event.OutboxPublisher
}

// NewGormTransactionScope creates a new GormTransactionScope. The serializer
// is used to persist domain events to the outbox inside each transaction;
// passing nil disables event publishing.
func NewGormTransactionScope(db *gorm.DB, serializer *event.EventSerializer) *GormTransactionScope {
	var publisher *event.OutboxPublisher
	if serializer != nil {
		publisher = event.NewOutboxPublisher(serializer)
	}
	return &GormTransactionScope{db: db, publisher: publisher}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos applending.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, publisher: s.publisher}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all lending repositories within a transaction.
type gormTransactionalRepositories struct {
	tx        *gorm.DB
	publisher *event.OutboxPublisher
}

// ProductRepo returns the loan product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() lending.LoanProductRepository {
	return NewGormLoanProductRepository(r.tx)
}

// LoanRepo returns the loan repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LoanRepo() lending.LoanRepository {
	return NewGormLoanRepository(r.tx)
}

// InstallmentRepo returns the installment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InstallmentRepo() lending.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

// RepaymentRepo returns the repayment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RepaymentRepo() lending.RepaymentRepository {
	return NewGormRepaymentRepository(r.tx)
}

// EventPublisher returns a publisher that writes outbox entries on the
// current transaction.
func (r *gormTransactionalRepositories) EventPublisher() shared.EventPublisher {
	if r.publisher == nil {
		return nil
	}
	return &txEventPublisher{tx: r.tx, publisher: r.publisher}
}

// txEventPublisher adapts OutboxPublisher to shared.EventPublisher for one
// transaction handle.
type txEventPublisher struct {
	tx        *gorm.DB
	publisher *event.OutboxPublisher
}

func (p *txEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.publisher.PublishWithTx(ctx, p.tx, events...)
}

// Ensure GormTransactionScope implements TransactionScope
var _ applending.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ applending.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

var _ shared.EventPublisher = (*txEventPublisher)(nil)
