package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepaymentRepository implements RepaymentRepository using GORM
type GormRepaymentRepository struct {
	db *gorm.DB
}

// NewGormRepaymentRepository creates a new GormRepaymentRepository
func NewGormRepaymentRepository(db *gorm.DB) *GormRepaymentRepository {
	return &GormRepaymentRepository{db: db}
}

// FindByID finds a repayment by its ID. Returns nil when no record exists.
func (r *GormRepaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanRepayment, error) {
	var model models.LoanRepaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLoanID returns the loan's repayments ordered by payment date.
// Records sharing a payment date come back in insertion order.
func (r *GormRepaymentRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]*lending.LoanRepayment, error) {
	var repaymentModels []models.LoanRepaymentModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("payment_date ASC, created_at ASC").
		Find(&repaymentModels).Error; err != nil {
		return nil, err
	}

	repayments := make([]*lending.LoanRepayment, len(repaymentModels))
	for i := range repaymentModels {
		repayments[i] = repaymentModels[i].ToDomain()
	}
	return repayments, nil
}

// FindByExternalReference finds a repayment on the loan carrying the given
// external reference. Returns nil when none exists.
func (r *GormRepaymentRepository) FindByExternalReference(ctx context.Context, loanID uuid.UUID, reference string) (*lending.LoanRepayment, error) {
	if reference == "" {
		return nil, nil
	}
	var model models.LoanRepaymentModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ? AND external_reference = ?", loanID, reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates a repayment record
func (r *GormRepaymentRepository) Save(ctx context.Context, repayment *lending.LoanRepayment) error {
	model := models.LoanRepaymentModelFromDomain(repayment)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveAll upserts repayment records. Used after a backdated replay, where
// existing records get rewritten portions and the new record is inserted.
func (r *GormRepaymentRepository) SaveAll(ctx context.Context, repayments []*lending.LoanRepayment) error {
	if len(repayments) == 0 {
		return nil
	}
	repaymentModels := make([]*models.LoanRepaymentModel, len(repayments))
	for i, repayment := range repayments {
		repaymentModels[i] = models.LoanRepaymentModelFromDomain(repayment)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(repaymentModels).Error
}

// Ensure GormRepaymentRepository implements RepaymentRepository
var _ lending.RepaymentRepository = (*GormRepaymentRepository)(nil)
