package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInstallmentRepository implements InstallmentRepository using GORM.
// A loan's installments are written as a unit: inserted once at
// disbursement and swapped wholesale when the allocation is recomputed.
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByLoanID returns the loan's installments ordered by sequence
func (r *GormInstallmentRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) (lending.Schedule, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}

	schedule := make(lending.Schedule, len(installmentModels))
	for i, model := range installmentModels {
		schedule[i] = model.ToDomain()
	}
	return schedule, nil
}

// SaveAll persists a freshly generated schedule
func (r *GormInstallmentRepository) SaveAll(ctx context.Context, schedule lending.Schedule) error {
	if len(schedule) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(schedule))
	for i, installment := range schedule {
		installmentModels[i] = models.InstallmentModelFromDomain(installment)
	}
	return r.db.WithContext(ctx).Create(installmentModels).Error
}

// ReplaceForLoan atomically swaps the loan's installment rows.
// The delete and insert run in one transaction so a reader never sees
// a partially replaced schedule.
func (r *GormInstallmentRepository) ReplaceForLoan(ctx context.Context, loanID uuid.UUID, schedule lending.Schedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", loanID).Delete(&models.InstallmentModel{}).Error; err != nil {
			return err
		}
		if len(schedule) == 0 {
			return nil
		}
		installmentModels := make([]*models.InstallmentModel, len(schedule))
		for i, installment := range schedule {
			installmentModels[i] = models.InstallmentModelFromDomain(installment)
		}
		return tx.Create(installmentModels).Error
	})
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ lending.InstallmentRepository = (*GormInstallmentRepository)(nil)
