package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/mfin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoanRepository implements LoanRepository using GORM.
// Loan rows never embed the schedule; callers load installments through
// the installment repository when they need the full aggregate.
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by its ID. Returns nil when no loan exists.
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLoanNumber finds a loan by its unique number. Returns nil when no loan exists.
func (r *GormLoanRepository) FindByLoanNumber(ctx context.Context, loanNumber string) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("loan_number = ?", loanNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all loans matching the filter
func (r *GormLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]lending.Loan, error) {
	var loanModels []models.LoanModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LoanModel{}), filter)

	if err := query.Find(&loanModels).Error; err != nil {
		return nil, err
	}

	loans := make([]lending.Loan, len(loanModels))
	for i, model := range loanModels {
		loans[i] = *model.ToDomain()
	}
	return loans, nil
}

// FindByStatus finds loans in the given lifecycle status
func (r *GormLoanRepository) FindByStatus(ctx context.Context, status lending.LoanStatus, filter lending.LoanFilter) ([]lending.Loan, error) {
	filter.Status = &status
	return r.FindAll(ctx, filter)
}

// Save creates or updates a loan
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a loan with optimistic locking (version check).
// Returns ErrConcurrencyConflict if the stored version has moved on.
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", loan.ID, loan.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts loans matching the filter
func (r *GormLoanRepository) Count(ctx context.Context, filter lending.LoanFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.LoanModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormLoanRepository) applyFilter(query *gorm.DB, filter lending.LoanFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, LoanSortFields, "application_date")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("application_date DESC, loan_number DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLoanRepository) applyFilterWithoutPagination(query *gorm.DB, filter lending.LoanFilter) *gorm.DB {
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("application_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("application_date <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormLoanRepository implements LoanRepository
var _ lending.LoanRepository = (*GormLoanRepository)(nil)
