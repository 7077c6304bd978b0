package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoanProductRepository implements LoanProductRepository using GORM
type GormLoanProductRepository struct {
	db *gorm.DB
}

// NewGormLoanProductRepository creates a new GormLoanProductRepository
func NewGormLoanProductRepository(db *gorm.DB) *GormLoanProductRepository {
	return &GormLoanProductRepository{db: db}
}

// FindByID finds a product by its ID. Returns nil when no product exists.
func (r *GormLoanProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanProduct, error) {
	var model models.LoanProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a product by its unique code. Returns nil when no product exists.
func (r *GormLoanProductRepository) FindByCode(ctx context.Context, code string) (*lending.LoanProduct, error) {
	var model models.LoanProductModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all products matching the filter
func (r *GormLoanProductRepository) FindAll(ctx context.Context, filter lending.LoanProductFilter) ([]lending.LoanProduct, error) {
	var productModels []models.LoanProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LoanProductModel{}), filter)

	if err := query.Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]lending.LoanProduct, len(productModels))
	for i, model := range productModels {
		products[i] = *model.ToDomain()
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormLoanProductRepository) Save(ctx context.Context, product *lending.LoanProduct) error {
	model := models.LoanProductModelFromDomain(product)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts products matching the filter
func (r *GormLoanProductRepository) Count(ctx context.Context, filter lending.LoanProductFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.LoanProductModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormLoanProductRepository) applyFilter(query *gorm.DB, filter lending.LoanProductFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, LoanProductSortFields, "code")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLoanProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter lending.LoanProductFilter) *gorm.DB {
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	return query
}

// Ensure GormLoanProductRepository implements LoanProductRepository
var _ lending.LoanProductRepository = (*GormLoanProductRepository)(nil)
