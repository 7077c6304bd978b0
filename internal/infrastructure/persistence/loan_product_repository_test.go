package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProductRepository creates a GormLoanProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormLoanProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLoanProductRepository(gormDB), mock, mockDB
}

func productRows(productID uuid.UUID, code string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "version", "code", "name", "annual_rate_percent", "term_count",
		"term_unit", "frequency", "method", "min_principal", "max_principal", "active",
	}).AddRow(
		productID, 1, code, "Working Capital", decimal.NewFromInt(24), 12,
		"MONTHS", "MONTHLY", "REDUCING_BALANCE",
		decimal.NewFromInt(100), decimal.NewFromInt(10000), active,
	)
}

func TestNewGormLoanProductRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormLoanProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "loan_products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(productRows(productID, "WC-12M", true))

		product, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		assert.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "WC-12M", product.Code)
		assert.Equal(t, lending.MethodReducingBalance, product.Method)
		assert.True(t, product.AnnualRatePercent.Equal(decimal.NewFromInt(24)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "loan_products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		assert.Nil(t, product)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanProductRepository_FindByCode(t *testing.T) {
	t.Run("finds product by code", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "loan_products" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("WC-12M", 1).
			WillReturnRows(productRows(productID, "WC-12M", true))

		product, err := repo.FindByCode(context.Background(), "wc-12m") // lowercase to test uppercasing

		assert.NoError(t, err)
		assert.NotNil(t, product)
		assert.Equal(t, "WC-12M", product.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for unknown code", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "loan_products" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("MISSING", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByCode(context.Background(), "MISSING")

		assert.NoError(t, err)
		assert.Nil(t, product)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanProductRepository_FindAll(t *testing.T) {
	t.Run("applies active filter", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		active := true
		mock.ExpectQuery(`SELECT \* FROM "loan_products" WHERE active = \$1 ORDER BY code ASC`).
			WithArgs(active).
			WillReturnRows(productRows(uuid.New(), "WC-12M", true))

		products, err := repo.FindAll(context.Background(), lending.LoanProductFilter{Active: &active})

		assert.NoError(t, err)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies method filter with pagination", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		method := lending.MethodFlat
		filter := lending.LoanProductFilter{Method: &method}
		filter.Page = 2
		filter.PageSize = 10

		mock.ExpectQuery(`SELECT \* FROM "loan_products" WHERE method = \$1 ORDER BY code ASC LIMIT \$2 OFFSET \$3`).
			WithArgs(method, 10, 10).
			WillReturnRows(productRows(uuid.New(), "GRP-W26", true))

		products, err := repo.FindAll(context.Background(), filter)

		assert.NoError(t, err)
		assert.Len(t, products, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanProductRepository_Save(t *testing.T) {
	t.Run("saves product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product, err := lending.NewLoanProduct(
			"WC-12M", "Working Capital", decimal.NewFromInt(24),
			12, lending.TermUnitMonths, lending.FrequencyMonthly, lending.MethodReducingBalance,
			decimal.NewFromInt(100), decimal.NewFromInt(10000),
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "loan_products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), product)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanProductRepository_Count(t *testing.T) {
	t.Run("counts products matching filter", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		active := false
		mock.ExpectQuery(`SELECT count\(\*\) FROM "loan_products" WHERE active = \$1`).
			WithArgs(active).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.Count(context.Background(), lending.LoanProductFilter{Active: &active})

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
