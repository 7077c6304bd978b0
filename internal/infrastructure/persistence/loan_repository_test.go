package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLoanRepository creates a GormLoanRepository with a mocked SQL connection
func newMockLoanRepository(t *testing.T) (*GormLoanRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormLoanRepository(gormDB), mock, mockDB
}

func loanRows(loanID uuid.UUID, loanNumber string, status lending.LoanStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "version", "loan_number", "product_id", "member_id", "principal_amount",
		"application_date", "status", "outstanding_principal", "outstanding_interest",
	}).AddRow(
		loanID, 1, loanNumber, uuid.New(), uuid.New(), decimal.NewFromInt(1000),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), status, decimal.Zero, decimal.Zero,
	)
}

func TestGormLoanRepository_FindByID(t *testing.T) {
	t.Run("finds existing loan", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		loanID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "loans" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(loanID, 1).
			WillReturnRows(loanRows(loanID, "LN-2025-000001", lending.LoanStatusPending))

		loan, err := repo.FindByID(context.Background(), loanID)

		assert.NoError(t, err)
		assert.NotNil(t, loan)
		assert.Equal(t, loanID, loan.ID)
		assert.Equal(t, "LN-2025-000001", loan.LoanNumber)
		assert.Equal(t, lending.LoanStatusPending, loan.Status)
		assert.Empty(t, loan.Schedule)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent loan", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		loanID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "loans" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(loanID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		loan, err := repo.FindByID(context.Background(), loanID)

		assert.NoError(t, err)
		assert.Nil(t, loan)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanRepository_FindByLoanNumber(t *testing.T) {
	t.Run("finds loan by number", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		loanID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "loans" WHERE loan_number = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("LN-2025-000001", 1).
			WillReturnRows(loanRows(loanID, "LN-2025-000001", lending.LoanStatusDisbursed))

		loan, err := repo.FindByLoanNumber(context.Background(), "LN-2025-000001")

		assert.NoError(t, err)
		assert.NotNil(t, loan)
		assert.Equal(t, lending.LoanStatusDisbursed, loan.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanRepository_FindAll(t *testing.T) {
	t.Run("applies member and status filters", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		memberID := uuid.New()
		status := lending.LoanStatusDisbursed

		mock.ExpectQuery(`SELECT \* FROM "loans" WHERE member_id = \$1 AND status = \$2 ORDER BY application_date DESC, loan_number DESC`).
			WithArgs(memberID, status).
			WillReturnRows(loanRows(uuid.New(), "LN-2025-000002", status))

		loans, err := repo.FindAll(context.Background(), lending.LoanFilter{
			MemberID: &memberID,
			Status:   &status,
		})

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies application date range", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "loans" WHERE application_date >= \$1 AND application_date <= \$2 ORDER BY application_date DESC, loan_number DESC`).
			WithArgs(from, to).
			WillReturnRows(loanRows(uuid.New(), "LN-2025-000003", lending.LoanStatusClosed))

		loans, err := repo.FindAll(context.Background(), lending.LoanFilter{
			FromDate: &from,
			ToDate:   &to,
		})

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanRepository_FindByStatus(t *testing.T) {
	t.Run("finds loans in status", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "loans" WHERE status = \$1 ORDER BY application_date DESC, loan_number DESC`).
			WithArgs(lending.LoanStatusPending).
			WillReturnRows(loanRows(uuid.New(), "LN-2025-000004", lending.LoanStatusPending))

		loans, err := repo.FindByStatus(context.Background(), lending.LoanStatusPending, lending.LoanFilter{})

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
		assert.Equal(t, lending.LoanStatusPending, loans[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanRepository_SaveWithLock(t *testing.T) {
	t.Run("saves loan when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		loan := approvedTestLoan(t)

		mock.ExpectExec(`UPDATE "loans" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), loan)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version has moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		loan := approvedTestLoan(t)

		mock.ExpectExec(`UPDATE "loans" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), loan)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLoanRepository_Count(t *testing.T) {
	t.Run("counts loans matching filter", func(t *testing.T) {
		repo, mock, mockDB := newMockLoanRepository(t)
		defer mockDB.Close()

		status := lending.LoanStatusWrittenOff

		mock.ExpectQuery(`SELECT count\(\*\) FROM "loans" WHERE status = \$1`).
			WithArgs(status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := repo.Count(context.Background(), lending.LoanFilter{Status: &status})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// approvedTestLoan builds an approved loan ready to be persisted
func approvedTestLoan(t *testing.T) *lending.Loan {
	t.Helper()

	product, err := lending.NewLoanProduct(
		"WC-12M", "Working Capital", decimal.NewFromInt(24),
		12, lending.TermUnitMonths, lending.FrequencyMonthly, lending.MethodReducingBalance,
		decimal.NewFromInt(100), decimal.NewFromInt(10000),
	)
	require.NoError(t, err)

	loan, err := lending.NewLoan("LN-2025-000001", product, uuid.New(), decimal.NewFromInt(1000),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, loan.Approve(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))
	return loan
}
