package lending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LoanService drives the loan lifecycle: it loads the aggregate, applies the
// requested transition, and persists the result atomically. Mutations on the
// same loan are serialized through a keyed lock on top of the optimistic
// version check the repositories enforce on save.
type LoanService struct {
	txScope         TransactionScope
	productRepo     lending.LoanProductRepository
	loanRepo        lending.LoanRepository
	installmentRepo lending.InstallmentRepository
	repaymentRepo   lending.RepaymentRepository
	clock           shared.Clock
	logger          *zap.Logger
	locks           *loanLocks
}

// LoanServiceConfig holds configuration for the loan service. Domain events
// are published through the transaction scope's publisher so outbox entries
// join the command's transaction.
type LoanServiceConfig struct {
	TxScope         TransactionScope
	ProductRepo     lending.LoanProductRepository
	LoanRepo        lending.LoanRepository
	InstallmentRepo lending.InstallmentRepository
	RepaymentRepo   lending.RepaymentRepository
	Clock           shared.Clock
	Logger          *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(config LoanServiceConfig) *LoanService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := config.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &LoanService{
		txScope:         config.TxScope,
		productRepo:     config.ProductRepo,
		loanRepo:        config.LoanRepo,
		installmentRepo: config.InstallmentRepo,
		repaymentRepo:   config.RepaymentRepo,
		clock:           clock,
		logger:          logger,
		locks:           newLoanLocks(),
	}
}

// ===================== Requests and responses =====================

// CreateProductRequest is the payload for creating a loan product
type CreateProductRequest struct {
	Code              string          `json:"code" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermCount         int             `json:"term_count" binding:"required,min=1"`
	TermUnit          string          `json:"term_unit" binding:"required,oneof=DAYS MONTHS"`
	Frequency         string          `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	Method            string          `json:"method" binding:"required,oneof=FLAT REDUCING_BALANCE"`
	MinPrincipal      decimal.Decimal `json:"min_principal"`
	MaxPrincipal      decimal.Decimal `json:"max_principal"`
}

// ProductResponse represents a loan product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermCount         int             `json:"term_count"`
	TermUnit          string          `json:"term_unit"`
	Frequency         string          `json:"frequency"`
	Method            string          `json:"method"`
	MinPrincipal      decimal.Decimal `json:"min_principal"`
	MaxPrincipal      decimal.Decimal `json:"max_principal"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CreateLoanRequest is the payload for a new loan application
type CreateLoanRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	MemberID        uuid.UUID       `json:"member_id" binding:"required"`
	Principal       decimal.Decimal `json:"principal"`
	ApplicationDate *time.Time      `json:"application_date,omitempty"`
}

// RecordRepaymentRequest is the payload for recording a repayment
type RecordRepaymentRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	ExternalReference string          `json:"external_reference,omitempty"`
	AllowOverpayment  bool            `json:"allow_overpayment"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID                   uuid.UUID       `json:"id"`
	LoanNumber           string          `json:"loan_number"`
	ProductID            uuid.UUID       `json:"product_id"`
	MemberID             uuid.UUID       `json:"member_id"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount"`
	ApplicationDate      time.Time       `json:"application_date"`
	Status               string          `json:"status"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt          *time.Time      `json:"disbursed_at,omitempty"`
	ExpectedEndDate      *time.Time      `json:"expected_end_date,omitempty"`
	ClosedAt             *time.Time      `json:"closed_at,omitempty"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	WriteOffReason       string          `json:"write_off_reason,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

// InstallmentResponse represents one schedule row in API responses
type InstallmentResponse struct {
	Sequence           int             `json:"sequence"`
	DueDate            time.Time       `json:"due_date"`
	ScheduledPrincipal decimal.Decimal `json:"scheduled_principal"`
	ScheduledInterest  decimal.Decimal `json:"scheduled_interest"`
	PaidPrincipal      decimal.Decimal `json:"paid_principal"`
	PaidInterest       decimal.Decimal `json:"paid_interest"`
	Status             string          `json:"status"`
}

// RepaymentResponse represents a repayment record in API responses
type RepaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	LoanID            uuid.UUID       `json:"loan_id"`
	PaymentDate       time.Time       `json:"payment_date"`
	Amount            decimal.Decimal `json:"amount"`
	PrincipalPortion  decimal.Decimal `json:"principal_portion"`
	InterestPortion   decimal.Decimal `json:"interest_portion"`
	Overpayment       decimal.Decimal `json:"overpayment"`
	ExternalReference string          `json:"external_reference,omitempty"`
}

// RepaymentResult bundles the repayment record with the loan it updated
type RepaymentResult struct {
	Loan      LoanResponse      `json:"loan"`
	Repayment RepaymentResponse `json:"repayment"`
	Replayed  bool              `json:"replayed"`
}

// OutstandingResponse summarizes a loan's remaining balance
type OutstandingResponse struct {
	LoanID               uuid.UUID       `json:"loan_id"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
}

// RiskResponse represents a loan's PAR classification in API responses
type RiskResponse struct {
	LoanID           uuid.UUID       `json:"loan_id"`
	Bucket           string          `json:"bucket"`
	DaysOverdue      int             `json:"days_overdue"`
	OverduePrincipal decimal.Decimal `json:"overdue_principal"`
	OverdueInterest  decimal.Decimal `json:"overdue_interest"`
	AsOf             time.Time       `json:"as_of"`
}

// LoanListFilter defines filtering options for loan list queries
type LoanListFilter struct {
	MemberID  *uuid.UUID `form:"member_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Status    string     `form:"status"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// ===================== Product operations =====================

// CreateProduct creates a new loan product
func (s *LoanService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Product code %s is already in use", req.Code))
	}

	product, err := lending.NewLoanProduct(
		strings.ToUpper(strings.TrimSpace(req.Code)),
		req.Name,
		req.AnnualRatePercent,
		req.TermCount,
		lending.TermUnit(req.TermUnit),
		lending.RepaymentFrequency(req.Frequency),
		lending.InterestMethod(req.Method),
		req.MinPrincipal,
		req.MaxPrincipal,
	)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		return s.publishEvents(ctx, repos, product.GetDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	product.ClearDomainEvents()

	return toProductResponse(product), nil
}

// DeactivateProduct retires a product so no new loans can reference it
func (s *LoanService) DeactivateProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		return s.publishEvents(ctx, repos, product.GetDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	product.ClearDomainEvents()
	return toProductResponse(product), nil
}

// GetProduct gets a product by ID
func (s *LoanService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// ListProducts lists products with filtering
func (s *LoanService) ListProducts(ctx context.Context, filter lending.LoanProductFilter) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for idx := range products {
		responses = append(responses, *toProductResponse(&products[idx]))
	}
	return responses, total, nil
}

// ===================== Loan commands =====================

// CreateLoan registers a new loan application in Pending status
func (s *LoanService) CreateLoan(ctx context.Context, req CreateLoanRequest) (*LoanResponse, error) {
	product, err := s.findProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	applicationDate := s.clock.Now()
	if req.ApplicationDate != nil {
		applicationDate = *req.ApplicationDate
	}

	loan, err := lending.NewLoan(s.nextLoanNumber(), product, req.MemberID, req.Principal, applicationDate)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LoanRepo().Save(ctx, loan); err != nil {
			return err
		}
		return s.publishEvents(ctx, repos, loan.GetDomainEvents())
	})
	if err != nil {
		return nil, err
	}
	loan.ClearDomainEvents()
	s.logger.Info("loan created",
		zap.String("loan_number", loan.LoanNumber),
		zap.String("product", product.Code),
		zap.String("principal", loan.PrincipalAmount.StringFixed(2)))

	return toLoanResponse(loan), nil
}

// ApproveLoan approves a pending loan
func (s *LoanService) ApproveLoan(ctx context.Context, loanID uuid.UUID) (*LoanResponse, error) {
	return s.mutateLoan(ctx, loanID, func(loan *lending.Loan, _ TransactionalRepositories) error {
		return loan.Approve(s.clock.Now())
	})
}

// RejectLoan declines a pending loan
func (s *LoanService) RejectLoan(ctx context.Context, loanID uuid.UUID, reason string) (*LoanResponse, error) {
	return s.mutateLoan(ctx, loanID, func(loan *lending.Loan, _ TransactionalRepositories) error {
		return loan.Reject(reason)
	})
}

// CancelLoan withdraws an approved loan before disbursement
func (s *LoanService) CancelLoan(ctx context.Context, loanID uuid.UUID, reason string) (*LoanResponse, error) {
	return s.mutateLoan(ctx, loanID, func(loan *lending.Loan, _ TransactionalRepositories) error {
		return loan.Cancel(reason)
	})
}

// DisburseLoan releases funds on an approved loan and persists the generated schedule
func (s *LoanService) DisburseLoan(ctx context.Context, loanID uuid.UUID) (*LoanResponse, error) {
	return s.mutateLoan(ctx, loanID, func(loan *lending.Loan, repos TransactionalRepositories) error {
		product, err := s.findProductIn(ctx, repos, loan.ProductID)
		if err != nil {
			return err
		}
		if err := loan.Disburse(product, s.clock.Now()); err != nil {
			return err
		}
		return repos.InstallmentRepo().SaveAll(ctx, loan.Schedule)
	})
}

// CloseLoan closes a fully repaid loan
func (s *LoanService) CloseLoan(ctx context.Context, loanID uuid.UUID) (*LoanResponse, error) {
	return s.mutateLoan(ctx, loanID, func(loan *lending.Loan, _ TransactionalRepositories) error {
		return loan.Close(s.clock.Now())
	})
}

// WriteOffLoan writes off a disbursed loan as uncollectible
func (s *LoanService) WriteOffLoan(ctx context.Context, loanID uuid.UUID, reason string) (*LoanResponse, error) {
	return s.mutateLoan(ctx, loanID, func(loan *lending.Loan, _ TransactionalRepositories) error {
		return loan.WriteOff(reason, s.clock.Now())
	})
}

// RecordRepayment records a payment against a disbursed loan. Retries
// carrying the same external reference return the original result without
// reapplying the allocation. Payments dated before already-recorded
// repayments trigger a full replay of the loan's repayment history.
func (s *LoanService) RecordRepayment(ctx context.Context, loanID uuid.UUID, req RecordRepaymentRequest) (*RepaymentResult, error) {
	release := s.locks.Acquire(loanID)
	defer release()

	// Idempotent retry: an already-recorded external reference short-circuits.
	if req.ExternalReference != "" {
		existing, err := s.repaymentRepo.FindByExternalReference(ctx, loanID, req.ExternalReference)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			loan, err := s.loadLoanWithSchedule(ctx, loanID)
			if err != nil {
				return nil, err
			}
			s.logger.Info("repayment retry ignored",
				zap.String("loan_id", loanID.String()),
				zap.String("external_reference", req.ExternalReference))
			return &RepaymentResult{
				Loan:      *toLoanResponse(loan),
				Repayment: *toRepaymentResponse(existing),
			}, nil
		}
	}

	paymentDate := s.clock.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var result *RepaymentResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		loan, err := s.loadLoanWithScheduleIn(ctx, repos, loanID)
		if err != nil {
			return err
		}

		prior, err := repos.RepaymentRepo().FindByLoanID(ctx, loanID)
		if err != nil {
			return err
		}

		var repayment *lending.LoanRepayment
		replayed := isBackdated(paymentDate, prior)
		if replayed {
			product, err := s.findProductIn(ctx, repos, loan.ProductID)
			if err != nil {
				return err
			}
			repayment, err = loan.RecordBackdatedRepayment(product, req.Amount, paymentDate,
				req.ExternalReference, req.AllowOverpayment, prior)
			if err != nil {
				return err
			}
			// Replay rewrote the derived portions on every record.
			if err := repos.RepaymentRepo().SaveAll(ctx, prior); err != nil {
				return err
			}
		} else {
			repayment, err = loan.RecordRepayment(req.Amount, paymentDate, req.ExternalReference, req.AllowOverpayment)
			if err != nil {
				return err
			}
		}

		if err := repos.RepaymentRepo().Save(ctx, repayment); err != nil {
			return err
		}
		if err := repos.InstallmentRepo().ReplaceForLoan(ctx, loanID, loan.Schedule); err != nil {
			return err
		}
		if err := repos.LoanRepo().SaveWithLock(ctx, loan); err != nil {
			return err
		}

		if err := s.publishEvents(ctx, repos, loan.GetDomainEvents()); err != nil {
			return err
		}
		loan.ClearDomainEvents()
		result = &RepaymentResult{
			Loan:      *toLoanResponse(loan),
			Repayment: *toRepaymentResponse(repayment),
			Replayed:  replayed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("repayment recorded",
		zap.String("loan_id", loanID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.Bool("replayed", result.Replayed))
	return result, nil
}

// ===================== Loan queries =====================

// GetLoan gets a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*LoanResponse, error) {
	loan, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toLoanResponse(loan), nil
}

// ListLoans lists loans with filtering
func (s *LoanService) ListLoans(ctx context.Context, filter LoanListFilter) ([]LoanResponse, int64, error) {
	domainFilter := lending.LoanFilter{
		MemberID:  filter.MemberID,
		ProductID: filter.ProductID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Status != "" {
		status := lending.LoanStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown loan status %q", filter.Status))
		}
		domainFilter.Status = &status
	}

	loans, err := s.loanRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.loanRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LoanResponse, 0, len(loans))
	for idx := range loans {
		responses = append(responses, *toLoanResponse(&loans[idx]))
	}
	return responses, total, nil
}

// GetSchedule returns a loan's installment schedule
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]InstallmentResponse, error) {
	if _, err := s.findLoan(ctx, loanID); err != nil {
		return nil, err
	}
	schedule, err := s.installmentRepo.FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	responses := make([]InstallmentResponse, 0, len(schedule))
	for idx := range schedule {
		responses = append(responses, toInstallmentResponse(&schedule[idx]))
	}
	return responses, nil
}

// GetRepayments returns a loan's repayment history
func (s *LoanService) GetRepayments(ctx context.Context, loanID uuid.UUID) ([]RepaymentResponse, error) {
	if _, err := s.findLoan(ctx, loanID); err != nil {
		return nil, err
	}
	repayments, err := s.repaymentRepo.FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	responses := make([]RepaymentResponse, 0, len(repayments))
	for _, r := range repayments {
		responses = append(responses, *toRepaymentResponse(r))
	}
	return responses, nil
}

// GetOutstanding returns a loan's remaining balance
func (s *LoanService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (*OutstandingResponse, error) {
	loan, err := s.findLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &OutstandingResponse{
		LoanID:               loan.ID,
		OutstandingPrincipal: loan.OutstandingPrincipal,
		OutstandingInterest:  loan.OutstandingInterest,
		TotalOutstanding:     loan.OutstandingPrincipal.Add(loan.OutstandingInterest),
	}, nil
}

// ClassifyRisk ages a loan's schedule. A zero asOf defaults to the clock's now.
func (s *LoanService) ClassifyRisk(ctx context.Context, loanID uuid.UUID, asOf time.Time) (*RiskResponse, error) {
	loan, err := s.loadLoanWithSchedule(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	c := loan.ClassifyRisk(asOf)
	return &RiskResponse{
		LoanID:           loan.ID,
		Bucket:           string(c.Bucket),
		DaysOverdue:      c.DaysOverdue,
		OverduePrincipal: c.OverduePrincipal,
		OverdueInterest:  c.OverdueInterest,
		AsOf:             c.AsOf,
	}, nil
}

// ===================== Helpers =====================

// mutateLoan runs a lifecycle transition under the per-loan lock and a
// transaction, saving with the optimistic version check and publishing the
// resulting events after a successful save.
func (s *LoanService) mutateLoan(
	ctx context.Context,
	loanID uuid.UUID,
	apply func(loan *lending.Loan, repos TransactionalRepositories) error,
) (*LoanResponse, error) {
	release := s.locks.Acquire(loanID)
	defer release()

	var response *LoanResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		loan, err := repos.LoanRepo().FindByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return shared.ErrNotFound
		}
		if err := apply(loan, repos); err != nil {
			return err
		}
		if err := repos.LoanRepo().SaveWithLock(ctx, loan); err != nil {
			return err
		}
		if err := s.publishEvents(ctx, repos, loan.GetDomainEvents()); err != nil {
			return err
		}
		loan.ClearDomainEvents()
		response = toLoanResponse(loan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *LoanService) findProduct(ctx context.Context, id uuid.UUID) (*lending.LoanProduct, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Loan product not found")
	}
	return product, nil
}

func (s *LoanService) findProductIn(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*lending.LoanProduct, error) {
	product, err := repos.ProductRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Loan product not found")
	}
	return product, nil
}

func (s *LoanService) findLoan(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	loan, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Loan not found")
	}
	return loan, nil
}

func (s *LoanService) loadLoanWithSchedule(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	loan, err := s.findLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule, err := s.installmentRepo.FindByLoanID(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Schedule = schedule
	return loan, nil
}

func (s *LoanService) loadLoanWithScheduleIn(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*lending.Loan, error) {
	loan, err := repos.LoanRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Loan not found")
	}
	schedule, err := repos.InstallmentRepo().FindByLoanID(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Schedule = schedule
	return loan, nil
}

// publishEvents writes the events through the transaction-scoped publisher.
// A failed write aborts the surrounding transaction: a committed transition
// without its event would be invisible to every downstream consumer.
func (s *LoanService) publishEvents(ctx context.Context, repos TransactionalRepositories, events []shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	publisher := repos.EventPublisher()
	if publisher == nil {
		return nil
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		return fmt.Errorf("failed to persist domain events: %w", err)
	}
	return nil
}

// nextLoanNumber issues a human-readable loan number. Uniqueness comes from
// the random suffix; the date prefix is for operators scanning lists.
func (s *LoanService) nextLoanNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("LN-%s-%s", s.clock.Now().UTC().Format("20060102"), suffix)
}

// isBackdated reports whether the payment date precedes any already-recorded
// repayment, which forces a full replay
func isBackdated(paymentDate time.Time, prior []*lending.LoanRepayment) bool {
	for _, r := range prior {
		if paymentDate.Before(r.PaymentDate) {
			return true
		}
	}
	return false
}

func toProductResponse(p *lending.LoanProduct) *ProductResponse {
	return &ProductResponse{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		AnnualRatePercent: p.AnnualRatePercent,
		TermCount:         p.TermCount,
		TermUnit:          string(p.TermUnit),
		Frequency:         string(p.Frequency),
		Method:            string(p.Method),
		MinPrincipal:      p.MinPrincipal,
		MaxPrincipal:      p.MaxPrincipal,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
	}
}

func toLoanResponse(l *lending.Loan) *LoanResponse {
	return &LoanResponse{
		ID:                   l.ID,
		LoanNumber:           l.LoanNumber,
		ProductID:            l.ProductID,
		MemberID:             l.MemberID,
		PrincipalAmount:      l.PrincipalAmount,
		ApplicationDate:      l.ApplicationDate,
		Status:               string(l.Status),
		ApprovedAt:           l.ApprovedAt,
		DisbursedAt:          l.DisbursedAt,
		ExpectedEndDate:      l.ExpectedEndDate,
		ClosedAt:             l.ClosedAt,
		OutstandingPrincipal: l.OutstandingPrincipal,
		OutstandingInterest:  l.OutstandingInterest,
		WriteOffReason:       l.WriteOffReason,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
		Version:              l.Version,
	}
}

func toInstallmentResponse(i *lending.Installment) InstallmentResponse {
	return InstallmentResponse{
		Sequence:           i.Sequence,
		DueDate:            i.DueDate,
		ScheduledPrincipal: i.ScheduledPrincipal,
		ScheduledInterest:  i.ScheduledInterest,
		PaidPrincipal:      i.PaidPrincipal,
		PaidInterest:       i.PaidInterest,
		Status:             string(i.Status),
	}
}

func toRepaymentResponse(r *lending.LoanRepayment) *RepaymentResponse {
	return &RepaymentResponse{
		ID:                r.ID,
		LoanID:            r.LoanID,
		PaymentDate:       r.PaymentDate,
		Amount:            r.Amount,
		PrincipalPortion:  r.PrincipalPortion,
		InterestPortion:   r.InterestPortion,
		Overpayment:       r.Overpayment,
		ExternalReference: r.ExternalReference,
	}
}
