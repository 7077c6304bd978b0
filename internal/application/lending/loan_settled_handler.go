package lending

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoanSettledHandler handles LoanRepaymentRecordedEvent and closes a loan
// once its outstanding balance reaches zero, so fully repaid loans do not
// linger in Disbursed waiting for an operator.
type LoanSettledHandler struct {
	loanService *LoanService
	logger      *zap.Logger
}

// NewLoanSettledHandler creates a new handler for repayment recorded events
func NewLoanSettledHandler(loanService *LoanService, logger *zap.Logger) *LoanSettledHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanSettledHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LoanSettledHandler) EventTypes() []string {
	return []string{"LoanRepaymentRecorded"}
}

// Handle closes the loan when the repayment that just landed settled it
func (h *LoanSettledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*lending.LoanRepaymentRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected LoanRepaymentRecorded, got %s", event.EventType())
	}

	if !recorded.OutstandingPrincipal.IsZero() || !recorded.OutstandingInterest.IsZero() {
		return nil
	}

	if _, err := h.loanService.CloseLoan(ctx, recorded.LoanID); err != nil {
		// A concurrent close or write-off already moved the loan on; the
		// goal state is reached either way.
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "INVALID_TRANSITION" {
			h.logger.Debug("loan already left disbursed status",
				zap.String("loan_id", recorded.LoanID.String()))
			return nil
		}
		return fmt.Errorf("failed to close settled loan %s: %w", recorded.LoanID, err)
	}

	h.logger.Info("loan fully repaid and closed",
		zap.String("loan_id", recorded.LoanID.String()),
		zap.String("loan_number", recorded.LoanNumber))
	return nil
}
