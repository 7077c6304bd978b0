package lending

import (
	"context"

	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoanNotificationHandler logs member-facing notifications for the loan
// events that matter operationally. A real deployment would hand these to
// an SMS or messaging gateway; the handler keeps that seam in one place.
type LoanNotificationHandler struct {
	logger *zap.Logger
}

// NewLoanNotificationHandler creates a new notification handler
func NewLoanNotificationHandler(logger *zap.Logger) *LoanNotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanNotificationHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LoanNotificationHandler) EventTypes() []string {
	return []string{"LoanDisbursed", "LoanRepaymentRecorded", "LoanWrittenOff"}
}

// Handle emits a notification log line for the event
func (h *LoanNotificationHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *lending.LoanDisbursedEvent:
		h.logger.Info("notify member: loan disbursed",
			zap.String("loan_id", e.LoanID.String()),
			zap.String("loan_number", e.LoanNumber),
			zap.String("member_id", e.MemberID.String()),
			zap.String("principal_amount", e.PrincipalAmount.String()),
			zap.Time("expected_end_date", e.ExpectedEndDate))
	case *lending.LoanRepaymentRecordedEvent:
		h.logger.Info("notify member: repayment received",
			zap.String("loan_id", e.LoanID.String()),
			zap.String("loan_number", e.LoanNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("outstanding_principal", e.OutstandingPrincipal.String()),
			zap.String("outstanding_interest", e.OutstandingInterest.String()))
	case *lending.LoanWrittenOffEvent:
		h.logger.Warn("notify operations: loan written off",
			zap.String("loan_id", e.LoanID.String()),
			zap.String("loan_number", e.LoanNumber),
			zap.String("reason", e.Reason),
			zap.String("written_off_principal", e.WrittenOffPrincipal.String()))
	default:
		h.logger.Debug("unhandled notification event",
			zap.String("event_type", event.EventType()))
	}
	return nil
}
