package event

import (
	"github.com/mfin/backend/internal/domain/lending"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Loan product events
	serializer.Register("LoanProductCreated", &lending.LoanProductCreatedEvent{})
	serializer.Register("LoanProductDeactivated", &lending.LoanProductDeactivatedEvent{})

	// Loan lifecycle events
	serializer.Register("LoanCreated", &lending.LoanCreatedEvent{})
	serializer.Register("LoanApproved", &lending.LoanApprovedEvent{})
	serializer.Register("LoanRejected", &lending.LoanRejectedEvent{})
	serializer.Register("LoanCancelled", &lending.LoanCancelledEvent{})
	serializer.Register("LoanDisbursed", &lending.LoanDisbursedEvent{})
	serializer.Register("LoanRepaymentRecorded", &lending.LoanRepaymentRecordedEvent{})
	serializer.Register("LoanClosed", &lending.LoanClosedEvent{})
	serializer.Register("LoanWrittenOff", &lending.LoanWrittenOffEvent{})
}
