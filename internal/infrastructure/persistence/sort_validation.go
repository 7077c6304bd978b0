package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// LoanProductSortFields contains allowed sort fields for loan products
var LoanProductSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"code":                true,
	"name":                true,
	"annual_rate_percent": true,
	"term_count":          true,
	"active":              true,
	"min_principal":       true,
	"max_principal":       true,
}

// LoanSortFields contains allowed sort fields for loans
var LoanSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"loan_number":           true,
	"product_id":            true,
	"member_id":             true,
	"principal_amount":      true,
	"application_date":      true,
	"status":                true,
	"approved_at":           true,
	"disbursed_at":          true,
	"expected_end_date":     true,
	"closed_at":             true,
	"outstanding_principal": true,
	"outstanding_interest":  true,
}

// InstallmentSortFields contains allowed sort fields for installments
var InstallmentSortFields = map[string]bool{
	"id":       true,
	"loan_id":  true,
	"sequence": true,
	"due_date": true,
	"status":   true,
}

// RepaymentSortFields contains allowed sort fields for repayments
var RepaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"loan_id":      true,
	"amount":       true,
	"payment_date": true,
}

// OutboxSortFields contains allowed sort fields for outbox entries
var OutboxSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"event_type":   true,
	"status":       true,
	"retry_count":  true,
	"processed_at": true,
}
