package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInvalidTransition is used when a lifecycle transition is not allowed
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodeProductInactive is used when a loan references a deactivated product
	ErrCodeProductInactive = "ERR_PRODUCT_INACTIVE"
	// ErrCodePrincipalOutOfRange is used when a principal violates product limits
	ErrCodePrincipalOutOfRange = "ERR_PRINCIPAL_OUT_OF_RANGE"
	// ErrCodeOverpaymentRejected is used when a payment exceeds the outstanding balance
	ErrCodeOverpaymentRejected = "ERR_OVERPAYMENT_REJECTED"
	// ErrCodeScheduleSettled is used when a payment arrives after full settlement
	ErrCodeScheduleSettled = "ERR_SCHEDULE_SETTLED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:   http.StatusUnprocessableEntity,
	ErrCodeProductInactive:     http.StatusUnprocessableEntity,
	ErrCodePrincipalOutOfRange: http.StatusUnprocessableEntity,
	ErrCodeOverpaymentRejected: http.StatusUnprocessableEntity,
	ErrCodeScheduleSettled:     http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps raw domain error codes to the standardized
// ERR_* codes carried on the wire
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"INVALID_TRANSITION":   ErrCodeInvalidTransition,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Product catalog validation
	"INVALID_PRODUCT_CODE":    ErrCodeValidation,
	"INVALID_PRODUCT_NAME":    ErrCodeValidation,
	"INVALID_RATE":            ErrCodeValidationRange,
	"INVALID_TERM":            ErrCodeValidationRange,
	"INVALID_TERM_UNIT":       ErrCodeValidationFormat,
	"INVALID_FREQUENCY":       ErrCodeValidationFormat,
	"INVALID_METHOD":          ErrCodeValidationFormat,
	"INVALID_PRINCIPAL_RANGE": ErrCodeValidationRange,

	// Loan origination and repayment
	"INVALID_LOAN_NUMBER":     ErrCodeValidation,
	"INVALID_MEMBER":          ErrCodeValidation,
	"PRODUCT_INACTIVE":        ErrCodeProductInactive,
	"PRINCIPAL_OUT_OF_RANGE":  ErrCodePrincipalOutOfRange,
	"INVALID_SCHEDULE_PARAMS": ErrCodeInvalidInput,
	"NON_POSITIVE_PAYMENT":    ErrCodeInvalidInput,
	"OVERPAYMENT_REJECTED":    ErrCodeOverpaymentRejected,
	"SCHEDULE_SETTLED":        ErrCodeScheduleSettled,
}

// NormalizeErrorCode converts a raw domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
