package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for domain input rejections
	ErrCodeInvalidInput  = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON   = "ERR_INVALID_JSON"
	ErrCodeTooLarge      = "ERR_REQUEST_TOO_LARGE"
	ErrCodeMissingTenant = "ERR_MISSING_TENANT"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeLocked is used while another request holds the procurement lock
	ErrCodeLocked = "ERR_LOCKED"
	// ErrCodeRequestInProgress is used when an Idempotency-Key is still being processed
	ErrCodeRequestInProgress = "ERR_REQUEST_IN_PROGRESS"
	// ErrCodeIdempotencyKeyReused is used when a key comes back with a different body
	ErrCodeIdempotencyKeyReused = "ERR_IDEMPOTENCY_KEY_REUSED"
)

// Business rule error codes
const (
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodeBusinessRule          = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientRemovable = "ERR_INSUFFICIENT_REMOVABLE_QUANTITY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeMissingTenant: http.StatusBadRequest,
	ErrCodeTooLarge:      http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeRequestInProgress:   http.StatusConflict,
	ErrCodeLocked:              http.StatusLocked,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:          http.StatusUnprocessableEntity,
	ErrCodeInsufficientRemovable: http.StatusUnprocessableEntity,
	ErrCodeIdempotencyKeyReused:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes.
// Domain codes missing here are business rule violations.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                       ErrCodeNotFound,
	"LINE_NOT_FOUND":                  ErrCodeNotFound,
	"ALREADY_EXISTS":                  ErrCodeAlreadyExists,
	"INVALID_INPUT":                   ErrCodeInvalidInput,
	"INVALID_TENANT":                  ErrCodeInvalidInput,
	"INVALID_ORDER_NUMBER":            ErrCodeInvalidInput,
	"INVALID_SUPPLIER":                ErrCodeInvalidInput,
	"INVALID_PRODUCT":                 ErrCodeInvalidInput,
	"INVALID_QUANTITY":                ErrCodeInvalidInput,
	"INVALID_PRICE":                   ErrCodeInvalidInput,
	"INVALID_UNIT":                    ErrCodeInvalidInput,
	"INVALID_REFERENCE":               ErrCodeInvalidInput,
	"INVALID_STATE":                   ErrCodeInvalidState,
	"CONCURRENT_MODIFICATION":         ErrCodeConcurrencyConflict,
	"LOCK_NOT_OBTAINED":               ErrCodeLocked,
	"ALREADY_PROCESSED":               ErrCodeRequestInProgress,
	"INSUFFICIENT_REMOVABLE_QUANTITY": ErrCodeInsufficientRemovable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeBusinessRule
}
