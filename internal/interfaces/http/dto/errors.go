package dto

import "net/http"

// Standardized error codes returned by the HTTP API.
const (
	// General errors
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeUnavailable  = "ERR_UNAVAILABLE"
	ErrCodeInvalidState = "ERR_INVALID_STATE"

	// Ledger errors
	ErrCodeInsufficientRawStock     = "ERR_INSUFFICIENT_RAW_STOCK"
	ErrCodeInsufficientCleanedStock = "ERR_INSUFFICIENT_CLEANED_STOCK"
	ErrCodeExceedsAvailableStock    = "ERR_EXCEEDS_AVAILABLE_STOCK"
	ErrCodeDuplicateSequenceNo      = "ERR_DUPLICATE_SEQUENCE_NO"
	ErrCodePostedEntryImmutable     = "ERR_POSTED_ENTRY_IMMUTABLE"

	// Cleaning errors
	ErrCodeAlreadyPosted = "ERR_ALREADY_POSTED"
	ErrCodeMassBalance   = "ERR_MASS_BALANCE"

	// Concurrency errors
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,
	ErrCodeInvalidState: http.StatusConflict,

	ErrCodeInsufficientRawStock:     http.StatusUnprocessableEntity,
	ErrCodeInsufficientCleanedStock: http.StatusUnprocessableEntity,
	ErrCodeExceedsAvailableStock:    http.StatusUnprocessableEntity,
	ErrCodeDuplicateSequenceNo:      http.StatusConflict,
	ErrCodePostedEntryImmutable:     http.StatusUnprocessableEntity,

	ErrCodeAlreadyPosted: http.StatusConflict,
	ErrCodeMassBalance:   http.StatusUnprocessableEntity,

	ErrCodeConcurrencyConflict: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates domain-layer error codes to API error
// codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                  ErrCodeNotFound,
	"ALREADY_EXISTS":             ErrCodeConflict,
	"INVALID_INPUT":              ErrCodeValidation,
	"INVALID_STATE":              ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":       ErrCodeConcurrencyConflict,
	"UNAVAILABLE":                ErrCodeUnavailable,
	"INSUFFICIENT_RAW_STOCK":     ErrCodeInsufficientRawStock,
	"INSUFFICIENT_CLEANED_STOCK": ErrCodeInsufficientCleanedStock,
	"EXCEEDS_AVAILABLE_STOCK":    ErrCodeExceedsAvailableStock,
	"DUPLICATE_SEQUENCE_NO":      ErrCodeDuplicateSequenceNo,
	"POSTED_ENTRY_IMMUTABLE":     ErrCodePostedEntryImmutable,
	"ALREADY_POSTED":             ErrCodeAlreadyPosted,
	"MASS_BALANCE":               ErrCodeMassBalance,
}

// NormalizeErrorCode converts a domain error code to its API error code,
// returning the input unchanged when no mapping exists.
func NormalizeErrorCode(code string) string {
	if normalized, ok := DomainErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}
