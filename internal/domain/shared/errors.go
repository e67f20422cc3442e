package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnavailable         = NewDomainError("UNAVAILABLE", "Storage backend is unavailable")

	// Ledger invariants
	ErrInsufficientRawStock     = NewDomainError("INSUFFICIENT_RAW_STOCK", "Raw weight remaining would fall below zero")
	ErrInsufficientCleanedStock = NewDomainError("INSUFFICIENT_CLEANED_STOCK", "Cleaned total would fall below zero")
	ErrExceedsAvailableStock    = NewDomainError("EXCEEDS_AVAILABLE_STOCK", "Requested weight exceeds available cleaned stock")
	ErrDuplicateSequenceNo      = NewDomainError("DUPLICATE_SEQUENCE_NO", "Sequence number already issued for this series")
	ErrPostedEntryImmutable     = NewDomainError("POSTED_ENTRY_IMMUTABLE", "Entry date cannot change after a posting against it")

	// Cleaning lifecycle
	ErrAlreadyPosted = NewDomainError("ALREADY_POSTED", "Operation is already posted")
	ErrMassBalance   = NewDomainError("MASS_BALANCE", "Output plus rejects deviates from input beyond tolerance")
)
