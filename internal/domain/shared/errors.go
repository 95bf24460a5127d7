package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) matches any NOT_FOUND error regardless of message.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrorCode extracts the code of the first DomainError in err's chain.
// Returns an empty string when err carries no domain error.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Kernel precondition violations. These abort the single operation that raised
// them; the caller's transaction is expected to roll back.
var (
	ErrPeriodNotOpen                 = NewDomainError("PERIOD_NOT_OPEN", "Accounting period is not open")
	ErrInsufficientCostLayers        = NewDomainError("INSUFFICIENT_COST_LAYERS", "FIFO cost layers cannot cover the issued quantity")
	ErrUnsupportedValuationMethod    = NewDomainError("UNSUPPORTED_VALUATION_METHOD", "Valuation method is not supported")
	ErrUnsupportedDepreciationMethod = NewDomainError("UNSUPPORTED_DEPRECIATION_METHOD", "Depreciation method is not supported")
	ErrCurrencyMismatch              = NewDomainError("CURRENCY_MISMATCH", "Currencies do not match")
	ErrEventPublishFailed            = NewDomainError("EVENT_PUBLISH_FAILED", "Event could not be published after commit")
)
