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

// Is matches domain errors by code so sentinel comparisons survive
// wrapping and message enrichment.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
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
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrDuplicateName          = NewDomainError("DUPLICATE_NAME", "Resource with the same name already exists")
	ErrInvalidStateTransition = NewDomainError("INVALID_STATE_TRANSITION", "Operation not allowed in current state")
	ErrAllocationSumInvalid   = NewDomainError("ALLOCATION_SUM_INVALID", "Segment allocation percentages must sum to exactly 100")
	ErrPercentageOutOfRange   = NewDomainError("PERCENTAGE_OUT_OF_RANGE", "Percentage must be between 0 and 100")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrInvalidEnumValue       = NewDomainError("INVALID_ENUM_VALUE", "Value is not a member of the enumeration")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
)
