package dto

import "net/http"

// Error codes used by the HTTP layer itself
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
)

// domainErrorHTTPStatus maps domain error codes to HTTP status codes
var domainErrorHTTPStatus = map[string]int{
	"NOT_FOUND":                http.StatusNotFound,
	"DUPLICATE_NAME":           http.StatusConflict,
	"CONCURRENT_MODIFICATION":  http.StatusConflict,
	"INVALID_STATE_TRANSITION": http.StatusUnprocessableEntity,
	"ALLOCATION_SUM_INVALID":   http.StatusBadRequest,
	"PERCENTAGE_OUT_OF_RANGE":  http.StatusBadRequest,
	"INVALID_ENUM_VALUE":       http.StatusBadRequest,
	"INVALID_INPUT":            http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// HTTPStatusForCode returns the HTTP status for an error code, falling
// back to 500 for codes the mapping does not know.
func HTTPStatusForCode(code string) int {
	if status, ok := domainErrorHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
