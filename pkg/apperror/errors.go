package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication & Access (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Insufficient permissions", http.StatusForbidden)
}

// ---- Documents: quotes & invoices (DOC) ----

func ErrDocumentNotFound() *AppError {
	return New("DOC_001", "Document not found", http.StatusNotFound)
}

// ErrDuplicateNumber surfaces a uniqueness-constraint violation on the
// document number column. The sequence generator minimizes but cannot
// eliminate this race; the constraint is the authoritative guard.
func ErrDuplicateNumber(err error) *AppError {
	return Wrap("DOC_002", "Document number already taken", http.StatusConflict, err)
}

func ErrInvalidDocumentStatus(from, to string) *AppError {
	return New("DOC_003", fmt.Sprintf("Cannot move document from %s to %s", from, to), http.StatusUnprocessableEntity)
}

func ErrQuoteNotConvertible() *AppError {
	return New("DOC_004", "Only accepted quotes can be converted to invoices", http.StatusUnprocessableEntity)
}

// ---- Generic resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrSlugExists() *AppError {
	return New("RES_002", "Slug already in use", http.StatusConflict)
}

// ---- Webhooks (WH) ----

func ErrWebhookNotFound() *AppError {
	return New("WH_001", "Webhook not found", http.StatusNotFound)
}

func ErrDeliveryNotFound() *AppError {
	return New("WH_002", "Webhook delivery not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrStorageError(err error) *AppError {
	return Wrap("SYS_002", "Object storage failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
