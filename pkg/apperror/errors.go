package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the ledger, the processor gateway and the HTTP layer.
const (
	CodeNotFound        = "LED_001"
	CodeInvalidArgument = "LED_002"
	CodeConflict        = "LED_003"

	CodeProcessorUnreachable = "PRC_001"
	CodeProcessorRejected    = "PRC_002"
	CodeProcessorMalformed   = "PRC_003"

	CodeValidation    = "REQ_001"
	CodeRateLimit     = "RATE_001"
	CodeInternal      = "SYS_001"
	CodeUnknownSystem = "SYS_000"
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

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ---- Ledger (LED) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// InvalidArgument reports an out-of-range or otherwise unusable input value.
func InvalidArgument(message string) *AppError {
	return New(CodeInvalidArgument, message, http.StatusBadRequest)
}

func ErrInvalidFeePercentage() *AppError {
	return InvalidArgument("Platform fee percentage must be between 0 and 100")
}

func ErrInvalidPrice() *AppError {
	return InvalidArgument("Price must be greater than zero")
}

func ErrNoFundsAvailable() *AppError {
	return InvalidArgument("No funds available for payout")
}

// Conflict reports that a record with the same identity already exists.
func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func ErrDuplicatePayment() *AppError {
	return Conflict("Payment already recorded")
}

func ErrDuplicatePayout() *AppError {
	return Conflict("Payout already recorded")
}

func ErrPayoutInProgress() *AppError {
	return Conflict("A payout for this merchant is already in progress")
}

// ---- Payment processor (PRC) ----

func ErrProcessorUnreachable(err error) *AppError {
	return Wrap(CodeProcessorUnreachable, "Payment processor unreachable", http.StatusGatewayTimeout, err)
}

func ErrProcessorRejected(err error) *AppError {
	return Wrap(CodeProcessorRejected, "Payment processor rejected the request", http.StatusBadGateway, err)
}

func ErrProcessorMalformedResponse(err error) *AppError {
	return Wrap(CodeProcessorMalformed, "Payment processor returned a malformed response", http.StatusBadGateway, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
