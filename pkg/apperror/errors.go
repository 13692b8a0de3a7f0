package apperror

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// AppError is a structured error that maps to HTTP responses.
// Callers branch on Code rather than parsing messages.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
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

// Error codes. One per domain failure kind; SYS_ codes are infrastructure.
const (
	CodeWalletNotFound         = "WLT_001"
	CodeWalletDeactivated      = "WLT_002"
	CodeInsufficientBalance    = "WLT_003"
	CodeTransactionNotFound    = "TXN_001"
	CodeTransactionDeactivated = "TXN_002"
	CodeDuplicateTxid          = "TXN_003"
	CodeValidation             = "VAL_001"
	CodeRateLimitExceeded      = "RATE_001"
	CodeInternal               = "SYS_001"
	CodeLockTimeout            = "SYS_002"
)

// ---- Wallet (WLT) ----

func ErrWalletNotFound(id string) *AppError {
	return New(CodeWalletNotFound, fmt.Sprintf("Wallet %s not found", id), http.StatusNotFound)
}

func ErrWalletAlreadyDeactivated(id string) *AppError {
	return New(CodeWalletDeactivated, fmt.Sprintf("Wallet %s is already deactivated", id), http.StatusConflict)
}

// ErrInsufficientBalance carries the attempted amounts for diagnostics.
func ErrInsufficientBalance(current, delta, resulting decimal.Decimal) *AppError {
	e := New(
		CodeInsufficientBalance,
		fmt.Sprintf("Insufficient balance: current %s, transaction %s would leave %s", current, delta, resulting),
		http.StatusPaymentRequired,
	)
	e.Details = map[string]any{
		"current_balance":   current.String(),
		"amount":            delta.String(),
		"resulting_balance": resulting.String(),
	}
	return e
}

// ---- Transaction (TXN) ----

func ErrTransactionNotFound(txid string) *AppError {
	return New(CodeTransactionNotFound, fmt.Sprintf("Transaction %s not found", txid), http.StatusNotFound)
}

func ErrTransactionAlreadyDeactivated(txid string) *AppError {
	return New(CodeTransactionDeactivated, fmt.Sprintf("Transaction %s is already deactivated", txid), http.StatusConflict)
}

func ErrDuplicateTxid(txid string) *AppError {
	return New(CodeDuplicateTxid, fmt.Sprintf("Transaction with txid %s already exists", txid), http.StatusConflict)
}

// ---- Validation (VAL) ----

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrLockTimeout marks a lock-contention failure. Safe to retry the whole
// use case after re-reading fresh state; the store never retries internally.
func ErrLockTimeout(err error) *AppError {
	return Wrap(CodeLockTimeout, "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// CodeOf returns the error code of err, or an empty string for non-AppErrors.
func CodeOf(err error) string {
	if e, ok := err.(*AppError); ok {
		return e.Code
	}
	return ""
}
