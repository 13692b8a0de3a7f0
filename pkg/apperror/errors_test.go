package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("WLT_001", "Wallet abc not found", http.StatusNotFound)
	assert.Equal(t, "[WLT_001] Wallet abc not found", e.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("pool closed"))
	assert.Equal(t, "[SYS_001] Internal server error: pool closed", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := InternalError(fmt.Errorf("begin tx: %w", inner))

	assert.True(t, errors.Is(e, inner))

	var appErr *AppError
	assert.True(t, errors.As(error(e), &appErr))
	assert.Equal(t, CodeInternal, appErr.Code)
}

func TestErrInsufficientBalance_Details(t *testing.T) {
	current := decimal.NewFromInt(100)
	delta := decimal.NewFromInt(-150)
	resulting := decimal.NewFromInt(-50)

	e := ErrInsufficientBalance(current, delta, resulting)

	assert.Equal(t, CodeInsufficientBalance, e.Code)
	assert.Equal(t, http.StatusPaymentRequired, e.HTTPStatus)
	assert.Equal(t, "100", e.Details["current_balance"])
	assert.Equal(t, "-150", e.Details["amount"])
	assert.Equal(t, "-50", e.Details["resulting_balance"])
}

func TestErrorConstructors_Codes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"wallet not found", ErrWalletNotFound("w1"), CodeWalletNotFound, http.StatusNotFound},
		{"wallet deactivated", ErrWalletAlreadyDeactivated("w1"), CodeWalletDeactivated, http.StatusConflict},
		{"transaction not found", ErrTransactionNotFound("tx_1"), CodeTransactionNotFound, http.StatusNotFound},
		{"transaction deactivated", ErrTransactionAlreadyDeactivated("tx_1"), CodeTransactionDeactivated, http.StatusConflict},
		{"duplicate txid", ErrDuplicateTxid("tx_1"), CodeDuplicateTxid, http.StatusConflict},
		{"validation", Validation("label cannot be empty"), CodeValidation, http.StatusBadRequest},
		{"rate limit", ErrRateLimitExceeded(), CodeRateLimitExceeded, http.StatusTooManyRequests},
		{"lock timeout", ErrLockTimeout(errors.New("55P03")), CodeLockTimeout, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeWalletNotFound, CodeOf(ErrWalletNotFound("w1")))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}
