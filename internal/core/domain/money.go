package domain

import (
	"wallet-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Amounts are whole numbers up to 18 digits. Zero is a valid wallet balance
// but never a valid transaction amount.
const MaxAmountDigits = 18

// maxAmount is 10^18 - 1, the largest representable amount magnitude.
var maxAmount = decimal.New(1, MaxAmountDigits).Sub(decimal.NewFromInt(1))

// ValidateAmount checks that amount is usable as a transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return apperror.Validation("transaction amount cannot be zero")
	}
	if !amount.Equal(amount.Truncate(0)) {
		return apperror.Validation("transaction amount must be a whole number")
	}
	if amount.Abs().GreaterThan(maxAmount) {
		return apperror.Validation("transaction amount exceeds 18 digits")
	}
	return nil
}
