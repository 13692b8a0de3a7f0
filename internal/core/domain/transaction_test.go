package domain

import (
	"strings"
	"testing"

	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	walletID := uuid.New()

	tx, err := NewTransaction(walletID, "tx_1700000000000_1234", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, walletID, tx.WalletID)
	assert.True(t, tx.IsActive)
	assert.Nil(t, tx.DeactivatedAt)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1000)))
	assert.False(t, tx.UpdatedAt.Before(tx.CreatedAt))
}

func TestNewTransaction_Validation(t *testing.T) {
	walletID := uuid.New()

	tests := []struct {
		name   string
		txid   string
		amount decimal.Decimal
	}{
		{"zero amount", "tx_1", decimal.Zero},
		{"fractional amount", "tx_1", decimal.RequireFromString("10.5")},
		{"amount over 18 digits", "tx_1", decimal.RequireFromString("1000000000000000000")},
		{"empty txid", "", decimal.NewFromInt(10)},
		{"txid too long", strings.Repeat("x", 256), decimal.NewFromInt(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(walletID, tt.txid, tt.amount)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
		})
	}
}

func TestTransaction_Deactivate(t *testing.T) {
	tx, err := NewTransaction(uuid.New(), "tx_1", decimal.NewFromInt(500))
	require.NoError(t, err)

	require.NoError(t, tx.Deactivate())
	assert.False(t, tx.IsActive)
	require.NotNil(t, tx.DeactivatedAt)
	assert.Equal(t, *tx.DeactivatedAt, tx.UpdatedAt)

	err = tx.Deactivate()
	require.Error(t, err)
	assert.Equal(t, apperror.CodeTransactionDeactivated, apperror.CodeOf(err))
}

func TestTransaction_CreditDebit(t *testing.T) {
	credit, err := NewTransaction(uuid.New(), "tx_c", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, credit.IsCredit())
	assert.False(t, credit.IsDebit())

	debit, err := NewTransaction(uuid.New(), "tx_d", decimal.NewFromInt(-100))
	require.NoError(t, err)
	assert.True(t, debit.IsDebit())
	assert.False(t, debit.IsCredit())
}

func TestTransaction_Equal(t *testing.T) {
	a, err := NewTransaction(uuid.New(), "tx_a", decimal.NewFromInt(100))
	require.NoError(t, err)
	b, err := NewTransaction(uuid.New(), "tx_b", decimal.NewFromInt(-50))
	require.NoError(t, err)

	// Identity equality: only the ID matters.
	clone := *a
	clone.Txid = "something_else"
	clone.Amount = decimal.NewFromInt(999)
	assert.True(t, a.Equal(&clone))

	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
}

func TestValidateAmount_Boundary(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("999999999999999999")))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("-999999999999999999")))
	assert.Error(t, ValidateAmount(decimal.RequireFromString("-1000000000000000000")))
}
