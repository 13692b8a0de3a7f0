package domain

import (
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTxidLength bounds the externally-visible transaction identifier.
const MaxTxidLength = 255

// Transaction is an immutable-after-creation record of a signed amount tied
// to one wallet. The only permitted state change is the irreversible
// active -> deactivated transition.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	Txid          string          `json:"txid"`
	Amount        decimal.Decimal `json:"amount"` // positive = credit, negative = debit, never zero
	IsActive      bool            `json:"is_active"`
	DeactivatedAt *time.Time      `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewTransaction builds an in-memory transaction attached to a wallet.
// It does not persist anything; balance math belongs to the ledger store.
func NewTransaction(walletID uuid.UUID, txid string, amount decimal.Decimal) (*Transaction, error) {
	if txid == "" {
		return nil, apperror.Validation("txid cannot be empty")
	}
	if len(txid) > MaxTxidLength {
		return nil, apperror.Validation("txid exceeds 255 characters")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Txid:      txid,
		Amount:    amount,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Deactivate transitions the transaction to its terminal inactive state.
// It adjusts no balance; that is the ledger store's responsibility.
func (t *Transaction) Deactivate() error {
	if !t.IsActive {
		return apperror.ErrTransactionAlreadyDeactivated(t.Txid)
	}

	now := time.Now().UTC()
	t.IsActive = false
	t.DeactivatedAt = &now
	t.UpdatedAt = now
	return nil
}

// IsCredit reports whether the transaction adds funds.
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// IsDebit reports whether the transaction removes funds.
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// Equal is identity equality: two transactions are the same iff their IDs match.
func (t *Transaction) Equal(other *Transaction) bool {
	return other != nil && t.ID == other.ID
}
