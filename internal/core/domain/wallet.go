package domain

import (
	"strings"
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLabelLength bounds the human-readable wallet label.
const MaxLabelLength = 255

// Wallet is an account-like aggregate holding a balance and a label.
//
// The in-memory Balance is a snapshot, never the authority: the durable
// balance is owned by the ledger store and recomputed under a row lock.
// Entity methods therefore never do balance math; doing it here would
// reintroduce the read-then-write race across concurrently loaded copies.
type Wallet struct {
	ID            uuid.UUID       `json:"id"`
	Label         string          `json:"label"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	DeactivatedAt *time.Time      `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Transactions accumulated during the current use-case scope.
	// Not a durable view of the wallet's full history.
	Transactions []*Transaction `json:"-"`
}

// NewWallet creates an active wallet with a zero balance.
func NewWallet(label string) (*Wallet, error) {
	trimmed, err := validateLabel(label)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Wallet{
		ID:        uuid.New(),
		Label:     trimmed,
		Balance:   decimal.Zero,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateLabel trims and stores a new label.
func (w *Wallet) UpdateLabel(label string) error {
	trimmed, err := validateLabel(label)
	if err != nil {
		return err
	}

	w.Label = trimmed
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// AddTransaction appends a transaction to the in-memory list. The durable
// balance update happens in the ledger store's atomic unit.
func (w *Wallet) AddTransaction(t *Transaction) error {
	if !w.IsActive {
		return apperror.ErrWalletAlreadyDeactivated(w.ID.String())
	}

	w.Transactions = append(w.Transactions, t)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Deactivate transitions the wallet to its terminal inactive state and
// cascades to every in-memory transaction still active. The durable cascade
// over all of the wallet's transactions is the ledger store's job.
func (w *Wallet) Deactivate() error {
	if !w.IsActive {
		return apperror.ErrWalletAlreadyDeactivated(w.ID.String())
	}

	now := time.Now().UTC()
	w.IsActive = false
	w.DeactivatedAt = &now
	w.UpdatedAt = now

	for _, t := range w.Transactions {
		if t.IsActive {
			if err := t.Deactivate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ActiveTransactions returns the in-memory transactions still active.
func (w *Wallet) ActiveTransactions() []*Transaction {
	var active []*Transaction
	for _, t := range w.Transactions {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active
}

// BalanceFromTransactions sums the in-memory active transaction amounts.
// Useful for verification; not authoritative for the persisted balance.
func (w *Wallet) BalanceFromTransactions() decimal.Decimal {
	total := decimal.Zero
	for _, t := range w.ActiveTransactions() {
		total = total.Add(t.Amount)
	}
	return total
}

// Equal is identity equality: two wallets are the same iff their IDs match.
func (w *Wallet) Equal(other *Wallet) bool {
	return other != nil && w.ID == other.ID
}

func validateLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", apperror.Validation("wallet label cannot be empty")
	}
	if len(trimmed) > MaxLabelLength {
		return "", apperror.Validation("wallet label exceeds 255 characters")
	}
	return trimmed, nil
}
