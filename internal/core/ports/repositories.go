package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the ledger store's atomic units and
// rely on pessimistic row locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateLabel(ctx context.Context, id uuid.UUID, label string) error
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
	Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal, at time.Time) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params WalletListParams) ([]domain.Wallet, int64, error)
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByTxid(ctx context.Context, txid string) (*domain.Transaction, error)
	GetActiveByTxid(ctx context.Context, txid string) (*domain.Transaction, error)
	ExistsByTxid(ctx context.Context, txid string) (bool, error)
	GetActiveByWalletID(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	GetActiveByWalletIDForUpdate(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) ([]domain.Transaction, error)
	DeactivateAllForWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, at time.Time) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// LedgerStore owns the two atomic balance-consistency protocols. No other
// code path may write balance, is_active or deactivated_at.
type LedgerStore interface {
	// CreateTransactionWithBalanceUpdate locks the wallet row, re-reads the
	// durable balance, rejects a negative result, and persists the
	// transaction together with the new balance in one unit.
	CreateTransactionWithBalanceUpdate(ctx context.Context, wallet *domain.Wallet, transaction *domain.Transaction) (*domain.Wallet, error)

	// DeactivateWalletWithTransactions locks the wallet row and every active
	// transaction for it, flips them all inactive, and subtracts the
	// deactivated sum from the balance in one unit.
	DeactivateWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error)
}

// WalletListParams holds filter + pagination for listing wallets.
// Ordering uses the "-field" convention; unknown fields fall back to the
// default sort. Out-of-range pages clamp to the last page.
type WalletListParams struct {
	IsActive  *bool
	WalletIDs []uuid.UUID
	Page      int
	PageSize  int
	Ordering  string
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	IsActive  *bool
	WalletIDs []uuid.UUID
	Page      int
	PageSize  int
	Ordering  string
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxidReservationStore provides a fast-path uniqueness guard for generated
// txids. Reserve returns false when the candidate is already taken. The
// durable unique constraint on transactions.txid remains the authority.
type TxidReservationStore interface {
	Reserve(ctx context.Context, txid string, ttl time.Duration) (bool, error)
}
