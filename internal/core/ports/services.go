package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletService provides wallet-only domain operations.
// GetWallet resolves active wallets only; inactive reads surface as not-found.
type WalletService interface {
	CreateWallet(ctx context.Context, label string) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	UpdateWalletLabel(ctx context.Context, id uuid.UUID, label string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, params WalletListParams) ([]domain.Wallet, int64, error)
}

// TransactionService provides transaction-only domain operations.
// NewTransaction builds an in-memory transaction with a store-verified-unique
// txid; it never touches the balance-lock path.
type TransactionService interface {
	NewTransaction(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	GetTransactionByTxid(ctx context.Context, txid string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// LedgerService composes the wallet and transaction services for the
// cross-aggregate use cases backed by the ledger store protocols.
type LedgerService interface {
	CreateTransactionWithBalanceUpdate(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, *domain.Wallet, error)
	DeactivateWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	GetWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error)
	CreateWalletWithInitialBalance(ctx context.Context, label string, amount decimal.Decimal) (*domain.Wallet, error)
}
