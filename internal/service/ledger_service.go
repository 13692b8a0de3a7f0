package service

import (
	"context"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	walletSvc   ports.WalletService
	txSvc       ports.TransactionService
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	ledgerStore ports.LedgerStore
	log         zerolog.Logger
}

// NewLedgerService creates the orchestration service for cross-aggregate use
// cases. All balance writes funnel through the ledger store protocols.
func NewLedgerService(
	walletSvc ports.WalletService,
	txSvc ports.TransactionService,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	ledgerStore ports.LedgerStore,
	log zerolog.Logger,
) ports.LedgerService {
	return &ledgerService{
		walletSvc:   walletSvc,
		txSvc:       txSvc,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		ledgerStore: ledgerStore,
		log:         log,
	}
}

// CreateTransactionWithBalanceUpdate validates against a snapshot, then hands
// the atomic insert-plus-balance-write to the ledger store, which re-checks
// everything under the row lock.
func (s *ledgerService) CreateTransactionWithBalanceUpdate(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, *domain.Wallet, error) {
	wallet, err := s.walletSvc.GetWallet(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}

	txn, err := s.txSvc.NewTransaction(ctx, walletID, amount)
	if err != nil {
		return nil, nil, err
	}

	// Snapshot-level active check for an early rejection. The authoritative
	// checks happen inside the store under the lock.
	if err := wallet.AddTransaction(txn); err != nil {
		return nil, nil, err
	}

	updated, err := s.ledgerStore.CreateTransactionWithBalanceUpdate(ctx, wallet, txn)
	if err != nil {
		return nil, nil, err
	}
	return txn, updated, nil
}

func (s *ledgerService) DeactivateWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	wallet, txns, err := s.ledgerStore.DeactivateWalletWithTransactions(ctx, walletID)
	if err != nil {
		return nil, err
	}

	wallet.Transactions = make([]*domain.Transaction, len(txns))
	for i := range txns {
		wallet.Transactions[i] = &txns[i]
	}
	return wallet, nil
}

// GetWalletWithTransactions reads a wallet in any state together with its
// active transactions.
func (s *ledgerService) GetWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, nil, apperror.ErrWalletNotFound(walletID.String())
	}

	txns, err := s.txRepo.GetActiveByWalletID(ctx, walletID)
	if err != nil {
		return nil, nil, apperror.InternalError(err)
	}
	return wallet, txns, nil
}

// CreateWalletWithInitialBalance creates a wallet and funds it with one
// credit transaction. Wallet creation is not rolled back if the funding
// fails; the caller gets the error and an empty active wallet remains.
func (s *ledgerService) CreateWalletWithInitialBalance(ctx context.Context, label string, amount decimal.Decimal) (*domain.Wallet, error) {
	if amount.IsNegative() {
		return nil, apperror.Validation("Initial balance must not be negative")
	}

	wallet, err := s.walletSvc.CreateWallet(ctx, label)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return wallet, nil
	}

	_, funded, err := s.CreateTransactionWithBalanceUpdate(ctx, wallet.ID, amount)
	if err != nil {
		s.log.Error().Err(err).
			Str("wallet_id", wallet.ID.String()).
			Msg("initial funding failed after wallet creation")
		return nil, err
	}
	return funded, nil
}
