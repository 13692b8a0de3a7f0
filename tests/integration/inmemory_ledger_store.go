package integration

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func duplicateTxidErr(txid string) error {
	return apperror.ErrDuplicateTxid(txid)
}

// inMemoryLedgerStore mirrors the postgres ledger store protocols. Holding
// the shared mutex for the full protocol plays the role of the exclusive
// row lock: concurrent debits against the same wallet serialise, and the
// second one re-reads the balance the first one committed.
type inMemoryLedgerStore struct {
	store   *memStore
	wallets *inMemoryWalletRepo
	txs     *inMemoryTransactionRepo
}

func newInMemoryLedgerStore(store *memStore, wallets *inMemoryWalletRepo, txs *inMemoryTransactionRepo) *inMemoryLedgerStore {
	return &inMemoryLedgerStore{store: store, wallets: wallets, txs: txs}
}

func (s *inMemoryLedgerStore) CreateTransactionWithBalanceUpdate(ctx context.Context, wallet *domain.Wallet, transaction *domain.Transaction) (*domain.Wallet, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	locked, err := s.wallets.GetByIDForUpdate(ctx, nil, wallet.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, apperror.ErrWalletNotFound(wallet.ID.String())
	}
	if !locked.IsActive {
		return nil, apperror.ErrWalletAlreadyDeactivated(locked.ID.String())
	}

	newBalance := locked.Balance.Add(transaction.Amount)
	if newBalance.IsNegative() {
		return nil, apperror.ErrInsufficientBalance(locked.Balance, transaction.Amount, newBalance)
	}

	if err := s.txs.Create(ctx, nil, transaction); err != nil {
		return nil, err
	}
	if err := s.wallets.UpdateBalance(ctx, nil, locked.ID, newBalance); err != nil {
		return nil, err
	}

	locked.Balance = newBalance
	locked.UpdatedAt = time.Now().UTC()
	return locked, nil
}

func (s *inMemoryLedgerStore) DeactivateWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	locked, err := s.wallets.GetByIDForUpdate(ctx, nil, walletID)
	if err != nil {
		return nil, nil, err
	}
	if locked == nil {
		return nil, nil, apperror.ErrWalletNotFound(walletID.String())
	}
	if !locked.IsActive {
		return nil, nil, apperror.ErrWalletAlreadyDeactivated(walletID.String())
	}

	active, err := s.txs.GetActiveByWalletIDForUpdate(ctx, nil, walletID)
	if err != nil {
		return nil, nil, err
	}

	deactivatedSum := decimal.Zero
	for _, t := range active {
		deactivatedSum = deactivatedSum.Add(t.Amount)
	}

	now := time.Now().UTC()
	if len(active) > 0 {
		if err := s.txs.DeactivateAllForWallet(ctx, nil, walletID, now); err != nil {
			return nil, nil, err
		}
	}

	newBalance := locked.Balance.Sub(deactivatedSum)
	if err := s.wallets.Deactivate(ctx, nil, walletID, newBalance, now); err != nil {
		return nil, nil, err
	}

	locked.Balance = newBalance
	locked.IsActive = false
	locked.DeactivatedAt = &now
	locked.UpdatedAt = now

	for i := range active {
		active[i].IsActive = false
		active[i].DeactivatedAt = &now
		active[i].UpdatedAt = now
	}
	return locked, active, nil
}
