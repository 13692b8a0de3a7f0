package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerStore implements ports.LedgerStore. It is the sole writer of durable
// balance and activation state: both protocols re-read the wallet under an
// exclusive row lock so that concurrent callers serialize per wallet.
//
// The store never retries on lock timeout: retrying inside the atomic unit
// risks double side effects. Callers retry the whole use case with fresh
// state if they want to.
type LedgerStore struct {
	db           ports.DBTransactor
	wallets      *WalletRepo
	transactions *TransactionRepo
	lockTimeout  time.Duration
	log          zerolog.Logger
}

// NewLedgerStore creates a LedgerStore.
func NewLedgerStore(db ports.DBTransactor, wallets *WalletRepo, transactions *TransactionRepo, lockTimeout time.Duration, log zerolog.Logger) *LedgerStore {
	return &LedgerStore{
		db:           db,
		wallets:      wallets,
		transactions: transactions,
		lockTimeout:  lockTimeout,
		log:          log,
	}
}

// CreateTransactionWithBalanceUpdate persists a transaction and the wallet's
// new balance as one unit.
//
// The balance is re-read under the lock, not taken from the caller's wallet
// snapshot: two concurrent debits that both validated against the same stale
// balance would otherwise both commit.
func (s *LedgerStore) CreateTransactionWithBalanceUpdate(ctx context.Context, wallet *domain.Wallet, txn *domain.Transaction) (*domain.Wallet, error) {
	dbTx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.applyLockTimeout(ctx, dbTx); err != nil {
		return nil, apperror.InternalError(err)
	}

	locked, err := s.wallets.GetByIDForUpdate(ctx, dbTx, wallet.ID)
	if err != nil {
		if isLockTimeout(err) {
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if locked == nil {
		return nil, apperror.ErrWalletNotFound(wallet.ID.String())
	}
	if !locked.IsActive {
		// The caller validated against a snapshot; the wallet may have been
		// deactivated since. Re-check under the lock.
		return nil, apperror.ErrWalletAlreadyDeactivated(wallet.ID.String())
	}

	newBalance := locked.Balance.Add(txn.Amount)
	if newBalance.IsNegative() {
		return nil, apperror.ErrInsufficientBalance(locked.Balance, txn.Amount, newBalance)
	}

	if err := s.transactions.Create(ctx, dbTx, txn); err != nil {
		if isUniqueViolation(err, "") {
			return nil, apperror.ErrDuplicateTxid(txn.Txid)
		}
		return nil, apperror.InternalError(err)
	}

	if err := s.wallets.UpdateBalance(ctx, dbTx, locked.ID, newBalance); err != nil {
		return nil, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		if isLockTimeout(err) {
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", locked.ID.String()).
		Str("txid", txn.Txid).
		Str("amount", txn.Amount.String()).
		Str("balance", newBalance.String()).
		Msg("transaction committed with balance update")

	updated := *locked
	updated.Balance = newBalance
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

// DeactivateWalletWithTransactions flips the wallet and every active
// transaction for it to inactive in one unit, subtracting the deactivated
// sum from the balance (zero by construction, since the durable balance is
// the sum of active amounts).
//
// The active set is discovered and locked inside the unit, never taken from
// an in-memory subset, which could be stale and leave the balance drifting.
func (s *LedgerStore) DeactivateWalletWithTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error) {
	dbTx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.applyLockTimeout(ctx, dbTx); err != nil {
		return nil, nil, apperror.InternalError(err)
	}

	locked, err := s.wallets.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		if isLockTimeout(err) {
			return nil, nil, apperror.ErrLockTimeout(err)
		}
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if locked == nil {
		return nil, nil, apperror.ErrWalletNotFound(walletID.String())
	}
	if !locked.IsActive {
		return nil, nil, apperror.ErrWalletAlreadyDeactivated(walletID.String())
	}

	txns, err := s.transactions.GetActiveByWalletIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		if isLockTimeout(err) {
			return nil, nil, apperror.ErrLockTimeout(err)
		}
		return nil, nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	deactivatedSum := decimal.Zero
	for _, t := range txns {
		deactivatedSum = deactivatedSum.Add(t.Amount)
	}

	if len(txns) > 0 {
		if err := s.transactions.DeactivateAllForWallet(ctx, dbTx, walletID, now); err != nil {
			return nil, nil, apperror.InternalError(err)
		}
	}

	newBalance := locked.Balance.Sub(deactivatedSum)
	if err := s.wallets.Deactivate(ctx, dbTx, walletID, newBalance, now); err != nil {
		return nil, nil, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		if isLockTimeout(err) {
			return nil, nil, apperror.ErrLockTimeout(err)
		}
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", walletID.String()).
		Int("transactions", len(txns)).
		Str("deactivated_sum", deactivatedSum.String()).
		Msg("wallet deactivated with cascade")

	for i := range txns {
		txns[i].IsActive = false
		txns[i].DeactivatedAt = &now
		txns[i].UpdatedAt = now
	}

	updated := *locked
	updated.Balance = newBalance
	updated.IsActive = false
	updated.DeactivatedAt = &now
	updated.UpdatedAt = now
	return &updated, txns, nil
}

// applyLockTimeout bounds row-lock waits for the current transaction.
// SET LOCAL reverts on commit or rollback.
func (s *LedgerStore) applyLockTimeout(ctx context.Context, tx pgx.Tx) error {
	if s.lockTimeout <= 0 {
		return nil
	}
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}
