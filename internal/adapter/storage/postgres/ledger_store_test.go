package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedgerStore(t *testing.T) (*LedgerStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store := NewLedgerStore(NewTransactor(mock), NewWalletRepo(mock), NewTransactionRepo(mock), 3*time.Second, zerolog.Nop())
	return store, mock
}

func expectLockTimeout(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec("SET LOCAL lock_timeout").
		WillReturnResult(pgxmock.NewResult("SET", 0))
}

func TestLedgerStore_CreateTransactionWithBalanceUpdate_Commits(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("alice", 1000)
	txn := newTestTransaction(wallet.ID, "tx_1700000000000_1234", -400)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(wallet))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.WalletID, txn.Txid, txn.Amount, txn.IsActive,
			txn.DeactivatedAt, txn.CreatedAt, txn.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(decimal.NewFromInt(600), wallet.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	updated, err := store.CreateTransactionWithBalanceUpdate(context.Background(), wallet, txn)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, decimal.NewFromInt(600).Equal(updated.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_CreateTransactionWithBalanceUpdate_InsufficientBalance(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("alice", 1000)
	txn := newTestTransaction(wallet.ID, "tx_1700000000000_1234", -1500)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(wallet))
	mock.ExpectRollback()

	updated, err := store.CreateTransactionWithBalanceUpdate(context.Background(), wallet, txn)
	require.Error(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, apperror.CodeInsufficientBalance, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_CreateTransactionWithBalanceUpdate_WalletGone(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("alice", 1000)
	txn := newTestTransaction(wallet.ID, "tx_1700000000000_1234", 100)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(pgxmock.NewRows(walletTestColumns()))
	mock.ExpectRollback()

	_, err := store.CreateTransactionWithBalanceUpdate(context.Background(), wallet, txn)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeWalletNotFound, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_CreateTransactionWithBalanceUpdate_DeactivatedUnderLock(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("alice", 1000)
	txn := newTestTransaction(wallet.ID, "tx_1700000000000_1234", 100)

	inactive := *wallet
	inactive.IsActive = false
	at := time.Now().UTC().Truncate(time.Microsecond)
	inactive.DeactivatedAt = &at

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(&inactive))
	mock.ExpectRollback()

	_, err := store.CreateTransactionWithBalanceUpdate(context.Background(), wallet, txn)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeWalletDeactivated, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_CreateTransactionWithBalanceUpdate_DuplicateTxid(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("alice", 1000)
	txn := newTestTransaction(wallet.ID, "tx_1700000000000_1234", 100)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(wallet))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.WalletID, txn.Txid, txn.Amount, txn.IsActive,
			txn.DeactivatedAt, txn.CreatedAt, txn.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "transactions_txid_key"})
	mock.ExpectRollback()

	_, err := store.CreateTransactionWithBalanceUpdate(context.Background(), wallet, txn)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDuplicateTxid, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_CreateTransactionWithBalanceUpdate_LockTimeout(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("alice", 1000)
	txn := newTestTransaction(wallet.ID, "tx_1700000000000_1234", 100)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnError(&pgconn.PgError{Code: pgLockNotAvailable})
	mock.ExpectRollback()

	_, err := store.CreateTransactionWithBalanceUpdate(context.Background(), wallet, txn)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeLockTimeout, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_DeactivateWalletWithTransactions_Cascades(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("bob", 300)
	t1 := newTestTransaction(wallet.ID, "tx_a", 500)
	t2 := newTestTransaction(wallet.ID, "tx_b", -200)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(wallet))
	mock.ExpectQuery("SELECT .+ FROM transactions .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(pgxmock.NewRows(transactionTestColumns()).
			AddRow(t1.ID, t1.WalletID, t1.Txid, t1.Amount, t1.IsActive, t1.DeactivatedAt, t1.CreatedAt, t1.UpdatedAt).
			AddRow(t2.ID, t2.WalletID, t2.Txid, t2.Amount, t2.IsActive, t2.DeactivatedAt, t2.CreatedAt, t2.UpdatedAt))
	mock.ExpectExec("UPDATE transactions SET is_active = false").
		WithArgs(pgxmock.AnyArg(), wallet.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec("UPDATE wallets SET balance .+ is_active = false").
		WithArgs(decimal.NewFromInt(0), pgxmock.AnyArg(), wallet.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	updated, txns, err := store.DeactivateWalletWithTransactions(context.Background(), wallet.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.Balance.IsZero())
	require.NotNil(t, updated.DeactivatedAt)

	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.False(t, txn.IsActive)
		require.NotNil(t, txn.DeactivatedAt)
		assert.Equal(t, *updated.DeactivatedAt, *txn.DeactivatedAt)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_DeactivateWalletWithTransactions_NoActiveTransactions(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("carol", 0)

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(wallet))
	mock.ExpectQuery("SELECT .+ FROM transactions .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(pgxmock.NewRows(transactionTestColumns()))
	mock.ExpectExec("UPDATE wallets SET balance .+ is_active = false").
		WithArgs(decimal.NewFromInt(0), pgxmock.AnyArg(), wallet.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	updated, txns, err := store.DeactivateWalletWithTransactions(context.Background(), wallet.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStore_DeactivateWalletWithTransactions_AlreadyDeactivated(t *testing.T) {
	store, mock := newTestLedgerStore(t)

	wallet := newTestWallet("dave", 0)
	wallet.IsActive = false
	at := time.Now().UTC().Truncate(time.Microsecond)
	wallet.DeactivatedAt = &at

	mock.ExpectBegin()
	expectLockTimeout(mock)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(wallet.ID).
		WillReturnRows(walletRow(wallet))
	mock.ExpectRollback()

	_, _, err := store.DeactivateWalletWithTransactions(context.Background(), wallet.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeWalletDeactivated, apperror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
