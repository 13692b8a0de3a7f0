package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var txidPattern = regexp.MustCompile(`^tx_\d{13}_\d{4}$`)

func setupTransactionService(t *testing.T) (ports.TransactionService, *mocks.MockTransactionRepository, *mocks.MockTxidReservationStore) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTransactionRepository(ctrl)
	txidStore := mocks.NewMockTxidReservationStore(ctrl)
	return NewTransactionService(repo, txidStore, zerolog.Nop()), repo, txidStore
}

func TestTransactionService_NewTransaction_GeneratesTxid(t *testing.T) {
	svc, repo, txidStore := setupTransactionService(t)
	ctx := context.Background()
	walletID := uuid.New()

	txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(true, nil)
	repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(false, nil)

	txn, err := svc.NewTransaction(ctx, walletID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Regexp(t, txidPattern, txn.Txid)
	assert.Equal(t, walletID, txn.WalletID)
	assert.True(t, txn.IsActive)
	assert.True(t, decimal.NewFromInt(500).Equal(txn.Amount))
}

func TestTransactionService_NewTransaction_RetriesOnCollision(t *testing.T) {
	svc, repo, txidStore := setupTransactionService(t)
	ctx := context.Background()

	txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(true, nil).Times(2)
	gomock.InOrder(
		repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(true, nil),
		repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(false, nil),
	)

	txn, err := svc.NewTransaction(ctx, uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Regexp(t, txidPattern, txn.Txid)
}

func TestTransactionService_NewTransaction_ReservationConflictSkipsCandidate(t *testing.T) {
	svc, repo, txidStore := setupTransactionService(t)
	ctx := context.Background()

	gomock.InOrder(
		txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(false, nil),
		txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(true, nil),
	)
	repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(false, nil)

	txn, err := svc.NewTransaction(ctx, uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Regexp(t, txidPattern, txn.Txid)
}

func TestTransactionService_NewTransaction_FallbackAfterExhaustedRetries(t *testing.T) {
	svc, repo, txidStore := setupTransactionService(t)
	ctx := context.Background()

	txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(true, nil).Times(txidAttempts)
	repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(true, nil).Times(txidAttempts)

	txn, err := svc.NewTransaction(ctx, uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(txn.Txid, "tx_"))
	assert.Len(t, txn.Txid, 19) // "tx_" + 16 hex chars
	assert.False(t, txidPattern.MatchString(txn.Txid))
}

func TestTransactionService_NewTransaction_ReservationOutageFallsThrough(t *testing.T) {
	svc, repo, txidStore := setupTransactionService(t)
	ctx := context.Background()

	// A redis outage must not block transaction creation.
	txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(false, errors.New("redis down"))
	repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(false, nil)

	txn, err := svc.NewTransaction(ctx, uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Regexp(t, txidPattern, txn.Txid)
}

func TestTransactionService_NewTransaction_ZeroAmountRejected(t *testing.T) {
	svc, repo, txidStore := setupTransactionService(t)
	ctx := context.Background()

	txidStore.EXPECT().Reserve(ctx, gomock.Any(), txidReservationTTL).Return(true, nil)
	repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(false, nil)

	_, err := svc.NewTransaction(ctx, uuid.New(), decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestTransactionService_NewTransaction_NilReservationStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTransactionRepository(ctrl)
	svc := NewTransactionService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	repo.EXPECT().ExistsByTxid(ctx, gomock.Any()).Return(false, nil)

	txn, err := svc.NewTransaction(ctx, uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Regexp(t, txidPattern, txn.Txid)
}

func TestTransactionService_GetTransactionByTxid_Success(t *testing.T) {
	svc, repo, _ := setupTransactionService(t)
	ctx := context.Background()

	repo.EXPECT().GetByTxid(ctx, "tx_1700000000000_1234").Return(&domain.Transaction{
		ID:     uuid.New(),
		Txid:   "tx_1700000000000_1234",
		Amount: decimal.NewFromInt(500),
	}, nil)

	txn, err := svc.GetTransactionByTxid(ctx, "tx_1700000000000_1234")
	require.NoError(t, err)
	assert.Equal(t, "tx_1700000000000_1234", txn.Txid)
}

func TestTransactionService_GetTransactionByTxid_NotFound(t *testing.T) {
	svc, repo, _ := setupTransactionService(t)
	ctx := context.Background()

	repo.EXPECT().GetByTxid(ctx, "tx_missing").Return(nil, nil)

	_, err := svc.GetTransactionByTxid(ctx, "tx_missing")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeTransactionNotFound, apperror.CodeOf(err))
}

func TestTransactionService_ListTransactions(t *testing.T) {
	svc, repo, _ := setupTransactionService(t)
	ctx := context.Background()

	params := ports.TransactionListParams{Page: 1, PageSize: 20}
	repo.EXPECT().List(ctx, params).Return([]domain.Transaction{
		{ID: uuid.New(), Txid: "tx_a", Amount: decimal.NewFromInt(500)},
	}, int64(1), nil)

	txns, total, err := svc.ListTransactions(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, txns, 1)
}
