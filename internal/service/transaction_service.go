package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// txidAttempts bounds the generate-and-check loop. Collisions only happen
	// when two writers land in the same millisecond with the same random
	// suffix, so a handful of retries is plenty before the UUID fallback.
	txidAttempts = 10

	// txidReservationTTL covers the window between generating a txid and the
	// insert committing.
	txidReservationTTL = time.Minute
)

type transactionService struct {
	txRepo    ports.TransactionRepository
	txidStore ports.TxidReservationStore
	log       zerolog.Logger
}

// NewTransactionService creates a new transaction service. txidStore may be
// nil; reservation is a fast-path guard, the unique index is the authority.
func NewTransactionService(txRepo ports.TransactionRepository, txidStore ports.TxidReservationStore, log zerolog.Logger) ports.TransactionService {
	return &transactionService{
		txRepo:    txRepo,
		txidStore: txidStore,
		log:       log,
	}
}

// NewTransaction builds an in-memory transaction with a generated unique
// txid. It performs no balance math and no locking; persisting the
// transaction goes through the ledger store.
func (s *transactionService) NewTransaction(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	txid, err := s.generateTxid(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewTransaction(walletID, txid, amount)
}

func (s *transactionService) GetTransactionByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByTxid(ctx, txid)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound(txid)
	}
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

// generateTxid produces a "tx_<unix-millis>_<4-digit>" identifier, retrying
// with a fresh random suffix on collision. After txidAttempts collisions it
// falls back to a UUID-derived id, which cannot collide in practice.
func (s *transactionService) generateTxid(ctx context.Context) (string, error) {
	for i := 0; i < txidAttempts; i++ {
		candidate := fmt.Sprintf("tx_%d_%04d", time.Now().UnixMilli(), 1000+rand.IntN(9000))

		if s.txidStore != nil {
			reserved, err := s.txidStore.Reserve(ctx, candidate, txidReservationTTL)
			if err != nil {
				// Reservation is best-effort; fall through to the durable check.
				s.log.Warn().Err(err).Msg("txid reservation unavailable")
			} else if !reserved {
				continue
			}
		}

		exists, err := s.txRepo.ExistsByTxid(ctx, candidate)
		if err != nil {
			return "", apperror.InternalError(err)
		}
		if !exists {
			return candidate, nil
		}
	}

	fallback := "tx_" + hex.EncodeToString(uuidBytes())[:16]
	s.log.Warn().Str("txid", fallback).Msg("txid generation exhausted retries, using uuid fallback")
	return fallback, nil
}

func uuidBytes() []byte {
	id := uuid.New()
	return id[:]
}
