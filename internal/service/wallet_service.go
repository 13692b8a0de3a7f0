package service

import (
	"context"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type walletService struct {
	walletRepo ports.WalletRepository
	log        zerolog.Logger
}

// NewWalletService creates a new wallet management service.
func NewWalletService(walletRepo ports.WalletRepository, log zerolog.Logger) ports.WalletService {
	return &walletService{
		walletRepo: walletRepo,
		log:        log,
	}
}

func (s *walletService) CreateWallet(ctx context.Context, label string) (*domain.Wallet, error) {
	wallet, err := domain.NewWallet(label)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(err)
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("label", wallet.Label).
		Msg("wallet created")

	return wallet, nil
}

// GetWallet resolves active wallets only. A deactivated wallet reads as
// not-found on this path; use the ledger service for inclusive reads.
func (s *walletService) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(id.String())
	}
	return wallet, nil
}

func (s *walletService) UpdateWalletLabel(ctx context.Context, id uuid.UUID, label string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(id.String())
	}

	if err := wallet.UpdateLabel(label); err != nil {
		return nil, err
	}

	if err := s.walletRepo.UpdateLabel(ctx, wallet.ID, wallet.Label); err != nil {
		return nil, apperror.InternalError(err)
	}
	return wallet, nil
}

func (s *walletService) ListWallets(ctx context.Context, params ports.WalletListParams) ([]domain.Wallet, int64, error) {
	wallets, total, err := s.walletRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return wallets, total, nil
}
