package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, label, balance, is_active, deactivated_at, created_at, updated_at`

// walletSortFields is the allow-list for the List ordering key.
var walletSortFields = map[string]string{
	"balance":    "balance",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"label":      "label",
}

const defaultWalletOrder = "balance DESC"

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, label, balance, is_active, deactivated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.Label, w.Balance, w.IsActive, w.DeactivatedAt, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet regardless of activation state.
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetActiveByID fetches a wallet only if it is still active.
func (r *WalletRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 AND is_active = true`
	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a wallet with an exclusive row lock.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, id))
}

// UpdateLabel updates a wallet's label. A plain single-row write: labels
// cannot violate the balance or activation invariants, so no lock is needed.
func (r *WalletRepo) UpdateLabel(ctx context.Context, id uuid.UUID, label string) error {
	query := `UPDATE wallets SET label = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, label, id)
	if err != nil {
		return fmt.Errorf("update wallet label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", id)
	}
	return nil
}

// UpdateBalance writes a wallet's balance within a transaction. Only the
// ledger store protocols may call this.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", id)
	}
	return nil
}

// Deactivate marks a wallet inactive and writes its post-cascade balance
// within a transaction. Only the ledger store's cascade protocol calls this.
func (r *WalletRepo) Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal, at time.Time) error {
	query := `UPDATE wallets SET balance = $1, is_active = false, deactivated_at = $2, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, at, id)
	if err != nil {
		return fmt.Errorf("deactivate wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", id)
	}
	return nil
}

// Exists checks whether a wallet row exists for the id.
func (r *WalletRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wallets WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wallet exists: %w", err)
	}
	return exists, nil
}

// List fetches wallets with filtering, ordering and page-based slicing.
func (r *WalletRepo) List(ctx context.Context, params ports.WalletListParams) ([]domain.Wallet, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *params.IsActive)
		argIdx++
	}
	if len(params.WalletIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", argIdx))
		args = append(args, params.WalletIDs)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM wallets %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallets: %w", err)
	}

	page, pageSize := normalizePage(params.Page, params.PageSize, total)
	order := orderClause(params.Ordering, walletSortFields, defaultWalletOrder)

	dataQuery := fmt.Sprintf(`SELECT %s FROM wallets %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		walletColumns, where, order, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		err := rows.Scan(&w.ID, &w.Label, &w.Balance, &w.IsActive, &w.DeactivatedAt, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, total, nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.Label, &w.Balance, &w.IsActive, &w.DeactivatedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
