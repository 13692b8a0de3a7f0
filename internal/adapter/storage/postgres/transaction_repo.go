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
)

const transactionColumns = `id, wallet_id, txid, amount, is_active, deactivated_at, created_at, updated_at`

var transactionSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"amount":     "amount",
	"txid":       "txid",
}

const defaultTransactionOrder = "created_at DESC"

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction. Only the
// ledger store's balance-update protocol calls this.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, txid, amount, is_active, deactivated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Txid, t.Amount, t.IsActive, t.DeactivatedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by its internal UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByTxid fetches a transaction by external txid regardless of state.
func (r *TransactionRepo) GetByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE txid = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, txid))
}

// GetActiveByTxid fetches a transaction by external txid only if active.
func (r *TransactionRepo) GetActiveByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE txid = $1 AND is_active = true`
	return scanTransaction(r.pool.QueryRow(ctx, query, txid))
}

// ExistsByTxid checks whether any transaction carries the external txid.
func (r *TransactionRepo) ExistsByTxid(ctx context.Context, txid string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE txid = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, txid).Scan(&exists); err != nil {
		return false, fmt.Errorf("check txid exists: %w", err)
	}
	return exists, nil
}

// GetActiveByWalletID fetches all active transactions for a wallet.
func (r *TransactionRepo) GetActiveByWalletID(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = $1 AND is_active = true ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("get active transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// GetActiveByWalletIDForUpdate fetches and exclusively locks every active
// transaction for a wallet. This MUST be called within a transaction; the
// cascade protocol uses it so no concurrent writer can flip a row mid-cascade.
func (r *TransactionRepo) GetActiveByWalletIDForUpdate(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE wallet_id = $1 AND is_active = true ORDER BY created_at FOR UPDATE`

	rows, err := tx.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("lock active transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// DeactivateAllForWallet flips every active transaction of a wallet to
// inactive in one statement, stamping the shared deactivation time.
func (r *TransactionRepo) DeactivateAllForWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, at time.Time) error {
	query := `UPDATE transactions SET is_active = false, deactivated_at = $1, updated_at = $1
		WHERE wallet_id = $2 AND is_active = true`

	if _, err := tx.Exec(ctx, query, at, walletID); err != nil {
		return fmt.Errorf("deactivate wallet transactions: %w", err)
	}
	return nil
}

// List fetches transactions with filtering, ordering and page-based slicing.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *params.IsActive)
		argIdx++
	}
	if len(params.WalletIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("wallet_id = ANY($%d)", argIdx))
		args = append(args, params.WalletIDs)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	page, pageSize := normalizePage(params.Page, params.PageSize, total)
	order := orderClause(params.Ordering, transactionSortFields, defaultTransactionOrder)

	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		transactionColumns, where, order, argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.WalletID, &t.Txid, &t.Amount, &t.IsActive, &t.DeactivatedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(&t.ID, &t.WalletID, &t.Txid, &t.Amount, &t.IsActive, &t.DeactivatedAt, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
