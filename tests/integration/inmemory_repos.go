package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// In-memory implementations of the storage ports. A single shared mutex
// serialises the ledger store protocols, mirroring the exclusive row lock
// the postgres store takes with SELECT FOR UPDATE. The pgx.Tx parameters
// are ignored; atomicity comes from holding the mutex across the whole
// protocol.

type memStore struct {
	mu           sync.Mutex
	wallets      map[uuid.UUID]*domain.Wallet
	transactions map[uuid.UUID]*domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		wallets:      make(map[uuid.UUID]*domain.Wallet),
		transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

func copyWallet(w *domain.Wallet) *domain.Wallet {
	cp := *w
	cp.Transactions = nil
	return &cp
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	cp := *t
	return &cp
}

// --- Wallet repo ---

type inMemoryWalletRepo struct {
	store *memStore
}

func newInMemoryWalletRepo(store *memStore) *inMemoryWalletRepo {
	return &inMemoryWalletRepo{store: store}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.wallets[wallet.ID] = copyWallet(wallet)
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getLocked(id), nil
}

func (r *inMemoryWalletRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w := r.getLocked(id)
	if w == nil || !w.IsActive {
		return nil, nil
	}
	return w, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	// Caller (the in-memory ledger store) already holds the store mutex.
	return r.getLocked(id), nil
}

func (r *inMemoryWalletRepo) UpdateLabel(ctx context.Context, id uuid.UUID, label string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if w, ok := r.store.wallets[id]; ok {
		w.Label = label
		w.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	if w, ok := r.store.wallets[id]; ok {
		w.Balance = balance
		w.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *inMemoryWalletRepo) Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal, at time.Time) error {
	if w, ok := r.store.wallets[id]; ok {
		w.Balance = balance
		w.IsActive = false
		w.DeactivatedAt = &at
		w.UpdatedAt = at
	}
	return nil
}

func (r *inMemoryWalletRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.wallets[id]
	return ok, nil
}

func (r *inMemoryWalletRepo) List(ctx context.Context, params ports.WalletListParams) ([]domain.Wallet, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []domain.Wallet
	for _, w := range r.store.wallets {
		if params.IsActive != nil && w.IsActive != *params.IsActive {
			continue
		}
		if len(params.WalletIDs) > 0 && !containsID(params.WalletIDs, w.ID) {
			continue
		}
		matched = append(matched, *copyWallet(w))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Balance.GreaterThan(matched[j].Balance)
	})
	total := int64(len(matched))
	return paginate(matched, params.Page, params.PageSize), total, nil
}

func (r *inMemoryWalletRepo) getLocked(id uuid.UUID) *domain.Wallet {
	w, ok := r.store.wallets[id]
	if !ok {
		return nil
	}
	return copyWallet(w)
}

// --- Transaction repo ---

type inMemoryTransactionRepo struct {
	store *memStore
}

func newInMemoryTransactionRepo(store *memStore) *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{store: store}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error {
	for _, existing := range r.store.transactions {
		if existing.Txid == transaction.Txid {
			return duplicateTxidErr(transaction.Txid)
		}
	}
	r.store.transactions[transaction.ID] = copyTransaction(transaction)
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.transactions[id]
	if !ok {
		return nil, nil
	}
	return copyTransaction(t), nil
}

func (r *inMemoryTransactionRepo) GetByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.transactions {
		if t.Txid == txid {
			return copyTransaction(t), nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetActiveByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.transactions {
		if t.Txid == txid && t.IsActive {
			return copyTransaction(t), nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) ExistsByTxid(ctx context.Context, txid string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.transactions {
		if t.Txid == txid {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryTransactionRepo) GetActiveByWalletID(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.activeForWalletLocked(walletID), nil
}

func (r *inMemoryTransactionRepo) GetActiveByWalletIDForUpdate(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) ([]domain.Transaction, error) {
	// Caller holds the store mutex.
	return r.activeForWalletLocked(walletID), nil
}

func (r *inMemoryTransactionRepo) DeactivateAllForWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, at time.Time) error {
	for _, t := range r.store.transactions {
		if t.WalletID == walletID && t.IsActive {
			t.IsActive = false
			t.DeactivatedAt = &at
			t.UpdatedAt = at
		}
	}
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []domain.Transaction
	for _, t := range r.store.transactions {
		if params.IsActive != nil && t.IsActive != *params.IsActive {
			continue
		}
		if len(params.WalletIDs) > 0 && !containsID(params.WalletIDs, t.WalletID) {
			continue
		}
		matched = append(matched, *copyTransaction(t))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return paginate(matched, params.Page, params.PageSize), total, nil
}

func (r *inMemoryTransactionRepo) activeForWalletLocked(walletID uuid.UUID) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range r.store.transactions {
		if t.WalletID == walletID && t.IsActive {
			out = append(out, *copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// --- Helpers ---

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	total := len(items)
	pages := (total + pageSize - 1) / pageSize
	if pages > 0 && page > pages {
		page = pages
	}
	offset := (page - 1) * pageSize
	if offset >= total {
		return nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return items[offset:end]
}
