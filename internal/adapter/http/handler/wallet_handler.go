package handler

import (
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, ledgerSvc: ledgerSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	var wallet *domain.Wallet
	var err error
	if req.InitialBalance != nil && !req.InitialBalance.IsZero() {
		wallet, err = h.ledgerSvc.CreateWalletWithInitialBalance(c.Request.Context(), req.Label, *req.InitialBalance)
	} else {
		wallet, err = h.walletSvc.CreateWallet(c.Request.Context(), req.Label)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toWalletResponse(wallet))
}

// Get handles GET /api/v1/wallets/:id. Deactivated wallets resolve too; the
// response carries the wallet's active transactions.
func (h *WalletHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	wallet, txns, err := h.ledgerSvc.GetWalletWithTransactions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.WalletDetailResponse{
		WalletResponse: toWalletResponse(wallet),
		Transactions:   make([]dto.TransactionResponse, 0, len(txns)),
	}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(&txns[i]))
	}
	response.OK(c, resp)
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	q, err := dto.BindListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params, err := q.WalletParams()
	if err != nil {
		response.Error(c, err)
		return
	}

	wallets, total, err := h.walletSvc.ListWallets(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		items = append(items, toWalletResponse(&wallets[i]))
	}
	response.List(c, items, response.NewPaginationMeta(c.Request.URL.Path, total, params.Page, params.PageSize))
}

// UpdateLabel handles PATCH /api/v1/wallets/:id.
func (h *WalletHandler) UpdateLabel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.walletSvc.UpdateWalletLabel(c.Request.Context(), id, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toWalletResponse(wallet))
}

// Deactivate handles DELETE /api/v1/wallets/:id. The wallet and all of its
// active transactions flip to inactive in one atomic unit.
func (h *WalletHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	wallet, err := h.ledgerSvc.DeactivateWalletWithTransactions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.WalletDetailResponse{
		WalletResponse: toWalletResponse(wallet),
		Transactions:   make([]dto.TransactionResponse, 0, len(wallet.Transactions)),
	}
	for _, txn := range wallet.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(txn))
	}
	response.OK(c, resp)
}

// CreateTransaction handles POST /api/v1/wallets/:id/transactions.
func (h *WalletHandler) CreateTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, wallet, err := h.ledgerSvc.CreateTransactionWithBalanceUpdate(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateTransactionResponse{
		Transaction: toTransactionResponse(txn),
		Balance:     wallet.Balance.String(),
	})
}

// toWalletResponse converts a domain.Wallet to its DTO.
func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	resp := dto.WalletResponse{
		ID:        w.ID.String(),
		Label:     w.Label,
		Balance:   w.Balance.String(),
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
	if w.DeactivatedAt != nil {
		s := w.DeactivatedAt.Format(time.RFC3339)
		resp.DeactivatedAt = &s
	}
	return resp
}
