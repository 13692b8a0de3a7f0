package handler

import (
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction read endpoints.
type TransactionHandler struct {
	txSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	q, err := dto.BindListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params, err := q.TransactionParams()
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, total, err := h.txSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}
	response.List(c, items, response.NewPaginationMeta(c.Request.URL.Path, total, params.Page, params.PageSize))
}

// GetByTxid handles GET /api/v1/transactions/:txid. Resolves transactions in
// any state; clients inspect is_active.
func (h *TransactionHandler) GetByTxid(c *gin.Context) {
	txn, err := h.txSvc.GetTransactionByTxid(c.Request.Context(), c.Param("txid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponse(txn))
}

// toTransactionResponse converts a domain.Transaction to its DTO.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:        t.ID.String(),
		WalletID:  t.WalletID.String(),
		Txid:      t.Txid,
		Amount:    t.Amount.String(),
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DeactivatedAt != nil {
		s := t.DeactivatedAt.Format(time.RFC3339)
		resp.DeactivatedAt = &s
	}
	return resp
}
