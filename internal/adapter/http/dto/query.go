package dto

import (
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListQuery is the shared query-string shape for collection endpoints.
// wallet_id repeats for multi-wallet filters; unknown ordering keys fall back
// to the endpoint's default sort at the storage layer.
type ListQuery struct {
	IsActive  *bool    `form:"is_active"`
	WalletIDs []string `form:"wallet_id"`
	Page      int      `form:"page,default=1"`
	PageSize  int      `form:"page_size,default=20"`
	Ordering  string   `form:"ordering"`
}

// BindListQuery parses and validates the list query string.
func BindListQuery(c *gin.Context) (*ListQuery, error) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return &q, nil
}

// WalletParams converts the query into wallet list parameters.
func (q *ListQuery) WalletParams() (ports.WalletListParams, error) {
	ids, err := parseUUIDs(q.WalletIDs)
	if err != nil {
		return ports.WalletListParams{}, err
	}
	return ports.WalletListParams{
		IsActive:  q.IsActive,
		WalletIDs: ids,
		Page:      q.Page,
		PageSize:  q.PageSize,
		Ordering:  q.Ordering,
	}, nil
}

// TransactionParams converts the query into transaction list parameters.
func (q *ListQuery) TransactionParams() (ports.TransactionListParams, error) {
	ids, err := parseUUIDs(q.WalletIDs)
	if err != nil {
		return ports.TransactionListParams{}, err
	}
	return ports.TransactionListParams{
		IsActive:  q.IsActive,
		WalletIDs: ids,
		Page:      q.Page,
		PageSize:  q.PageSize,
		Ordering:  q.Ordering,
	}, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperror.Validation("invalid wallet_id: " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
