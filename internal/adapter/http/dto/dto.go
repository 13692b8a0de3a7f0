package dto

import "github.com/shopspring/decimal"

// CreateWalletRequest is the request body for wallet creation.
// InitialBalance, when present, funds the wallet with one credit transaction.
type CreateWalletRequest struct {
	Label          string           `json:"label" binding:"required,max=255,printable"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
}

// UpdateWalletRequest is the request body for label updates.
type UpdateWalletRequest struct {
	Label string `json:"label" binding:"required,max=255,printable"`
}

// CreateTransactionRequest is the request body for posting a transaction to a
// wallet. Amount is signed: positive credits, negative debits.
type CreateTransactionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// WalletResponse is the response body for a wallet.
type WalletResponse struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	Balance       string  `json:"balance"`
	IsActive      bool    `json:"is_active"`
	DeactivatedAt *string `json:"deactivated_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// WalletDetailResponse is a wallet together with its active transactions.
type WalletDetailResponse struct {
	WalletResponse
	Transactions []TransactionResponse `json:"transactions"`
}

// TransactionResponse is the response body for a transaction.
type TransactionResponse struct {
	ID            string  `json:"id"`
	WalletID      string  `json:"wallet_id"`
	Txid          string  `json:"txid"`
	Amount        string  `json:"amount"`
	IsActive      bool    `json:"is_active"`
	DeactivatedAt *string `json:"deactivated_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// CreateTransactionResponse pairs the created transaction with the wallet's
// post-commit balance.
type CreateTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Balance     string              `json:"balance"`
}
