package dto

import "time"

type CreateTransactionRequest struct {
	Username string   `json:"username" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
	Type     string   `json:"type" binding:"required"`
}

type DeleteTransactionRequest struct {
	ID string `json:"_id" binding:"required"`
}

type DeleteTransactionsRequest struct {
	IDs []string `json:"_ids" binding:"required"`
}

type TransactionResponse struct {
	ID       string    `json:"_id"`
	Username string    `json:"username"`
	Amount   float64   `json:"amount"`
	Type     string    `json:"type"`
	Color    string    `json:"color"`
	Date     time.Time `json:"date"`
}
