package dto

import "time"

type BalanceResponseDTO struct {
	Points int64 `json:"points" example:"50000"`
}

type ChargeRequestDTO struct {
	Amount     int64  `json:"amount" example:"10000"`
	Method     string `json:"method" example:"card"`
	CardNumber string `json:"card_number,omitempty" example:"4242424242424242"`
}

type WithdrawRequestDTO struct {
	Amount      int64  `json:"amount" example:"10000"`
	BankName    string `json:"bank_name" example:"KB Kookmin"`
	BankAccount string `json:"bank_account" example:"12345678901234"`
}

type LedgerEntryResponseDTO struct {
	Type          string    `json:"type" example:"charge"`
	Amount        int64     `json:"amount" example:"10000"`
	Fee           int64     `json:"fee" example:"0"`
	BalanceAfter  int64     `json:"balance_after" example:"60000"`
	Description   string    `json:"description,omitempty"`
	TransactionID *int      `json:"transaction_id,omitempty"`
	Status        string    `json:"status" example:"done"`
	CreatedAt     time.Time `json:"created_at" example:"2024-12-09T16:09:57+09:00"`
}
