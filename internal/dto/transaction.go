package dto

import "time"

type CreateTransactionRequestDTO struct {
	PortfolioID int   `json:"portfolio_id" example:"42"`
	Amount      int64 `json:"amount" example:"30000"`
}

type TransitionRequestDTO struct {
	Status string `json:"status" example:"in_progress"`
}

type TransactionResponseDTO struct {
	ID            int       `json:"id" example:"7"`
	PortfolioID   int       `json:"portfolio_id" example:"42"`
	BuyerID       int       `json:"buyer_id" example:"1"`
	DesignerID    int       `json:"designer_id" example:"2"`
	Amount        int64     `json:"amount" example:"30000"`
	Status        string    `json:"status" example:"pending"`
	PaymentMethod string    `json:"payment_method" example:"points"`
	PaymentStatus string    `json:"payment_status" example:"paid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
