package dto

import "time"

type CreatePortfolioRequestDTO struct {
	Title       string `json:"title" example:"Brand identity package"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price" example:"30000"`
}

type ReviewPortfolioRequestDTO struct {
	Approve bool `json:"approve" example:"true"`
}

type PortfolioResponseDTO struct {
	ID          int       `json:"id" example:"42"`
	DesignerID  int       `json:"designer_id" example:"2"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price" example:"30000"`
	Status      string    `json:"status" example:"approved"`
	CreatedAt   time.Time `json:"created_at"`
}
