package domain

import "time"

type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleDesigner Role = "designer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	Points       int64     `db:"points"`
	CreatedAt    time.Time `db:"created_at"`
}

type PortfolioStatus string

const (
	PortfolioPending  PortfolioStatus = "pending"
	PortfolioApproved PortfolioStatus = "approved"
	PortfolioRejected PortfolioStatus = "rejected"
)

type Portfolio struct {
	ID          int             `db:"id"`
	DesignerID  int             `db:"designer_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       int64           `db:"price"`
	Status      PortfolioStatus `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
}

type TransactionStatus string

const (
	StatusPending              TransactionStatus = "pending"
	StatusInProgress           TransactionStatus = "in_progress"
	StatusAwaitingConfirmation TransactionStatus = "awaiting_confirmation"
	StatusCompleted            TransactionStatus = "completed"
	StatusCancelled            TransactionStatus = "cancelled"
)

type Transaction struct {
	ID            int               `db:"id"`
	PortfolioID   int               `db:"portfolio_id"`
	BuyerID       int               `db:"buyer_id"`
	DesignerID    int               `db:"designer_id"`
	Amount        int64             `db:"amount"`
	Status        TransactionStatus `db:"status"`
	PaymentMethod string            `db:"payment_method"`
	PaymentStatus string            `db:"payment_status"`
	CreatedAt     time.Time         `db:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at"`
}

type LedgerType string

const (
	LedgerCharge   LedgerType = "charge"
	LedgerUse      LedgerType = "use"
	LedgerWithdraw LedgerType = "withdraw"
	LedgerRefund   LedgerType = "refund"
	LedgerEarn     LedgerType = "earn"
)

// PointTransaction is an append-only ledger row. BalanceAfter snapshots the
// user's balance at the moment the row was written, so replaying the rows in
// creation order reproduces the current balance.
type PointTransaction struct {
	ID            int        `db:"id"`
	UserID        int        `db:"user_id"`
	Type          LedgerType `db:"type"`
	Amount        int64      `db:"amount"`
	Fee           int64      `db:"fee"`
	BalanceAfter  int64      `db:"balance_after"`
	Description   string     `db:"description"`
	TransactionID *int       `db:"transaction_id"`
	Status        string     `db:"status"`
	CreatedAt     time.Time  `db:"created_at"`
}

const (
	EventStatusChanged     = "transaction.status_changed"
	EventPurchaseCompleted = "purchase.completed"
)

type Notification struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	TransactionID int       `db:"transaction_id"`
	Event         string    `db:"event"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}
