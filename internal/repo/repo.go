package repo

import (
	"github.com/parkmins/designhub/internal/pg"
	ledgerrepo "github.com/parkmins/designhub/internal/repo/ledger-repo"
	notificationrepo "github.com/parkmins/designhub/internal/repo/notification-repo"
	portfoliorepo "github.com/parkmins/designhub/internal/repo/portfolio-repo"
	transactionrepo "github.com/parkmins/designhub/internal/repo/transaction-repo"
	userrepo "github.com/parkmins/designhub/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo         *userrepo.Repository
	PortfolioRepo    *portfoliorepo.Repository
	TransactionRepo  *transactionrepo.Repository
	LedgerRepo       *ledgerrepo.Repository
	NotificationRepo *notificationrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:         userrepo.New(conn),
		PortfolioRepo:    portfoliorepo.New(conn),
		TransactionRepo:  transactionrepo.New(conn),
		LedgerRepo:       ledgerrepo.New(conn),
		NotificationRepo: notificationrepo.New(conn),
	}
}
