package handlers

import (
	"context"
	"time"

	"pennywise/internal/models"
	"pennywise/internal/services"
	"pennywise/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, account models.Account) error
}

type TransactionStore interface {
	List(ctx context.Context, ownerID string, filter store.TransactionFilter, limit, offset int) ([]models.Transaction, error)
	Count(ctx context.Context, ownerID string, filter store.TransactionFilter) (int, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type AccountService interface {
	Create(ctx context.Context, req services.CreateAccountRequest) (models.Account, error)
	Get(ctx context.Context, ownerID, accountID string) (models.Account, error)
	List(ctx context.Context, ownerID string) ([]models.Account, error)
	Update(ctx context.Context, ownerID, accountID string, patch services.AccountPatch) (models.Account, error)
	Delete(ctx context.Context, ownerID, accountID string) (services.CascadeDeleteResult, error)
}

type TransactionService interface {
	Create(ctx context.Context, req services.CreateTransactionRequest) (models.Transaction, error)
	Get(ctx context.Context, ownerID, transactionID string) (models.Transaction, error)
	Update(ctx context.Context, ownerID, transactionID string, patch services.TransactionPatch) (models.Transaction, error)
	Delete(ctx context.Context, ownerID, transactionID string) error
	AddTag(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error)
	RemoveTag(ctx context.Context, ownerID, transactionID, tag string) (models.Transaction, error)
}

type StatsService interface {
	Report(ctx context.Context, ownerID string, start, end time.Time) (services.Report, error)
	ByCategory(ctx context.Context, ownerID string, kind models.TransactionKind) ([]services.CategoryStat, error)
	Monthly(ctx context.Context, ownerID string, year int) ([]services.MonthlyStat, error)
	TotalBalance(ctx context.Context, ownerID string) (services.TotalBalance, error)
	KindStats(ctx context.Context, ownerID string) ([]services.AccountKindStat, error)
}
