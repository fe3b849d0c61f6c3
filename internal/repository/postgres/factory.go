package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/ekaraca/txbatch-backend/internal/repository"
)

type Repositories struct {
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Transactions: &transactionsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}
