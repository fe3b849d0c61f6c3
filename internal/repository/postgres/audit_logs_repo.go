package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/ekaraca/txbatch-backend/internal/repository"
)

type auditLogsRepo struct{ pool *pgxpool.Pool }

func (r *auditLogsRepo) Create(l repo.AuditLog) error {
	_, err := r.pool.Exec(context.Background(),
		`INSERT INTO audit_logs(entity_type, entity_id, action, details) VALUES($1,$2,$3,$4)`,
		l.EntityType, l.EntityID, l.Action, l.Details)
	return err
}
