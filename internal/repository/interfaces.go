package repository

import (
	"context"
	"time"

	"github.com/ekaraca/txbatch-backend/internal/domain"
)

// Transactions persists transaction aggregates. Save is a compare-and-swap
// keyed by (id, expectedVersion): a stale expectedVersion must be rejected
// with domain.ErrVersionConflict, never silently overwritten.
type Transactions interface {
	Create(ctx context.Context, txn domain.FinancialTransaction) error
	Load(ctx context.Context, id string) (domain.FinancialTransaction, error)
	LoadByStream(ctx context.Context, streamID domain.StreamID) ([]domain.FinancialTransaction, error)
	Save(ctx context.Context, txn domain.FinancialTransaction, expectedVersion domain.Version) error
}

// AuditLog is one persisted audit trail entry.
type AuditLog struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

type AuditLogs interface {
	Create(l AuditLog) error
}
