package memory

import (
	"sync"
	"time"

	repo "github.com/ekaraca/txbatch-backend/internal/repository"
)

type AuditLogsRepo struct {
	mu      sync.Mutex
	entries []repo.AuditLog
}

var _ repo.AuditLogs = (*AuditLogsRepo)(nil)

func NewAuditLogs() *AuditLogsRepo { return &AuditLogsRepo{} }

func (r *AuditLogsRepo) Create(l repo.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, l)
	return nil
}

// Entries returns a snapshot of everything recorded so far.
func (r *AuditLogsRepo) Entries() []repo.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repo.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out
}
