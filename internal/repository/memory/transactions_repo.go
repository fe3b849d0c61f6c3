// Package memory holds in-memory repository implementations used by tests
// and as the storage fallback when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ekaraca/txbatch-backend/internal/domain"
	repo "github.com/ekaraca/txbatch-backend/internal/repository"
)

// TransactionsRepo is a mutex-guarded map keyed by transaction id. Aggregates
// are immutable values, so storing and returning them directly is safe.
type TransactionsRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.FinancialTransaction
}

var _ repo.Transactions = (*TransactionsRepo)(nil)

func NewTransactions() *TransactionsRepo {
	return &TransactionsRepo{byID: make(map[string]domain.FinancialTransaction)}
}

func (r *TransactionsRepo) Create(_ context.Context, txn domain.FinancialTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[txn.ID()]; exists {
		return domain.ValidationError("transaction %s already exists", txn.ID())
	}
	r.byID[txn.ID()] = txn
	return nil
}

func (r *TransactionsRepo) Load(_ context.Context, id string) (domain.FinancialTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	txn, ok := r.byID[id]
	if !ok {
		return domain.FinancialTransaction{}, domain.NotFoundError(id)
	}
	return txn, nil
}

func (r *TransactionsRepo) LoadByStream(_ context.Context, streamID domain.StreamID) ([]domain.FinancialTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.FinancialTransaction
	for _, txn := range r.byID {
		if txn.StreamID() == streamID {
			out = append(out, txn)
		}
	}
	// map iteration order is random; callers tallying batch results want
	// deterministic output
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *TransactionsRepo) Save(_ context.Context, txn domain.FinancialTransaction, expectedVersion domain.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[txn.ID()]
	if !ok {
		return domain.NotFoundError(txn.ID())
	}
	if !current.Version().Matches(expectedVersion) {
		return domain.VersionConflictError(txn.ID(), expectedVersion)
	}
	r.byID[txn.ID()] = txn
	return nil
}
