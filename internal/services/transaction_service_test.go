package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ekaraca/txbatch-backend/internal/domain"
	"github.com/ekaraca/txbatch-backend/internal/repository/memory"
	"github.com/ekaraca/txbatch-backend/internal/worker"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.TransactionUpdated
}

func (p *capturingPublisher) Publish(_ context.Context, evt domain.TransactionUpdated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) Events() []domain.TransactionUpdated {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.TransactionUpdated, len(p.events))
	copy(out, p.events)
	return out
}

type fixture struct {
	svc   *TransactionService
	trx   *memory.TransactionsRepo
	audit *memory.AuditLogsRepo
	pub   *capturingPublisher
	wp    *worker.Pool
}

func newFixture() *fixture {
	trx := memory.NewTransactions()
	audit := memory.NewAuditLogs()
	pub := &capturingPublisher{}
	wp := worker.NewPool(1)
	return &fixture{
		svc:   NewTransactionService(trx, audit, pub, wp),
		trx:   trx,
		audit: audit,
		pub:   pub,
		wp:    wp,
	}
}

// drain stops the pool so every queued publish has run.
func (f *fixture) drain() { f.wp.Stop() }

func seed(t *testing.T, f *fixture, id, stream string, recordIDs ...string) domain.FinancialTransaction {
	t.Helper()
	records := make([]domain.Record, 0, len(recordIDs))
	for _, rid := range recordIDs {
		rec, err := domain.NewRecord(rid, domain.StreamID(stream), "data-"+rid, "alice")
		if err != nil {
			t.Fatalf("NewRecord(%s): %v", rid, err)
		}
		records = append(records, rec)
	}
	txn, err := domain.NewTransaction(id, domain.StreamID(stream), records, "alice")
	if err != nil {
		t.Fatalf("NewTransaction(%s): %v", id, err)
	}
	if err := f.trx.Create(context.Background(), txn); err != nil {
		t.Fatalf("Create(%s): %v", id, err)
	}
	return txn
}

func seedWithStatus(t *testing.T, f *fixture, id, stream string, status domain.Status) domain.FinancialTransaction {
	t.Helper()
	txn := seed(t, f, id, stream, id+"-r1")
	current := txn
	switch status {
	case domain.StatusPending:
		return current
	case domain.StatusProcessing, domain.StatusCancelled:
		next, err := current.UpdateStatus(status, "alice")
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
		if err := f.trx.Save(context.Background(), next, current.Version()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		return next
	case domain.StatusSuccess, domain.StatusFailed:
		mid, err := current.MarkAsProcessing("alice")
		if err != nil {
			t.Fatalf("MarkAsProcessing: %v", err)
		}
		if err := f.trx.Save(context.Background(), mid, current.Version()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		next, err := mid.UpdateStatus(status, "alice")
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
		if err := f.trx.Save(context.Background(), next, mid.Version()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		return next
	default:
		t.Fatalf("unsupported seed status %s", status)
		return current
	}
}

func TestCreate(t *testing.T) {
	f := newFixture()
	txn, err := f.svc.Create(context.Background(), "stream-001", []string{"A", "B"}, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if txn.RecordCount() != 2 {
		t.Fatalf("record count: want=2 got=%d", txn.RecordCount())
	}

	stored, err := f.svc.GetByID(context.Background(), txn.ID())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Version().Int64() != 1 || stored.Status() != domain.StatusPending {
		t.Fatalf("stored snapshot: version=%d status=%s", stored.Version().Int64(), stored.Status())
	}

	f.drain()
	if got := len(f.pub.Events()); got != 1 {
		t.Fatalf("published events: want=1 got=%d", got)
	}
	if got := len(f.audit.Entries()); got != 1 {
		t.Fatalf("audit entries: want=1 got=%d", got)
	}
}

func TestCreateRejectsBlankStream(t *testing.T) {
	f := newFixture()
	defer f.drain()
	_, err := f.svc.Create(context.Background(), "  ", []string{"A"}, "alice")
	if err == nil {
		t.Fatalf("blank stream id should fail")
	}
}

func TestBatchUpdateStatusPartialFailure(t *testing.T) {
	f := newFixture()
	seedWithStatus(t, f, "txn-ok", "stream-001", domain.StatusPending)
	seedWithStatus(t, f, "txn-done", "stream-001", domain.StatusSuccess)

	result, err := f.svc.BatchUpdateStatus(context.Background(),
		[]string{"txn-ok", "txn-done", "txn-missing"}, domain.StatusProcessing, "bob")
	if err != nil {
		t.Fatalf("BatchUpdateStatus: %v", err)
	}

	if result.Success {
		t.Fatalf("partial-failure batch must report success=false")
	}
	if len(result.UpdatedIDs) != 1 || result.UpdatedIDs[0] != "txn-ok" {
		t.Fatalf("updated ids: %v", result.UpdatedIDs)
	}
	if len(result.FailedIDs) != 2 {
		t.Fatalf("failed ids: %v", result.FailedIDs)
	}
	if reason := result.Errors["txn-done"]; !strings.Contains(reason, "not allowed") {
		t.Fatalf("txn-done reason: %q", reason)
	}
	if reason := result.Errors["txn-missing"]; !strings.Contains(reason, "not found") {
		t.Fatalf("txn-missing reason: %q", reason)
	}

	// the failing ids did not abort the succeeding one
	updated, err := f.svc.GetByID(context.Background(), "txn-ok")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status() != domain.StatusProcessing || updated.Version().Int64() != 2 {
		t.Fatalf("txn-ok snapshot: status=%s version=%d", updated.Status(), updated.Version().Int64())
	}

	f.drain()
	if got := len(f.pub.Events()); got != 1 {
		t.Fatalf("published events: want=1 got=%d", got)
	}
}

func TestBatchUpdateStatusAllSucceed(t *testing.T) {
	f := newFixture()
	defer f.drain()
	seedWithStatus(t, f, "txn-1", "stream-001", domain.StatusPending)
	seedWithStatus(t, f, "txn-2", "stream-001", domain.StatusPending)

	result, err := f.svc.BatchUpdateStatus(context.Background(),
		[]string{"txn-1", "txn-2"}, domain.StatusCancelled, "bob")
	if err != nil {
		t.Fatalf("BatchUpdateStatus: %v", err)
	}
	if !result.Success || len(result.UpdatedIDs) != 2 || len(result.FailedIDs) != 0 {
		t.Fatalf("result: %+v", result)
	}
}

func TestBatchUpdateStatusValidation(t *testing.T) {
	f := newFixture()
	defer f.drain()
	if _, err := f.svc.BatchUpdateStatus(context.Background(), nil, domain.StatusProcessing, "bob"); err == nil {
		t.Fatalf("empty id list should fail")
	}
	if _, err := f.svc.BatchUpdateStatus(context.Background(), []string{"x"}, "NOPE", "bob"); err == nil {
		t.Fatalf("unknown status should fail")
	}
}

// racingRepo simulates a writer sneaking in between the service's load and
// save: the stored version moves on, so the service's save must lose.
type racingRepo struct {
	*memory.TransactionsRepo
}

func (r *racingRepo) Load(ctx context.Context, id string) (domain.FinancialTransaction, error) {
	txn, err := r.TransactionsRepo.Load(ctx, id)
	if err != nil {
		return domain.FinancialTransaction{}, err
	}
	racer, err := txn.MarkAsProcessing("racer")
	if err != nil {
		return domain.FinancialTransaction{}, err
	}
	if err := r.TransactionsRepo.Save(ctx, racer, txn.Version()); err != nil {
		return domain.FinancialTransaction{}, err
	}
	return txn, nil
}

func TestBatchUpdateStatusReportsVersionConflict(t *testing.T) {
	f := newFixture()
	defer f.drain()
	seedWithStatus(t, f, "txn-1", "stream-001", domain.StatusPending)

	svc := NewTransactionService(&racingRepo{f.trx}, f.audit, f.pub, f.wp)
	result, err := svc.BatchUpdateStatus(context.Background(),
		[]string{"txn-1"}, domain.StatusProcessing, "bob")
	if err != nil {
		t.Fatalf("BatchUpdateStatus: %v", err)
	}
	if result.Success {
		t.Fatalf("losing a race must fail the batch")
	}
	if reason := result.Errors["txn-1"]; !strings.Contains(reason, "version conflict") {
		t.Fatalf("reason: %q", reason)
	}

	// the racer's write survived untouched
	stored, err := f.trx.Load(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored.UpdatedBy() != "racer" || stored.Version().Int64() != 2 {
		t.Fatalf("stored snapshot: updatedBy=%s version=%d", stored.UpdatedBy(), stored.Version().Int64())
	}
}

func TestProcessBatchRecords(t *testing.T) {
	f := newFixture()
	seed(t, f, "txn-1", "stream-001", "r1", "r2")
	seed(t, f, "txn-2", "stream-001", "r3")

	result, err := f.svc.ProcessBatchRecords(context.Background(), "stream-001",
		map[string]string{"r1": "new-1", "r3": "new-3", "r9": "orphan"}, "bob")
	if err != nil {
		t.Fatalf("ProcessBatchRecords: %v", err)
	}

	if result.Processed {
		t.Fatalf("orphan record should mark the batch as not fully processed")
	}
	if result.TotalRecords != 3 || result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("tallies: %+v", result)
	}
	if _, ok := result.FailureReasons["r9"]; !ok {
		t.Fatalf("missing failure reason for r9: %+v", result.FailureReasons)
	}

	one, err := f.svc.GetByID(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec, _ := one.Record("r1"); rec.Data() != "new-1" {
		t.Fatalf("r1 data: want=new-1 got=%s", rec.Data())
	}
	if rec, _ := one.Record("r2"); rec.Data() != "data-r2" {
		t.Fatalf("r2 must be preserved: got=%s", rec.Data())
	}
	if one.Version().Int64() != 2 {
		t.Fatalf("txn-1 version: want=2 got=%d", one.Version().Int64())
	}

	two, err := f.svc.GetByID(context.Background(), "txn-2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec, _ := two.Record("r3"); rec.Data() != "new-3" {
		t.Fatalf("r3 data: want=new-3 got=%s", rec.Data())
	}

	f.drain()
	if got := len(f.pub.Events()); got != 2 {
		t.Fatalf("published events: want=2 got=%d", got)
	}
}

func TestProcessBatchRecordsOnNonUpdatableTransaction(t *testing.T) {
	f := newFixture()
	defer f.drain()
	seedWithStatus(t, f, "txn-1", "stream-001", domain.StatusProcessing)

	result, err := f.svc.ProcessBatchRecords(context.Background(), "stream-001",
		map[string]string{"txn-1-r1": "new"}, "bob")
	if err != nil {
		t.Fatalf("ProcessBatchRecords: %v", err)
	}
	if result.Processed || result.FailedCount != 1 {
		t.Fatalf("result: %+v", result)
	}
	if reason := result.FailureReasons["txn-1-r1"]; !strings.Contains(reason, "does not allow") {
		t.Fatalf("reason: %q", reason)
	}
}

func TestProcessBatchRecordsUnknownStream(t *testing.T) {
	f := newFixture()
	defer f.drain()
	_, err := f.svc.ProcessBatchRecords(context.Background(), "stream-404",
		map[string]string{"r1": "x"}, "bob")
	if err == nil {
		t.Fatalf("unknown stream should fail")
	}
}

func TestProcessBatchRecordsEmptyUpdates(t *testing.T) {
	f := newFixture()
	defer f.drain()
	result, err := f.svc.ProcessBatchRecords(context.Background(), "stream-001", nil, "bob")
	if err != nil {
		t.Fatalf("empty updates: %v", err)
	}
	if !result.Processed || result.TotalRecords != 0 {
		t.Fatalf("result: %+v", result)
	}
}
