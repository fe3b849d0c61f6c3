package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ekaraca/txbatch-backend/internal/domain"
	"github.com/ekaraca/txbatch-backend/internal/events"
	"github.com/ekaraca/txbatch-backend/internal/metrics"
	repo "github.com/ekaraca/txbatch-backend/internal/repository"
	"github.com/ekaraca/txbatch-backend/internal/worker"
)

// TransactionService orchestrates batch operations across aggregates. Each id
// in a batch is an independent unit of work: one failing id never aborts its
// siblings, and every failure is captured per id.
type TransactionService struct {
	trx repo.Transactions
	log repo.AuditLogs
	pub events.Publisher
	wp  *worker.Pool
}

func NewTransactionService(t repo.Transactions, l repo.AuditLogs, pub events.Publisher, wp *worker.Pool) *TransactionService {
	return &TransactionService{trx: t, log: l, pub: pub, wp: wp}
}

// BatchStatusResult aggregates a batch status update. Success is true only
// when the failed set is empty; a partial-failure batch still surfaces the
// ids that went through.
type BatchStatusResult struct {
	Success    bool              `json:"success"`
	UpdatedIDs []string          `json:"updated_transaction_ids"`
	FailedIDs  []string          `json:"failed_transaction_ids"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// BatchRecordsResult aggregates a batch record update under one stream.
type BatchRecordsResult struct {
	Processed      bool              `json:"processed"`
	TotalRecords   int               `json:"total_records"`
	SuccessCount   int               `json:"success_count"`
	FailedCount    int               `json:"failed_count"`
	FailureReasons map[string]string `json:"failure_reasons,omitempty"`
}

// ----------------- Helpers -----------------

func (s *TransactionService) audit(entityID, action, details string) {
	var det map[string]any
	if details != "" {
		det = map[string]any{"message": details}
	}
	_ = s.log.Create(repo.AuditLog{
		EntityType: "transaction",
		EntityID:   &entityID,
		Action:     action,
		Details:    det,
	})
}

// publish hands the event to the worker pool; mutations never wait on the bus.
func (s *TransactionService) publish(evt domain.TransactionUpdated) {
	s.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.pub.Publish(ctx, evt)
	})
}

// ----------------- Create -----------------

// Create builds a PENDING aggregate for the stream with one record per data
// payload and persists it.
func (s *TransactionService) Create(ctx context.Context, streamID string, recordData []string, operator string) (domain.FinancialTransaction, error) {
	sid, err := domain.NewStreamID(streamID)
	if err != nil {
		return domain.FinancialTransaction{}, err
	}

	records := make([]domain.Record, 0, len(recordData))
	for _, data := range recordData {
		rec, err := domain.NewRecord(uuid.NewString(), sid, data, operator)
		if err != nil {
			return domain.FinancialTransaction{}, err
		}
		records = append(records, rec)
	}

	txn, err := domain.NewTransaction(uuid.NewString(), sid, records, operator)
	if err != nil {
		return domain.FinancialTransaction{}, err
	}
	if err := s.trx.Create(ctx, txn); err != nil {
		return domain.FinancialTransaction{}, err
	}

	s.audit(txn.ID(), "created", fmt.Sprintf("created with %d records", txn.RecordCount()))
	s.publish(domain.NewRecordsUpdatedEvent(txn))
	return txn, nil
}

// ----------------- Batch status update -----------------

// BatchUpdateStatus attempts the status transition on every id independently:
// load, transition, compare-and-swap save. Any domain failure (unknown id,
// illegal transition, stale version) marks that id failed with a reason and
// the loop moves on.
func (s *TransactionService) BatchUpdateStatus(ctx context.Context, ids []string, newStatus domain.Status, operator string) (BatchStatusResult, error) {
	if len(ids) == 0 {
		return BatchStatusResult{}, domain.ValidationError("transaction id list must not be empty")
	}
	if !newStatus.IsValid() {
		return BatchStatusResult{}, domain.ValidationError("unknown status %q", newStatus)
	}

	result := BatchStatusResult{
		UpdatedIDs: []string{},
		FailedIDs:  []string{},
		Errors:     map[string]string{},
	}
	metrics.BatchOpsTotal.WithLabelValues("status").Inc()

	for _, id := range ids {
		if err := s.updateStatus(ctx, id, newStatus, operator); err != nil {
			result.FailedIDs = append(result.FailedIDs, id)
			result.Errors[id] = err.Error()
			metrics.BatchItemsFailed.Inc()
			continue
		}
		result.UpdatedIDs = append(result.UpdatedIDs, id)
	}

	result.Success = len(result.FailedIDs) == 0
	return result, nil
}

func (s *TransactionService) updateStatus(ctx context.Context, id string, newStatus domain.Status, operator string) error {
	txn, err := s.trx.Load(ctx, id)
	if err != nil {
		return err
	}
	next, err := txn.UpdateStatus(newStatus, operator)
	if err != nil {
		return err
	}
	if err := s.trx.Save(ctx, next, txn.Version()); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
		}
		return err
	}
	s.audit(id, "status_change", fmt.Sprintf("%s -> %s", txn.Status(), newStatus))
	s.publish(domain.NewStatusChangedEvent(next, txn.Status()))
	return nil
}

// ----------------- Batch record processing -----------------

// ProcessBatchRecords routes each update (record id -> new payload) to the
// aggregate under the stream that owns the record, then applies one
// BatchUpdateRecords per addressed aggregate. Record ids owned by no
// aggregate fail individually; an aggregate rejecting its merge fails every
// record addressed to it.
func (s *TransactionService) ProcessBatchRecords(ctx context.Context, streamID string, updates map[string]string, operator string) (BatchRecordsResult, error) {
	sid, err := domain.NewStreamID(streamID)
	if err != nil {
		return BatchRecordsResult{}, err
	}

	result := BatchRecordsResult{
		TotalRecords:   len(updates),
		FailureReasons: map[string]string{},
	}
	if len(updates) == 0 {
		result.Processed = true
		return result, nil
	}
	metrics.BatchOpsTotal.WithLabelValues("records").Inc()

	txns, err := s.trx.LoadByStream(ctx, sid)
	if err != nil {
		return BatchRecordsResult{}, err
	}
	if len(txns) == 0 {
		return BatchRecordsResult{}, domain.NotFoundError("stream " + streamID)
	}

	owner := make(map[string]int, len(updates)) // record id -> index into txns
	for i, txn := range txns {
		for _, rec := range txn.Records() {
			owner[rec.ID()] = i
		}
	}

	grouped := make(map[int]map[string]domain.Record)
	// deterministic iteration keeps failure attribution stable across runs
	recordIDs := make([]string, 0, len(updates))
	for recordID := range updates {
		recordIDs = append(recordIDs, recordID)
	}
	sort.Strings(recordIDs)

	for _, recordID := range recordIDs {
		idx, ok := owner[recordID]
		if !ok {
			result.FailureReasons[recordID] = fmt.Sprintf("no transaction under stream %s owns record", streamID)
			result.FailedCount++
			metrics.BatchItemsFailed.Inc()
			continue
		}
		rec, err := domain.NewRecord(recordID, sid, updates[recordID], operator)
		if err != nil {
			result.FailureReasons[recordID] = err.Error()
			result.FailedCount++
			metrics.BatchItemsFailed.Inc()
			continue
		}
		if grouped[idx] == nil {
			grouped[idx] = make(map[string]domain.Record)
		}
		grouped[idx][recordID] = rec
	}

	for idx, batch := range grouped {
		txn := txns[idx]
		if err := s.applyRecordBatch(ctx, txn, batch, operator); err != nil {
			for recordID := range batch {
				result.FailureReasons[recordID] = err.Error()
			}
			result.FailedCount += len(batch)
			metrics.BatchItemsFailed.Inc()
			continue
		}
		result.SuccessCount += len(batch)
	}

	result.Processed = result.FailedCount == 0
	return result, nil
}

func (s *TransactionService) applyRecordBatch(ctx context.Context, txn domain.FinancialTransaction, batch map[string]domain.Record, operator string) error {
	next, err := txn.BatchUpdateRecords(batch, operator)
	if err != nil {
		return err
	}
	if err := s.trx.Save(ctx, next, txn.Version()); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
		}
		return err
	}
	s.audit(txn.ID(), "batch_records", fmt.Sprintf("%d records updated", len(batch)))
	s.publish(domain.NewRecordsUpdatedEvent(next))
	return nil
}

// ----------------- Queries -----------------

func (s *TransactionService) GetByID(ctx context.Context, id string) (domain.FinancialTransaction, error) {
	return s.trx.Load(ctx, id)
}
