package domain

import (
	"sort"
	"strings"
	"time"
)

// MaxBatchUpdateSize caps the entries accepted by a single BatchUpdateRecords call.
const MaxBatchUpdateSize = 1000

// FinancialTransaction is the aggregate root: a set of records sharing one
// stream id, plus the status and version that make concurrent batch updates
// safe. A value is an immutable snapshot; every mutating method validates,
// then returns a brand-new snapshot carrying version+1. The persisted version
// and the one a caller mutated from are compared by the repository before a
// new snapshot is accepted (compare-and-swap).
type FinancialTransaction struct {
	id        string
	streamID  StreamID
	status    Status
	version   Version
	createdBy string
	createdAt time.Time
	updatedBy string
	updatedAt time.Time
	records   map[string]Record
}

// NewTransaction creates a PENDING aggregate at version 1 owning the given
// records. Every record must already belong to the aggregate's stream.
func NewTransaction(id string, streamID StreamID, records []Record, createdBy string) (FinancialTransaction, error) {
	now := time.Now()
	return Rehydrate(id, streamID, StatusPending, InitialVersion(), records, createdBy, now, createdBy, now)
}

// Rehydrate rebuilds an aggregate from stored state. All construction
// invariants are re-checked, so a corrupt row cannot produce a live snapshot.
func Rehydrate(id string, streamID StreamID, status Status, version Version, records []Record,
	createdBy string, createdAt time.Time, updatedBy string, updatedAt time.Time) (FinancialTransaction, error) {

	owned := make(map[string]Record, len(records))
	for _, rec := range records {
		owned[rec.ID()] = rec
	}
	t := FinancialTransaction{
		id:        id,
		streamID:  streamID,
		status:    status,
		version:   version,
		createdBy: createdBy,
		createdAt: createdAt,
		updatedBy: updatedBy,
		updatedAt: updatedAt,
		records:   owned,
	}
	if err := t.validate(); err != nil {
		return FinancialTransaction{}, err
	}
	return t, nil
}

func (t FinancialTransaction) validate() error {
	if strings.TrimSpace(t.id) == "" {
		return ValidationError("transaction id must not be blank")
	}
	if strings.TrimSpace(t.streamID.String()) == "" {
		return ValidationError("transaction %s: stream id must not be blank", t.id)
	}
	if !t.status.IsValid() {
		return ValidationError("transaction %s: unknown status %q", t.id, t.status)
	}
	if t.version < 1 {
		return ValidationError("transaction %s: version must be >= 1", t.id)
	}
	if strings.TrimSpace(t.createdBy) == "" || strings.TrimSpace(t.updatedBy) == "" {
		return ValidationError("transaction %s: audit operator must not be blank", t.id)
	}
	if t.createdAt.IsZero() || t.updatedAt.IsZero() {
		return ValidationError("transaction %s: timestamps must be set", t.id)
	}
	if t.updatedAt.Before(t.createdAt) {
		return ValidationError("transaction %s: updated-at precedes created-at", t.id)
	}
	for id, rec := range t.records {
		if rec.StreamID() != t.streamID {
			return ValidationError("transaction %s: record %s belongs to stream %s, not %s",
				t.id, id, rec.StreamID(), t.streamID)
		}
	}
	return nil
}

// BatchUpdateRecords merges up to MaxBatchUpdateSize record updates into a
// new snapshot. An entry whose id already exists replaces that record
// wholesale; any other entry is added as new. All remaining records are
// preserved, and the aggregate status is not touched. An empty updates map
// is a no-op returning the receiver unchanged.
func (t FinancialTransaction) BatchUpdateRecords(updates map[string]Record, updatedBy string) (FinancialTransaction, error) {
	if len(updates) == 0 {
		return t, nil
	}
	if !t.status.AllowsDataUpdate() {
		return FinancialTransaction{}, IllegalStateError("transaction %s: status %s does not allow record updates", t.id, t.status)
	}
	if len(updates) > MaxBatchUpdateSize {
		return FinancialTransaction{}, ValidationError("batch of %d records exceeds limit of %d", len(updates), MaxBatchUpdateSize)
	}
	if strings.TrimSpace(updatedBy) == "" {
		return FinancialTransaction{}, ValidationError("transaction %s: updated-by must not be blank", t.id)
	}
	for id, rec := range updates {
		if rec.StreamID() != t.streamID {
			return FinancialTransaction{}, ValidationError("record %s belongs to stream %s, not %s", id, rec.StreamID(), t.streamID)
		}
	}

	merged := make(map[string]Record, len(t.records)+len(updates))
	for id, rec := range t.records {
		merged[id] = rec
	}
	for id, rec := range updates {
		merged[id] = rec
	}
	return t.next(t.status, merged, updatedBy), nil
}

// UpdateStatus moves the aggregate to newStatus if the transition table
// allows it. The record set is carried over unchanged.
func (t FinancialTransaction) UpdateStatus(newStatus Status, updatedBy string) (FinancialTransaction, error) {
	if !t.status.CanTransitionTo(newStatus) {
		return FinancialTransaction{}, IllegalStateError("transaction %s: transition %s -> %s not allowed", t.id, t.status, newStatus)
	}
	if strings.TrimSpace(updatedBy) == "" {
		return FinancialTransaction{}, ValidationError("transaction %s: updated-by must not be blank", t.id)
	}
	return t.next(newStatus, t.records, updatedBy), nil
}

func (t FinancialTransaction) MarkAsProcessing(updatedBy string) (FinancialTransaction, error) {
	return t.UpdateStatus(StatusProcessing, updatedBy)
}

func (t FinancialTransaction) MarkAsSuccess(updatedBy string) (FinancialTransaction, error) {
	return t.UpdateStatus(StatusSuccess, updatedBy)
}

func (t FinancialTransaction) MarkAsFailed(updatedBy string) (FinancialTransaction, error) {
	return t.UpdateStatus(StatusFailed, updatedBy)
}

func (t FinancialTransaction) MarkAsCancelled(updatedBy string) (FinancialTransaction, error) {
	return t.UpdateStatus(StatusCancelled, updatedBy)
}

// next builds the successor snapshot. updatedAt never goes backwards even if
// the wall clock does, so the updatedAt >= createdAt invariant holds.
func (t FinancialTransaction) next(status Status, records map[string]Record, updatedBy string) FinancialTransaction {
	now := time.Now()
	if now.Before(t.updatedAt) {
		now = t.updatedAt
	}
	return FinancialTransaction{
		id:        t.id,
		streamID:  t.streamID,
		status:    status,
		version:   t.version.Next(),
		createdBy: t.createdBy,
		createdAt: t.createdAt,
		updatedBy: updatedBy,
		updatedAt: now,
		records:   records,
	}
}

func (t FinancialTransaction) ID() string           { return t.id }
func (t FinancialTransaction) StreamID() StreamID   { return t.streamID }
func (t FinancialTransaction) Status() Status       { return t.status }
func (t FinancialTransaction) Version() Version     { return t.version }
func (t FinancialTransaction) CreatedBy() string    { return t.createdBy }
func (t FinancialTransaction) CreatedAt() time.Time { return t.createdAt }
func (t FinancialTransaction) UpdatedBy() string    { return t.updatedBy }
func (t FinancialTransaction) UpdatedAt() time.Time { return t.updatedAt }

// Record returns the owned record with the given id, if any.
func (t FinancialTransaction) Record(id string) (Record, bool) {
	rec, ok := t.records[id]
	return rec, ok
}

// Records returns a copy of the owned record set, ordered by record id.
func (t FinancialTransaction) Records() []Record {
	out := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (t FinancialTransaction) RecordCount() int { return len(t.records) }

func (t FinancialTransaction) RecordCountByStatus(s Status) int {
	n := 0
	for _, rec := range t.records {
		if rec.Status() == s {
			n++
		}
	}
	return n
}

func (t FinancialTransaction) SuccessRecordCount() int { return t.RecordCountByStatus(StatusSuccess) }
func (t FinancialTransaction) FailedRecordCount() int  { return t.RecordCountByStatus(StatusFailed) }

// IsAllRecordsCompleted reports whether every owned record is terminal.
// Vacuously true for an empty set.
func (t FinancialTransaction) IsAllRecordsCompleted() bool {
	for _, rec := range t.records {
		if !rec.Status().IsCompleted() {
			return false
		}
	}
	return true
}

func (t FinancialTransaction) HasProcessingRecords() bool {
	for _, rec := range t.records {
		if rec.Status().IsProcessing() {
			return true
		}
	}
	return false
}

// ProcessingProgress is the percentage of records whose status is terminal,
// independent of the aggregate's own status. 0.0 for an empty set.
func (t FinancialTransaction) ProcessingProgress() float64 {
	if len(t.records) == 0 {
		return 0.0
	}
	completed := 0
	for _, rec := range t.records {
		if rec.Status().IsCompleted() {
			completed++
		}
	}
	return float64(completed) * 100.0 / float64(len(t.records))
}

// CanBatchUpdate reports whether a record batch would currently be accepted.
func (t FinancialTransaction) CanBatchUpdate() bool {
	return t.status.AllowsDataUpdate() && len(t.records) > 0
}
