package domain

import "time"

// TransactionUpdated is published after every accepted status or record
// mutation. Delivery guarantees are the publisher's concern; the aggregate
// only promises the event reflects the snapshot it was built from.
type TransactionUpdated struct {
	TransactionID string    `json:"transaction_id"`
	StreamID      string    `json:"stream_id"`
	OldStatus     Status    `json:"old_status,omitempty"`
	NewStatus     Status    `json:"new_status"`
	Version       int64     `json:"version"`
	Successful    bool      `json:"successful_update"`
	Failed        bool      `json:"failed_update"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewStatusChangedEvent describes a status transition on t from oldStatus.
func NewStatusChangedEvent(t FinancialTransaction, oldStatus Status) TransactionUpdated {
	return TransactionUpdated{
		TransactionID: t.ID(),
		StreamID:      t.StreamID().String(),
		OldStatus:     oldStatus,
		NewStatus:     t.Status(),
		Version:       t.Version().Int64(),
		Successful:    t.Status() == StatusSuccess,
		Failed:        t.Status() == StatusFailed,
		OccurredAt:    t.UpdatedAt(),
	}
}

// NewRecordsUpdatedEvent describes an accepted record batch on t. The status
// is unchanged by a record batch, so old and new carry the same value.
func NewRecordsUpdatedEvent(t FinancialTransaction) TransactionUpdated {
	return TransactionUpdated{
		TransactionID: t.ID(),
		StreamID:      t.StreamID().String(),
		OldStatus:     t.Status(),
		NewStatus:     t.Status(),
		Version:       t.Version().Int64(),
		Successful:    t.Status() == StatusSuccess,
		Failed:        t.Status() == StatusFailed,
		OccurredAt:    t.UpdatedAt(),
	}
}
