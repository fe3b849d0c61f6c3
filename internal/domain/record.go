package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxRecordDataLen caps a record payload, measured in characters.
const MaxRecordDataLen = 10000

// Record is a child entity of the transaction aggregate. Its identity is the
// record id; it is owned by exactly one transaction and never referenced
// outside it.
type Record struct {
	recordID  string
	streamID  StreamID
	data      string
	status    Status
	createdBy string
	createdAt time.Time
	updatedBy string
	updatedAt time.Time
}

// NewRecord creates a PENDING record belonging to the given stream.
func NewRecord(recordID string, streamID StreamID, data, createdBy string) (Record, error) {
	now := time.Now()
	return RehydrateRecord(recordID, streamID, data, StatusPending, createdBy, now, createdBy, now)
}

// RehydrateRecord rebuilds a record from stored state, re-running all
// field validation.
func RehydrateRecord(recordID string, streamID StreamID, data string, status Status,
	createdBy string, createdAt time.Time, updatedBy string, updatedAt time.Time) (Record, error) {

	if strings.TrimSpace(recordID) == "" {
		return Record{}, ValidationError("record id must not be blank")
	}
	if strings.TrimSpace(streamID.String()) == "" {
		return Record{}, ValidationError("record %s: stream id must not be blank", recordID)
	}
	if utf8.RuneCountInString(data) > MaxRecordDataLen {
		return Record{}, ValidationError("record %s: data exceeds %d characters", recordID, MaxRecordDataLen)
	}
	if !status.IsValid() {
		return Record{}, ValidationError("record %s: unknown status %q", recordID, status)
	}
	if strings.TrimSpace(createdBy) == "" {
		return Record{}, ValidationError("record %s: created-by must not be blank", recordID)
	}
	if strings.TrimSpace(updatedBy) == "" {
		return Record{}, ValidationError("record %s: updated-by must not be blank", recordID)
	}
	if createdAt.IsZero() || updatedAt.IsZero() {
		return Record{}, ValidationError("record %s: timestamps must be set", recordID)
	}
	return Record{
		recordID:  recordID,
		streamID:  streamID,
		data:      data,
		status:    status,
		createdBy: createdBy,
		createdAt: createdAt,
		updatedBy: updatedBy,
		updatedAt: updatedAt,
	}, nil
}

func (r Record) ID() string           { return r.recordID }
func (r Record) StreamID() StreamID   { return r.streamID }
func (r Record) Data() string         { return r.data }
func (r Record) Status() Status       { return r.status }
func (r Record) CreatedBy() string    { return r.createdBy }
func (r Record) CreatedAt() time.Time { return r.createdAt }
func (r Record) UpdatedBy() string    { return r.updatedBy }
func (r Record) UpdatedAt() time.Time { return r.updatedAt }
