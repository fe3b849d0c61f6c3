package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord("r1", "stream-001", "payload", "alice")
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if rec.Status() != StatusPending {
		t.Fatalf("new record status: want=PENDING got=%s", rec.Status())
	}
	if rec.UpdatedBy() != "alice" || rec.CreatedBy() != "alice" {
		t.Fatalf("audit fields not set: %+v", rec)
	}
}

func TestNewRecordValidation(t *testing.T) {
	cases := []struct {
		name                              string
		recordID, streamID, data, creator string
	}{
		{"blank record id", " ", "stream-001", "x", "alice"},
		{"blank stream id", "r1", "", "x", "alice"},
		{"blank creator", "r1", "stream-001", "x", " "},
		{"oversized payload", "r1", "stream-001", strings.Repeat("a", MaxRecordDataLen+1), "alice"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewRecord(c.recordID, StreamID(c.streamID), c.data, c.creator)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestRecordDataCapCountsCharacters(t *testing.T) {
	// exactly at the cap is fine
	if _, err := NewRecord("r1", "stream-001", strings.Repeat("a", MaxRecordDataLen), "alice"); err != nil {
		t.Fatalf("payload at cap: %v", err)
	}
	// multibyte runes count as one character each, not per byte
	if _, err := NewRecord("r2", "stream-001", strings.Repeat("€", MaxRecordDataLen), "alice"); err != nil {
		t.Fatalf("multibyte payload at cap: %v", err)
	}
}
