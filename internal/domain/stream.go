package domain

import (
	"strings"

	"github.com/google/uuid"
)

// StreamID groups the records that must be updated atomically as one unit.
type StreamID string

// NewStreamID validates and wraps a stream identifier.
func NewStreamID(value string) (StreamID, error) {
	if strings.TrimSpace(value) == "" {
		return "", ValidationError("stream id must not be blank")
	}
	return StreamID(value), nil
}

// GenerateStreamID returns a fresh random stream identifier.
func GenerateStreamID() StreamID { return StreamID(uuid.NewString()) }

func (s StreamID) String() string { return string(s) }
