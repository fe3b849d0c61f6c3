// Package events carries domain events to the outside world. Publishing is
// fire-and-forget from the caller's point of view: at-least-once delivery and
// ordering are the bus's concern, not the aggregate's.
package events

import (
	"context"

	"github.com/ekaraca/txbatch-backend/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, evt domain.TransactionUpdated) error
	Close() error
}
