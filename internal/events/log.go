package events

import (
	"context"
	"log/slog"

	"github.com/ekaraca/txbatch-backend/internal/domain"
)

// logPublisher writes events to the application log. Default bus for dev and
// tests, standing in for a real broker.
type logPublisher struct{ log *slog.Logger }

func NewLogPublisher(log *slog.Logger) Publisher { return &logPublisher{log: log} }

func (p *logPublisher) Publish(_ context.Context, evt domain.TransactionUpdated) error {
	p.log.Info("transaction updated",
		"transaction_id", evt.TransactionID,
		"stream_id", evt.StreamID,
		"old_status", string(evt.OldStatus),
		"new_status", string(evt.NewStatus),
		"version", evt.Version,
		"successful", evt.Successful,
		"failed", evt.Failed,
	)
	return nil
}

func (p *logPublisher) Close() error { return nil }
