package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ekaraca/txbatch-backend/internal/domain"
)

type kafkaPublisher struct{ writer *kafka.Writer }

// NewKafkaPublisher publishes events to a kafka topic, keyed by transaction
// id so updates to one aggregate land on one partition in order.
func NewKafkaPublisher(broker, topic string) (Publisher, error) {
	if broker == "" {
		return nil, fmt.Errorf("missing kafka broker")
	}
	if topic == "" {
		topic = "transaction.updated"
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
	}
	return &kafkaPublisher{writer: w}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, evt domain.TransactionUpdated) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.TransactionID),
		Value: raw,
	})
}

func (p *kafkaPublisher) Close() error { return p.writer.Close() }
