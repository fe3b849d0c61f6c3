package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ekaraca/txbatch-backend/internal/domain"
)

type redisPublisher struct {
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to redis and publishes events on a pub/sub
// channel. The connection is verified up front so a misconfigured address
// fails at startup, not on the first mutation.
func NewRedisPublisher(addr, channel string) (Publisher, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if channel == "" {
		channel = "transaction-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisPublisher{rdb: rdb, channel: channel}, nil
}

func (p *redisPublisher) Publish(ctx context.Context, evt domain.TransactionUpdated) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

func (p *redisPublisher) Close() error { return p.rdb.Close() }
