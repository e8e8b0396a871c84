package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRelay implements Relay on Redis pub/sub. Per-channel order is
// preserved because each process publishes over a single client
// connection and Redis delivers per-channel in publish order.
type RedisRelay struct {
	rdb *redis.Client
}

// NewRedisRelay connects to Redis and verifies the connection.
func NewRedisRelay(ctx context.Context, addr string) (*RedisRelay, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisRelay{rdb: rdb}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := r.rdb.Publish(ctx, env.Channel, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", env.Channel, err)
	}
	return nil
}

func (r *RedisRelay) Subscribe(ctx context.Context, channels ...string) (<-chan Envelope, error) {
	sub := r.rdb.Subscribe(ctx, channels...)
	// Force the subscription to be established before we report success.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	out := make(chan Envelope, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("relay: dropping malformed envelope on %s: %v", msg.Channel, err)
					continue
				}
				env.Channel = msg.Channel
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
