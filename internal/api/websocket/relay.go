package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Relay tails a redis stream and broadcasts the "data" field of every new
// entry to the hub until ctx is done. Only entries added after Relay starts
// are delivered.
func Relay(ctx context.Context, client *redis.Client, stream string, hub *Hub, logger *zap.Logger) error {
	lastID := "$"
	for {
		res, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			logger.Warn("stream read failed", zap.String("stream", stream), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				lastID = msg.ID
				if data, ok := msg.Values["data"].(string); ok {
					hub.Broadcast([]byte(data))
				}
			}
		}
	}
}
