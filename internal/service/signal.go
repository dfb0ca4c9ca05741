package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openscholar/paperview/internal/domain"
)

// InvalidationEvent travels over the redis bus when a write transaction
// confirms. Keys name exact cache entries; Prefixes name whole families.
type InvalidationEvent struct {
	Keys     []string `json:"keys,omitempty"`
	Prefixes []string `json:"prefixes,omitempty"`
	TxHash   string   `json:"txHash,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// SignalService fans cache invalidations out across gateway instances
// over redis pub/sub.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// Publish announces an invalidation to all instances, including this one.
func (s *SignalService) Publish(ctx context.Context, event InvalidationEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.InvalidationChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe consumes invalidation events until ctx is done, invoking
// handler for each. Malformed payloads are logged and skipped.
func (s *SignalService) Subscribe(ctx context.Context, handler func(InvalidationEvent)) {
	pubsub := s.rdb.Subscribe(ctx, domain.InvalidationChannel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event InvalidationEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("dropping malformed invalidation event",
						slog.String("error", err.Error()))
					continue
				}
				handler(event)
			}
		}
	}()
}
