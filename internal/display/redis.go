package display

import (
	"context"
	"encoding/json"
	"time"

	"pos-till/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

type envelope struct {
	Till    string                `json:"till"`
	Message domain.DisplayMessage `json:"message"`
}

// RedisPublisher sends display messages over a Redis pub/sub channel so
// every API instance can reach the display.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Publish sends in the background; errors are logged only.
func (p *RedisPublisher) Publish(_ context.Context, till string, msg domain.DisplayMessage) {
	payload, err := json.Marshal(envelope{Till: till, Message: msg})
	if err != nil {
		p.logger.Warn("Failed to encode display message", zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			p.logger.Warn("Failed to publish display message",
				zap.String("channel", p.channel),
				zap.Error(err),
			)
		}
	}()
}

// Relay forwards messages from the Redis channel into hub until ctx is done.
func Relay(ctx context.Context, client *redis.Client, channel string, hub *Hub, logger *zap.Logger) {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				logger.Warn("Dropping malformed display message", zap.Error(err))
				continue
			}
			hub.Publish(ctx, env.Till, env.Message)
		}
	}
}
