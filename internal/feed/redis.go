package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

// RedisBroker carries message rows over one Redis pub/sub channel per
// conversation, so deliveries reach every server instance.
type RedisBroker struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisBroker(client *redis.Client, logger zerolog.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

func conversationChannel(conversationID int64) string {
	return fmt.Sprintf("conversation:%d:messages", conversationID)
}

func (b *RedisBroker) PublishMessage(ctx context.Context, message models.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return b.client.Publish(ctx, conversationChannel(message.ConversationID), payload).Err()
}

func (b *RedisBroker) SubscribeMessages(conversationID int64, fn func(models.Message)) (*Subscription, error) {
	pubsub := b.client.Subscribe(context.Background(), conversationChannel(conversationID))

	// Force the SUBSCRIBE round trip so a failed subscription surfaces here
	// instead of as silent delivery loss.
	if _, err := pubsub.Receive(context.Background()); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for raw := range pubsub.Channel() {
			var message models.Message
			if err := json.Unmarshal([]byte(raw.Payload), &message); err != nil {
				b.logger.Error().Err(err).
					Int64("conversation_id", conversationID).
					Msg("feed: dropping undecodable payload")
				continue
			}
			fn(message)
		}
	}()

	return newSubscription(func() {
		_ = pubsub.Close()
	}), nil
}
