package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"eventticketing/internal/domain"
)

// pushPayload is the wire format published to a recipient's channel.
// DeliveryID lets clients deduplicate redeliveries.
type pushPayload struct {
	DeliveryID   string               `json:"delivery_id"`
	Notification *domain.Notification `json:"notification"`
}

// Publisher pushes stored notifications over Redis pub/sub. Each recipient
// has their own channel; connected sessions subscribe to it.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher for the given Redis address.
func NewPublisher(addr, password string, db int) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// NewPublisherWithClient wraps an existing client. Used by tests.
func NewPublisherWithClient(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// ChannelFor returns the pub/sub channel name for a recipient.
func ChannelFor(recipientID string) string {
	return "user:" + recipientID + ":notifications"
}

// Publish sends the notification to the recipient's channel. Publishing to a
// channel with no subscribers is not an error.
func (p *Publisher) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(pushPayload{
		DeliveryID:   uuid.NewString(),
		Notification: n,
	})
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelFor(n.RecipientID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// NoopPublisher drops every push. Used when no Redis address is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	return nil
}
