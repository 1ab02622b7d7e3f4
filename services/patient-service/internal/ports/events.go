package ports

import "context"

// EventPublisher returns nil only once the broker has accepted the message.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
