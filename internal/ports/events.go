package ports

import "context"

// EventPublisher is the outbound domain-event publish port.
// partitionKey keeps events for one aggregate ordered on the broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
