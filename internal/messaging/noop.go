package messaging

import "context"

// NoopPublisher discards events. Used when messaging is disabled.
type NoopPublisher struct{}

var _ PublisherInterface = (*NoopPublisher)(nil)

func (NoopPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
