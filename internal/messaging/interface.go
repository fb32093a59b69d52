package messaging

import "context"

// PublisherInterface is the seam the intake service publishes lifecycle
// events through; tests and the disabled configuration swap in the no-op
// implementation.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = NoopPublisher{}
)
