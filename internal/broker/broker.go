// Package broker publishes service events to an external message queue.
package broker

import "context"

// Backend defines the broker operations used by the app.
type Backend interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Broker wraps a backend with a stable API.
type Broker struct {
	backend Backend
}

// New constructs a Broker for the provided backend.
func New(backend Backend) *Broker {
	return &Broker{backend: backend}
}

// Publish sends a message to the named queue.
func (b *Broker) Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error) {
	return b.backend.Publish(ctx, queue, data, attrs)
}

// Close closes the underlying backend.
func (b *Broker) Close() error {
	if b == nil || b.backend == nil {
		return nil
	}
	return b.backend.Close()
}
