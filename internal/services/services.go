package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ecobazaar/services")

// Transactor runs fn atomically. Nested calls join the outer unit of work.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes a message under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Clock returns the current time.
type Clock func() time.Time
