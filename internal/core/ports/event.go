package ports

import (
	"context"
	"time"
)

// LibraryEvent is an outbox record on its way to the message broker.
type LibraryEvent struct {
	ID          string
	Type        string
	AggregateID string
	OccurredAt  time.Time
	Payload     []byte
}

type LibraryEventPublisher interface {
	Publish(ctx context.Context, evt LibraryEvent) error
}
