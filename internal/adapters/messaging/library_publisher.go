package messaging

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ ports.LibraryEventPublisher = (*RabbitMQBroker)(nil)

// Publish sends one outbox event. The event id becomes the AMQP message id
// so consumers can drop redeliveries.
func (rmq *RabbitMQBroker) Publish(ctx context.Context, evt ports.LibraryEvent) error {
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	msg := publishing(evt, rmq.appID)
	_, err := rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			msg,
		)
		return nil, err
	})
	return err
}

func publishing(evt ports.LibraryEvent, appID string) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.Type,
		Timestamp:    evt.OccurredAt.UTC(),
		AppId:        appID,
		Headers:      amqp.Table{"aggregate_id": evt.AggregateID},
		Body:         evt.Payload,
	}
}
