package handlers

import (
	"context"

	"github.com/streadway/amqp"
)

// MessageHandler describes the interface used to handle AMQP deliveries.
type MessageHandler interface {
	HandleMessage(ctx context.Context, delivery amqp.Delivery) error
}
