// Package handlerset connects the AMQP message handlers to the broker: it declares the
// exchange and queue, runs the consume loop, and acknowledges deliveries according to
// the handler outcome.
package handlerset

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/handlers"
)

// HandlerSet represents a set of AMQP message handlers keyed by routing key.
type HandlerSet struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	handlerFor map[string]handlers.MessageHandler
	log        *logrus.Entry
}

// New creates a new handler set: it connects to the broker, declares the exchange and
// the queue, and binds the queue for every routing key that has a handler.
func New(
	settings *common.AMQPSettings,
	handlerFor map[string]handlers.MessageHandler,
	log *logrus.Entry,
) (*HandlerSet, error) {
	wrapMsg := "unable to create the message handler set"

	// Connect to the broker.
	conn, err := amqp.Dial(settings.URI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Declare the exchange and the queue, then bind the queue for each routing key.
	err = channel.ExchangeDeclare(settings.ExchangeName, settings.ExchangeType, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}
	_, err = channel.QueueDeclare(settings.QueueName, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, wrapMsg)
	}
	for routingKey := range handlerFor {
		err = channel.QueueBind(settings.QueueName, routingKey, settings.ExchangeName, false, nil)
		if err != nil {
			conn.Close()
			return nil, errors.Wrap(err, wrapMsg)
		}
	}

	// Build and return the handler set.
	handlerSet := HandlerSet{
		conn:       conn,
		channel:    channel,
		queueName:  settings.QueueName,
		handlerFor: handlerFor,
		log:        log,
	}
	return &handlerSet, nil
}

// Listen consumes deliveries until the context is canceled or the broker closes the
// channel. Deliveries are dispatched to the handler registered for their routing key and
// acknowledged according to the handler outcome: success and unrecoverable failures are
// acknowledged (the latter after being logged, because redelivery can't help them), and
// recoverable failures are requeued.
func (hs *HandlerSet) Listen(ctx context.Context) error {
	deliveries, err := hs.channel.Consume(hs.queueName, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "unable to consume from the queue")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("the delivery channel was closed by the broker")
			}
			hs.handleDelivery(ctx, delivery)
		}
	}
}

func (hs *HandlerSet) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	log := hs.log.WithField("routing_key", delivery.RoutingKey)

	handler, ok := hs.handlerFor[delivery.RoutingKey]
	if !ok {
		log.Warn("no handler registered for the routing key")
		_ = delivery.Ack(false)
		return
	}

	err := handler.HandleMessage(ctx, delivery)
	switch err.(type) {
	case nil:
		_ = delivery.Ack(false)
	case handlers.RecoverableError:
		log.WithError(err).Error("recoverable error; requeueing the delivery")
		_ = delivery.Nack(false, true)
	default:
		log.WithError(err).Error("unrecoverable error; dropping the delivery")
		_ = delivery.Ack(false)
	}
}

// Close closes a message handler set.
func (hs *HandlerSet) Close() {
	hs.channel.Close()
	hs.conn.Close()
}
