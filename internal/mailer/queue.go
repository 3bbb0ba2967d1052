package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"tesoro/internal/logger"
)

// Queue publishes activation messages to a durable AMQP queue and consumes them.
type Queue struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewQueue dials the broker and declares the exchange, queue and binding.
func NewQueue(url, exchangeName, queueName string) (*Queue, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q := &Queue{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := q.setup(); err != nil {
		q.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return q, nil
}

func (q *Queue) setup() error {
	if err := q.channel.ExchangeDeclare(
		q.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := q.channel.QueueDeclare(
		q.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on a direct exchange.
	if err := q.channel.QueueBind(q.queueName, q.queueName, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// SendActivation implements Notifier by publishing a persistent message.
func (q *Queue) SendActivation(ctx context.Context, msg ActivationMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	body, err := msg.marshal()
	if err != nil {
		return fmt.Errorf("marshal activation message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := q.channel.PublishWithContext(
		ctx,
		q.exchangeName, // exchange
		q.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish activation message: %w", err)
	}

	logger.Get().Infow("queued activation email", "email", msg.Email, "queue", q.queueName)
	return nil
}

// Consume delivers queued activation messages to next until ctx is done.
// Malformed messages are dropped; delivery failures are requeued.
func (q *Queue) Consume(ctx context.Context, next Notifier) error {
	deliveries, err := q.channel.Consume(
		q.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.Get()
	log.Infow("consuming activation emails", "queue", q.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			handleDelivery(ctx, d, next)
		}
	}
}

// acknowledger is the subset of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp091.Delivery, next Notifier) {
	settle(ctx, d.Body, &d, next)
}

func settle(ctx context.Context, body []byte, ack acknowledger, next Notifier) {
	log := logger.Get()

	msg, err := unmarshalActivation(body)
	if err != nil {
		log.Errorw("dropping malformed activation message", "error", err)
		_ = ack.Nack(false, false)
		return
	}

	if err := next.SendActivation(ctx, msg); err != nil {
		log.Errorw("failed to deliver activation email", "error", err, "email", msg.Email)
		_ = ack.Nack(false, true)
		return
	}

	_ = ack.Ack(false)
	log.Infow("delivered activation email", "email", msg.Email)
}

// Close closes the channel and connection.
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
