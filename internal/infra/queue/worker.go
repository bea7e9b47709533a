package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// Handler processes one decoded notification.
type Handler interface {
	Process(ctx context.Context, n *entity.Notification) error
}

type consumer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  consumer
	Handler  Handler
	Prefetch int
	Logger   *zap.Logger
}

func NewWorker(ch consumer, handler Handler, logger *zap.Logger) *Worker {
	return &Worker{
		Channel:  ch,
		Handler:  handler,
		Prefetch: 10,
		Logger:   logger,
	}
}

// Run consumes the notification queue until ctx is cancelled or the broker
// closes the delivery channel.
func (w *Worker) Run(ctx context.Context, queueName string) error {
	if w.Prefetch > 0 {
		if err := w.Channel.Qos(w.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
	}

	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("notification worker consuming", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks on success. Malformed and failed messages go to the dead
// letter queue without requeue so one bad message cannot block the queue.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var n entity.Notification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		w.Logger.Error("malformed notification", zap.String("message_id", d.MessageId), zap.Error(err))
		d.Nack(false, false)
		return
	}

	if err := w.Handler.Process(ctx, &n); err != nil {
		w.Logger.Error("notification processing failed",
			zap.String("notification_id", n.ID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
		d.Nack(false, false)
		return
	}

	w.Logger.Info("notification processed", zap.String("notification_id", n.ID), zap.String("type", string(n.Type)))
	d.Ack(false)
}
