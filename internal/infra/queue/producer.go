package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// publisher is the slice of *amqp.Channel the producer needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Producer struct {
	Ch     publisher
	Logger *zap.Logger
}

func NewProducer(ch publisher, logger *zap.Logger) *Producer {
	return &Producer{Ch: ch, Logger: logger}
}

// Publish enqueues n as a persistent JSON message.
func (p *Producer) Publish(ctx context.Context, n *entity.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    n.ID,
			Type:         string(n.Type),
			Timestamp:    n.CreatedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	p.Logger.Debug("notification published", zap.String("notification_id", n.ID), zap.String("type", string(n.Type)))
	return nil
}
