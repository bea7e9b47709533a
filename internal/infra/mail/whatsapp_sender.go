package mail

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type textSender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// WhatsAppSender delivers outbound messages through the Cloud API client.
type WhatsAppSender struct {
	client textSender
	logger *zap.Logger
}

func NewWhatsAppSender(client textSender, logger *zap.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		client: client,
		logger: logger,
	}
}

func (s *WhatsAppSender) Dispatch(ctx context.Context, msg usecase.OutboundMessage) error {
	if msg.To == "" {
		return errors.New("whatsapp: empty recipient")
	}
	id, err := s.client.SendText(ctx, msg.To, msg.Body)
	if err != nil {
		return err
	}
	s.logger.Info("whatsapp message dispatched", zap.String("lead_id", msg.LeadID), zap.String("message_id", id))
	return nil
}

// LogSender records messages for channels without an API integration
// (LinkedIn). Sales sends them by hand from the log.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Dispatch(_ context.Context, msg usecase.OutboundMessage) error {
	s.logger.Info("manual outreach message",
		zap.String("channel", string(msg.Channel)),
		zap.String("to", msg.To),
		zap.String("lead_id", msg.LeadID),
		zap.String("body", msg.Body),
	)
	return nil
}
