package mail

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

func NewEmailSender(host string, port int, user, password, from string, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		From:   from,
		Dialer: gomail.NewDialer(host, port, user, password),
		Logger: logger,
	}
}

// Dispatch sends msg as a plain text email with an HTML alternative.
func (s *EmailSender) Dispatch(ctx context.Context, msg usecase.OutboundMessage) error {
	if msg.To == "" {
		return errors.New("email: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	m.AddAlternative("text/html", htmlBody(msg.Body))

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp email: %w", err)
	}

	s.Logger.Info("email sent", zap.String("lead_id", msg.LeadID), zap.String("subject", msg.Subject))
	return nil
}

func htmlBody(text string) string {
	paragraphs := strings.Split(strings.TrimSpace(text), "\n\n")
	var b strings.Builder
	for _, p := range paragraphs {
		escaped := template.HTMLEscapeString(p)
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(escaped, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
