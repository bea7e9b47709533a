package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// NotifyUseCase is the outreach notification endpoint: validate and enqueue.
type NotifyUseCase struct {
	Publisher NotificationPublisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewNotifyUseCase(publisher NotificationPublisher, logger *zap.Logger) *NotifyUseCase {
	return &NotifyUseCase{
		Publisher: publisher,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *NotifyUseCase) Execute(ctx context.Context, input NotificationInput) (*NotificationOutput, error) {
	if errs := ValidateNotificationInput(input); len(errs) > 0 {
		return nil, validationDomainError(errs)
	}

	n := &entity.Notification{
		ID:        uuid.NewString(),
		Type:      input.Type,
		Data:      input.Data,
		CreatedAt: uc.Now(),
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}

	if err := uc.Publisher.Publish(ctx, n); err != nil {
		uc.Logger.Error("failed to enqueue notification",
			zap.String("notification_id", n.ID), zap.String("type", string(n.Type)), zap.Error(err))
		return nil, &TechnicalError{Code: CodeQueueUnavailable, Message: "failed to enqueue notification", Err: err}
	}

	uc.Logger.Info("notification enqueued",
		zap.String("notification_id", n.ID), zap.String("type", string(n.Type)))
	return &NotificationOutput{Success: true}, nil
}

// NotificationProcessor turns notifications into messages. It is the queue
// consumer handler and, without a broker, the publisher itself.
type NotificationProcessor struct {
	Dispatchers   map[entity.Channel]Dispatcher
	SalesEmail    string
	SalesWhatsApp string
	Logger        *zap.Logger
}

func NewNotificationProcessor(dispatchers map[entity.Channel]Dispatcher, salesEmail, salesWhatsApp string, logger *zap.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		Dispatchers:   dispatchers,
		SalesEmail:    salesEmail,
		SalesWhatsApp: salesWhatsApp,
		Logger:        logger,
	}
}

// Publish processes inline.
func (p *NotificationProcessor) Publish(ctx context.Context, n *entity.Notification) error {
	return p.Process(ctx, n)
}

func (p *NotificationProcessor) Process(ctx context.Context, n *entity.Notification) error {
	switch n.Type {
	case entity.NotificationHotLead:
		return p.hotLead(ctx, n)
	case entity.NotificationWelcome:
		return p.welcome(ctx, n)
	default:
		return fmt.Errorf("unsupported notification type %q", n.Type)
	}
}

func (p *NotificationProcessor) hotLead(ctx context.Context, n *entity.Notification) error {
	name := n.StringField("name")
	subject := fmt.Sprintf("Hot lead: %s (score %v)", name, n.Data["score"])

	var b strings.Builder
	fmt.Fprintf(&b, "New high priority lead\n\n")
	for _, key := range []string{"name", "business_type", "service", "phone", "whatsapp", "email", "source", "lead_id"} {
		if v := n.StringField(key); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, v)
		}
	}
	fmt.Fprintf(&b, "score: %v\n", n.Data["score"])

	var errs []error
	if p.SalesEmail != "" {
		errs = append(errs, p.dispatch(ctx, entity.ChannelEmail, p.SalesEmail, subject, b.String(), n))
	}
	if p.SalesWhatsApp != "" {
		errs = append(errs, p.dispatch(ctx, entity.ChannelWhatsApp, p.SalesWhatsApp, "", subject, n))
	}
	if p.SalesEmail == "" && p.SalesWhatsApp == "" {
		p.Logger.Warn("hot lead notification has no sales recipient configured",
			zap.String("notification_id", n.ID))
	}
	return errors.Join(errs...)
}

func (p *NotificationProcessor) welcome(ctx context.Context, n *entity.Notification) error {
	name := n.StringField("name")
	if name == "" {
		name = "there"
	}
	plan := n.StringField("plan")

	body := fmt.Sprintf("Hi %s,\n\nWelcome aboard! Your subscription is active", name)
	if plan != "" {
		body += " on the " + plan + " plan"
	}
	body += ".\nReply to this message any time if you need help getting set up.\n"

	var errs []error
	if email := n.StringField("email"); email != "" {
		errs = append(errs, p.dispatch(ctx, entity.ChannelEmail, email, "Welcome aboard", body, n))
	}
	if phone := n.StringField("phone"); phone != "" {
		errs = append(errs, p.dispatch(ctx, entity.ChannelWhatsApp, phone, "", body, n))
	}
	if len(errs) == 0 {
		return fmt.Errorf("welcome notification %s has neither email nor phone", n.ID)
	}
	return errors.Join(errs...)
}

func (p *NotificationProcessor) dispatch(ctx context.Context, ch entity.Channel, to, subject, body string, n *entity.Notification) error {
	d, ok := p.Dispatchers[ch]
	if !ok {
		p.Logger.Debug("channel not configured, skipping", zap.String("channel", string(ch)))
		return nil
	}
	err := d.Dispatch(ctx, OutboundMessage{
		Channel: ch,
		To:      to,
		Subject: subject,
		Body:    body,
		LeadID:  n.StringField("lead_id"),
	})
	if err != nil {
		return fmt.Errorf("%s to %s: %w", ch, to, err)
	}
	p.Logger.Info("notification delivered",
		zap.String("notification_id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("channel", string(ch)),
	)
	return nil
}
