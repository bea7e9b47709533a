package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// DefaultOptOutKeywords mark an inbound reply as a negative response.
var DefaultOptOutKeywords = []string{
	"stop", "unsubscribe", "no thanks", "not interested", "remove me",
	"توقف", "إلغاء", "غير مهتم", "لا شكرا",
}

// CheckoutCompleted is the part of a payment event the service acts on.
type CheckoutCompleted struct {
	SessionID string
	Email     string
	Name      string
	Phone     string
	PlanID    string
	LeadID    string
}

type WebhookUseCase struct {
	Store          *LeadStore
	Outreach       *OutreachEngine
	Publisher      NotificationPublisher
	OptOutKeywords []string
	Logger         *zap.Logger
	Now            func() time.Time
}

func NewWebhookUseCase(store *LeadStore, outreach *OutreachEngine, publisher NotificationPublisher, logger *zap.Logger) *WebhookUseCase {
	return &WebhookUseCase{
		Store:          store,
		Outreach:       outreach,
		Publisher:      publisher,
		OptOutKeywords: DefaultOptOutKeywords,
		Logger:         logger,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutCompleted enqueues the welcome notification and, when the session
// references a lead in demo, converts it.
func (uc *WebhookUseCase) CheckoutCompleted(ctx context.Context, evt CheckoutCompleted) error {
	n := &entity.Notification{
		ID:   uuid.NewString(),
		Type: entity.NotificationWelcome,
		Data: map[string]any{
			"email":      evt.Email,
			"name":       evt.Name,
			"phone":      evt.Phone,
			"plan":       evt.PlanID,
			"lead_id":    evt.LeadID,
			"session_id": evt.SessionID,
		},
		CreatedAt: uc.Now(),
	}
	if err := uc.Publisher.Publish(ctx, n); err != nil {
		return &TechnicalError{Code: CodeQueueUnavailable, Message: "failed to enqueue welcome notification", Err: err}
	}

	if evt.LeadID == "" {
		return nil
	}
	if _, err := uc.Outreach.Convert(ctx, evt.LeadID); err != nil {
		uc.Logger.Info("paid checkout did not convert lead",
			zap.String("lead_id", evt.LeadID), zap.Error(err))
	}
	return nil
}

// InboundMessage matches an inbound chat message to a lead awaiting a reply
// and records the response. Unmatched senders return a nil result.
func (uc *WebhookUseCase) InboundMessage(ctx context.Context, from, text string) (*ResponseResult, error) {
	sender := NormalizePhone(from)
	if sender == "" {
		return nil, nil
	}

	var match *entity.Lead
	for _, l := range uc.Store.GetAll(ctx) {
		if l.Status != entity.StatusContacted && l.Status != entity.StatusReplied {
			continue
		}
		if NormalizePhone(l.Contact.WhatsApp) == sender || NormalizePhone(l.Contact.Phone) == sender {
			match = l
			break
		}
	}
	if match == nil {
		uc.Logger.Debug("inbound message from unknown sender")
		return nil, nil
	}

	positive := !uc.IsOptOut(text)
	uc.Logger.Info("inbound reply matched lead",
		zap.String("lead_id", match.ID), zap.Bool("positive", positive))
	return uc.Outreach.HandleResponse(ctx, match.ID, positive)
}

// IsOptOut reports whether text is a refusal. A bare "no" counts only as the
// whole message, other single words must be the first word and phrases may
// appear anywhere.
func (uc *WebhookUseCase) IsOptOut(text string) bool {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	normalized = strings.Trim(normalized, ".!?،")
	if normalized == "" {
		return false
	}
	if normalized == "no" || normalized == "لا" {
		return true
	}
	first := strings.Trim(strings.Fields(normalized)[0], ".,!?،")

	for _, kw := range uc.OptOutKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(normalized, kw) {
				return true
			}
			continue
		}
		if first == kw {
			return true
		}
	}
	return false
}
