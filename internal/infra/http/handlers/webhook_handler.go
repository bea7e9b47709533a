package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/infra/integration/stripe"
	"github.com/xavierca1/leadfunnel/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

const maxWebhookBytes = 256 << 10

type WebhookProcessor interface {
	CheckoutCompleted(ctx context.Context, evt usecase.CheckoutCompleted) error
	InboundMessage(ctx context.Context, from, text string) (*usecase.ResponseResult, error)
}

// WebhookHandler acknowledges every authenticated event with 200. Processing
// failures are logged, never reported back to the provider.
type WebhookHandler struct {
	Webhooks            WebhookProcessor
	StripeSecret        string
	WhatsAppVerifyToken string
	WhatsAppAppSecret   string
	Logger              *zap.Logger
	Now                 func() time.Time
}

func NewWebhookHandler(webhooks WebhookProcessor, stripeSecret, waVerifyToken, waAppSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		Webhooks:            webhooks,
		StripeSecret:        stripeSecret,
		WhatsAppVerifyToken: waVerifyToken,
		WhatsAppAppSecret:   waAppSecret,
		Logger:              logger,
		Now:                 time.Now,
	}
}

type ackResponse struct {
	Received bool `json:"received"`
}

// Stripe handles POST /webhooks/stripe.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "Unreadable body")
		return
	}

	if err := stripe.VerifySignature(body, r.Header.Get("Stripe-Signature"), h.StripeSecret, h.Now()); err != nil {
		h.Logger.Warn("stripe webhook rejected", zap.Error(err))
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid signature")
		return
	}

	evt, err := stripe.ParseEvent(body)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}

	if evt.Type != stripe.EventCheckoutCompleted {
		h.Logger.Debug("stripe event ignored", zap.String("type", evt.Type), zap.String("event_id", evt.ID))
		writeJSON(w, http.StatusOK, ackResponse{Received: true})
		return
	}

	session, err := evt.CheckoutSession()
	if err != nil {
		h.Logger.Error("stripe checkout session undecodable", zap.String("event_id", evt.ID), zap.Error(err))
		writeJSON(w, http.StatusOK, ackResponse{Received: true})
		return
	}

	if err := h.Webhooks.CheckoutCompleted(r.Context(), session.Completed()); err != nil {
		h.Logger.Error("checkout completion failed",
			zap.String("event_id", evt.ID), zap.String("session_id", session.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, ackResponse{Received: true})
}

// WhatsAppVerify answers the GET subscription handshake.
func (h *WebhookHandler) WhatsAppVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.WhatsAppVerifyToken == "" ||
		q.Get("hub.mode") != "subscribe" ||
		q.Get("hub.verify_token") != h.WhatsAppVerifyToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, q.Get("hub.challenge"))
}

// WhatsApp handles inbound message notifications.
func (h *WebhookHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "Unreadable body")
		return
	}

	if !whatsapp.VerifySignature(h.WhatsAppAppSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.Logger.Warn("whatsapp webhook rejected: bad signature")
		writeErrorResponse(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid signature")
		return
	}

	msgs, err := whatsapp.ParseInbound(body)
	if err != nil {
		h.Logger.Warn("whatsapp webhook undecodable", zap.Error(err))
		writeJSON(w, http.StatusOK, ackResponse{Received: true})
		return
	}

	for _, m := range msgs {
		res, err := h.Webhooks.InboundMessage(r.Context(), m.From, m.Body)
		if err != nil {
			h.Logger.Warn("inbound message not applied", zap.String("message_id", m.MessageID), zap.Error(err))
			continue
		}
		if res != nil {
			h.Logger.Info("lead response recorded",
				zap.String("lead_id", res.Lead.ID), zap.String("status", string(res.Lead.Status)))
		}
	}
	writeJSON(w, http.StatusOK, ackResponse{Received: true})
}
