package usecase

import (
	"time"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

// LeadInput is the intake payload shared by the public form, the chat
// widget and manual admin entry.
type LeadInput struct {
	Name         string `json:"name"`
	City         string `json:"city"`
	Language     string `json:"language"`
	BusinessType string `json:"business_type"`
	Service      string `json:"service"`
	Phone        string `json:"phone"`
	WhatsApp     string `json:"whatsapp"`
	Email        string `json:"email"`
	Source       string `json:"source"`
	Notes        string `json:"notes"`

	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
	TikTok    string `json:"tiktok"`

	HasWebsite    bool   `json:"has_website"`
	HasOrdering   bool   `json:"has_ordering"`
	HasWhatsApp   bool   `json:"has_whatsapp"`
	EstimatedSize string `json:"estimated_size"`
}

type LeadOutput struct {
	ID       string          `json:"id"`
	Status   entity.Status   `json:"status"`
	Score    int             `json:"score"`
	Priority entity.Priority `json:"priority"`
}

type OutreachResult struct {
	LeadID  string         `json:"lead_id"`
	Channel entity.Channel `json:"channel"`
	Sent    bool           `json:"sent"`
	Blocked bool           `json:"blocked"`
	Reason  string         `json:"reason,omitempty"`
	Lead    *entity.Lead   `json:"lead,omitempty"`
}

type ResponseResult struct {
	Lead         *entity.Lead `json:"lead"`
	DemoLinkSent bool         `json:"demo_link_sent"`
}

// OutboundMessage is one rendered message handed to a channel dispatcher.
type OutboundMessage struct {
	Channel entity.Channel
	To      string
	Subject string
	Body    string
	LeadID  string
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatOption struct {
	Label string `json:"label"`
	Event string `json:"event"`
	Value string `json:"value,omitempty"`
}

type ChatInput struct {
	Messages []ChatMessage `json:"messages"`
	Language string        `json:"language"`
	Event    string        `json:"event,omitempty"`
	Value    string        `json:"value,omitempty"`
}

type ChatOutput struct {
	Reply   string         `json:"reply"`
	Options []ChatOption   `json:"options"`
	Data    map[string]any `json:"data"`
}

type CheckoutInput struct {
	PlanID string `json:"plan_id"`
	Locale string `json:"locale"`
	LeadID string `json:"lead_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

type CheckoutOutput struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CheckoutSessionRequest is what the payment gateway needs to open a hosted checkout.
type CheckoutSessionRequest struct {
	PriceID       string
	Recurring     bool
	Locale        string
	CustomerEmail string
	ClientRefID   string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type NotificationInput struct {
	Type entity.NotificationType `json:"type"`
	Data map[string]any          `json:"data"`
}

type NotificationOutput struct {
	Success bool `json:"success"`
}

type StatsOutput struct {
	Total          int                     `json:"total"`
	ByStatus       map[entity.Status]int   `json:"by_status"`
	ByPriority     map[entity.Priority]int `json:"by_priority"`
	BySource       map[entity.Source]int   `json:"by_source"`
	AverageScore   float64                 `json:"average_score"`
	ConversionRate float64                 `json:"conversion_rate"`
	AwaitingReply  int                     `json:"awaiting_reply"`
	GeneratedAt    time.Time               `json:"generated_at"`
}
