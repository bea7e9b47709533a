package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("whatsapp: access token or phone id not configured")

// Client talks to the WhatsApp Cloud API.
type Client struct {
	httpClient *resty.Client
	phoneID    string
	configured bool
	logger     *zap.Logger
}

func NewClient(baseURL, accessToken, phoneID string, logger *zap.Logger) *Client {
	// Callers own retries; the client makes a single attempt.
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		phoneID:    phoneID,
		configured: accessToken != "" && phoneID != "",
		logger:     logger,
	}
}

func (c *Client) Configured() bool {
	return c.configured
}

// SendText sends a free-form text message and returns the message id.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	req := sendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               digits(to),
		Type:             "text",
		Text:             textBody{PreviewURL: true, Body: body},
	}

	var result SendMessageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/%s/messages", c.phoneID))
	if err != nil {
		return "", fmt.Errorf("whatsapp request: %w", err)
	}

	if resp.IsError() || result.Error != nil {
		msg := resp.Status()
		if result.Error != nil {
			msg = fmt.Sprintf("%s (code %d)", result.Error.Message, result.Error.Code)
		}
		c.logger.Error("WhatsApp API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", msg),
		)
		return "", fmt.Errorf("whatsapp api: %s", msg)
	}

	var id string
	if len(result.Messages) > 0 {
		id = result.Messages[0].ID
	}
	c.logger.Info("WhatsApp message sent", zap.String("message_id", id))
	return id, nil
}

// VerifySignature checks an X-Hub-Signature-256 header ("sha256=<hex>")
// against the raw request body.
func VerifySignature(appSecret string, body []byte, header string) bool {
	if appSecret == "" {
		return false
	}
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// ParseInbound extracts customer text messages from a webhook body. Status
// updates and media messages are skipped.
func ParseInbound(body []byte) ([]InboundText, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode whatsapp webhook: %w", err)
	}

	var out []InboundText
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "" && change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				var text string
				switch {
				case m.Text != nil:
					text = m.Text.Body
				case m.Button != nil:
					text = m.Button.Text
				default:
					continue
				}
				out = append(out, InboundText{MessageID: m.ID, From: m.From, Body: text})
			}
		}
	}
	return out, nil
}

func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
