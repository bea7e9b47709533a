// Package stripe creates hosted Checkout Sessions and verifies webhook
// signatures against the Stripe REST API.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"

	// SignatureTolerance bounds the age of a signed webhook timestamp.
	SignatureTolerance = 5 * time.Minute
)

var (
	ErrNotConfigured    = errors.New("stripe: secret key not configured")
	ErrInvalidSignature = errors.New("stripe: invalid webhook signature")
)

type Client struct {
	httpClient *resty.Client
	configured bool
	logger     *zap.Logger
}

func NewClient(baseURL, secretKey string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(20*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		configured: secretKey != "",
		logger:     logger,
	}
}

// CreateCheckoutSession opens a hosted checkout for one price.
func (c *Client) CreateCheckoutSession(ctx context.Context, req usecase.CheckoutSessionRequest) (*usecase.CheckoutSession, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	mode := "payment"
	if req.Recurring {
		mode = "subscription"
	}

	form := map[string]string{
		"mode":                    mode,
		"line_items[0][price]":    req.PriceID,
		"line_items[0][quantity]": "1",
		"success_url":             req.SuccessURL,
		"cancel_url":              req.CancelURL,
		"locale":                  req.Locale,
	}
	if req.CustomerEmail != "" {
		form["customer_email"] = req.CustomerEmail
	}
	if req.ClientRefID != "" {
		form["client_reference_id"] = req.ClientRefID
	}
	for k, v := range req.Metadata {
		form["metadata["+k+"]"] = v
	}

	var result sessionResponse
	var apiErr errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("stripe request: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if apiErr.Error != nil {
			msg = apiErr.Error.Message
		}
		c.logger.Error("Stripe API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", msg),
		)
		return nil, fmt.Errorf("stripe api: %s", msg)
	}

	return &usecase.CheckoutSession{ID: result.ID, URL: result.URL}, nil
}

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") for
// payload. Any v1 entry may match.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}

	var ts int64
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = n
		case "v1":
			if b, err := hex.DecodeString(v); err == nil {
				sigs = append(sigs, b)
			}
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := Sign(payload, secret, ts)
	for _, s := range sigs {
		if hmac.Equal(s, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign computes the v1 signature for payload at timestamp ts.
func Sign(payload []byte, secret string, ts int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

func ParseEvent(payload []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("decode stripe event: %w", err)
	}
	return &evt, nil
}

// CheckoutSession decodes the event object as a checkout session.
func (e *Event) CheckoutSession() (*Session, error) {
	var s Session
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &s, nil
}

func (s *Session) Completed() usecase.CheckoutCompleted {
	out := usecase.CheckoutCompleted{
		SessionID: s.ID,
		Email:     s.CustomerEmail,
		PlanID:    s.Metadata["plan_id"],
		LeadID:    s.Metadata["lead_id"],
	}
	if out.LeadID == "" {
		out.LeadID = s.ClientReferenceID
	}
	if d := s.CustomerDetails; d != nil {
		if d.Email != "" {
			out.Email = d.Email
		}
		out.Name = d.Name
		out.Phone = d.Phone
	}
	return out
}
