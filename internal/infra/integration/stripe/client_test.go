package stripe

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

func TestClient_CreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_growth", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "ar", r.PostForm.Get("locale"))
		assert.Equal(t, "growth", r.PostForm.Get("metadata[plan_id]"))
		assert.Equal(t, "lead-1", r.PostForm.Get("client_reference_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", zap.NewNop())
	session, err := c.CreateCheckoutSession(context.Background(), usecase.CheckoutSessionRequest{
		PriceID:     "price_growth",
		Recurring:   true,
		Locale:      "ar",
		ClientRefID: "lead-1",
		SuccessURL:  "https://x/success",
		CancelURL:   "https://x/cancel",
		Metadata:    map[string]string{"plan_id": "growth"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Contains(t, session.URL, "checkout.stripe.com")
}

func TestClient_CreateCheckoutSessionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", zap.NewNop())
	_, err := c.CreateCheckoutSession(context.Background(), usecase.CheckoutSessionRequest{PriceID: "nope"})
	assert.ErrorContains(t, err, "No such price")

	_, err = NewClient(srv.URL, "", zap.NewNop()).CreateCheckoutSession(context.Background(), usecase.CheckoutSessionRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Unix(1_700_000_000, 0)
	ts := now.Add(-time.Minute).Unix()
	header := fmt.Sprintf("t=%d,v1=%s,v0=ignored", ts, hex.EncodeToString(Sign(payload, "whsec", ts)))

	assert.NoError(t, VerifySignature(payload, header, "whsec", now))
	assert.ErrorIs(t, VerifySignature(payload, header, "other", now), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature([]byte(`{"id":"evt_2"}`), header, "whsec", now), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(payload, header, "whsec", now.Add(10*time.Minute)), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(payload, "", "whsec", now), ErrInvalidSignature)
}

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	evt, err := ParseEvent([]byte(`{
	  "id": "evt_1",
	  "type": "checkout.session.completed",
	  "data": {"object": {
	    "id": "cs_1",
	    "client_reference_id": "lead-9",
	    "metadata": {"plan_id": "starter"},
	    "customer_details": {"email": "owner@deli.example", "name": "Amr", "phone": "+966551234567"}
	  }}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, evt.Type)

	s, err := evt.CheckoutSession()
	require.NoError(t, err)
	assert.Equal(t, usecase.CheckoutCompleted{
		SessionID: "cs_1",
		Email:     "owner@deli.example",
		Name:      "Amr",
		Phone:     "+966551234567",
		PlanID:    "starter",
		LeadID:    "lead-9",
	}, s.Completed())
}
