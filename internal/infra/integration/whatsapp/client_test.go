package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_SendText(t *testing.T) {
	var got sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/123/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", "123", zap.NewNop())
	id, err := c.SendText(context.Background(), "+966 55 123 4567", "hello")
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", id)
	assert.Equal(t, "966551234567", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestClient_SendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", "123", zap.NewNop())
	_, err := c.SendText(context.Background(), "966551234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid parameter")
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient("http://unused", "", "", zap.NewNop())
	assert.False(t, c.Configured())
	_, err := c.SendText(context.Background(), "1", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	header := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature("secret", body, header))
	assert.False(t, VerifySignature("other", body, header))
	assert.False(t, VerifySignature("secret", body, "sha1=abc"))
	assert.False(t, VerifySignature("", body, header))
}

func TestParseInbound(t *testing.T) {
	body := []byte(`{
	  "object": "whatsapp_business_account",
	  "entry": [{"id": "1", "changes": [{"field": "messages", "value": {
	    "messages": [
	      {"from": "966551234567", "id": "m1", "type": "text", "text": {"body": "Yes please"}},
	      {"from": "966551234567", "id": "m2", "type": "button", "button": {"text": "STOP"}},
	      {"from": "966551234567", "id": "m3", "type": "image"}
	    ]
	  }}]}]
	}`)

	msgs, err := ParseInbound(body)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, InboundText{MessageID: "m1", From: "966551234567", Body: "Yes please"}, msgs[0])
	assert.Equal(t, "STOP", msgs[1].Body)

	_, err = ParseInbound([]byte("{"))
	assert.Error(t, err)
}
