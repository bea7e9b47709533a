package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/chatflow"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

func newFlowRouter(t *testing.T, intake LeadCapturer) (chi.Router, *usecase.BackgroundTasks) {
	t.Helper()
	tasks := usecase.NewBackgroundTasks(time.Second, nil, zap.NewNop())
	flow := chatflow.NewFlow(chatflow.ContactTargets{WhatsApp: "+966550000000", Email: "hello@leadfunnel.example"},
		intake, tasks, 500*time.Millisecond, zap.NewNop())
	h := NewFlowHandler(flow, chatflow.NewSessionStore(time.Hour), zap.NewNop())

	r := chi.NewRouter()
	r.Post("/flow/sessions", h.Start)
	r.Get("/flow/sessions/{id}", h.Get)
	r.Post("/flow/sessions/{id}/select", h.Select)
	r.Post("/flow/sessions/{id}/text", h.Text)
	r.Post("/flow/sessions/{id}/contact", h.Contact)
	return r, tasks
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestFlowHandler_FreeTextToContact(t *testing.T) {
	intake := new(MockLeadCapturer)
	intake.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.LeadInput) bool {
		return in.Source == "chat" && in.Notes == "need a booking page" && in.Language == "ar"
	})).Return(&usecase.LeadOutput{ID: "lead-1"}, nil).Once()

	r, tasks := newFlowRouter(t, intake)

	req := jsonRequest(t, http.MethodPost, "/flow/sessions", map[string]string{})
	req.Header.Set("Accept-Language", "ar-SA,ar;q=0.9")
	rec := serve(r, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeBody[chatflow.View](t, rec)
	assert.Equal(t, chatflow.StepBusinessType, view.Step)
	assert.Equal(t, int64(500), view.TypingDelay)

	rec = serve(r, jsonRequest(t, http.MethodPost, "/flow/sessions/"+view.SessionID+"/text", map[string]string{"text": "need a booking page"}))
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeBody[chatflow.View](t, rec)
	assert.Equal(t, chatflow.StepContact, view.Step)
	assert.Len(t, view.Actions, 2)

	rec = serve(r, jsonRequest(t, http.MethodPost, "/flow/sessions/"+view.SessionID+"/contact", map[string]string{"channel": "whatsapp"}))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ContactResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.URL, "https://wa.me/966550000000"))

	require.NoError(t, tasks.Wait(context.Background()))
	intake.AssertExpectations(t)
}

func TestFlowHandler_Errors(t *testing.T) {
	r, _ := newFlowRouter(t, new(MockLeadCapturer))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/flow/sessions/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(r, jsonRequest(t, http.MethodPost, "/flow/sessions", map[string]string{"language": "en", "context": "demo"}))
	view := decodeBody[chatflow.View](t, rec)
	assert.Equal(t, chatflow.StepService, view.Step)

	rec = serve(r, jsonRequest(t, http.MethodPost, "/flow/sessions/"+view.SessionID+"/select", map[string]string{"option_id": "restaurant"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, jsonRequest(t, http.MethodPost, "/flow/sessions/"+view.SessionID+"/contact", map[string]string{"channel": "email"}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(r, jsonRequest(t, http.MethodPost, "/flow/sessions/"+view.SessionID+"/select", map[string]string{"option_id": "website"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/flow/sessions/"+view.SessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chatflow.StepContact, decodeBody[chatflow.View](t, rec).Step)
}
