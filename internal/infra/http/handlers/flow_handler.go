package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/chatflow"
	"github.com/xavierca1/leadfunnel/internal/entity"
)

type FlowHandler struct {
	Flow     *chatflow.Flow
	Sessions *chatflow.SessionStore
	Logger   *zap.Logger
}

func NewFlowHandler(flow *chatflow.Flow, sessions *chatflow.SessionStore, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{Flow: flow, Sessions: sessions, Logger: logger}
}

type startFlowRequest struct {
	Language string `json:"language"`
	Context  string `json:"context"`
	Channel  string `json:"channel"`
}

type selectRequest struct {
	OptionID string `json:"option_id"`
}

type textRequest struct {
	Text string `json:"text"`
}

type contactRequest struct {
	Channel string `json:"channel"`
	chatflow.Visitor
}

type ContactResponse struct {
	URL  string        `json:"url"`
	View chatflow.View `json:"view"`
}

// Start handles POST /flow/sessions. The body language wins over Accept-Language.
func (h *FlowHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startFlowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lang := entity.ParseLanguage(req.Language)
	if lang == "" {
		lang = entity.ParseLanguage(r.Header.Get("Accept-Language"))
	}

	s := h.Flow.Start(lang, chatflow.ParsePageContext(req.Context), req.Channel)
	h.Sessions.Put(s)
	writeJSON(w, http.StatusCreated, h.Flow.View(s))
}

func (h *FlowHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Flow.View(s))
}

func (h *FlowHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.Sessions.Update(chi.URLParam(r, "id"), func(s *chatflow.Session) error {
		return h.Flow.Select(s, req.OptionID)
	})
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Flow.View(s))
}

func (h *FlowHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.Sessions.Update(chi.URLParam(r, "id"), func(s *chatflow.Session) error {
		return h.Flow.SubmitText(s, req.Text)
	})
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Flow.View(s))
}

// Contact activates a contact channel. The lead submission it triggers runs
// in the background and never affects this response.
func (h *FlowHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var link string
	s, err := h.Sessions.Update(chi.URLParam(r, "id"), func(s *chatflow.Session) error {
		var err error
		link, err = h.Flow.Activate(s, chatflow.ContactChannel(req.Channel), req.Visitor)
		return err
	})
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ContactResponse{URL: link, View: h.Flow.View(s)})
}

func (h *FlowHandler) writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatflow.ErrSessionExpired):
		writeErrorResponse(w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error())
	case errors.Is(err, chatflow.ErrFlowComplete), errors.Is(err, chatflow.ErrNotAtContact):
		writeErrorResponse(w, http.StatusConflict, "INVALID_STEP", err.Error())
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	}
}
