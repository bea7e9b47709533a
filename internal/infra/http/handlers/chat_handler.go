package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type ChatResponder interface {
	Execute(ctx context.Context, input usecase.ChatInput) (*usecase.ChatOutput, error)
}

type ChatHandler struct {
	Assistant ChatResponder
	Logger    *zap.Logger
}

func NewChatHandler(assistant ChatResponder, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Assistant: assistant, Logger: logger}
}

// Handle serves POST /chat.
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChatInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Assistant.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
