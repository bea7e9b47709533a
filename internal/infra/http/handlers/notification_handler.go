package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type Notifier interface {
	Execute(ctx context.Context, input usecase.NotificationInput) (*usecase.NotificationOutput, error)
}

type NotificationHandler struct {
	Notify Notifier
	Logger *zap.Logger
}

func NewNotificationHandler(uc Notifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Notify: uc, Logger: logger}
}

// Handle serves POST /notifications. The body is only ever a success flag.
func (h *NotificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.NotificationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Notify.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeUseCaseError(w, h.Logger, err)
			return
		}
		h.Logger.Error("notification failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, usecase.NotificationOutput{Success: false})
		return
	}
	writeJSON(w, http.StatusAccepted, out)
}
