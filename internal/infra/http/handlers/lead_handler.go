package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type LeadCapturer interface {
	Execute(ctx context.Context, input usecase.LeadInput) (*usecase.LeadOutput, error)
}

type LeadHandler struct {
	Intake      LeadCapturer
	RateLimiter *RateLimiter
	Logger      *zap.Logger
}

func NewLeadHandler(intake LeadCapturer, limiter *RateLimiter, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		Intake:      intake,
		RateLimiter: limiter,
		Logger:      logger,
	}
}

type CaptureLeadResponse struct {
	Success bool                `json:"success"`
	Lead    *usecase.LeadOutput `json:"lead,omitempty"`
}

// CaptureLead handles POST /leads.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if h.RateLimiter != nil && !h.RateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	var input usecase.LeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Intake.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, CaptureLeadResponse{Success: true, Lead: out})
}
