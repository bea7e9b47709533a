package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type CheckoutCreator interface {
	Execute(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutOutput, error)
}

type CheckoutHandler struct {
	Checkout CheckoutCreator
	Logger   *zap.Logger
}

func NewCheckoutHandler(uc CheckoutCreator, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Checkout: uc, Logger: logger}
}

func (h *CheckoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CheckoutInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.Checkout.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}
