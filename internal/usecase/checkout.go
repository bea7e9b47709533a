package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

type CheckoutUseCase struct {
	Plans      entity.PlanRepository
	Gateway    CheckoutGateway
	SuccessURL string
	CancelURL  string
	Recorder   Recorder
	Logger     *zap.Logger
}

func NewCheckoutUseCase(plans entity.PlanRepository, gateway CheckoutGateway, successURL, cancelURL string, recorder Recorder, logger *zap.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		Plans:      plans,
		Gateway:    gateway,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Recorder:   recorderOrNop(recorder),
		Logger:     logger,
	}
}

// Execute opens a hosted checkout for the plan and returns its redirect URL.
func (uc *CheckoutUseCase) Execute(ctx context.Context, input CheckoutInput) (*CheckoutOutput, error) {
	if errs := ValidateCheckoutInput(input); len(errs) > 0 {
		return nil, validationDomainError(errs)
	}

	plan, err := uc.Plans.FindByID(ctx, input.PlanID)
	if errors.Is(err, entity.ErrPlanNotFound) {
		return nil, &DomainError{Code: CodePlanNotFound, Message: "unknown plan: " + input.PlanID}
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to load plan", Err: err}
	}

	locale := string(entity.ParseLanguage(input.Locale))
	if locale == "" {
		locale = "auto"
	}

	metadata := map[string]string{"plan_id": plan.ID}
	if input.LeadID != "" {
		metadata["lead_id"] = input.LeadID
	}

	session, err := uc.Gateway.CreateCheckoutSession(ctx, CheckoutSessionRequest{
		PriceID:       plan.StripePriceID,
		Recurring:     plan.Recurring(),
		Locale:        locale,
		CustomerEmail: input.Email,
		ClientRefID:   input.LeadID,
		SuccessURL:    uc.SuccessURL,
		CancelURL:     uc.CancelURL,
		Metadata:      metadata,
	})
	if err != nil {
		uc.Recorder.IntegrationError("stripe")
		uc.Logger.Error("checkout session failed", zap.String("plan_id", plan.ID), zap.Error(err))
		return nil, &TechnicalError{Code: CodePaymentFailed, Message: "failed to create checkout session", Err: err}
	}

	uc.Logger.Info("checkout session created",
		zap.String("plan_id", plan.ID), zap.String("session_id", session.ID))
	return &CheckoutOutput{URL: session.URL, SessionID: session.ID}, nil
}
