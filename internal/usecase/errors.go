package usecase

import "errors"

// DomainError is a business-rule or validation rejection the caller can act on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps storage or upstream failures.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeInvalidChannel   = "INVALID_CHANNEL"
	CodeInvalidState     = "INVALID_TRANSITION"
	CodeMissingRecipient = "MISSING_RECIPIENT"
	CodePlanNotFound     = "PLAN_NOT_FOUND"
	CodeInvalidType      = "INVALID_NOTIFICATION_TYPE"
	CodeVersionConflict  = "VERSION_CONFLICT"
	CodeStorage          = "STORAGE_ERROR"
	CodeDispatchFailed   = "DISPATCH_FAILED"
	CodeAIUnavailable    = "AI_UNAVAILABLE"
	CodePaymentFailed    = "PAYMENT_PROVIDER_ERROR"
	CodeQueueUnavailable = "QUEUE_UNAVAILABLE"
)
