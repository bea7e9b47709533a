package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigits = regexp.MustCompile(`\D`)

func ValidateLeadInput(input LeadInput) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	email := strings.TrimSpace(input.Email)

	if name == "" && phone == "" && email == "" {
		errors = append(errors, ValidationError{"contact", "one of name, phone or email is required"})
	}

	if len(name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	// Phones arrive masked or partially typed from the widget; only bound the length.
	if len(phone) > 32 {
		errors = append(errors, ValidationError{"phone", "must not exceed 32 characters"})
	}
	if len(input.WhatsApp) > 32 {
		errors = append(errors, ValidationError{"whatsapp", "must not exceed 32 characters"})
	}

	switch input.EstimatedSize {
	case "", "small", "medium", "large":
	default:
		errors = append(errors, ValidationError{"estimated_size", "must be small, medium or large"})
	}

	if len(input.Notes) > 2000 {
		errors = append(errors, ValidationError{"notes", "must not exceed 2000 characters"})
	}

	return errors
}

func ValidateNotificationInput(input NotificationInput) []ValidationError {
	var errors []ValidationError

	if input.Type == "" {
		errors = append(errors, ValidationError{"type", "is required"})
	} else if !input.Type.Valid() {
		errors = append(errors, ValidationError{"type", "must be HOT_LEAD or WELCOME"})
	}

	return errors
}

func ValidateCheckoutInput(input CheckoutInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.PlanID) == "" {
		errors = append(errors, ValidationError{"plan_id", "is required"})
	}
	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	return errors
}

// NormalizePhone strips everything but digits so phones from different
// channels compare equal.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

func validationDomainError(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}
