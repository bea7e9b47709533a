package entity

import "strings"

// Weights are additive; the total is clamped to [0, 100].
const (
	weightNoWebsite       = 20
	weightNoOrdering      = 30
	weightNoWhatsApp      = 15
	weightSizeLarge       = 35
	weightSizeMedium      = 20
	weightSizeSmall       = 10
	weightWhatsAppContact = 10
	weightSocialHandle    = 5

	HighPriorityThreshold   = 65
	MediumPriorityThreshold = 35
)

// Score is a pure function of the qualification snapshot and contact signals.
func Score(q Qualification, c Contact, s Socials) (int, Priority) {
	score := 0

	if !q.HasWebsite {
		score += weightNoWebsite
	}
	if !q.HasOrdering {
		score += weightNoOrdering
	}
	if !q.HasWhatsApp {
		score += weightNoWhatsApp
	}

	switch q.EstimatedSize {
	case SizeLarge:
		score += weightSizeLarge
	case SizeMedium:
		score += weightSizeMedium
	case SizeSmall:
		score += weightSizeSmall
	}

	if strings.TrimSpace(c.WhatsApp) != "" {
		score += weightWhatsAppContact
	}
	if s.HasAny() {
		score += weightSocialHandle
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return score, PriorityFor(score)
}

func PriorityFor(score int) Priority {
	switch {
	case score >= HighPriorityThreshold:
		return PriorityHigh
	case score >= MediumPriorityThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
