package entity

import "time"

var transitions = map[Status][]Status{
	StatusNew:       {StatusScored, StatusContacted},
	StatusScored:    {StatusContacted},
	StatusContacted: {StatusReplied, StatusDemo, StatusArchived},
	StatusReplied:   {StatusDemo, StatusArchived},
	StatusDemo:      {StatusConverted},
}

// CanTransition reports whether the lifecycle allows moving from -> to.
// Re-applying the current status is allowed for non-terminal leads so notes can be rewritten.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyStatus mutates the lead in place with the side effects of entering status.
// A nil notes pointer keeps the existing notes; a non-nil one overwrites them.
func ApplyStatus(l *Lead, status Status, notes *string, now time.Time) error {
	if !CanTransition(l.Status, status) {
		return ErrInvalidTransition
	}

	switch status {
	case StatusContacted:
		if l.Status != StatusContacted {
			stamp := now
			l.LastContactedAt = &stamp
			l.OutreachAttempts++
		}
	case StatusReplied, StatusDemo:
		if l.LastRepliedAt == nil {
			stamp := now
			l.LastRepliedAt = &stamp
		}
	}

	if notes != nil {
		l.Notes = *notes
	}
	l.Status = status
	l.UpdatedAt = now
	return nil
}
