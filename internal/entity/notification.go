package entity

import "time"

type NotificationType string

const (
	NotificationHotLead NotificationType = "HOT_LEAD"
	NotificationWelcome NotificationType = "WELCOME"
)

func (t NotificationType) Valid() bool {
	return t == NotificationHotLead || t == NotificationWelcome
}

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Data      map[string]any   `json:"data"`
	CreatedAt time.Time        `json:"created_at"`
}

// StringField reads a string value out of the payload, tolerating absent keys.
func (n *Notification) StringField(key string) string {
	if n.Data == nil {
		return ""
	}
	if v, ok := n.Data[key].(string); ok {
		return v
	}
	return ""
}
