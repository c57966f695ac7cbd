package undo

import "time"

// Level classifies a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a transient user-facing message. Notifications carrying an
// UndoToken offer the undo affordance for the grace window.
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	UndoToken string    `json:"undo_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier receives transient notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
