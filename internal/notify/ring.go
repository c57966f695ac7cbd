// Package notify collects transient user-facing notifications.
package notify

import (
	"log/slog"
	"sync"

	"github.com/beccaroth/muse/internal/undo"
)

// DefaultCapacity is the number of notifications retained.
const DefaultCapacity = 50

// Ring is a fixed-capacity notification buffer. The oldest notification is
// dropped once capacity is reached. Safe for concurrent use.
type Ring struct {
	mu       sync.Mutex
	capacity int
	items    []undo.Notification
}

// NewRing creates a Ring with the given capacity (DefaultCapacity if <= 0).
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity}
}

// Notify records a notification and logs it.
func (r *Ring) Notify(n undo.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	if len(r.items) > r.capacity {
		r.items = r.items[len(r.items)-r.capacity:]
	}
	r.mu.Unlock()

	if n.Level == undo.LevelError {
		slog.Error("notification", "message", n.Message)
	} else {
		slog.Info("notification", "message", n.Message, "undo_token", n.UndoToken)
	}
}

// Recent returns retained notifications, newest first.
func (r *Ring) Recent() []undo.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]undo.Notification, len(r.items))
	for i, n := range r.items {
		out[len(r.items)-1-i] = n
	}
	return out
}
