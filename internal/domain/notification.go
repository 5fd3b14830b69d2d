package domain

import (
	"context"
	"time"
)

// NotificationType names an email the core asks the dispatcher to send.
type NotificationType string

const (
	NotificationInvitationReceived NotificationType = "invitation_received"
	NotificationInvitationAccepted NotificationType = "invitation_accepted"
	NotificationInvitationDeclined NotificationType = "invitation_declined"
	NotificationNewMessage         NotificationType = "new_message"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInvitationReceived, NotificationInvitationAccepted, NotificationInvitationDeclined, NotificationNewMessage:
		return true
	}
	return false
}

// Notification is the event payload handed to the NotificationDispatcher.
type Notification struct {
	To         string           `json:"to"`
	Type       NotificationType `json:"type"`
	SenderName string           `json:"sender_name"`
	Date       HolidayDate      `json:"date,omitempty"`
}

// NotificationDispatcher delivers notifications outside the request path.
// Implementations must not block on delivery; errors only report that the
// notification could not be handed off.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n *Notification) error
}

// CounterCache caches small integer counters such as pending invitation counts.
// Every key carries a generation that Invalidate advances, so a count read from
// storage before an invalidation is never stored after it.
type CounterCache interface {
	// GetCount reports the cached counter, or ok == false on a miss. gen is the
	// key's current generation on hits and misses alike.
	GetCount(ctx context.Context, key string) (count int, gen int64, ok bool, err error)
	// SetCount stores count only while the key's generation still equals gen.
	SetCount(ctx context.Context, key string, count int, gen int64, ttl time.Duration) (stored bool, err error)
	Invalidate(ctx context.Context, keys ...string) error
}
