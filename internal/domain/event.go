package domain

import (
	"context"
	"time"
)

// EventStatus is the state of an arranged event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// EventStatusOf maps a conversation status to the status of its event. ok is false
// while no event has been confirmed.
func EventStatusOf(s ConversationStatus) (status EventStatus, ok bool) {
	switch s {
	case ConversationConfirmed:
		return EventUpcoming, true
	case ConversationCompleted:
		return EventCompleted, true
	case ConversationCancelled:
		return EventCancelled, true
	}
	return "", false
}

// Event is a confirmed get-together. It is read from a conversation whose guest
// confirmed the host's event card, so ID is the conversation id.
// swagger:model Event
type Event struct {
	ID          string          `json:"id"`
	HostID      string          `json:"host_id"`
	GuestID     string          `json:"guest_id"`
	Date        HolidayDate     `json:"date"`
	Address     *string         `json:"address,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Note        *string         `json:"note,omitempty"`
	Status      EventStatus     `json:"status"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
	OtherUser   *ProfileSummary `json:"other_user"`
}

// MyEvents groups a user's events by role. Cancelled events are left out.
// swagger:model MyEvents
type MyEvents struct {
	Hosting   []*Event `json:"hosting"`
	Attending []*Event `json:"attending"`
}

// EventService reads and closes events arranged in conversations.
type EventService interface {
	GetMyEvents(ctx context.Context, userID string) (*MyEvents, error)
	GetUpcomingCount(ctx context.Context, userID string) (int, error)
	// CancelEvent and CompleteEvent are host-only and require an upcoming event.
	CancelEvent(ctx context.Context, hostID, eventID string) error
	CompleteEvent(ctx context.Context, hostID, eventID string) error
}
