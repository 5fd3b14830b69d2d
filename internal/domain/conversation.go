package domain

import (
	"context"
	"time"
)

// SystemMessageConnectionAccepted is the first message of every provisioned conversation.
const SystemMessageConnectionAccepted = "Connection accepted! You can now chat freely."

// SystemMessageEventConfirmed is added when the guest confirms the host's event card.
const SystemMessageEventConfirmed = "Invitation confirmed! See you there!"

// EventCardMessageContent is the plain-text content stored alongside an event card.
const EventCardMessageContent = "Event details shared"

// ConversationStatus tracks the event arranged in a conversation. A conversation
// starts accepted, becomes invited when the host shares an event card and
// confirmed when the guest accepts it. A confirmed event ends completed or cancelled.
type ConversationStatus string

const (
	ConversationAccepted  ConversationStatus = "accepted"
	ConversationInvited   ConversationStatus = "invited"
	ConversationConfirmed ConversationStatus = "confirmed"
	ConversationCompleted ConversationStatus = "completed"
	ConversationCancelled ConversationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationAccepted, ConversationInvited, ConversationConfirmed, ConversationCompleted, ConversationCancelled:
		return true
	}
	return false
}

// Conversation is the messaging channel between a matched guest and host.
// GuestID is the original invitation sender, HostID the recipient who accepted.
// swagger:model Conversation
type Conversation struct {
	ID            string             `json:"id"`
	GuestID       string             `json:"guest_id"`
	HostID        string             `json:"host_id"`
	Status        ConversationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	LastMessageAt time.Time          `json:"last_message_at"`
}

// NewConversation returns an accepted Conversation for the given invitation participants.
func NewConversation(guestID, hostID string, createdAt time.Time) *Conversation {
	return &Conversation{
		GuestID:       guestID,
		HostID:        hostID,
		Status:        ConversationAccepted,
		CreatedAt:     createdAt,
		LastMessageAt: createdAt,
	}
}

// NewMatchConversation returns the conversation and its opening system message for
// an accepted invitation. The system message is authored by the accepting recipient.
func NewMatchConversation(inv *Invitation, now time.Time) (*Conversation, *Message) {
	conv := NewConversation(inv.FromUserID, inv.ToUserID, now)
	initial := NewMessage("", inv.ToUserID, SystemMessageConnectionAccepted, MessageSystem, now)
	return conv, initial
}

// HasParticipant reports whether userID is the guest or the host.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.GuestID == userID || c.HostID == userID)
}

// CounterpartOf returns the other participant as seen by userID.
func (c *Conversation) CounterpartOf(userID string) string {
	if c.GuestID == userID {
		return c.HostID
	}
	return c.GuestID
}

// MessageKind distinguishes plain text from structured messages.
type MessageKind string

const (
	MessageText      MessageKind = "text"
	MessageSystem    MessageKind = "system"
	MessageEventCard MessageKind = "event_card"
)

// EventCard carries event details a matched user shares with the counterpart.
// swagger:model EventCard
type EventCard struct {
	Date    HolidayDate `json:"date"`
	Address *string     `json:"address,omitempty"`
	Phone   *string     `json:"phone,omitempty"`
	Note    *string     `json:"note,omitempty"`
}

// Message is a single entry in a conversation.
// swagger:model Message
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	Content        string      `json:"content"`
	Kind           MessageKind `json:"kind"`
	Read           bool        `json:"read"`
	EventCard      *EventCard  `json:"event_card,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewMessage returns an unread Message. ID is typically set by the repository on create.
func NewMessage(conversationID, senderID, content string, kind MessageKind, createdAt time.Time) *Message {
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Kind:           kind,
		CreatedAt:      createdAt,
	}
}

// ConversationRepository defines storage for conversations and their messages.
type ConversationRepository interface {
	// CreateIfAbsent inserts conv unless a conversation already exists for the unordered
	// {GuestID, HostID} pair. When it inserts, initial is stored in the same atomic step
	// with its ConversationID set. It returns the stored conversation and whether it was created.
	CreateIfAbsent(ctx context.Context, conv *Conversation, initial *Message) (*Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*Conversation, error)
	// GetByParticipants returns the conversation between a and b in either role, or ErrNotFound.
	GetByParticipants(ctx context.Context, a, b string) (*Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]*Conversation, error)
	// AddMessage inserts msg and advances the conversation's LastMessageAt.
	AddMessage(ctx context.Context, msg *Message) error
	// UpdateStatus moves the conversation to status `to` only if its current status is
	// one of from, and stores msg (when non-nil) in the same atomic step. It returns
	// ErrNotFound for an unknown id and ErrConversationState when the status does not match.
	UpdateStatus(ctx context.Context, id string, from []ConversationStatus, to ConversationStatus, msg *Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
	GetLastMessage(ctx context.Context, conversationID string) (*Message, error)
	// MarkRead marks messages not sent by readerID as read and returns how many changed.
	MarkRead(ctx context.Context, conversationID, readerID string) (int, error)
	// CountUnread counts unread messages not sent by readerID across the given conversations.
	CountUnread(ctx context.Context, conversationIDs []string, readerID string) (int, error)
}

// ConversationSummary is a conversation as listed for one participant.
// swagger:model ConversationSummary
type ConversationSummary struct {
	Conversation *Conversation   `json:"conversation"`
	OtherUser    *ProfileSummary `json:"other_user"`
	LastMessage  *Message        `json:"last_message"`
	UnreadCount  int             `json:"unread_count"`
	IsHost       bool            `json:"is_host"`
}

// ConversationService provisions conversations for matches and handles messaging.
type ConversationService interface {
	OnAccepted(ctx context.Context, inv *Invitation) (*Conversation, error)
	SendEventCard(ctx context.Context, senderID, receiverID string, card *EventCard) (*Message, error)
	SendMessage(ctx context.Context, senderID, conversationID, content string) (*Message, error)
	// ConfirmEventCard lets the guest accept the host's latest event card.
	ConfirmEventCard(ctx context.Context, guestID, conversationID string) (*Message, error)
	ListConversations(ctx context.Context, userID string) ([]*ConversationSummary, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]*Message, error)
	MarkAsRead(ctx context.Context, userID, conversationID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}
