package domain

import (
	"context"
	"time"
)

// HolidayDate is one of the fixed dates an invitation can be made for.
type HolidayDate string

const (
	ChristmasEve HolidayDate = "24 Dec"
	ChristmasDay HolidayDate = "25 Dec"
	BoxingDay    HolidayDate = "26 Dec"
	NewYearsEve  HolidayDate = "31 Dec"
)

// HolidayDates lists every valid HolidayDate in calendar order.
var HolidayDates = []HolidayDate{ChristmasEve, ChristmasDay, BoxingDay, NewYearsEve}

// Valid reports whether d is one of HolidayDates.
func (d HolidayDate) Valid() bool {
	switch d {
	case ChristmasEve, ChristmasDay, BoxingDay, NewYearsEve:
		return true
	}
	return false
}

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Valid reports whether s is a known status.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined:
		return true
	}
	return false
}

// Invitation is a proposal from one user to another to spend a holiday date together.
// swagger:model Invitation
type Invitation struct {
	ID          string           `json:"id"`
	FromUserID  string           `json:"from_user_id"`
	ToUserID    string           `json:"to_user_id"`
	Status      InvitationStatus `json:"status"`
	Date        HolidayDate      `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// NewInvitation returns a pending Invitation. ID is typically set by the repository on create.
func NewInvitation(fromUserID, toUserID string, date HolidayDate, createdAt time.Time) *Invitation {
	return &Invitation{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     InvitationPending,
		Date:       date,
		CreatedAt:  createdAt,
	}
}

// CounterpartOf returns the other participant of the invitation as seen by userID.
func (i *Invitation) CounterpartOf(userID string) string {
	if i.FromUserID == userID {
		return i.ToUserID
	}
	return i.FromUserID
}

// MatchedAt returns the time the invitation was accepted, falling back to its creation time.
func (i *Invitation) MatchedAt() time.Time {
	if i.RespondedAt != nil {
		return *i.RespondedAt
	}
	return i.CreatedAt
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	// Create inserts inv and sets its ID. Returns ErrDuplicateInvitation if a row already exists
	// for the ordered (FromUserID, ToUserID) pair; the check and insert are a single atomic step.
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// GetByPair returns the invitation sent from fromUserID to toUserID, or ErrNotFound.
	GetByPair(ctx context.Context, fromUserID, toUserID string) (*Invitation, error)
	ListByFromUserID(ctx context.Context, userID string) ([]*Invitation, error)
	ListByToUserID(ctx context.Context, userID string) ([]*Invitation, error)
	// ListAccepted returns accepted invitations where userID is either party.
	ListAccepted(ctx context.Context, userID string) ([]*Invitation, error)
	CountPendingByToUserID(ctx context.Context, userID string) (int, error)
	// Resolve moves a pending invitation to status. Returns ErrInvalidStatusTransition if it is no longer pending.
	Resolve(ctx context.Context, id string, status InvitationStatus, respondedAt time.Time) error
	// DeletePending removes a pending invitation. Returns ErrInvalidStatusTransition if it is no longer pending.
	DeletePending(ctx context.Context, id string) error
}

// InvitationAcceptor accepts a pending invitation and provisions the pair's
// conversation as one atomic step. Either both are stored or neither is.
// Errors follow InvitationRepository.Resolve.
type InvitationAcceptor interface {
	Accept(ctx context.Context, invitationID string, respondedAt time.Time, conv *Conversation, initial *Message) (*Conversation, error)
}

// InvitationWithUser bundles an invitation with the counterpart's public summary.
type InvitationWithUser struct {
	*Invitation
	OtherUser *ProfileSummary `json:"other_user"`
}

// MyInvitations groups the invitations a user has sent and received.
// swagger:model MyInvitations
type MyInvitations struct {
	Sent     []*InvitationWithUser `json:"sent"`
	Received []*InvitationWithUser `json:"received"`
}

// InvitationService defines the invitation lifecycle operations.
type InvitationService interface {
	Send(ctx context.Context, fromUserID, toUserID string, date HolidayDate) (*Invitation, error)
	Respond(ctx context.Context, callerID, invitationID string, accept bool) error
	Cancel(ctx context.Context, callerID, invitationID string) error
	GetMyInvitations(ctx context.Context, userID string) (*MyInvitations, error)
	GetPendingCount(ctx context.Context, userID string) (int, error)
}
