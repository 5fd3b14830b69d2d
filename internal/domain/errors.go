package domain

import "errors"

// Sentinel errors returned by services. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSelfInvitation is returned when a user sends an invitation to themselves.
	ErrSelfInvitation = errors.New("cannot send invitation to yourself")
	// ErrDuplicateInvitation is returned when an invitation already exists for the ordered (from, to) pair.
	ErrDuplicateInvitation = errors.New("invitation already sent")
	ErrInvitationNotFound  = errors.New("invitation not found")
	// ErrNotAuthorized is returned when the caller is not the party allowed to act on a resource.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidStatusTransition is returned when an invitation is no longer pending.
	ErrInvalidStatusTransition = errors.New("invalid invitation status transition")
	// ErrNotMatched is returned when an operation requires an accepted invitation between two users.
	ErrNotMatched = errors.New("users are not matched")
	// ErrConversationState is returned when a conversation's event status does not allow the action.
	ErrConversationState = errors.New("conversation status does not allow this action")
)
