package memory

import (
	"context"
	"time"

	"holidaymatch/internal/domain"
)

// InvitationAcceptor accepts invitations and provisions conversations across the
// two in-memory repositories. The invitation lock is held while the conversation
// is created, so no reader sees an accepted invitation without its conversation.
type InvitationAcceptor struct {
	invitations   *InvitationRepository
	conversations *ConversationRepository
}

// NewInvitationAcceptor returns an acceptor over invitations and conversations.
func NewInvitationAcceptor(invitations *InvitationRepository, conversations *ConversationRepository) *InvitationAcceptor {
	return &InvitationAcceptor{invitations: invitations, conversations: conversations}
}

var _ domain.InvitationAcceptor = (*InvitationAcceptor)(nil)

func (a *InvitationAcceptor) Accept(ctx context.Context, invitationID string, respondedAt time.Time, conv *domain.Conversation, initial *domain.Message) (*domain.Conversation, error) {
	a.invitations.mu.Lock()
	defer a.invitations.mu.Unlock()
	inv, ok := a.invitations.byID[invitationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrInvalidStatusTransition
	}
	stored, _, err := a.conversations.CreateIfAbsent(ctx, conv, initial)
	if err != nil {
		return nil, err
	}
	inv.Status = domain.InvitationAccepted
	at := respondedAt
	inv.RespondedAt = &at
	return stored, nil
}
