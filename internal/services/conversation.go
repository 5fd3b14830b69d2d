package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"holidaymatch/internal/domain"
)

type conversationService struct {
	conversations domain.ConversationRepository
	invitations   domain.InvitationRepository
	profiles      domain.ProfileRepository
	notifier      *Notifier
}

// NewConversationService creates a ConversationService. The invitation repository is
// used to confirm that two users are matched before they can exchange event cards.
func NewConversationService(
	conversations domain.ConversationRepository,
	invitations domain.InvitationRepository,
	profiles domain.ProfileRepository,
	notifier *Notifier,
) domain.ConversationService {
	return &conversationService{
		conversations: conversations,
		invitations:   invitations,
		profiles:      profiles,
		notifier:      notifier,
	}
}

// OnAccepted provisions the conversation for an accepted invitation. Calling it again
// for the same pair returns the existing conversation without a second system message.
func (s *conversationService) OnAccepted(ctx context.Context, inv *domain.Invitation) (*domain.Conversation, error) {
	if inv == nil || inv.Status != domain.InvitationAccepted {
		return nil, domain.ErrInvalidInput
	}
	conv, initial := domain.NewMatchConversation(inv, time.Now().UTC())
	stored, _, err := s.conversations.CreateIfAbsent(ctx, conv, initial)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return stored, nil
}

func (s *conversationService) SendEventCard(ctx context.Context, senderID, receiverID string, card *domain.EventCard) (*domain.Message, error) {
	if senderID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if receiverID == "" || senderID == receiverID || card == nil || !card.Date.Valid() {
		return nil, domain.ErrInvalidInput
	}
	inv, err := acceptedBetween(ctx, s.invitations, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotMatched
	}

	conv, err := s.conversations.GetByParticipants(ctx, senderID, receiverID)
	if errors.Is(err, domain.ErrNotFound) {
		conv, err = s.OnAccepted(ctx, inv)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	c := *card
	msg := domain.NewMessage(conv.ID, senderID, domain.EventCardMessageContent, domain.MessageEventCard, time.Now().UTC())
	msg.EventCard = &c
	if err := s.addEventCard(ctx, conv, msg); err != nil {
		return nil, fmt.Errorf("failed to add event card: %w", err)
	}
	s.notifier.Notify(ctx, domain.NotificationNewMessage, receiverID, senderID, c.Date)
	return msg, nil
}

// reinvitable lists the statuses a host card moves to invited. A confirmed event
// keeps its status until the host closes it.
var reinvitable = []domain.ConversationStatus{
	domain.ConversationAccepted,
	domain.ConversationInvited,
	domain.ConversationCompleted,
	domain.ConversationCancelled,
}

// addEventCard stores msg. A card from the host also offers the event to the guest.
func (s *conversationService) addEventCard(ctx context.Context, conv *domain.Conversation, msg *domain.Message) error {
	if msg.SenderID != conv.HostID {
		return s.conversations.AddMessage(ctx, msg)
	}
	err := s.conversations.UpdateStatus(ctx, conv.ID, reinvitable, domain.ConversationInvited, msg)
	if errors.Is(err, domain.ErrConversationState) {
		return s.conversations.AddMessage(ctx, msg)
	}
	return err
}

// ConfirmEventCard moves an invited conversation to confirmed and adds the
// confirmation system message, authored by the guest.
func (s *conversationService) ConfirmEventCard(ctx context.Context, guestID, conversationID string) (*domain.Message, error) {
	if guestID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	conv, err := s.participantConversation(ctx, guestID, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.GuestID != guestID {
		return nil, domain.ErrNotAuthorized
	}
	msg := domain.NewMessage(conv.ID, guestID, domain.SystemMessageEventConfirmed, domain.MessageSystem, time.Now().UTC())
	from := []domain.ConversationStatus{domain.ConversationInvited}
	if err := s.conversations.UpdateStatus(ctx, conv.ID, from, domain.ConversationConfirmed, msg); err != nil {
		if errors.Is(err, domain.ErrConversationState) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to confirm event: %w", err)
	}
	return msg, nil
}

func (s *conversationService) SendMessage(ctx context.Context, senderID, conversationID, content string) (*domain.Message, error) {
	if senderID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrInvalidInput
	}
	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	msg := domain.NewMessage(conv.ID, senderID, content, domain.MessageText, time.Now().UTC())
	if err := s.conversations.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}
	s.notifier.Notify(ctx, domain.NotificationNewMessage, conv.CounterpartOf(senderID), senderID, "")
	return msg, nil
}

func (s *conversationService) ListConversations(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	out := make([]*domain.ConversationSummary, 0)
	if userID == "" {
		return out, nil
	}
	convs, err := s.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	for _, conv := range convs {
		summary := &domain.ConversationSummary{
			Conversation: conv,
			IsHost:       conv.HostID == userID,
		}
		p, err := s.profiles.GetByUserID(ctx, conv.CounterpartOf(userID))
		switch {
		case err == nil:
			summary.OtherUser = p.PublicSummary()
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		last, err := s.conversations.GetLastMessage(ctx, conv.ID)
		switch {
		case err == nil:
			summary.LastMessage = last
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to get last message: %w", err)
		}
		unread, err := s.conversations.CountUnread(ctx, []string{conv.ID}, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unread messages: %w", err)
		}
		summary.UnreadCount = unread
		out = append(out, summary)
	}
	slices.SortStableFunc(out, func(a, b *domain.ConversationSummary) int {
		return cmp.Compare(b.Conversation.LastMessageAt.UnixNano(), a.Conversation.LastMessageAt.UnixNano())
	})
	return out, nil
}

func (s *conversationService) ListMessages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (s *conversationService) MarkAsRead(ctx context.Context, userID, conversationID string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if _, err := s.conversations.MarkRead(ctx, conv.ID, userID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (s *conversationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	convs, err := s.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list conversations: %w", err)
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	n, err := s.conversations.CountUnread(ctx, ids, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

func (s *conversationService) participantConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	if conversationID == "" {
		return nil, domain.ErrNotFound
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return nil, domain.ErrNotAuthorized
	}
	return conv, nil
}
