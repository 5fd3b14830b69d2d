package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"holidaymatch/internal/domain"
)

type eventService struct {
	conversations domain.ConversationRepository
	profiles      domain.ProfileRepository
}

// NewEventService returns an EventService that reads events from confirmed conversations.
func NewEventService(conversations domain.ConversationRepository, profiles domain.ProfileRepository) domain.EventService {
	return &eventService{
		conversations: conversations,
		profiles:      profiles,
	}
}

func (s *eventService) GetMyEvents(ctx context.Context, userID string) (*domain.MyEvents, error) {
	out := &domain.MyEvents{
		Hosting:   make([]*domain.Event, 0),
		Attending: make([]*domain.Event, 0),
	}
	if userID == "" {
		return out, nil
	}
	convs, err := s.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	for _, conv := range convs {
		status, ok := domain.EventStatusOf(conv.Status)
		if !ok || status == domain.EventCancelled {
			continue
		}
		event, err := s.eventOf(ctx, conv, status, userID)
		if err != nil {
			return nil, err
		}
		if conv.HostID == userID {
			out.Hosting = append(out.Hosting, event)
		} else {
			out.Attending = append(out.Attending, event)
		}
	}
	byDate := func(a, b *domain.Event) int {
		if c := cmp.Compare(slices.Index(domain.HolidayDates, a.Date), slices.Index(domain.HolidayDates, b.Date)); c != 0 {
			return c
		}
		return a.ConfirmedAt.Compare(b.ConfirmedAt)
	}
	slices.SortStableFunc(out.Hosting, byDate)
	slices.SortStableFunc(out.Attending, byDate)
	return out, nil
}

// eventOf takes the details from the host's latest event card and the time from
// the confirmation message.
func (s *eventService) eventOf(ctx context.Context, conv *domain.Conversation, status domain.EventStatus, userID string) (*domain.Event, error) {
	msgs, err := s.conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	event := &domain.Event{
		ID:      conv.ID,
		HostID:  conv.HostID,
		GuestID: conv.GuestID,
		Status:  status,
	}
	var card *domain.EventCard
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if event.ConfirmedAt.IsZero() && m.Kind == domain.MessageSystem && m.Content == domain.SystemMessageEventConfirmed {
			event.ConfirmedAt = m.CreatedAt
		}
		if card == nil && m.Kind == domain.MessageEventCard && m.SenderID == conv.HostID && m.EventCard != nil {
			card = m.EventCard
		}
	}
	if card != nil {
		event.Date = card.Date
		event.Address = card.Address
		event.Phone = card.Phone
		event.Note = card.Note
	}

	p, err := s.profiles.GetByUserID(ctx, conv.CounterpartOf(userID))
	switch {
	case err == nil:
		event.OtherUser = p.FullSummary()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return event, nil
}

func (s *eventService) GetUpcomingCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	convs, err := s.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list conversations: %w", err)
	}
	n := 0
	for _, conv := range convs {
		if conv.Status == domain.ConversationConfirmed {
			n++
		}
	}
	return n, nil
}

func (s *eventService) CancelEvent(ctx context.Context, hostID, eventID string) error {
	return s.close(ctx, hostID, eventID, domain.ConversationCancelled)
}

func (s *eventService) CompleteEvent(ctx context.Context, hostID, eventID string) error {
	return s.close(ctx, hostID, eventID, domain.ConversationCompleted)
}

func (s *eventService) close(ctx context.Context, hostID, eventID string, to domain.ConversationStatus) error {
	if hostID == "" {
		return domain.ErrNotAuthenticated
	}
	if eventID == "" {
		return domain.ErrNotFound
	}
	conv, err := s.conversations.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	if conv.HostID != hostID {
		return domain.ErrNotAuthorized
	}
	from := []domain.ConversationStatus{domain.ConversationConfirmed}
	if err := s.conversations.UpdateStatus(ctx, conv.ID, from, to, nil); err != nil {
		if errors.Is(err, domain.ErrConversationState) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}
