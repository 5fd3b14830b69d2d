package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"holidaymatch/internal/domain"
)

const pendingCountTTL = 5 * time.Minute

func pendingCountKey(userID string) string {
	return "invitations:pending:" + userID
}

type invitationService struct {
	invitations domain.InvitationRepository
	acceptor    domain.InvitationAcceptor
	profiles    domain.ProfileRepository
	notifier    *Notifier
	cache       domain.CounterCache
	logger      *slog.Logger
}

// NewInvitationService creates an InvitationService. Accepting goes through acceptor so
// the invitation and its conversation are stored together. cache may be nil, in which
// case pending counts are always read from the repository.
func NewInvitationService(
	invitations domain.InvitationRepository,
	acceptor domain.InvitationAcceptor,
	profiles domain.ProfileRepository,
	notifier *Notifier,
	cache domain.CounterCache,
	logger *slog.Logger,
) domain.InvitationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &invitationService{
		invitations: invitations,
		acceptor:    acceptor,
		profiles:    profiles,
		notifier:    notifier,
		cache:       cache,
		logger:      logger,
	}
}

func (s *invitationService) Send(ctx context.Context, fromUserID, toUserID string, date domain.HolidayDate) (*domain.Invitation, error) {
	if fromUserID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if toUserID == "" || !date.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if fromUserID == toUserID {
		return nil, domain.ErrSelfInvitation
	}
	inv := domain.NewInvitation(fromUserID, toUserID, date, time.Now().UTC())
	if err := s.invitations.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicateInvitation) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	s.invalidatePending(ctx, toUserID)
	s.notifier.Notify(ctx, domain.NotificationInvitationReceived, toUserID, fromUserID, date)
	return inv, nil
}

func (s *invitationService) Respond(ctx context.Context, callerID, invitationID string, accept bool) error {
	if callerID == "" {
		return domain.ErrNotAuthenticated
	}
	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.ToUserID != callerID {
		return domain.ErrNotAuthorized
	}
	if inv.Status != domain.InvitationPending {
		return domain.ErrInvalidStatusTransition
	}

	respondedAt := time.Now().UTC()
	if accept {
		conv, initial := domain.NewMatchConversation(inv, respondedAt)
		_, err = s.acceptor.Accept(ctx, inv.ID, respondedAt, conv, initial)
	} else {
		err = s.invitations.Resolve(ctx, inv.ID, domain.InvitationDeclined, respondedAt)
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.ErrInvitationNotFound
		case errors.Is(err, domain.ErrInvalidStatusTransition):
			return err
		}
		return fmt.Errorf("failed to resolve invitation: %w", err)
	}
	s.invalidatePending(ctx, inv.ToUserID)

	if accept {
		s.notifier.Notify(ctx, domain.NotificationInvitationAccepted, inv.FromUserID, callerID, inv.Date)
		return nil
	}
	s.notifier.Notify(ctx, domain.NotificationInvitationDeclined, inv.FromUserID, callerID, inv.Date)
	return nil
}

func (s *invitationService) Cancel(ctx context.Context, callerID, invitationID string) error {
	if callerID == "" {
		return domain.ErrNotAuthenticated
	}
	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.FromUserID != callerID {
		return domain.ErrNotAuthorized
	}
	if inv.Status != domain.InvitationPending {
		return domain.ErrInvalidStatusTransition
	}
	if err := s.invitations.DeletePending(ctx, inv.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.ErrInvitationNotFound
		case errors.Is(err, domain.ErrInvalidStatusTransition):
			return err
		}
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	s.invalidatePending(ctx, inv.ToUserID)
	return nil
}

func (s *invitationService) getInvitation(ctx context.Context, id string) (*domain.Invitation, error) {
	if id == "" {
		return nil, domain.ErrInvitationNotFound
	}
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) GetMyInvitations(ctx context.Context, userID string) (*domain.MyInvitations, error) {
	out := &domain.MyInvitations{
		Sent:     make([]*domain.InvitationWithUser, 0),
		Received: make([]*domain.InvitationWithUser, 0),
	}
	if userID == "" {
		return out, nil
	}
	sent, err := s.invitations.ListByFromUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent invitations: %w", err)
	}
	received, err := s.invitations.ListByToUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received invitations: %w", err)
	}

	summaries := make(map[string]*domain.ProfileSummary)
	enrich := func(inv *domain.Invitation) (*domain.InvitationWithUser, error) {
		otherID := inv.CounterpartOf(userID)
		summary, ok := summaries[otherID]
		if !ok {
			p, err := s.profiles.GetByUserID(ctx, otherID)
			switch {
			case err == nil:
				summary = p.PublicSummary()
			case !errors.Is(err, domain.ErrNotFound):
				return nil, fmt.Errorf("failed to get profile: %w", err)
			}
			summaries[otherID] = summary
		}
		return &domain.InvitationWithUser{Invitation: inv, OtherUser: summary}, nil
	}
	for _, inv := range sent {
		item, err := enrich(inv)
		if err != nil {
			return nil, err
		}
		out.Sent = append(out.Sent, item)
	}
	for _, inv := range received {
		item, err := enrich(inv)
		if err != nil {
			return nil, err
		}
		out.Received = append(out.Received, item)
	}
	return out, nil
}

func (s *invitationService) GetPendingCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	key := pendingCountKey(userID)
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		n, g, ok, err := s.cache.GetCount(ctx, key)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "pending count cache read failed", "user_id", userID, "err", err)
		case ok:
			return n, nil
		default:
			gen, cacheable = g, true
		}
	}
	n, err := s.invitations.CountPendingByToUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending invitations: %w", err)
	}
	if cacheable {
		// A write that invalidated the key after gen was read makes n stale; the cache drops it.
		if _, err := s.cache.SetCount(ctx, key, n, gen, pendingCountTTL); err != nil {
			s.logger.WarnContext(ctx, "pending count cache write failed", "user_id", userID, "err", err)
		}
	}
	return n, nil
}

func (s *invitationService) invalidatePending(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, pendingCountKey(userID)); err != nil {
		s.logger.WarnContext(ctx, "pending count cache invalidation failed", "user_id", userID, "err", err)
	}
}
