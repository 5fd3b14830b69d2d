package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"holidaymatch/internal/domain"
)

type matchService struct {
	invitations domain.InvitationRepository
	profiles    domain.ProfileRepository
}

// NewMatchService creates a MatchService that derives matches from the invitation set.
func NewMatchService(invitations domain.InvitationRepository, profiles domain.ProfileRepository) domain.MatchService {
	return &matchService{invitations: invitations, profiles: profiles}
}

// pairInvitations returns the invitation from a to b and the one from b to a; either may be nil.
func pairInvitations(ctx context.Context, repo domain.InvitationRepository, a, b string) (forward, reverse *domain.Invitation, err error) {
	forward, err = repo.GetByPair(ctx, a, b)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	reverse, err = repo.GetByPair(ctx, b, a)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return forward, reverse, nil
}

// acceptedBetween returns the accepted invitation between a and b in either direction, or nil.
func acceptedBetween(ctx context.Context, repo domain.InvitationRepository, a, b string) (*domain.Invitation, error) {
	if a == "" || b == "" || a == b {
		return nil, nil
	}
	forward, reverse, err := pairInvitations(ctx, repo, a, b)
	if err != nil {
		return nil, err
	}
	if forward != nil && forward.Status == domain.InvitationAccepted {
		return forward, nil
	}
	if reverse != nil && reverse.Status == domain.InvitationAccepted {
		return reverse, nil
	}
	return nil, nil
}

func (s *matchService) AreMatched(ctx context.Context, a, b string) (bool, error) {
	inv, err := acceptedBetween(ctx, s.invitations, a, b)
	if err != nil {
		return false, err
	}
	return inv != nil, nil
}

func (s *matchService) GetConnectionStatus(ctx context.Context, viewerID, otherID string) (*domain.Connection, error) {
	if viewerID == "" {
		return &domain.Connection{Status: domain.ConnectionNotAuthenticated}, nil
	}
	if otherID == "" || viewerID == otherID {
		return &domain.Connection{Status: domain.ConnectionNone}, nil
	}
	sent, received, err := pairInvitations(ctx, s.invitations, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	switch {
	case sent != nil && sent.Status == domain.InvitationAccepted:
		return &domain.Connection{Status: domain.ConnectionMatched, Date: sent.Date}, nil
	case received != nil && received.Status == domain.InvitationAccepted:
		return &domain.Connection{Status: domain.ConnectionMatched, Date: received.Date}, nil
	case sent != nil && sent.Status == domain.InvitationPending:
		return &domain.Connection{Status: domain.ConnectionPendingSent, Date: sent.Date}, nil
	case received != nil && received.Status == domain.InvitationPending:
		return &domain.Connection{Status: domain.ConnectionPendingReceived, Date: received.Date, InvitationID: received.ID}, nil
	case sent != nil && sent.Status == domain.InvitationDeclined:
		return &domain.Connection{Status: domain.ConnectionDeclinedByThem}, nil
	case received != nil && received.Status == domain.InvitationDeclined:
		return &domain.Connection{Status: domain.ConnectionDeclinedByMe}, nil
	}
	return &domain.Connection{Status: domain.ConnectionNone}, nil
}

func (s *matchService) GetMatches(ctx context.Context, userID string) ([]*domain.Match, error) {
	matches := make([]*domain.Match, 0)
	if userID == "" {
		return matches, nil
	}
	accepted, err := s.invitations.ListAccepted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted invitations: %w", err)
	}
	for _, inv := range accepted {
		m := &domain.Match{
			InvitationID: inv.ID,
			Date:         inv.Date,
			MatchedAt:    inv.MatchedAt(),
			IsSender:     inv.FromUserID == userID,
		}
		p, err := s.profiles.GetByUserID(ctx, inv.CounterpartOf(userID))
		switch {
		case err == nil:
			m.OtherUser = p.FullSummary()
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		matches = append(matches, m)
	}
	slices.SortStableFunc(matches, func(a, b *domain.Match) int {
		return cmp.Compare(b.MatchedAt.UnixNano(), a.MatchedAt.UnixNano())
	})
	return matches, nil
}
