package services

import (
	"context"
	"errors"
	"fmt"

	"holidaymatch/internal/domain"
)

type profileService struct {
	profiles   domain.ProfileRepository
	disclosure domain.DisclosurePolicy
	matches    domain.MatchService
}

// NewProfileService creates a ProfileService. Every profile it returns has gone through the disclosure policy.
func NewProfileService(profiles domain.ProfileRepository, disclosure domain.DisclosurePolicy, matches domain.MatchService) domain.ProfileService {
	return &profileService{profiles: profiles, disclosure: disclosure, matches: matches}
}

func (s *profileService) GetProfile(ctx context.Context, viewerID, userID string) (*domain.ProfileView, error) {
	if userID == "" {
		return nil, domain.ErrNotFound
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	view, err := s.disclosure.Project(ctx, p, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to project profile: %w", err)
	}
	if err := s.attachStatus(ctx, view, viewerID); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *profileService) ListProfiles(ctx context.Context, viewerID string, filter domain.ProfileFilter, page domain.PaginationParams) ([]*domain.ProfileView, int, error) {
	if filter.Role != "" && filter.Role != domain.RoleHost && filter.Role != domain.RoleGuest && filter.Role != domain.RoleBoth {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.Date != "" && !filter.Date.Valid() {
		return nil, 0, domain.ErrInvalidInput
	}
	filter.ViewerID = viewerID
	profiles, total, err := s.profiles.List(ctx, filter, page.Clamp())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	views := make([]*domain.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		view := s.disclosure.ProjectForList(p)
		if err := s.attachStatus(ctx, view, viewerID); err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

// attachStatus sets the viewer's connection status on view. Anonymous viewers get none.
func (s *profileService) attachStatus(ctx context.Context, view *domain.ProfileView, viewerID string) error {
	if viewerID == "" {
		return nil
	}
	status := domain.ConnectionSelf
	if view.UserID != viewerID {
		conn, err := s.matches.GetConnectionStatus(ctx, viewerID, view.UserID)
		if err != nil {
			return fmt.Errorf("failed to get connection status: %w", err)
		}
		status = conn.Status
	}
	view.ConnectionStatus = &status
	return nil
}
