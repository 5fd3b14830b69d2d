package services

import (
	"context"

	"holidaymatch/internal/domain"
)

type disclosurePolicy struct {
	matches domain.MatchService
}

// NewDisclosurePolicy returns the policy that reveals contact fields to the owner and to matched users.
func NewDisclosurePolicy(matches domain.MatchService) domain.DisclosurePolicy {
	return &disclosurePolicy{matches: matches}
}

func (d *disclosurePolicy) Project(ctx context.Context, profile *domain.Profile, viewerID string) (*domain.ProfileView, error) {
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	if viewerID != "" && viewerID == profile.UserID {
		return &domain.ProfileView{Profile: *profile}, nil
	}
	matched, err := d.matches.AreMatched(ctx, viewerID, profile.UserID)
	if err != nil {
		return nil, err
	}
	if matched {
		return &domain.ProfileView{Profile: *profile}, nil
	}
	return redacted(profile), nil
}

// ProjectForList strips contact fields for every viewer, including matched ones.
func (d *disclosurePolicy) ProjectForList(profile *domain.Profile) *domain.ProfileView {
	return redacted(profile)
}

func redacted(profile *domain.Profile) *domain.ProfileView {
	v := &domain.ProfileView{Profile: *profile}
	v.LastName = nil
	v.Phone = nil
	v.Address = nil
	return v
}
