package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"holidaymatch/internal/domain"
)

// ProfileRepository is an in-memory domain.ProfileRepository.
type ProfileRepository struct {
	mu       sync.RWMutex
	byUserID map[string]*domain.Profile
}

// NewProfileRepository returns an empty ProfileRepository.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{byUserID: make(map[string]*domain.Profile)}
}

var _ domain.ProfileRepository = (*ProfileRepository)(nil)

// Put stores p, replacing any profile with the same UserID.
func (r *ProfileRepository) Put(p *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	r.byUserID[p.UserID] = &c
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byUserID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *ProfileRepository) List(ctx context.Context, filter domain.ProfileFilter, page domain.PaginationParams) ([]*domain.Profile, int, error) {
	r.mu.RLock()
	matched := make([]*domain.Profile, 0)
	for _, p := range r.byUserID {
		if matchesFilter(p, filter) {
			c := *p
			matched = append(matched, &c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].UserID < matched[j].UserID })
	total := len(matched)
	if page.PageSize <= 0 {
		return matched, total, nil
	}
	start := page.Offset()
	if start >= total {
		return []*domain.Profile{}, total, nil
	}
	end := min(start+page.PageSize, total)
	return matched[start:end], total, nil
}

func matchesFilter(p *domain.Profile, f domain.ProfileFilter) bool {
	if !p.IsVisible && p.UserID != f.ViewerID {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	if f.Role != "" && p.Role != f.Role && p.Role != domain.RoleBoth {
		return false
	}
	if f.Language != "" && !slices.Contains(p.Languages, f.Language) {
		return false
	}
	if f.Date != "" && !slices.Contains(p.AvailableDates, f.Date) {
		return false
	}
	return true
}
