// Package memory implements the domain repositories in process memory. Each
// repository guards its state with a mutex so that check-and-write sequences
// are atomic, matching the unique constraints of the Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"holidaymatch/internal/domain"
)

type pairKey struct {
	from, to string
}

// InvitationRepository is an in-memory domain.InvitationRepository.
type InvitationRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Invitation
	byPair map[pairKey]string
}

// NewInvitationRepository returns an empty InvitationRepository.
func NewInvitationRepository() *InvitationRepository {
	return &InvitationRepository{
		byID:   make(map[string]*domain.Invitation),
		byPair: make(map[pairKey]string),
	}
}

var _ domain.InvitationRepository = (*InvitationRepository)(nil)

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{inv.FromUserID, inv.ToUserID}
	if _, exists := r.byPair[key]; exists {
		return domain.ErrDuplicateInvitation
	}
	inv.ID = uuid.NewString()
	stored := *inv
	r.byID[inv.ID] = &stored
	r.byPair[key] = inv.ID
	return nil
}

func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneInvitation(inv), nil
}

func (r *InvitationRepository) GetByPair(ctx context.Context, fromUserID, toUserID string) (*domain.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey{fromUserID, toUserID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneInvitation(r.byID[id]), nil
}

func (r *InvitationRepository) ListByFromUserID(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return r.filter(func(inv *domain.Invitation) bool { return inv.FromUserID == userID }), nil
}

func (r *InvitationRepository) ListByToUserID(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return r.filter(func(inv *domain.Invitation) bool { return inv.ToUserID == userID }), nil
}

func (r *InvitationRepository) ListAccepted(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	return r.filter(func(inv *domain.Invitation) bool {
		return inv.Status == domain.InvitationAccepted && (inv.FromUserID == userID || inv.ToUserID == userID)
	}), nil
}

func (r *InvitationRepository) CountPendingByToUserID(ctx context.Context, userID string) (int, error) {
	return len(r.filter(func(inv *domain.Invitation) bool {
		return inv.ToUserID == userID && inv.Status == domain.InvitationPending
	})), nil
}

func (r *InvitationRepository) Resolve(ctx context.Context, id string, status domain.InvitationStatus, respondedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return domain.ErrInvalidStatusTransition
	}
	inv.Status = status
	at := respondedAt
	inv.RespondedAt = &at
	return nil
}

func (r *InvitationRepository) DeletePending(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return domain.ErrInvalidStatusTransition
	}
	delete(r.byID, id)
	delete(r.byPair, pairKey{inv.FromUserID, inv.ToUserID})
	return nil
}

// filter returns copies of matching invitations, newest first.
func (r *InvitationRepository) filter(keep func(*domain.Invitation) bool) []*domain.Invitation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Invitation, 0)
	for _, inv := range r.byID {
		if keep(inv) {
			out = append(out, cloneInvitation(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func cloneInvitation(inv *domain.Invitation) *domain.Invitation {
	c := *inv
	if inv.RespondedAt != nil {
		at := *inv.RespondedAt
		c.RespondedAt = &at
	}
	return &c
}
