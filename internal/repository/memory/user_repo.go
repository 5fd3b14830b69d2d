package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"holidaymatch/internal/domain"
)

// UserRepository is an in-memory domain.UserRepository.
type UserRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.User
}

// NewUserRepository returns an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[string]*domain.User)}
}

var _ domain.UserRepository = (*UserRepository)(nil)

// Put stores u, assigning an ID when it has none.
func (r *UserRepository) Put(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	c := *u
	r.byID[u.ID] = &c
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *u
	return &c, nil
}
