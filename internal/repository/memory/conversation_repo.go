package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"holidaymatch/internal/domain"
)

// unorderedPair keys a conversation independently of which participant is the guest.
func unorderedPair(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// ConversationRepository is an in-memory domain.ConversationRepository.
type ConversationRepository struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Conversation
	byPair   map[pairKey]string
	messages map[string][]*domain.Message
}

// NewConversationRepository returns an empty ConversationRepository.
func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		byID:     make(map[string]*domain.Conversation),
		byPair:   make(map[pairKey]string),
		messages: make(map[string][]*domain.Message),
	}
}

var _ domain.ConversationRepository = (*ConversationRepository)(nil)

func (r *ConversationRepository) CreateIfAbsent(ctx context.Context, conv *domain.Conversation, initial *domain.Message) (*domain.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := unorderedPair(conv.GuestID, conv.HostID)
	if id, exists := r.byPair[key]; exists {
		c := *r.byID[id]
		return &c, false, nil
	}
	conv.ID = uuid.NewString()
	stored := *conv
	r.byID[conv.ID] = &stored
	r.byPair[key] = conv.ID
	if initial != nil {
		initial.ID = uuid.NewString()
		initial.ConversationID = conv.ID
		m := *initial
		r.messages[conv.ID] = append(r.messages[conv.ID], &m)
	}
	c := stored
	return &c, true, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *conv
	return &c, nil
}

func (r *ConversationRepository) GetByParticipants(ctx context.Context, a, b string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[unorderedPair(a, b)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *ConversationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Conversation, 0)
	for _, conv := range r.byID {
		if conv.HasParticipant(userID) {
			c := *conv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

func (r *ConversationRepository) AddMessage(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[msg.ConversationID]
	if !ok {
		return domain.ErrNotFound
	}
	msg.ID = uuid.NewString()
	m := *msg
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], &m)
	if msg.CreatedAt.After(conv.LastMessageAt) {
		conv.LastMessageAt = msg.CreatedAt
	}
	return nil
}

func (r *ConversationRepository) UpdateStatus(ctx context.Context, id string, from []domain.ConversationStatus, to domain.ConversationStatus, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !slices.Contains(from, conv.Status) {
		return domain.ErrConversationState
	}
	conv.Status = to
	if msg == nil {
		return nil
	}
	msg.ID = uuid.NewString()
	msg.ConversationID = id
	m := *msg
	r.messages[id] = append(r.messages[id], &m)
	if msg.CreatedAt.After(conv.LastMessageAt) {
		conv.LastMessageAt = msg.CreatedAt
	}
	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[conversationID]
	out := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		c := *m
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ConversationRepository) GetLastMessage(ctx context.Context, conversationID string) (*domain.Message, error) {
	msgs, _ := r.ListMessages(ctx, conversationID)
	if len(msgs) == 0 {
		return nil, domain.ErrNotFound
	}
	return msgs[len(msgs)-1], nil
}

func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages[conversationID] {
		if m.SenderID != readerID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *ConversationRepository) CountUnread(ctx context.Context, conversationIDs []string, readerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, id := range conversationIDs {
		for _, m := range r.messages[id] {
			if m.SenderID != readerID && !m.Read {
				n++
			}
		}
	}
	return n, nil
}
