package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"holidaymatch/internal/domain"
	"holidaymatch/internal/repository/memory"
)

// recordingDispatcher implements domain.NotificationDispatcher for tests.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []*domain.Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, n *domain.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	c := *n
	d.sent = append(d.sent, &c)
	return nil
}

func (d *recordingDispatcher) all() []*domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*domain.Notification(nil), d.sent...)
}

// mapCache implements domain.CounterCache for tests.
type mapCache struct {
	mu     sync.Mutex
	counts map[string]int
	gens   map[string]int64
	hits   int
}

func newMapCache() *mapCache {
	return &mapCache{counts: make(map[string]int), gens: make(map[string]int64)}
}

func (c *mapCache) GetCount(ctx context.Context, key string) (int, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[key]
	if ok {
		c.hits++
	}
	return n, c.gens[key], ok, nil
}

func (c *mapCache) SetCount(ctx context.Context, key string, count int, gen int64, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false, nil
	}
	c.counts[key] = count
	return true, nil
}

func (c *mapCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.counts, k)
		c.gens[k]++
	}
	return nil
}

type fixture struct {
	invitations   *memory.InvitationRepository
	conversations *memory.ConversationRepository
	profiles      *memory.ProfileRepository
	users         *memory.UserRepository
	dispatcher    *recordingDispatcher
	cache         *mapCache

	invitationSvc   domain.InvitationService
	matchSvc        domain.MatchService
	conversationSvc domain.ConversationService
	disclosure      domain.DisclosurePolicy
	profileSvc      domain.ProfileService
	eventSvc        domain.EventService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		invitations:   memory.NewInvitationRepository(),
		conversations: memory.NewConversationRepository(),
		profiles:      memory.NewProfileRepository(),
		users:         memory.NewUserRepository(),
		dispatcher:    &recordingDispatcher{},
		cache:         newMapCache(),
	}
	logger := discardLogger()
	notifier := NewNotifier(f.users, f.profiles, f.dispatcher, logger)
	f.matchSvc = NewMatchService(f.invitations, f.profiles)
	f.conversationSvc = NewConversationService(f.conversations, f.invitations, f.profiles, notifier)
	acceptor := memory.NewInvitationAcceptor(f.invitations, f.conversations)
	f.invitationSvc = NewInvitationService(f.invitations, acceptor, f.profiles, notifier, f.cache, logger)
	f.eventSvc = NewEventService(f.conversations, f.profiles)
	f.disclosure = NewDisclosurePolicy(f.matchSvc)
	f.profileSvc = NewProfileService(f.profiles, f.disclosure, f.matchSvc)
	return f
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// addUser stores a user with the given id and a visible profile carrying contact fields.
func (f *fixture) addUser(id, firstName string, role domain.Role) *domain.Profile {
	f.users.Put(&domain.User{ID: id, Email: id + "@example.com", Name: firstName})
	p := &domain.Profile{
		UserID:         id,
		Role:           role,
		FirstName:      firstName,
		LastName:       strPtr("Surname-" + id),
		City:           "Berlin",
		Phone:          strPtr("555-" + id),
		Address:        strPtr("1 " + id + " Street"),
		Languages:      []string{"English"},
		AvailableDates: []domain.HolidayDate{domain.ChristmasEve},
		IsVisible:      true,
	}
	f.profiles.Put(p)
	return p
}

// accept sends an invitation from -> to and accepts it.
func (f *fixture) accept(t *testing.T, from, to string, date domain.HolidayDate) *domain.Invitation {
	t.Helper()
	ctx := context.Background()
	inv, err := f.invitationSvc.Send(ctx, from, to, date)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.invitationSvc.Respond(ctx, to, inv.ID, true); err != nil {
		t.Fatalf("respond: %v", err)
	}
	return inv
}
