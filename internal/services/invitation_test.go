package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holidaymatch/internal/domain"
	"holidaymatch/internal/repository/memory"
)

func TestInvitationService_Send(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    string
		to      string
		date    domain.HolidayDate
		wantErr error
	}{
		{name: "not authenticated", from: "", to: "guest", date: domain.ChristmasEve, wantErr: domain.ErrNotAuthenticated},
		{name: "invalid date", from: "host", to: "guest", date: "1 Jan", wantErr: domain.ErrInvalidInput},
		{name: "missing recipient", from: "host", to: "", date: domain.ChristmasEve, wantErr: domain.ErrInvalidInput},
		{name: "self invitation", from: "host", to: "host", date: domain.ChristmasEve, wantErr: domain.ErrSelfInvitation},
		{name: "success", from: "host", to: "guest", date: domain.ChristmasEve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUser("host", "Hanna", domain.RoleHost)
			f.addUser("guest", "Gus", domain.RoleGuest)

			inv, err := f.invitationSvc.Send(ctx, tt.from, tt.to, tt.date)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.dispatcher.all())
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, inv.ID)
			assert.Equal(t, domain.InvitationPending, inv.Status)
			assert.Equal(t, tt.date, inv.Date)
			assert.Nil(t, inv.RespondedAt)
		})
	}
}

func TestInvitationService_SendDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	_, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)
	_, err = f.invitationSvc.Send(ctx, "host", "guest", domain.NewYearsEve)
	require.ErrorIs(t, err, domain.ErrDuplicateInvitation)

	mine, err := f.invitationSvc.GetMyInvitations(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, mine.Received, 1)
	assert.Equal(t, domain.ChristmasEve, mine.Received[0].Date)
}

func TestInvitationService_SendConcurrentSamePair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.invitationSvc.Send(ctx, "host", "guest", domain.BoxingDay)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrDuplicateInvitation)
	}
	assert.Equal(t, 1, succeeded)
	n, err := f.invitationSvc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvitationService_SendReverseDirectionAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	_, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)
	_, err = f.invitationSvc.Send(ctx, "guest", "host", domain.ChristmasDay)
	require.NoError(t, err)
}

func TestInvitationService_SendNotification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		from     string
		setup    func(f *fixture)
		wantSent bool
	}{
		{name: "defaults are enabled", setup: func(f *fixture) {}, wantSent: true},
		{
			name: "email notifications off",
			setup: func(f *fixture) {
				p := f.addUser("guest", "Gus", domain.RoleGuest)
				p.Notifications.EmailNotifications = boolPtr(false)
				f.profiles.Put(p)
			},
		},
		{
			name: "invitation notifications off",
			setup: func(f *fixture) {
				p := f.addUser("guest", "Gus", domain.RoleGuest)
				p.Notifications.NotifyOnInvitation = boolPtr(false)
				f.profiles.Put(p)
			},
		},
		{
			name: "match notifications off does not gate invitations",
			setup: func(f *fixture) {
				p := f.addUser("guest", "Gus", domain.RoleGuest)
				p.Notifications.NotifyOnMatch = boolPtr(false)
				f.profiles.Put(p)
			},
			wantSent: true,
		},
		{
			name: "recipient without email",
			setup: func(f *fixture) {
				f.users.Put(&domain.User{ID: "guest"})
			},
		},
		{
			name: "sender without profile",
			from: "stranger",
			setup: func(f *fixture) {
				f.users.Put(&domain.User{ID: "stranger", Email: "stranger@example.com"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUser("host", "Hanna", domain.RoleHost)
			f.addUser("guest", "Gus", domain.RoleGuest)
			tt.setup(f)

			from := tt.from
			if from == "" {
				from = "host"
			}

			_, err := f.invitationSvc.Send(ctx, from, "guest", domain.ChristmasEve)
			require.NoError(t, err)
			sent := f.dispatcher.all()
			if !tt.wantSent {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			assert.Equal(t, &domain.Notification{
				To:         "guest@example.com",
				Type:       domain.NotificationInvitationReceived,
				SenderName: "Hanna",
				Date:       domain.ChristmasEve,
			}, sent[0])
		})
	}
}

func TestInvitationService_DispatchFailureDoesNotFailSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)
	f.dispatcher.err = errors.New("queue down")

	inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)
	require.NoError(t, f.invitationSvc.Respond(ctx, "guest", inv.ID, true))
}

func TestInvitationService_Respond(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  string
		id      func(inv *domain.Invitation) string
		wantErr error
	}{
		{name: "not authenticated", caller: "", wantErr: domain.ErrNotAuthenticated},
		{name: "unknown invitation", caller: "guest", id: func(*domain.Invitation) string { return "missing" }, wantErr: domain.ErrInvitationNotFound},
		{name: "sender cannot respond", caller: "host", wantErr: domain.ErrNotAuthorized},
		{name: "third party cannot respond", caller: "other", wantErr: domain.ErrNotAuthorized},
		{name: "recipient responds", caller: "guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUser("host", "Hanna", domain.RoleHost)
			f.addUser("guest", "Gus", domain.RoleGuest)
			f.addUser("other", "Olga", domain.RoleGuest)
			inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
			require.NoError(t, err)

			id := inv.ID
			if tt.id != nil {
				id = tt.id(inv)
			}
			err = f.invitationSvc.Respond(ctx, tt.caller, id, true)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				stored, err := f.invitations.GetByID(ctx, inv.ID)
				require.NoError(t, err)
				assert.Equal(t, domain.InvitationPending, stored.Status)
				return
			}
			require.NoError(t, err)
			stored, err := f.invitations.GetByID(ctx, inv.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.InvitationAccepted, stored.Status)
			assert.NotNil(t, stored.RespondedAt)
		})
	}
}

func TestInvitationService_AcceptScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)

	mine, err := f.invitationSvc.GetMyInvitations(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, mine.Received, 1)
	assert.Equal(t, domain.InvitationPending, mine.Received[0].Status)
	assert.Equal(t, domain.ChristmasEve, mine.Received[0].Date)

	require.NoError(t, f.invitationSvc.Respond(ctx, "guest", inv.ID, true))

	for _, pair := range [][2]string{{"host", "guest"}, {"guest", "host"}} {
		matched, err := f.matchSvc.AreMatched(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, matched)
	}

	conv, err := f.conversations.GetByParticipants(ctx, "guest", "host")
	require.NoError(t, err)
	assert.Equal(t, "host", conv.GuestID)
	assert.Equal(t, "guest", conv.HostID)
	msgs, err := f.conversations.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageSystem, msgs[0].Kind)
	assert.Equal(t, domain.SystemMessageConnectionAccepted, msgs[0].Content)
	assert.Equal(t, "guest", msgs[0].SenderID)

	sent := f.dispatcher.all()
	require.Len(t, sent, 2)
	assert.Equal(t, &domain.Notification{
		To:         "host@example.com",
		Type:       domain.NotificationInvitationAccepted,
		SenderName: "Gus",
		Date:       domain.ChristmasEve,
	}, sent[1])

	err = f.invitationSvc.Respond(ctx, "guest", inv.ID, false)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestInvitationService_DeclineScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.NewYearsEve)
	require.NoError(t, err)
	require.NoError(t, f.invitationSvc.Respond(ctx, "guest", inv.ID, false))

	conn, err := f.matchSvc.GetConnectionStatus(ctx, "host", "guest")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionDeclinedByThem, conn.Status)

	_, err = f.conversations.GetByParticipants(ctx, "host", "guest")
	require.ErrorIs(t, err, domain.ErrNotFound)

	sent := f.dispatcher.all()
	require.Len(t, sent, 2)
	assert.Equal(t, domain.NotificationInvitationDeclined, sent[1].Type)
	assert.Equal(t, "host@example.com", sent[1].To)
	assert.Equal(t, domain.NewYearsEve, sent[1].Date)
}

func TestInvitationService_RespondConcurrentAccept(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)
	inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasDay)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.invitationSvc.Respond(ctx, "guest", inv.ID, true)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	}
	assert.Equal(t, 1, succeeded)

	convs, err := f.conversations.ListByUserID(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	msgs, err := f.conversations.ListMessages(ctx, convs[0].ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestInvitationService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)

	require.ErrorIs(t, f.invitationSvc.Cancel(ctx, "", inv.ID), domain.ErrNotAuthenticated)
	require.ErrorIs(t, f.invitationSvc.Cancel(ctx, "guest", inv.ID), domain.ErrNotAuthorized)
	require.ErrorIs(t, f.invitationSvc.Cancel(ctx, "host", "missing"), domain.ErrInvitationNotFound)
	require.NoError(t, f.invitationSvc.Cancel(ctx, "host", inv.ID))

	_, err = f.invitations.GetByID(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// The pair is free again after a cancel.
	again, err := f.invitationSvc.Send(ctx, "host", "guest", domain.BoxingDay)
	require.NoError(t, err)
	require.NoError(t, f.invitationSvc.Respond(ctx, "guest", again.ID, true))
	require.ErrorIs(t, f.invitationSvc.Cancel(ctx, "host", again.ID), domain.ErrInvalidStatusTransition)
}

func TestInvitationService_GetMyInvitations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)
	f.users.Put(&domain.User{ID: "ghost", Email: "ghost@example.com"})

	_, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)
	_, err = f.invitationSvc.Send(ctx, "ghost", "guest", domain.ChristmasDay)
	require.NoError(t, err)
	_, err = f.invitationSvc.Send(ctx, "guest", "host", domain.BoxingDay)
	require.NoError(t, err)

	anon, err := f.invitationSvc.GetMyInvitations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, anon.Sent)
	assert.Empty(t, anon.Received)

	mine, err := f.invitationSvc.GetMyInvitations(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, mine.Sent, 1)
	require.Len(t, mine.Received, 2)

	byOther := map[string]*domain.InvitationWithUser{}
	for _, item := range mine.Received {
		byOther[item.FromUserID] = item
	}
	assert.Nil(t, byOther["ghost"].OtherUser)
	summary := byOther["host"].OtherUser
	require.NotNil(t, summary)
	assert.Equal(t, &domain.ProfileSummary{UserID: "host", FirstName: "Hanna", City: "Berlin"}, summary)
	assert.Equal(t, "host", mine.Sent[0].OtherUser.UserID)
	assert.Nil(t, mine.Sent[0].OtherUser.Phone)
}

func TestInvitationService_GetPendingCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host1", "Hanna", domain.RoleHost)
	f.addUser("host2", "Hugo", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	n, err := f.invitationSvc.GetPendingCount(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	inv, err := f.invitationSvc.Send(ctx, "host1", "guest", domain.ChristmasEve)
	require.NoError(t, err)
	n, err = f.invitationSvc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.invitationSvc.Send(ctx, "host2", "guest", domain.ChristmasEve)
	require.NoError(t, err)
	n, err = f.invitationSvc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.invitationSvc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, f.cache.hits)

	require.NoError(t, f.invitationSvc.Respond(ctx, "guest", inv.ID, false))
	n, err = f.invitationSvc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// countHookRepository runs beforeCount once, inside the pending count read.
type countHookRepository struct {
	domain.InvitationRepository
	beforeCount func()
}

func (r *countHookRepository) CountPendingByToUserID(ctx context.Context, userID string) (int, error) {
	n, err := r.InvitationRepository.CountPendingByToUserID(ctx, userID)
	if hook := r.beforeCount; hook != nil {
		r.beforeCount = nil
		hook()
	}
	return n, err
}

func TestInvitationService_GetPendingCount_SendDuringCountIsNotCachedStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	repo := &countHookRepository{InvitationRepository: f.invitations}
	notifier := NewNotifier(f.users, f.profiles, f.dispatcher, discardLogger())
	acceptor := memory.NewInvitationAcceptor(f.invitations, f.conversations)
	svc := NewInvitationService(repo, acceptor, f.profiles, notifier, f.cache, discardLogger())
	repo.beforeCount = func() {
		_, err := svc.Send(ctx, "host", "guest", domain.ChristmasEve)
		require.NoError(t, err)
	}

	first, err := svc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Zero(t, first)

	second, err := svc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, second)
	assert.Zero(t, f.cache.hits)

	third, err := svc.GetPendingCount(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, third)
	assert.Equal(t, 1, f.cache.hits)
}

// failingAcceptor implements domain.InvitationAcceptor and always fails, leaving the store untouched.
type failingAcceptor struct{ err error }

func (a failingAcceptor) Accept(ctx context.Context, invitationID string, respondedAt time.Time, conv *domain.Conversation, initial *domain.Message) (*domain.Conversation, error) {
	return nil, a.err
}

func TestInvitationService_RespondProvisioningFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)

	notifier := NewNotifier(f.users, f.profiles, f.dispatcher, discardLogger())
	svc := NewInvitationService(f.invitations, failingAcceptor{err: errors.New("conversations unavailable")}, f.profiles, notifier, f.cache, discardLogger())
	inv, err := svc.Send(ctx, "host", "guest", domain.ChristmasEve)
	require.NoError(t, err)

	err = svc.Respond(ctx, "guest", inv.ID, true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidStatusTransition)

	stored, err := f.invitations.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationPending, stored.Status)
	_, err = f.conversations.GetByParticipants(ctx, "host", "guest")
	require.ErrorIs(t, err, domain.ErrNotFound)
	matched, err := f.matchSvc.AreMatched(ctx, "host", "guest")
	require.NoError(t, err)
	assert.False(t, matched)
	require.Len(t, f.dispatcher.all(), 1)

	require.NoError(t, f.invitationSvc.Respond(ctx, "guest", inv.ID, true))
	_, err = f.conversations.GetByParticipants(ctx, "host", "guest")
	require.NoError(t, err)
}
