package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holidaymatch/internal/domain"
)

func TestMatchService_AreMatchedIsSymmetric(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest", "Gus", domain.RoleGuest)
	f.addUser("other", "Olga", domain.RoleGuest)

	f.accept(t, "host", "guest", domain.ChristmasEve)
	_, err := f.invitationSvc.Send(ctx, "host", "other", domain.ChristmasDay)
	require.NoError(t, err)

	tests := []struct {
		a, b string
		want bool
	}{
		{"host", "guest", true},
		{"guest", "host", true},
		{"host", "other", false},
		{"other", "host", false},
		{"guest", "other", false},
		{"", "host", false},
		{"host", "", false},
		{"host", "host", false},
	}
	for _, tt := range tests {
		got, err := f.matchSvc.AreMatched(ctx, tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "AreMatched(%q, %q)", tt.a, tt.b)
	}
}

func TestMatchService_GetConnectionStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(t *testing.T, f *fixture) string
		viewer string
		want   func(invID string) *domain.Connection
	}{
		{
			name:   "anonymous viewer",
			setup:  func(t *testing.T, f *fixture) string { return "" },
			viewer: "",
			want: func(string) *domain.Connection {
				return &domain.Connection{Status: domain.ConnectionNotAuthenticated}
			},
		},
		{
			name:   "no invitations",
			setup:  func(t *testing.T, f *fixture) string { return "" },
			viewer: "host",
			want:   func(string) *domain.Connection { return &domain.Connection{Status: domain.ConnectionNone} },
		},
		{
			name: "pending sent",
			setup: func(t *testing.T, f *fixture) string {
				inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.BoxingDay)
				require.NoError(t, err)
				return inv.ID
			},
			viewer: "host",
			want: func(string) *domain.Connection {
				return &domain.Connection{Status: domain.ConnectionPendingSent, Date: domain.BoxingDay}
			},
		},
		{
			name: "pending received carries the invitation id",
			setup: func(t *testing.T, f *fixture) string {
				inv, err := f.invitationSvc.Send(ctx, "guest", "host", domain.BoxingDay)
				require.NoError(t, err)
				return inv.ID
			},
			viewer: "host",
			want: func(id string) *domain.Connection {
				return &domain.Connection{Status: domain.ConnectionPendingReceived, Date: domain.BoxingDay, InvitationID: id}
			},
		},
		{
			name: "matched through a received invitation",
			setup: func(t *testing.T, f *fixture) string {
				return f.accept(t, "guest", "host", domain.NewYearsEve).ID
			},
			viewer: "host",
			want: func(string) *domain.Connection {
				return &domain.Connection{Status: domain.ConnectionMatched, Date: domain.NewYearsEve}
			},
		},
		{
			name: "matched wins over a pending reverse invitation",
			setup: func(t *testing.T, f *fixture) string {
				_, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
				require.NoError(t, err)
				return f.accept(t, "guest", "host", domain.ChristmasDay).ID
			},
			viewer: "host",
			want: func(string) *domain.Connection {
				return &domain.Connection{Status: domain.ConnectionMatched, Date: domain.ChristmasDay}
			},
		},
		{
			name: "declined by them",
			setup: func(t *testing.T, f *fixture) string {
				inv, err := f.invitationSvc.Send(ctx, "host", "guest", domain.ChristmasEve)
				require.NoError(t, err)
				require.NoError(t, f.invitationSvc.Respond(ctx, "guest", inv.ID, false))
				return inv.ID
			},
			viewer: "host",
			want:   func(string) *domain.Connection { return &domain.Connection{Status: domain.ConnectionDeclinedByThem} },
		},
		{
			name: "declined by me",
			setup: func(t *testing.T, f *fixture) string {
				inv, err := f.invitationSvc.Send(ctx, "guest", "host", domain.ChristmasEve)
				require.NoError(t, err)
				require.NoError(t, f.invitationSvc.Respond(ctx, "host", inv.ID, false))
				return inv.ID
			},
			viewer: "host",
			want:   func(string) *domain.Connection { return &domain.Connection{Status: domain.ConnectionDeclinedByMe} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUser("host", "Hanna", domain.RoleHost)
			f.addUser("guest", "Gus", domain.RoleGuest)
			id := tt.setup(t, f)

			got, err := f.matchSvc.GetConnectionStatus(ctx, tt.viewer, "guest")
			require.NoError(t, err)
			assert.Equal(t, tt.want(id), got)
		})
	}
}

func TestMatchService_GetMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser("host", "Hanna", domain.RoleHost)
	f.addUser("guest1", "Gus", domain.RoleGuest)
	f.addUser("guest2", "Greta", domain.RoleGuest)

	first := f.accept(t, "host", "guest1", domain.ChristmasEve)
	time.Sleep(2 * time.Millisecond)
	second := f.accept(t, "guest2", "host", domain.NewYearsEve)
	_, err := f.invitationSvc.Send(ctx, "host", "guest2", domain.BoxingDay)
	require.NoError(t, err)

	anon, err := f.matchSvc.GetMatches(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, anon)

	matches, err := f.matchSvc.GetMatches(ctx, "host")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, second.ID, matches[0].InvitationID)
	assert.False(t, matches[0].IsSender)
	assert.Equal(t, domain.NewYearsEve, matches[0].Date)
	assert.Equal(t, first.ID, matches[1].InvitationID)
	assert.True(t, matches[1].IsSender)
	assert.False(t, matches[0].MatchedAt.Before(matches[1].MatchedAt))

	other := matches[1].OtherUser
	require.NotNil(t, other)
	assert.Equal(t, "guest1", other.UserID)
	require.NotNil(t, other.LastName)
	require.NotNil(t, other.Phone)
	require.NotNil(t, other.Address)
	assert.Equal(t, "555-guest1", *other.Phone)
}
