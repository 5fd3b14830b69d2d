package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/delivery/http/middleware"
	"holidaymatch/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// newRequest builds a request with path values set, optionally authenticated as userID.
func newRequest(method, target, body, userID string, pathValues map[string]string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://test"+target, rdr)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dest != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Error
}

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	sendInv      *domain.Invitation
	err          error
	lastCaller   string
	lastID       string
	lastAccept   bool
	lastTo       string
	lastDate     domain.HolidayDate
	mine         *domain.MyInvitations
	pendingCount int
}

func (f *fakeInvitationService) Send(ctx context.Context, from, to string, date domain.HolidayDate) (*domain.Invitation, error) {
	f.lastCaller, f.lastTo, f.lastDate = from, to, date
	if f.err != nil {
		return nil, f.err
	}
	return f.sendInv, nil
}

func (f *fakeInvitationService) Respond(ctx context.Context, caller, id string, accept bool) error {
	f.lastCaller, f.lastID, f.lastAccept = caller, id, accept
	return f.err
}

func (f *fakeInvitationService) Cancel(ctx context.Context, caller, id string) error {
	f.lastCaller, f.lastID = caller, id
	return f.err
}

func (f *fakeInvitationService) GetMyInvitations(ctx context.Context, userID string) (*domain.MyInvitations, error) {
	f.lastCaller = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.mine, nil
}

func (f *fakeInvitationService) GetPendingCount(ctx context.Context, userID string) (int, error) {
	f.lastCaller = userID
	return f.pendingCount, f.err
}

// fakeMatchService implements domain.MatchService for handler tests.
type fakeMatchService struct {
	matched    bool
	conn       *domain.Connection
	matches    []*domain.Match
	err        error
	lastViewer string
	lastOther  string
}

func (f *fakeMatchService) AreMatched(ctx context.Context, a, b string) (bool, error) {
	f.lastViewer, f.lastOther = a, b
	return f.matched, f.err
}

func (f *fakeMatchService) GetConnectionStatus(ctx context.Context, viewer, other string) (*domain.Connection, error) {
	f.lastViewer, f.lastOther = viewer, other
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

func (f *fakeMatchService) GetMatches(ctx context.Context, userID string) ([]*domain.Match, error) {
	f.lastViewer = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

// fakeConversationService implements domain.ConversationService for handler tests.
type fakeConversationService struct {
	msg        *domain.Message
	msgs       []*domain.Message
	summaries  []*domain.ConversationSummary
	unread     int
	err        error
	lastCaller string
	lastTarget string
	lastText   string
	lastCard   *domain.EventCard
}

func (f *fakeConversationService) OnAccepted(ctx context.Context, inv *domain.Invitation) (*domain.Conversation, error) {
	return nil, f.err
}

func (f *fakeConversationService) SendEventCard(ctx context.Context, sender, receiver string, card *domain.EventCard) (*domain.Message, error) {
	f.lastCaller, f.lastTarget, f.lastCard = sender, receiver, card
	if f.err != nil {
		return nil, f.err
	}
	return f.msg, nil
}

func (f *fakeConversationService) SendMessage(ctx context.Context, sender, conversationID, content string) (*domain.Message, error) {
	f.lastCaller, f.lastTarget, f.lastText = sender, conversationID, content
	if f.err != nil {
		return nil, f.err
	}
	return f.msg, nil
}

func (f *fakeConversationService) ConfirmEventCard(ctx context.Context, guest, conversationID string) (*domain.Message, error) {
	f.lastCaller, f.lastTarget = guest, conversationID
	if f.err != nil {
		return nil, f.err
	}
	return f.msg, nil
}

func (f *fakeConversationService) ListConversations(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	f.lastCaller = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

func (f *fakeConversationService) ListMessages(ctx context.Context, userID, conversationID string) ([]*domain.Message, error) {
	f.lastCaller, f.lastTarget = userID, conversationID
	if f.err != nil {
		return nil, f.err
	}
	return f.msgs, nil
}

func (f *fakeConversationService) MarkAsRead(ctx context.Context, userID, conversationID string) error {
	f.lastCaller, f.lastTarget = userID, conversationID
	return f.err
}

func (f *fakeConversationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	f.lastCaller = userID
	return f.unread, f.err
}

// fakeProfileService implements domain.ProfileService for handler tests.
type fakeProfileService struct {
	view       *domain.ProfileView
	views      []*domain.ProfileView
	total      int
	err        error
	lastViewer string
	lastUserID string
	lastFilter domain.ProfileFilter
	lastPage   domain.PaginationParams
}

func (f *fakeProfileService) GetProfile(ctx context.Context, viewer, userID string) (*domain.ProfileView, error) {
	f.lastViewer, f.lastUserID = viewer, userID
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

func (f *fakeProfileService) ListProfiles(ctx context.Context, viewer string, filter domain.ProfileFilter, page domain.PaginationParams) ([]*domain.ProfileView, int, error) {
	f.lastViewer, f.lastFilter, f.lastPage = viewer, filter, page
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.views, f.total, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events     *domain.MyEvents
	upcoming   int
	err        error
	lastCaller string
	lastEvent  string
	closedAs   domain.EventStatus
}

func (f *fakeEventService) GetMyEvents(ctx context.Context, userID string) (*domain.MyEvents, error) {
	f.lastCaller = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventService) GetUpcomingCount(ctx context.Context, userID string) (int, error) {
	f.lastCaller = userID
	return f.upcoming, f.err
}

func (f *fakeEventService) CancelEvent(ctx context.Context, hostID, eventID string) error {
	f.lastCaller, f.lastEvent, f.closedAs = hostID, eventID, domain.EventCancelled
	return f.err
}

func (f *fakeEventService) CompleteEvent(ctx context.Context, hostID, eventID string) error {
	f.lastCaller, f.lastEvent, f.closedAs = hostID, eventID, domain.EventCompleted
	return f.err
}
