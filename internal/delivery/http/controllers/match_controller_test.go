package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holidaymatch/internal/delivery/http/helpers"
	"holidaymatch/internal/domain"
)

func TestMatchController_List(t *testing.T) {
	t.Run("nil slice encodes as empty list", func(t *testing.T) {
		ctrl := NewMatchController(testLogger, &fakeMatchService{}, &fakeConversationService{})
		rr := httptest.NewRecorder()
		ctrl.List(rr, newRequest(http.MethodGet, "/matches", "", "", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
	})

	t.Run("returns matches", func(t *testing.T) {
		phone := "555-1"
		fake := &fakeMatchService{matches: []*domain.Match{{
			InvitationID: "inv-1",
			Date:         domain.BoxingDay,
			MatchedAt:    time.Date(2026, 12, 2, 9, 0, 0, 0, time.UTC),
			IsSender:     true,
			OtherUser:    &domain.ProfileSummary{UserID: "host-1", FirstName: "Hanna", Phone: &phone},
		}}}
		ctrl := NewMatchController(testLogger, fake, &fakeConversationService{})
		rr := httptest.NewRecorder()
		ctrl.List(rr, newRequest(http.MethodGet, "/matches", "", "guest-1", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var got []*domain.Match
		require.Nil(t, decodeEnvelope(t, rr, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "555-1", *got[0].OtherUser.Phone)
		assert.Equal(t, "guest-1", fake.lastViewer)
	})
}

func TestMatchController_AreMatchedAndConnection(t *testing.T) {
	fake := &fakeMatchService{
		matched: true,
		conn:    &domain.Connection{Status: domain.ConnectionPendingReceived, Date: domain.NewYearsEve, InvitationID: "inv-9"},
	}
	ctrl := NewMatchController(testLogger, fake, &fakeConversationService{})
	path := map[string]string{"userID": "host-1"}

	rr := httptest.NewRecorder()
	ctrl.AreMatched(rr, newRequest(http.MethodGet, "/users/host-1/matched", "", "guest-1", path))
	require.Equal(t, http.StatusOK, rr.Code)
	var matched AreMatchedResponse
	require.Nil(t, decodeEnvelope(t, rr, &matched))
	assert.True(t, matched.Matched)
	assert.Equal(t, "host-1", fake.lastOther)

	rr = httptest.NewRecorder()
	ctrl.Connection(rr, newRequest(http.MethodGet, "/users/host-1/connection", "", "guest-1", path))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"status":"pending_received","date":"31 Dec","invitation_id":"inv-9"},"error":null}`, rr.Body.String())

	fake.err = assert.AnError
	rr = httptest.NewRecorder()
	ctrl.Connection(rr, newRequest(http.MethodGet, "/users/host-1/connection", "", "guest-1", path))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	apiErr := decodeEnvelope(t, rr, nil)
	require.NotNil(t, apiErr)
	assert.NotContains(t, apiErr.Message, assert.AnError.Error())
}

func TestMatchController_SendEventCard(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{name: "success", body: `{"date":"25 Dec","address":"Main St 1","note":"bring snacks"}`, wantStatus: http.StatusCreated},
		{name: "invalid date", body: `{"date":"Christmas"}`, wantStatus: http.StatusBadRequest, wantBodyCode: helpers.ErrCodeBadRequest},
		{name: "not matched", body: `{"date":"25 Dec"}`, fakeErr: domain.ErrNotMatched, wantStatus: http.StatusForbidden, wantBodyCode: helpers.ErrCodeForbidden},
		{name: "anonymous", body: `{"date":"25 Dec"}`, fakeErr: domain.ErrNotAuthenticated, wantStatus: http.StatusUnauthorized, wantBodyCode: helpers.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convs := &fakeConversationService{
				err: tt.fakeErr,
				msg: &domain.Message{ID: "m1", Kind: domain.MessageEventCard, Content: domain.EventCardMessageContent},
			}
			ctrl := NewMatchController(testLogger, &fakeMatchService{}, convs)
			rr := httptest.NewRecorder()
			req := newRequest(http.MethodPost, "/users/host-1/event-cards", tt.body, "guest-1", map[string]string{"userID": "host-1"})

			ctrl.SendEventCard(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var got domain.Message
			apiErr := decodeEnvelope(t, rr, &got)
			if tt.wantBodyCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantBodyCode, apiErr.Code)
				return
			}
			assert.Equal(t, domain.MessageEventCard, got.Kind)
			require.NotNil(t, convs.lastCard)
			assert.Equal(t, domain.ChristmasDay, convs.lastCard.Date)
			assert.Equal(t, "Main St 1", *convs.lastCard.Address)
			assert.Nil(t, convs.lastCard.Phone)
			assert.Equal(t, "host-1", convs.lastTarget)
		})
	}
}
