package domain

import (
	"context"
	"fmt"
	"time"
)

// ConnectionStatus describes the relationship between a viewer and another user.
type ConnectionStatus int

const (
	ConnectionNotAuthenticated ConnectionStatus = iota
	ConnectionNone
	ConnectionPendingSent
	ConnectionPendingReceived
	ConnectionMatched
	ConnectionDeclinedByMe
	ConnectionDeclinedByThem
	// ConnectionSelf is only produced by profile listings for the viewer's own profile.
	ConnectionSelf
)

var connectionStatusNames = map[ConnectionStatus]string{
	ConnectionNotAuthenticated: "not_authenticated",
	ConnectionNone:             "none",
	ConnectionPendingSent:      "pending_sent",
	ConnectionPendingReceived:  "pending_received",
	ConnectionMatched:          "matched",
	ConnectionDeclinedByMe:     "declined_by_me",
	ConnectionDeclinedByThem:   "declined_by_them",
	ConnectionSelf:             "self",
}

func (s ConnectionStatus) String() string {
	if name, ok := connectionStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ConnectionStatus(%d)", int(s))
}

// MarshalText encodes the status as its snake_case name.
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	name, ok := connectionStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown connection status %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a snake_case status name.
func (s *ConnectionStatus) UnmarshalText(text []byte) error {
	for status, name := range connectionStatusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown connection status %q", string(text))
}

// Connection is the resolved status between a viewer and another user.
// Date is set for matched and pending statuses; InvitationID only for pending_received,
// so the viewer can respond to it.
// swagger:model Connection
type Connection struct {
	Status       ConnectionStatus `json:"status"`
	Date         HolidayDate      `json:"date,omitempty"`
	InvitationID string           `json:"invitation_id,omitempty"`
}

// Match is an accepted invitation seen from one participant, with the counterpart fully disclosed.
// swagger:model Match
type Match struct {
	InvitationID string          `json:"invitation_id"`
	Date         HolidayDate     `json:"date"`
	MatchedAt    time.Time       `json:"matched_at"`
	IsSender     bool            `json:"is_sender"`
	OtherUser    *ProfileSummary `json:"other_user"`
}

// MatchService resolves match state from the invitation set.
type MatchService interface {
	AreMatched(ctx context.Context, a, b string) (bool, error)
	GetConnectionStatus(ctx context.Context, viewerID, otherID string) (*Connection, error)
	GetMatches(ctx context.Context, userID string) ([]*Match, error)
}
