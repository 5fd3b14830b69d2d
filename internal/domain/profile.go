package domain

import (
	"context"
	"time"
)

// Role says whether a user hosts, attends, or both.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
	RoleBoth  Role = "both"
)

// Concept is the kind of gathering a host offers.
type Concept string

const (
	ConceptParty   Concept = "Party"
	ConceptDinner  Concept = "Dinner"
	ConceptHangout Concept = "Hangout"
)

// NotificationPreferences holds the email flags stored on a profile. A nil flag means enabled.
type NotificationPreferences struct {
	EmailNotifications *bool `json:"email_notifications,omitempty"`
	NotifyOnInvitation *bool `json:"notify_on_invitation,omitempty"`
	NotifyOnMatch      *bool `json:"notify_on_match,omitempty"`
	NotifyOnMessage    *bool `json:"notify_on_message,omitempty"`
}

func enabled(flag *bool) bool { return flag == nil || *flag }

// Wants reports whether the profile owner accepts email for the given notification type.
func (p NotificationPreferences) Wants(t NotificationType) bool {
	if !enabled(p.EmailNotifications) {
		return false
	}
	switch t {
	case NotificationInvitationReceived, NotificationInvitationDeclined:
		return enabled(p.NotifyOnInvitation)
	case NotificationInvitationAccepted:
		return enabled(p.NotifyOnMatch)
	case NotificationNewMessage:
		return enabled(p.NotifyOnMessage)
	}
	return false
}

// Profile is the stored profile of a user. LastName, Phone and Address are contact
// fields that are only disclosed to the owner and matched users.
// swagger:model Profile
type Profile struct {
	UserID         string                  `json:"user_id"`
	Role           Role                    `json:"role"`
	FirstName      string                  `json:"first_name"`
	LastName       *string                 `json:"last_name,omitempty"`
	Age            *int                    `json:"age,omitempty"`
	City           string                  `json:"city"`
	Bio            string                  `json:"bio"`
	PhotoURL       *string                 `json:"photo_url,omitempty"`
	Phone          *string                 `json:"phone,omitempty"`
	Address        *string                 `json:"address,omitempty"`
	Languages      []string                `json:"languages"`
	AvailableDates []HolidayDate           `json:"available_dates"`
	Concept        *Concept                `json:"concept,omitempty"`
	Capacity       *int                    `json:"capacity,omitempty"`
	Verified       bool                    `json:"verified"`
	IsVisible      bool                    `json:"is_visible"`
	Notifications  NotificationPreferences `json:"-"`
	LastActive     *time.Time              `json:"last_active,omitempty"`
}

// ProfileView is a Profile projected for a particular viewer.
// swagger:model ProfileView
type ProfileView struct {
	Profile
	ConnectionStatus *ConnectionStatus `json:"connection_status,omitempty"`
}

// ProfileSummary is the compact profile attached to invitations, matches and conversations.
// Public summaries carry only UserID, FirstName, PhotoURL and City.
// swagger:model ProfileSummary
type ProfileSummary struct {
	UserID    string   `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  *string  `json:"last_name,omitempty"`
	Age       *int     `json:"age,omitempty"`
	City      string   `json:"city"`
	Bio       string   `json:"bio,omitempty"`
	PhotoURL  *string  `json:"photo_url,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	Address   *string  `json:"address,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Role      Role     `json:"role,omitempty"`
	Concept   *Concept `json:"concept,omitempty"`
	Capacity  *int     `json:"capacity,omitempty"`
}

// PublicSummary returns the pre-match summary of p.
func (p *Profile) PublicSummary() *ProfileSummary {
	return &ProfileSummary{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		PhotoURL:  p.PhotoURL,
		City:      p.City,
	}
}

// FullSummary returns the summary of p including contact fields.
func (p *Profile) FullSummary() *ProfileSummary {
	return &ProfileSummary{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Age:       p.Age,
		City:      p.City,
		Bio:       p.Bio,
		PhotoURL:  p.PhotoURL,
		Phone:     p.Phone,
		Address:   p.Address,
		Languages: p.Languages,
		Role:      p.Role,
		Concept:   p.Concept,
		Capacity:  p.Capacity,
	}
}

// ProfileFilter narrows a profile listing. Empty fields do not filter.
type ProfileFilter struct {
	City     string
	Role     Role
	Language string
	Date     HolidayDate
	// ViewerID sees their own profile even when it is hidden.
	ViewerID string
}

// ProfileRepository is the read side of the profile collaborator.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	List(ctx context.Context, filter ProfileFilter, page PaginationParams) ([]*Profile, int, error)
}

// DisclosurePolicy decides which profile fields a viewer may see.
type DisclosurePolicy interface {
	Project(ctx context.Context, profile *Profile, viewerID string) (*ProfileView, error)
	ProjectForList(profile *Profile) *ProfileView
}

// ProfileService serves profile reads through the disclosure policy.
type ProfileService interface {
	GetProfile(ctx context.Context, viewerID, userID string) (*ProfileView, error)
	ListProfiles(ctx context.Context, viewerID string, filter ProfileFilter, page PaginationParams) ([]*ProfileView, int, error)
}
