package main

import (
	"time"

	"holidaymatch/internal/domain"
	"holidaymatch/internal/repository/memory"
)

// seedDemo fills the in-memory collaborators with a few users so the API is usable
// without a database. Tokens for them can be minted with cmd/devtoken.
func seedDemo(users *memory.UserRepository, profiles *memory.ProfileRepository) {
	now := time.Now().UTC()
	party, dinner := domain.ConceptParty, domain.ConceptDinner
	capacity := 6
	demo := []struct {
		id, first, last, city string
		role                  domain.Role
		concept               *domain.Concept
		dates                 []domain.HolidayDate
	}{
		{"demo-host-1", "Hanna", "Berg", "Berlin", domain.RoleHost, &dinner, []domain.HolidayDate{domain.ChristmasEve, domain.ChristmasDay}},
		{"demo-host-2", "Luca", "Rossi", "Munich", domain.RoleBoth, &party, []domain.HolidayDate{domain.NewYearsEve}},
		{"demo-guest-1", "Gus", "Meyer", "Berlin", domain.RoleGuest, nil, []domain.HolidayDate{domain.ChristmasEve, domain.BoxingDay}},
	}
	for _, d := range demo {
		users.Put(&domain.User{ID: d.id, Email: d.id + "@example.com", Name: d.first + " " + d.last, CreatedAt: now})
		last, phone, address := d.last, "+49 30 000000", d.city+" Hauptstrasse 1"
		p := &domain.Profile{
			UserID:         d.id,
			Role:           d.role,
			FirstName:      d.first,
			LastName:       &last,
			City:           d.city,
			Bio:            "Happy to share the holidays.",
			Phone:          &phone,
			Address:        &address,
			Languages:      []string{"English", "German"},
			AvailableDates: d.dates,
			Concept:        d.concept,
			IsVisible:      true,
			LastActive:     &now,
		}
		if d.role != domain.RoleGuest {
			p.Capacity = &capacity
		}
		profiles.Put(p)
	}
}
