package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"holidaymatch/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

const profileColumns = `user_id, role, first_name, last_name, age, city, bio, photo_url, phone, address,
	languages, available_dates, concept, capacity, verified, is_visible,
	email_notifications, notify_on_invitation, notify_on_match, notify_on_message, last_active`

func scanProfile(s rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var lastName, photoURL, phone, address, concept sql.NullString
	var age, capacity sql.NullInt64
	var emailNotif, notifyInv, notifyMatch, notifyMsg sql.NullBool
	var lastActive sql.NullTime
	var languages, dates pq.StringArray
	err := s.Scan(
		&p.UserID, &p.Role, &p.FirstName, &lastName, &age, &p.City, &p.Bio, &photoURL, &phone, &address,
		&languages, &dates, &concept, &capacity, &p.Verified, &p.IsVisible,
		&emailNotif, &notifyInv, &notifyMatch, &notifyMsg, &lastActive,
	)
	if err != nil {
		return nil, err
	}
	p.LastName = nullStringPtr(lastName)
	p.PhotoURL = nullStringPtr(photoURL)
	p.Phone = nullStringPtr(phone)
	p.Address = nullStringPtr(address)
	if concept.Valid {
		c := domain.Concept(concept.String)
		p.Concept = &c
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if capacity.Valid {
		v := int(capacity.Int64)
		p.Capacity = &v
	}
	p.Languages = []string(languages)
	if p.Languages == nil {
		p.Languages = []string{}
	}
	p.AvailableDates = make([]domain.HolidayDate, 0, len(dates))
	for _, d := range dates {
		p.AvailableDates = append(p.AvailableDates, domain.HolidayDate(d))
	}
	p.Notifications = domain.NotificationPreferences{
		EmailNotifications: nullBoolPtr(emailNotif),
		NotifyOnInvitation: nullBoolPtr(notifyInv),
		NotifyOnMatch:      nullBoolPtr(notifyMatch),
		NotifyOnMessage:    nullBoolPtr(notifyMsg),
	}
	if lastActive.Valid {
		p.LastActive = &lastActive.Time
	}
	return p, nil
}

func nullBoolPtr(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	b := nb.Bool
	return &b
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, lookupErr(err)
	}
	return p, nil
}

// List applies the filter in SQL and returns one page plus the total match count.
func (r *profileRepository) List(ctx context.Context, filter domain.ProfileFilter, page domain.PaginationParams) ([]*domain.Profile, int, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, fmt.Sprintf("(is_visible OR user_id = %s)", arg(filter.ViewerID)))
	if filter.City != "" {
		conds = append(conds, "city = "+arg(filter.City))
	}
	if filter.Role != "" {
		conds = append(conds, fmt.Sprintf("(role = %s OR role = 'both')", arg(string(filter.Role))))
	}
	if filter.Language != "" {
		conds = append(conds, arg(filter.Language)+" = ANY(languages)")
	}
	if filter.Date != "" {
		conds = append(conds, arg(string(filter.Date))+" = ANY(available_dates)")
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + where + ` ORDER BY last_active DESC NULLS LAST, user_id`
	if page.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(page.PageSize), arg(page.Offset()))
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]*domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}
