package postgres

import (
	"context"
	"database/sql"

	"holidaymatch/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	var email, name sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &email, &name, &u.CreatedAt)
	if err != nil {
		return nil, lookupErr(err)
	}
	u.Email = email.String
	u.Name = name.String
	return u, nil
}
