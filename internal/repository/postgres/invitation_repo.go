package postgres

import (
	"context"
	"database/sql"
	"time"

	"holidaymatch/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

const invitationColumns = `id, from_user_id, to_user_id, status, date, created_at, responded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(s rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var respondedAt sql.NullTime
	if err := s.Scan(&inv.ID, &inv.FromUserID, &inv.ToUserID, &inv.Status, &inv.Date, &inv.CreatedAt, &respondedAt); err != nil {
		return nil, err
	}
	if respondedAt.Valid {
		inv.RespondedAt = &respondedAt.Time
	}
	return inv, nil
}

// Create relies on the unique index over (from_user_id, to_user_id) so that two
// concurrent sends for the same ordered pair cannot both succeed. A recipient
// that is not a user fails the foreign key and is reported as ErrNotFound.
func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (from_user_id, to_user_id, status, date, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.FromUserID, inv.ToUserID, inv.Status, inv.Date, inv.CreatedAt).
		Scan(&inv.ID)
	if err != nil {
		switch pqCode(err) {
		case uniqueViolation:
			return domain.ErrDuplicateInvitation
		case foreignKeyViolation, invalidTextRepresentation:
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, lookupErr(err)
	}
	return inv, nil
}

func (r *invitationRepository) GetByPair(ctx context.Context, fromUserID, toUserID string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE from_user_id = $1 AND to_user_id = $2`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, fromUserID, toUserID))
	if err != nil {
		return nil, lookupErr(err)
	}
	return inv, nil
}

func (r *invitationRepository) ListByFromUserID(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE from_user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *invitationRepository) ListByToUserID(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE to_user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *invitationRepository) ListAccepted(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE status = 'accepted' AND (from_user_id = $1 OR to_user_id = $1)
		ORDER BY COALESCE(responded_at, created_at) DESC
	`
	return r.list(ctx, query, userID)
}

func (r *invitationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Invitation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *invitationRepository) CountPendingByToUserID(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM invitations WHERE to_user_id = $1 AND status = 'pending'`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Resolve only updates rows that are still pending, so concurrent responses
// to the same invitation resolve it exactly once.
func (r *invitationRepository) Resolve(ctx context.Context, id string, status domain.InvitationStatus, respondedAt time.Time) error {
	query := `
		UPDATE invitations
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, status, respondedAt, id)
	if err != nil {
		return lookupErr(err)
	}
	return r.checkPendingAffected(ctx, result, id)
}

func (r *invitationRepository) DeletePending(ctx context.Context, id string) error {
	query := `DELETE FROM invitations WHERE id = $1 AND status = 'pending'`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return lookupErr(err)
	}
	return r.checkPendingAffected(ctx, result, id)
}

// checkPendingAffected distinguishes a missing row from a row that is no longer pending.
func (r *invitationRepository) checkPendingAffected(ctx context.Context, result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidStatusTransition
}
