package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"holidaymatch/internal/domain"
)

type invitationAcceptor struct {
	DB *sql.DB
}

// NewInvitationAcceptor returns an acceptor that resolves the invitation and
// provisions the conversation in one transaction.
func NewInvitationAcceptor(db *sql.DB) domain.InvitationAcceptor {
	return &invitationAcceptor{
		DB: db,
	}
}

func (a *invitationAcceptor) Accept(ctx context.Context, invitationID string, respondedAt time.Time, conv *domain.Conversation, initial *domain.Message) (*domain.Conversation, error) {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE invitations
		SET status = 'accepted', responded_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	result, err := tx.ExecContext(ctx, query, respondedAt, invitationID)
	if err != nil {
		return nil, lookupErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE id = $1)`, invitationID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrInvalidStatusTransition
	}

	stored, _, err := createConversation(ctx, tx, conv, initial)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}
