package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"holidaymatch/internal/domain"
)

type conversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) domain.ConversationRepository {
	return &conversationRepository{
		DB: db,
	}
}

const conversationColumns = `id, guest_id, host_id, status, created_at, last_message_at`

const messageColumns = `id, conversation_id, sender_id, content, kind, read, event_date, event_address, event_phone, event_note, created_at`

func scanConversation(s rowScanner) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	if err := s.Scan(&c.ID, &c.GuestID, &c.HostID, &c.Status, &c.CreatedAt, &c.LastMessageAt); err != nil {
		return nil, err
	}
	return c, nil
}

func scanMessage(s rowScanner) (*domain.Message, error) {
	m := &domain.Message{}
	var date, address, phone, note sql.NullString
	if err := s.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Kind, &m.Read,
		&date, &address, &phone, &note, &m.CreatedAt); err != nil {
		return nil, err
	}
	if date.Valid {
		m.EventCard = &domain.EventCard{
			Date:    domain.HolidayDate(date.String),
			Address: nullStringPtr(address),
			Phone:   nullStringPtr(phone),
			Note:    nullStringPtr(note),
		}
	}
	return m, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// participantOrder returns the canonical pair sorted so that the unique index on
// (participant_low, participant_high) covers both role assignments.
func participantOrder(a, b string) (string, string) {
	a, b = canonicalID(a), canonicalID(b)
	if a > b {
		return b, a
	}
	return a, b
}

// CreateIfAbsent inserts the conversation with ON CONFLICT DO NOTHING and writes the
// initial message in the same transaction only when the insert won.
func (r *conversationRepository) CreateIfAbsent(ctx context.Context, conv *domain.Conversation, initial *domain.Message) (*domain.Conversation, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored, created, err := createConversation(ctx, tx, conv, initial)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return stored, created, nil
}

// createConversation runs inside tx. When the pair already has a conversation it
// returns that row, read in the same transaction.
func createConversation(ctx context.Context, tx *sql.Tx, conv *domain.Conversation, initial *domain.Message) (*domain.Conversation, bool, error) {
	low, high := participantOrder(conv.GuestID, conv.HostID)
	insertConv := `
		INSERT INTO conversations (guest_id, host_id, participant_low, participant_high, status, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (participant_low, participant_high) DO NOTHING
		RETURNING id
	`
	err := tx.QueryRowContext(ctx, insertConv, conv.GuestID, conv.HostID, low, high, conv.Status, conv.CreatedAt, conv.LastMessageAt).
		Scan(&conv.ID)
	if errors.Is(err, sql.ErrNoRows) {
		query := `SELECT ` + conversationColumns + ` FROM conversations WHERE participant_low = $1 AND participant_high = $2`
		existing, err := scanConversation(tx.QueryRowContext(ctx, query, low, high))
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if initial != nil {
		initial.ConversationID = conv.ID
		if err := insertMessage(ctx, tx, initial); err != nil {
			return nil, false, err
		}
	}
	return conv, true, nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, m *domain.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, content, kind, read, event_date, event_address, event_phone, event_note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var date, address, phone, note sql.NullString
	if card := m.EventCard; card != nil {
		date = sql.NullString{String: string(card.Date), Valid: true}
		address = toNullString(card.Address)
		phone = toNullString(card.Phone)
		note = toNullString(card.Note)
	}
	return tx.QueryRowContext(ctx, query, m.ConversationID, m.SenderID, m.Content, m.Kind, m.Read,
		date, address, phone, note, m.CreatedAt).Scan(&m.ID)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	c, err := scanConversation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, lookupErr(err)
	}
	return c, nil
}

func (r *conversationRepository) GetByParticipants(ctx context.Context, a, b string) (*domain.Conversation, error) {
	low, high := participantOrder(a, b)
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE participant_low = $1 AND participant_high = $2`
	c, err := scanConversation(r.DB.QueryRowContext(ctx, query, low, high))
	if err != nil {
		return nil, lookupErr(err)
	}
	return c, nil
}

func (r *conversationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE guest_id = $1 OR host_id = $1
		ORDER BY last_message_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convs := make([]*domain.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *conversationRepository) AddMessage(ctx context.Context, msg *domain.Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	touch := `
		UPDATE conversations
		SET last_message_at = GREATEST(last_message_at, $1)
		WHERE id = $2
	`
	result, err := tx.ExecContext(ctx, touch, msg.CreatedAt, msg.ConversationID)
	if err != nil {
		return lookupErr(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *conversationRepository) UpdateStatus(ctx context.Context, id string, from []domain.ConversationStatus, to domain.ConversationStatus, msg *domain.Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	allowed := make([]string, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}
	var result sql.Result
	if msg == nil {
		query := `UPDATE conversations SET status = $1 WHERE id = $2 AND status = ANY($3)`
		result, err = tx.ExecContext(ctx, query, to, id, pq.Array(allowed))
	} else {
		query := `
			UPDATE conversations
			SET status = $1, last_message_at = GREATEST(last_message_at, $2)
			WHERE id = $3 AND status = ANY($4)
		`
		result, err = tx.ExecContext(ctx, query, to, msg.CreatedAt, id, pq.Array(allowed))
	}
	if err != nil {
		return lookupErr(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConversationState
	}
	if msg != nil {
		msg.ConversationID = id
		if err := insertMessage(ctx, tx, msg); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]*domain.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *conversationRepository) GetLastMessage(ctx context.Context, conversationID string) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	m, err := scanMessage(r.DB.QueryRowContext(ctx, query, conversationID))
	if err != nil {
		return nil, lookupErr(err)
	}
	return m, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	query := `
		UPDATE messages
		SET read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (r *conversationRepository) CountUnread(ctx context.Context, conversationIDs []string, readerID string) (int, error) {
	if len(conversationIDs) == 0 {
		return 0, nil
	}
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE conversation_id = ANY($1) AND sender_id <> $2 AND read = FALSE
	`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, pq.Array(conversationIDs), readerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
