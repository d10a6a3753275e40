package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/njerikim/baraza/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `
	m.id, m.sender_id, m.recipient_id, m.content, m.media_url, m.read, m.created_at,
	u.username, u.avatar_url`

// pairFilter matches messages between the unordered pair ($1, $2).
const pairFilter = `
	((m.sender_id = $1 AND m.recipient_id = $2) OR (m.sender_id = $2 AND m.recipient_id = $1))`

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (sender_id, recipient_id, content, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.pool.QueryRow(ctx, query,
		msg.SenderID, msg.RecipientID, msg.Content, msg.MediaURL, msg.CreatedAt,
	).Scan(&msg.ID)
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.MediaURL,
		&msg.Read, &msg.CreatedAt, &msg.SenderUsername, &msg.SenderAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

// ListConversation returns the chat log in ascending order; the filter is
// symmetric in the pair, so swapping userID and otherID yields the same set.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE ` + pairFilter + `
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, userID, otherID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessageRepo) Latest(ctx context.Context, userID, otherID uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE ` + pairFilter + `
		ORDER BY m.id DESC
		LIMIT 1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, userID, otherID).Scan(
		&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.MediaURL,
		&msg.Read, &msg.CreatedAt, &msg.SenderUsername, &msg.SenderAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

func (r *MessageRepo) MarkRead(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE messages SET read = TRUE WHERE id = $1`, id)
	return err
}

func (r *MessageRepo) Search(ctx context.Context, userID, otherID uuid.UUID, query string) ([]domain.Message, error) {
	sql := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE ` + pairFilter + `
			AND m.content ILIKE '%' || $3 || '%'
		ORDER BY m.created_at DESC, m.id DESC`

	rows, err := r.pool.Query(ctx, sql, userID, otherID, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessageRepo) DeleteConversation(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM messages m
		WHERE ` + pairFilter
	tag, err := r.pool.Exec(ctx, query, userID, otherID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListInbox groups all messages touching userID by the other participant and
// picks MAX(id) per group, mirroring the conversations view: one row per
// counterpart, freshest first. IDs are serial, so MAX(id) is also the latest
// message and breaks timestamp ties by insertion order.
func (r *MessageRepo) ListInbox(ctx context.Context, userID uuid.UUID) ([]domain.InboxEntry, error) {
	query := `
		SELECT
			u.id, u.username, u.email, u.bio, u.avatar_url, u.joined_at,
			m.id, m.sender_id, m.recipient_id, m.content, m.media_url, m.read, m.created_at
		FROM (
			SELECT MAX(id) AS max_id,
				CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS other_user_id
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
			GROUP BY other_user_id
		) latest
		JOIN messages m ON m.id = latest.max_id
		JOIN users u ON u.id = latest.other_user_id
		ORDER BY m.created_at DESC, m.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.InboxEntry
	for rows.Next() {
		var e domain.InboxEntry
		if err := rows.Scan(
			&e.Counterpart.ID, &e.Counterpart.Username, &e.Counterpart.Email,
			&e.Counterpart.Bio, &e.Counterpart.AvatarURL, &e.Counterpart.JoinedAt,
			&e.LastMessage.ID, &e.LastMessage.SenderID, &e.LastMessage.RecipientID,
			&e.LastMessage.Content, &e.LastMessage.MediaURL, &e.LastMessage.Read,
			&e.LastMessage.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.MediaURL,
			&msg.Read, &msg.CreatedAt, &msg.SenderUsername, &msg.SenderAvatarURL,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
