package postgres

import (
	"context"
	"time"

	"github.com/iamasit07/dm-chat/internal/domain"
)

// MessageRepo is the Postgres chat store. The BIGSERIAL id is the message sequence.
type MessageRepo struct {
	db DBTX
}

func NewMessageRepo(db DBTX) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage persists msg and fills in its sequence.
// Timestamps are truncated to the microsecond precision of TIMESTAMPTZ.
func (r *MessageRepo) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	msg.Timestamp = msg.Timestamp.UTC().Truncate(time.Microsecond)

	query := `
	INSERT INTO messages (message_id, room, sender, body, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id;
	`
	err := r.db.QueryRowContext(ctx, query, msg.ID, msg.Room.String(), msg.Sender, msg.Body, msg.Timestamp).Scan(&msg.Seq)
	if err != nil {
		return translate(err)
	}
	return nil
}

// RoomMessages returns the whole conversation ordered by (created_at, id).
func (r *MessageRepo) RoomMessages(ctx context.Context, room domain.RoomKey) ([]domain.ChatMessage, error) {
	query := `
	SELECT id, message_id, sender, body, created_at
	FROM messages
	WHERE room = $1
	ORDER BY created_at ASC, id ASC;
	`
	rows, err := r.db.QueryContext(ctx, query, room.String())
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		msg := domain.ChatMessage{Room: room}
		if err := rows.Scan(&msg.Seq, &msg.ID, &msg.Sender, &msg.Body, &msg.Timestamp); err != nil {
			return nil, translate(err)
		}
		msg.Timestamp = msg.Timestamp.UTC()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return messages, nil
}
