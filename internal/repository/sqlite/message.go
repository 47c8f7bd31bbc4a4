package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/repository"
)

// MessageStore implements repository.MessageRepository on the shared pool.
type MessageStore struct {
	conn *sql.DB
}

var _ repository.MessageRepository = (*MessageStore)(nil)

// Create inserts a message, generating its ID (xid: time-ordered, so primary
// key order roughly matches send order) and timestamp.
func (s *MessageStore) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, text, image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Text,
		msg.Image,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting message (sender=%s): %w", msg.SenderID, err)
	}

	return nil
}

// Conversation returns all messages exchanged between two users, both
// directions interleaved, oldest first — the order a chat pane renders them.
func (s *MessageStore) Conversation(ctx context.Context, userA, userB string) ([]model.Message, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, text, image, created_at
		 FROM messages
		 WHERE (sender_id = ? AND receiver_id = ?)
		    OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at ASC, id ASC`,
		userA, userB, userB, userA,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading conversation %s/%s: %w", userA, userB, err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Text,
			&m.Image,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}

	return messages, nil
}
