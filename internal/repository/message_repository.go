package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/complaint-desk-api/internal/models"
)

const messageSelect = `SELECT m.id, m.complaint_id, m.sender_id, m.recipient_id, m.content, m.message_type, m.created_at,
       s.username AS sender_username, r.username AS recipient_username
FROM messages m
LEFT JOIN users s ON s.id = m.sender_id
LEFT JOIN users r ON r.id = m.recipient_id`

// MessageRepository persists complaint messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs the repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message. Missing complaint, sender or recipient rows yield ErrReferenceMissing.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, complaint_id, sender_id, recipient_id, content, message_type, created_at)
	VALUES (:id, :complaint_id, :sender_id, :recipient_id, :content, :message_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		if known := classify(err); known != nil {
			return fmt.Errorf("create message: %w", known)
		}
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListByType returns a complaint's messages of one type, oldest first.
func (r *MessageRepository) ListByType(ctx context.Context, complaintID string, typ models.MessageType) ([]models.Message, error) {
	const query = messageSelect + ` WHERE m.complaint_id = $1 AND m.message_type = $2 ORDER BY m.created_at ASC, m.id`
	messages := make([]models.Message, 0)
	if err := r.db.SelectContext(ctx, &messages, query, complaintID, typ); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// ListVisibleTo returns the complaint's public messages plus private messages sent by or addressed to userID, oldest first.
func (r *MessageRepository) ListVisibleTo(ctx context.Context, complaintID, userID string) ([]models.Message, error) {
	const query = messageSelect + ` WHERE m.complaint_id = $1
  AND (m.message_type = 'PUBLIC' OR (m.message_type = 'PRIVATE' AND (m.sender_id = $2 OR m.recipient_id = $2)))
ORDER BY m.created_at ASC, m.id`
	messages := make([]models.Message, 0)
	if err := r.db.SelectContext(ctx, &messages, query, complaintID, userID); err != nil {
		return nil, fmt.Errorf("list messages for user: %w", err)
	}
	return messages, nil
}
