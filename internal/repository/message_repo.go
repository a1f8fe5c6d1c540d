package repository

import (
	"context"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// MessageWithSender is a message row joined with its sender's identity.
type MessageWithSender struct {
	models.Message
	SenderFirstName string
	SenderLastName  string
	SenderPhotoURL  *string
}

const messageColumns = `
	m.id, m.conversation_id, m.sender_id, m.client_key, m.content,
	m.message_type, m.attachment_url, m.created_at
`

type CreateMessageInput struct {
	ConversationID int64
	SenderID       int64
	ClientKey      string
	Content        string
	MessageType    string
	AttachmentURL  *string
}

// Create inserts a message. The unique index on client_key makes retries
// idempotent: a duplicate key returns the previously persisted row instead
// of inserting again.
func (r *MessageRepository) Create(ctx context.Context, input CreateMessageInput) (*models.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, client_key, content, message_type, attachment_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_key) DO UPDATE SET client_key = messages.client_key
		RETURNING id, conversation_id, sender_id, client_key, content, message_type, attachment_url, created_at
	`
	var message models.Message
	err := r.db.QueryRow(ctx, query,
		input.ConversationID,
		input.SenderID,
		input.ClientKey,
		input.Content,
		input.MessageType,
		input.AttachmentURL,
	).Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.ClientKey,
		&message.Content,
		&message.MessageType,
		&message.AttachmentURL,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByConversation returns the full history oldest-first, each row joined
// with the sender's display identity.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]MessageWithSender, error) {
	query := `
		SELECT ` + messageColumns + `,
			e.first_name, e.last_name, e.profile_photo_url
		FROM messages m
		JOIN educators e ON e.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`
	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]MessageWithSender, 0)
	for rows.Next() {
		var message MessageWithSender
		if err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.SenderID,
			&message.ClientKey,
			&message.Content,
			&message.MessageType,
			&message.AttachmentURL,
			&message.CreatedAt,
			&message.SenderFirstName,
			&message.SenderLastName,
			&message.SenderPhotoURL,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// UnreadCount recomputes the derived unread count for one participant.
func (r *MessageRepository) UnreadCount(ctx context.Context, conversationID, educatorID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversation_participants cp
			ON cp.conversation_id = m.conversation_id AND cp.educator_id = $2
		WHERE m.conversation_id = $1
		  AND m.sender_id <> $2
		  AND m.created_at > COALESCE(cp.last_read_at, 'epoch'::timestamptz)
	`, conversationID, educatorID).Scan(&count)
	return count, err
}
