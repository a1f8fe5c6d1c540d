package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

type ConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// ConversationListingRow is one unshaped listing result: the conversation,
// its latest message (if any), the names of the other participants and the
// unread count computed against the requesting educator's last_read_at.
type ConversationListingRow struct {
	ID                int64
	Title             *string
	IsGroup           bool
	UpdatedAt         time.Time
	MemberCount       int
	UnreadCount       int
	OtherNames        []string
	LastContent       *string
	LastSenderName    *string
	LastCreatedAt     *time.Time
}

func (r *ConversationRepository) Create(ctx context.Context, title *string, isGroup bool, createdBy int64) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (title, is_group, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, title, is_group, created_by, created_at, updated_at
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, title, isGroup, createdBy).Scan(
		&conversation.ID,
		&conversation.Title,
		&conversation.IsGroup,
		&conversation.CreatedBy,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// AddParticipants inserts one participation row per educator. The primary
// key on (conversation_id, educator_id) keeps the pair unique; re-adding an
// existing participant is a no-op.
func (r *ConversationRepository) AddParticipants(ctx context.Context, conversationID int64, educatorIDs []int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, educator_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT (conversation_id, educator_id) DO NOTHING
	`, conversationID, educatorIDs)
	return err
}

func (r *ConversationRepository) IsParticipant(ctx context.Context, conversationID, educatorID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND educator_id = $2
		)
	`, conversationID, educatorID).Scan(&exists)
	return exists, err
}

// ListForEducator returns every conversation the educator participates in,
// newest activity first, with last-message preview data and unread counts
// resolved in one round trip.
func (r *ConversationRepository) ListForEducator(ctx context.Context, educatorID int64) ([]ConversationListingRow, error) {
	query := `
		SELECT
			c.id,
			c.title,
			c.is_group,
			c.updated_at,
			mc.member_count,
			COALESCE(uc.unread_count, 0),
			COALESCE(others.names, '{}'),
			lm.content,
			lm.sender_name,
			lm.created_at
		FROM conversations c
		JOIN conversation_participants cp
			ON cp.conversation_id = c.id AND cp.educator_id = $1
		LEFT JOIN LATERAL (
			SELECT m.content, e.first_name AS sender_name, m.created_at
			FROM messages m
			JOIN educators e ON e.id = m.sender_id
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread_count
			FROM messages m
			WHERE m.conversation_id = c.id
			  AND m.sender_id <> $1
			  AND m.created_at > COALESCE(cp.last_read_at, 'epoch'::timestamptz)
		) uc ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS member_count
			FROM conversation_participants p
			WHERE p.conversation_id = c.id
		) mc ON TRUE
		LEFT JOIN LATERAL (
			SELECT array_agg(TRIM(e.first_name || ' ' || e.last_name) ORDER BY p.joined_at) AS names
			FROM conversation_participants p
			JOIN educators e ON e.id = p.educator_id
			WHERE p.conversation_id = c.id AND p.educator_id <> $1
		) others ON TRUE
		ORDER BY c.updated_at DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]ConversationListingRow, 0)
	for rows.Next() {
		var row ConversationListingRow
		var lastContent, lastSender sql.NullString
		var lastCreatedAt sql.NullTime

		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.IsGroup,
			&row.UpdatedAt,
			&row.MemberCount,
			&row.UnreadCount,
			&row.OtherNames,
			&lastContent,
			&lastSender,
			&lastCreatedAt,
		); err != nil {
			return nil, err
		}

		if lastContent.Valid {
			row.LastContent = &lastContent.String
		}
		if lastSender.Valid {
			row.LastSenderName = &lastSender.String
		}
		if lastCreatedAt.Valid {
			row.LastCreatedAt = &lastCreatedAt.Time
		}

		listings = append(listings, row)
	}
	return listings, rows.Err()
}

func (r *ConversationRepository) GetByIDForParticipant(ctx context.Context, conversationID, educatorID int64) (*models.Conversation, error) {
	query := `
		SELECT c.id, c.title, c.is_group, c.created_by, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_participants cp
			ON cp.conversation_id = c.id AND cp.educator_id = $2
		WHERE c.id = $1
	`
	var conversation models.Conversation
	err := r.db.QueryRow(ctx, query, conversationID, educatorID).Scan(
		&conversation.ID,
		&conversation.Title,
		&conversation.IsGroup,
		&conversation.CreatedBy,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// Touch bumps updated_at so the conversation resorts to the top of the
// listing after a new message.
func (r *ConversationRepository) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`, conversationID)
	return err
}

// UpdateLastRead records an explicit read event for the educator.
func (r *ConversationRepository) UpdateLastRead(ctx context.Context, conversationID, educatorID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE conversation_participants
		SET last_read_at = NOW()
		WHERE conversation_id = $1 AND educator_id = $2
	`, conversationID, educatorID)
	return err
}
