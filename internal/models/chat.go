package models

import "time"

const (
	MessageTypeText       = "text"
	MessageTypeAttachment = "attachment"
)

type Conversation struct {
	ID        int64     `json:"id"`
	Title     *string   `json:"title"`
	IsGroup   bool      `json:"is_group"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationParticipant links a conversation to an educator. At most one
// row per (conversation, educator) pair; LastReadAt drives unread counts.
type ConversationParticipant struct {
	ConversationID int64      `json:"conversation_id"`
	EducatorID     int64      `json:"educator_id"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastReadAt     *time.Time `json:"last_read_at"`
}

// Message is immutable once created. ClientKey is a caller-generated
// idempotency key so a retried send never duplicates the row.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	ClientKey      string    `json:"client_key"`
	Content        string    `json:"content"`
	MessageType    string    `json:"message_type"`
	AttachmentURL  *string   `json:"attachment_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessagePreview is the last-message excerpt shown in the conversation list.
type MessagePreview struct {
	Content    string    `json:"content"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationSummary is one row of the conversation listing, already shaped
// for display.
type ConversationSummary struct {
	ID             int64           `json:"id"`
	DisplayName    string          `json:"display_name"`
	Avatar         string          `json:"avatar"`
	IsGroup        bool            `json:"is_group"`
	MemberCount    int             `json:"member_count"`
	LastMessage    *MessagePreview `json:"last_message,omitempty"`
	LastMessageAge string          `json:"last_message_age"`
	Preview        string          `json:"preview"`
	UnreadCount    int             `json:"unread_count"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MessageView is a message shaped for rendering: short time label, sender
// identity and the IsOwn flag computed against the requesting educator.
type MessageView struct {
	ID             int64   `json:"id"`
	ConversationID int64   `json:"conversation_id"`
	Content        string  `json:"content"`
	TimeLabel      string  `json:"time_label"`
	SenderID       int64   `json:"sender_id"`
	SenderName     string  `json:"sender_name"`
	SenderAvatar   *string `json:"sender_avatar"`
	IsOwn          bool    `json:"is_own"`
	MessageType    string  `json:"message_type"`
	AttachmentURL  *string `json:"attachment_url"`
}

// MessageHistory tags fetched messages with the conversation they belong to
// so a caller can discard responses that arrive after switching away.
type MessageHistory struct {
	ConversationID int64         `json:"conversation_id"`
	Messages       []MessageView `json:"messages"`
}
