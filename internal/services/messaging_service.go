package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/feed"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
)

type educatorResolver interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Educator, error)
	Search(ctx context.Context, excludeUserID int64, term string, limit int) ([]models.Educator, error)
}

type conversationStore interface {
	Create(ctx context.Context, title *string, isGroup bool, createdBy int64) (*models.Conversation, error)
	AddParticipants(ctx context.Context, conversationID int64, educatorIDs []int64) error
	IsParticipant(ctx context.Context, conversationID, educatorID int64) (bool, error)
	ListForEducator(ctx context.Context, educatorID int64) ([]repository.ConversationListingRow, error)
	Touch(ctx context.Context, conversationID int64) error
	UpdateLastRead(ctx context.Context, conversationID, educatorID int64) error
}

type messageStore interface {
	Create(ctx context.Context, input repository.CreateMessageInput) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]repository.MessageWithSender, error)
}

// MessagingService is the conversation/message data-access core. Read paths
// degrade to empty results on store failure so the messaging UI never
// hard-fails; write paths report their errors.
type MessagingService struct {
	educators     educatorResolver
	conversations conversationStore
	messages      messageStore
	broker        feed.Broker
	logger        zerolog.Logger
	now           func() time.Time
}

func NewMessagingService(
	educators educatorResolver,
	conversations conversationStore,
	messages messageStore,
	broker feed.Broker,
	logger zerolog.Logger,
) *MessagingService {
	return &MessagingService{
		educators:     educators,
		conversations: conversations,
		messages:      messages,
		broker:        broker,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *MessagingService) resolveEducator(ctx context.Context, userID int64) (*models.Educator, error) {
	educator, err := s.educators.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEducatorNotFound
		}
		return nil, err
	}
	return educator, nil
}

// ListConversations returns the educator's conversations newest-activity
// first, shaped for display. ErrEducatorNotFound means the account has no
// profile yet (onboarding state); any store failure yields an empty list.
func (s *MessagingService) ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrEducatorNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("messaging: resolve educator failed, returning empty listing")
		return []models.ConversationSummary{}, nil
	}

	rows, err := s.conversations.ListForEducator(ctx, educator.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("educator_id", educator.ID).Msg("messaging: conversation listing failed, returning empty listing")
		return []models.ConversationSummary{}, nil
	}

	now := s.now()
	summaries := make([]models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, shapeConversation(row, now))
	}
	return summaries, nil
}

func shapeConversation(row repository.ConversationListingRow, now time.Time) models.ConversationSummary {
	displayName := conversationDisplayName(row.Title, row.IsGroup, row.OtherNames)

	avatar := avatarInitials(displayName)
	if row.IsGroup {
		avatar = groupAvatar
	}

	summary := models.ConversationSummary{
		ID:          row.ID,
		DisplayName: displayName,
		Avatar:      avatar,
		IsGroup:     row.IsGroup,
		MemberCount: row.MemberCount,
		Preview:     emptyConversationPreview,
		UnreadCount: row.UnreadCount,
		UpdatedAt:   row.UpdatedAt,
	}

	if row.LastContent != nil && row.LastCreatedAt != nil {
		senderName := ""
		if row.LastSenderName != nil {
			senderName = *row.LastSenderName
		}
		summary.LastMessage = &models.MessagePreview{
			Content:    *row.LastContent,
			SenderName: senderName,
			CreatedAt:  *row.LastCreatedAt,
		}
		summary.Preview = *row.LastContent
		summary.LastMessageAge = relativeAge(*row.LastCreatedAt, now)
	}
	return summary
}

// FetchMessages returns the conversation history oldest-first, shaped for
// rendering. Only participants may read; non-members get ErrForbidden
// before any row is listed. With markRead set (an explicit open, not a
// background refresh) the caller's last_read_at is advanced after a
// successful fetch; a failed read-state update never blocks the history.
func (s *MessagingService) FetchMessages(ctx context.Context, conversationID, userID int64, markRead bool) (*models.MessageHistory, error) {
	history := &models.MessageHistory{
		ConversationID: conversationID,
		Messages:       []models.MessageView{},
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrEducatorNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("messaging: resolve educator failed, returning empty history")
		return history, nil
	}

	ok, err := s.conversations.IsParticipant(ctx, conversationID, educator.ID)
	if err != nil {
		// A failed membership check must not leak rows; the degraded
		// result stays empty.
		s.logger.Error().Err(err).Int64("conversation_id", conversationID).Msg("messaging: participant check failed, returning empty history")
		return history, nil
	}
	if !ok {
		return nil, ErrForbidden
	}

	rows, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		s.logger.Error().Err(err).Int64("conversation_id", conversationID).Msg("messaging: message fetch failed, returning empty history")
		return history, nil
	}

	for _, row := range rows {
		history.Messages = append(history.Messages, shapeMessage(row, educator.ID))
	}

	if markRead {
		if err := s.conversations.UpdateLastRead(ctx, conversationID, educator.ID); err != nil {
			s.logger.Error().Err(err).
				Int64("conversation_id", conversationID).
				Int64("educator_id", educator.ID).
				Msg("messaging: read-state update failed")
		}
	}
	return history, nil
}

func shapeMessage(row repository.MessageWithSender, viewerEducatorID int64) models.MessageView {
	name := strings.TrimSpace(row.SenderFirstName + " " + row.SenderLastName)
	return models.MessageView{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		Content:        row.Content,
		TimeLabel:      messageTimeLabel(row.CreatedAt),
		SenderID:       row.SenderID,
		SenderName:     name,
		SenderAvatar:   row.SenderPhotoURL,
		IsOwn:          row.SenderID == viewerEducatorID,
		MessageType:    row.MessageType,
		AttachmentURL:  row.AttachmentURL,
	}
}

type SendMessageInput struct {
	ConversationID int64
	UserID         int64
	Content        string
	MessageType    string
	AttachmentURL  *string
	// ClientKey deduplicates retries. Must be a UUID; empty means the
	// server generates one.
	ClientKey string
}

// SendMessage persists a message and returns it shaped for the sender's own
// view. Whitespace-only content is rejected before any store call.
func (s *MessagingService) SendMessage(ctx context.Context, input SendMessageInput) (*models.MessageView, error) {
	trimmed := strings.TrimSpace(input.Content)
	if trimmed == "" || input.ConversationID <= 0 {
		return nil, ErrInvalidInput
	}

	educator, err := s.resolveEducator(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	ok, err := s.conversations.IsParticipant(ctx, input.ConversationID, educator.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	messageType := input.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	clientKey := input.ClientKey
	if clientKey == "" {
		clientKey = uuid.NewString()
	} else if _, err := uuid.Parse(clientKey); err != nil {
		// client_key is a UUID column; a malformed key must fail as bad
		// input, not as a database error.
		return nil, ErrInvalidInput
	}

	message, err := s.messages.Create(ctx, repository.CreateMessageInput{
		ConversationID: input.ConversationID,
		SenderID:       educator.ID,
		ClientKey:      clientKey,
		Content:        trimmed,
		MessageType:    messageType,
		AttachmentURL:  input.AttachmentURL,
	})
	if err != nil {
		return nil, err
	}

	// The message is durable at this point; a failed resort or feed publish
	// is logged instead of failing the send.
	if err := s.conversations.Touch(ctx, input.ConversationID); err != nil {
		s.logger.Error().Err(err).Int64("conversation_id", input.ConversationID).Msg("messaging: conversation touch failed")
	}
	if err := s.broker.PublishMessage(ctx, *message); err != nil {
		s.logger.Error().Err(err).Int64("conversation_id", input.ConversationID).Msg("messaging: feed publish failed")
	}

	return &models.MessageView{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Content:        message.Content,
		TimeLabel:      messageTimeLabel(message.CreatedAt),
		SenderID:       message.SenderID,
		SenderName:     educator.FullName(),
		SenderAvatar:   educator.ProfilePhotoURL,
		IsOwn:          true,
		MessageType:    message.MessageType,
		AttachmentURL:  message.AttachmentURL,
	}, nil
}

// CreateConversation inserts the conversation and its participant rows,
// creator included. Group conversations without a title get a default one.
func (s *MessagingService) CreateConversation(ctx context.Context, userID int64, participantIDs []int64, title *string, isGroup bool) (*models.Conversation, error) {
	if len(participantIDs) == 0 {
		return nil, ErrInvalidInput
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return nil, err
	}

	if isGroup && (title == nil || *title == "") {
		defaultTitle := defaultGroupTitle
		title = &defaultTitle
	}

	conversation, err := s.conversations.Create(ctx, title, isGroup, educator.ID)
	if err != nil {
		return nil, err
	}

	members := append([]int64{educator.ID}, participantIDs...)
	if err := s.conversations.AddParticipants(ctx, conversation.ID, members); err != nil {
		return nil, err
	}
	return conversation, nil
}

// SearchEducators finds conversation partners by name or email, excluding
// the searcher. Failures degrade to an empty result.
func (s *MessagingService) SearchEducators(ctx context.Context, userID int64, term string, limit int) ([]models.Educator, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Educator{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	educators, err := s.educators.Search(ctx, userID, term, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("term", term).Msg("messaging: educator search failed, returning empty result")
		return []models.Educator{}, nil
	}
	return educators, nil
}

// EducatorID resolves the internal actor id behind an account.
func (s *MessagingService) EducatorID(ctx context.Context, userID int64) (int64, error) {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return 0, err
	}
	return educator.ID, nil
}

// CanAccessConversation reports whether the account's educator participates
// in the conversation.
func (s *MessagingService) CanAccessConversation(ctx context.Context, conversationID, userID int64) (bool, error) {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.conversations.IsParticipant(ctx, conversationID, educator.ID)
}

// ShapeFeedMessage shapes a raw change-feed row the way FetchMessages shapes
// stored rows. The feed delivers no sender identity beyond the id, so the
// sender name is left empty for the caller to fill from its own state.
func ShapeFeedMessage(message models.Message, viewerEducatorID int64) models.MessageView {
	return models.MessageView{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Content:        message.Content,
		TimeLabel:      messageTimeLabel(message.CreatedAt),
		SenderID:       message.SenderID,
		IsOwn:          message.SenderID == viewerEducatorID,
		MessageType:    message.MessageType,
		AttachmentURL:  message.AttachmentURL,
	}
}

// MarkConversationRead records an explicit read event for a participant.
func (s *MessagingService) MarkConversationRead(ctx context.Context, conversationID, userID int64) error {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.conversations.IsParticipant(ctx, conversationID, educator.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return s.conversations.UpdateLastRead(ctx, conversationID, educator.ID)
}
