package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/feed"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
)

type stubEducatorResolver struct {
	educator     *models.Educator
	err          error
	searchResult []models.Educator
	searchErr    error
	lastTerm     string
}

func (r *stubEducatorResolver) GetByUserID(_ context.Context, _ int64) (*models.Educator, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.educator, nil
}

func (r *stubEducatorResolver) Search(_ context.Context, _ int64, term string, _ int) ([]models.Educator, error) {
	r.lastTerm = term
	return r.searchResult, r.searchErr
}

type stubConversationStore struct {
	createResult     *models.Conversation
	createErr        error
	lastCreateTitle  *string
	lastParticipants []int64
	participantsErr  error
	isParticipant    bool
	isParticipantErr error
	listResult       []repository.ConversationListingRow
	listErr          error
	touchErr         error
	touched          []int64
	lastReadErr      error
	lastReadCalls    []int64
}

func (s *stubConversationStore) Create(_ context.Context, title *string, isGroup bool, createdBy int64) (*models.Conversation, error) {
	s.lastCreateTitle = title
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResult != nil {
		return s.createResult, nil
	}
	return &models.Conversation{ID: 1, Title: title, IsGroup: isGroup, CreatedBy: createdBy}, nil
}

func (s *stubConversationStore) AddParticipants(_ context.Context, _ int64, educatorIDs []int64) error {
	s.lastParticipants = educatorIDs
	return s.participantsErr
}

func (s *stubConversationStore) IsParticipant(_ context.Context, _ int64, _ int64) (bool, error) {
	return s.isParticipant, s.isParticipantErr
}

func (s *stubConversationStore) ListForEducator(_ context.Context, _ int64) ([]repository.ConversationListingRow, error) {
	return s.listResult, s.listErr
}

func (s *stubConversationStore) Touch(_ context.Context, conversationID int64) error {
	s.touched = append(s.touched, conversationID)
	return s.touchErr
}

func (s *stubConversationStore) UpdateLastRead(_ context.Context, conversationID, _ int64) error {
	s.lastReadCalls = append(s.lastReadCalls, conversationID)
	return s.lastReadErr
}

type stubMessageStore struct {
	createResult *models.Message
	createErr    error
	lastCreate   repository.CreateMessageInput
	createCalls  int
	listResult   []repository.MessageWithSender
	listErr      error
	listCalls    int
}

func (s *stubMessageStore) Create(_ context.Context, input repository.CreateMessageInput) (*models.Message, error) {
	s.createCalls++
	s.lastCreate = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResult != nil {
		return s.createResult, nil
	}
	return &models.Message{
		ID:             10,
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		ClientKey:      input.ClientKey,
		Content:        input.Content,
		MessageType:    input.MessageType,
		AttachmentURL:  input.AttachmentURL,
		CreatedAt:      messagingTestTime,
	}, nil
}

func (s *stubMessageStore) ListByConversation(_ context.Context, _ int64) ([]repository.MessageWithSender, error) {
	s.listCalls++
	return s.listResult, s.listErr
}

var messagingTestTime = time.Date(2030, 5, 6, 14, 30, 0, 0, time.UTC)

func newTestMessagingService(
	educators *stubEducatorResolver,
	conversations *stubConversationStore,
	messages *stubMessageStore,
	broker feed.Broker,
) *MessagingService {
	if broker == nil {
		broker = feed.NewMemoryBroker()
	}
	return &MessagingService{
		educators:     educators,
		conversations: conversations,
		messages:      messages,
		broker:        broker,
		logger:        zerolog.Nop(),
		now:           func() time.Time { return messagingTestTime },
	}
}

func testEducator() *models.Educator {
	return &models.Educator{ID: 7, UserID: 42, FirstName: "Maria", LastName: "Lopez"}
}

func TestListConversationsShapesListing(t *testing.T) {
	title := "Algebra Group"
	lastContent := "See you tomorrow"
	sender := "Ben"
	lastAt := messagingTestTime.Add(-3 * time.Hour)
	conversations := &stubConversationStore{
		listResult: []repository.ConversationListingRow{
			{
				ID:             1,
				Title:          &title,
				IsGroup:        true,
				UpdatedAt:      messagingTestTime,
				MemberCount:    4,
				UnreadCount:    2,
				LastContent:    &lastContent,
				LastSenderName: &sender,
				LastCreatedAt:  &lastAt,
			},
			{
				ID:          2,
				IsGroup:     false,
				UpdatedAt:   messagingTestTime.Add(-time.Hour),
				MemberCount: 2,
				OtherNames:  []string{"Diego Ramos"},
			},
		},
	}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	summaries, err := service.ListConversations(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	group := summaries[0]
	if group.DisplayName != "Algebra Group" {
		t.Fatalf("expected group title, got %q", group.DisplayName)
	}
	if group.Avatar != "GR" {
		t.Fatalf("expected group avatar, got %q", group.Avatar)
	}
	if group.Preview != "See you tomorrow" {
		t.Fatalf("unexpected preview %q", group.Preview)
	}
	if group.LastMessageAge != "3h ago" {
		t.Fatalf("unexpected age %q", group.LastMessageAge)
	}
	if group.UnreadCount != 2 {
		t.Fatalf("expected unread count 2, got %d", group.UnreadCount)
	}

	direct := summaries[1]
	if direct.DisplayName != "Diego Ramos" {
		t.Fatalf("expected other participant name, got %q", direct.DisplayName)
	}
	if direct.Avatar != "DR" {
		t.Fatalf("expected initials DR, got %q", direct.Avatar)
	}
	if direct.Preview != "No messages yet" {
		t.Fatalf("expected empty-conversation preview, got %q", direct.Preview)
	}
	if direct.UnreadCount != 0 {
		t.Fatalf("expected zero unread, got %d", direct.UnreadCount)
	}
}

func TestListConversationsPropagatesMissingEducator(t *testing.T) {
	service := newTestMessagingService(&stubEducatorResolver{err: pgx.ErrNoRows}, &stubConversationStore{}, &stubMessageStore{}, nil)

	_, err := service.ListConversations(context.Background(), 42)
	if !errors.Is(err, ErrEducatorNotFound) {
		t.Fatalf("expected ErrEducatorNotFound, got %v", err)
	}
}

func TestListConversationsDegradesToEmptyOnStoreFailure(t *testing.T) {
	conversations := &stubConversationStore{listErr: errors.New("connection refused")}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	summaries, err := service.ListConversations(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected empty listing, got %d entries", len(summaries))
	}
}

func TestFetchMessagesShapesHistoryOldestFirst(t *testing.T) {
	avatar := "https://cdn/avatar.png"
	messages := &stubMessageStore{
		listResult: []repository.MessageWithSender{
			{
				Message: models.Message{
					ID: 1, ConversationID: 5, SenderID: 9,
					Content: "Hello", MessageType: "text",
					CreatedAt: messagingTestTime.Add(-time.Hour),
				},
				SenderFirstName: "Diego",
				SenderLastName:  "Ramos",
				SenderPhotoURL:  &avatar,
			},
			{
				Message: models.Message{
					ID: 2, ConversationID: 5, SenderID: 7,
					Content: "Hi Diego", MessageType: "text",
					CreatedAt: messagingTestTime,
				},
				SenderFirstName: "Maria",
				SenderLastName:  "Lopez",
			},
		},
	}
	conversations := &stubConversationStore{isParticipant: true}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, messages, nil)

	history, err := service.FetchMessages(context.Background(), 5, 42, true)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if history.ConversationID != 5 {
		t.Fatalf("expected history tagged with conversation 5, got %d", history.ConversationID)
	}
	if len(history.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history.Messages))
	}
	if history.Messages[0].ID != 1 || history.Messages[1].ID != 2 {
		t.Fatalf("expected store order preserved, got %d then %d", history.Messages[0].ID, history.Messages[1].ID)
	}
	if history.Messages[0].IsOwn {
		t.Fatalf("expected other sender's message not to be own")
	}
	if !history.Messages[1].IsOwn {
		t.Fatalf("expected viewer's message to be own")
	}
	if history.Messages[0].SenderName != "Diego Ramos" {
		t.Fatalf("unexpected sender name %q", history.Messages[0].SenderName)
	}
	if len(conversations.lastReadCalls) != 1 || conversations.lastReadCalls[0] != 5 {
		t.Fatalf("expected read state advanced for conversation 5, got %v", conversations.lastReadCalls)
	}
}

func TestFetchMessagesBackgroundRefreshSkipsReadState(t *testing.T) {
	conversations := &stubConversationStore{isParticipant: true}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	if _, err := service.FetchMessages(context.Background(), 5, 42, false); err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(conversations.lastReadCalls) != 0 {
		t.Fatalf("expected no read-state update, got %v", conversations.lastReadCalls)
	}
}

func TestFetchMessagesDegradesToEmptyOnStoreFailure(t *testing.T) {
	messages := &stubMessageStore{listErr: errors.New("boom")}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, &stubConversationStore{isParticipant: true}, messages, nil)

	history, err := service.FetchMessages(context.Background(), 5, 42, true)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history.Messages))
	}
}

func TestFetchMessagesRejectsNonParticipant(t *testing.T) {
	secret := "secret"
	messages := &stubMessageStore{
		listResult: []repository.MessageWithSender{
			{Message: models.Message{ID: 1, ConversationID: 5, SenderID: 9, Content: secret}},
		},
	}
	conversations := &stubConversationStore{isParticipant: false}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, messages, nil)

	_, err := service.FetchMessages(context.Background(), 5, 42, true)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if messages.listCalls != 0 {
		t.Fatalf("expected no rows listed for non-participant, got %d calls", messages.listCalls)
	}
	if len(conversations.lastReadCalls) != 0 {
		t.Fatalf("expected no read-state update for non-participant, got %v", conversations.lastReadCalls)
	}
}

func TestFetchMessagesParticipantCheckFailureStaysEmpty(t *testing.T) {
	messages := &stubMessageStore{
		listResult: []repository.MessageWithSender{
			{Message: models.Message{ID: 1, ConversationID: 5, SenderID: 9, Content: "secret"}},
		},
	}
	conversations := &stubConversationStore{isParticipantErr: errors.New("timeout")}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, messages, nil)

	history, err := service.FetchMessages(context.Background(), 5, 42, true)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(history.Messages) != 0 {
		t.Fatalf("expected no rows when membership is unknown, got %d", len(history.Messages))
	}
	if messages.listCalls != 0 {
		t.Fatalf("expected no listing when membership is unknown, got %d calls", messages.listCalls)
	}
}

func TestMarkConversationReadRejectsNonParticipant(t *testing.T) {
	conversations := &stubConversationStore{isParticipant: false}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	err := service.MarkConversationRead(context.Background(), 5, 42)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(conversations.lastReadCalls) != 0 {
		t.Fatalf("expected no read-state update, got %v", conversations.lastReadCalls)
	}
}

func TestFetchMessagesReadStateFailureDoesNotBlockHistory(t *testing.T) {
	conversations := &stubConversationStore{isParticipant: true, lastReadErr: errors.New("deadlock")}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	if _, err := service.FetchMessages(context.Background(), 5, 42, true); err != nil {
		t.Fatalf("expected history despite read-state failure, got %v", err)
	}
}

func TestSendMessageRejectsWhitespaceWithoutStoreCall(t *testing.T) {
	messages := &stubMessageStore{}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, &stubConversationStore{isParticipant: true}, messages, nil)

	_, err := service.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 5,
		UserID:         42,
		Content:        "   \n\t ",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if messages.createCalls != 0 {
		t.Fatalf("expected no insert for whitespace content, got %d calls", messages.createCalls)
	}
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, &stubConversationStore{isParticipant: false}, &stubMessageStore{}, nil)

	_, err := service.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 5,
		UserID:         42,
		Content:        "hello",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSendMessagePersistsAndPublishes(t *testing.T) {
	conversations := &stubConversationStore{isParticipant: true}
	messages := &stubMessageStore{}
	broker := feed.NewMemoryBroker()

	var delivered []models.Message
	sub, err := broker.SubscribeMessages(5, func(m models.Message) {
		delivered = append(delivered, m)
	})
	if err != nil {
		t.Fatalf("SubscribeMessages: %v", err)
	}
	defer sub.Unsubscribe()

	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, messages, broker)

	view, err := service.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 5,
		UserID:         42,
		Content:        "  Hello there  ",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if messages.lastCreate.Content != "Hello there" {
		t.Fatalf("expected trimmed content, got %q", messages.lastCreate.Content)
	}
	if messages.lastCreate.ClientKey == "" {
		t.Fatalf("expected generated client key")
	}
	if messages.lastCreate.MessageType != models.MessageTypeText {
		t.Fatalf("expected default message type, got %q", messages.lastCreate.MessageType)
	}
	if !view.IsOwn {
		t.Fatalf("expected sender's own view")
	}
	if view.SenderName != "Maria Lopez" {
		t.Fatalf("unexpected sender name %q", view.SenderName)
	}
	if len(conversations.touched) != 1 || conversations.touched[0] != 5 {
		t.Fatalf("expected conversation resorted, got %v", conversations.touched)
	}
	if len(delivered) != 1 || delivered[0].Content != "Hello there" {
		t.Fatalf("expected one feed delivery, got %v", delivered)
	}
}

func TestSendMessageKeepsClientKey(t *testing.T) {
	messages := &stubMessageStore{}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, &stubConversationStore{isParticipant: true}, messages, nil)

	_, err := service.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 5,
		UserID:         42,
		Content:        "retry",
		ClientKey:      "11111111-2222-3333-4444-555555555555",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if messages.lastCreate.ClientKey != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("expected caller's client key kept, got %q", messages.lastCreate.ClientKey)
	}
}

func TestSendMessageRejectsMalformedClientKey(t *testing.T) {
	messages := &stubMessageStore{}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, &stubConversationStore{isParticipant: true}, messages, nil)

	_, err := service.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 5,
		UserID:         42,
		Content:        "retry",
		ClientKey:      "abc-123",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for malformed client key, got %v", err)
	}
	if messages.createCalls != 0 {
		t.Fatalf("expected no insert attempted, got %d", messages.createCalls)
	}
}

func TestSendMessageSurvivesTouchAndPublishFailure(t *testing.T) {
	conversations := &stubConversationStore{isParticipant: true, touchErr: errors.New("lock timeout")}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	view, err := service.SendMessage(context.Background(), SendMessageInput{
		ConversationID: 5,
		UserID:         42,
		Content:        "hello",
	})
	if err != nil {
		t.Fatalf("expected success despite touch failure, got %v", err)
	}
	if view == nil || view.Content != "hello" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestCreateConversationPrependsCreatorAndDefaultsTitle(t *testing.T) {
	conversations := &stubConversationStore{}
	service := newTestMessagingService(&stubEducatorResolver{educator: testEducator()}, conversations, &stubMessageStore{}, nil)

	_, err := service.CreateConversation(context.Background(), 42, []int64{11, 12}, nil, true)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conversations.lastCreateTitle == nil || *conversations.lastCreateTitle != "Group Chat" {
		t.Fatalf("expected default group title, got %v", conversations.lastCreateTitle)
	}
	want := []int64{7, 11, 12}
	if len(conversations.lastParticipants) != len(want) {
		t.Fatalf("expected %v participants, got %v", want, conversations.lastParticipants)
	}
	for i, id := range want {
		if conversations.lastParticipants[i] != id {
			t.Fatalf("expected participants %v, got %v", want, conversations.lastParticipants)
		}
	}
}

func TestSearchEducatorsDegradesToEmpty(t *testing.T) {
	educators := &stubEducatorResolver{educator: testEducator(), searchErr: errors.New("timeout")}
	service := newTestMessagingService(educators, &stubConversationStore{}, &stubMessageStore{}, nil)

	result, err := service.SearchEducators(context.Background(), 42, "  maria ", 10)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected empty result, got %d", len(result))
	}
	if educators.lastTerm != "maria" {
		t.Fatalf("expected trimmed term, got %q", educators.lastTerm)
	}
}

func TestShapeFeedMessageMarksOwnRows(t *testing.T) {
	message := models.Message{ID: 3, ConversationID: 5, SenderID: 7, Content: "hi", MessageType: "text", CreatedAt: messagingTestTime}

	own := ShapeFeedMessage(message, 7)
	if !own.IsOwn {
		t.Fatalf("expected own row")
	}
	other := ShapeFeedMessage(message, 8)
	if other.IsOwn {
		t.Fatalf("expected foreign row")
	}
}
