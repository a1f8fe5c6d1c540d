package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
)

type stubPostStore struct {
	listResult     []models.Post
	listTotal      int
	listErr        error
	getResult      *models.Post
	getErr         error
	createResult   *models.Post
	createErr      error
	lastContent    string
	deleted        []int64
	likesRefreshed []int64
	viewsRecorded  []int64
	recordViewErr  error
}

func (s *stubPostStore) List(_ context.Context, _, _ int) ([]models.Post, int, error) {
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubPostStore) GetByID(_ context.Context, _ int64) (*models.Post, error) {
	return s.getResult, s.getErr
}

func (s *stubPostStore) Create(_ context.Context, educatorID int64, content string, imageURL *string) (*models.Post, error) {
	s.lastContent = content
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResult != nil {
		return s.createResult, nil
	}
	return &models.Post{ID: 1, EducatorID: educatorID, Content: content, ImageURL: imageURL}, nil
}

func (s *stubPostStore) Update(_ context.Context, id int64, content string, imageURL *string) (*models.Post, error) {
	s.lastContent = content
	return &models.Post{ID: id, Content: content, ImageURL: imageURL}, nil
}

func (s *stubPostStore) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPostStore) RefreshLikesCount(_ context.Context, postID int64) error {
	s.likesRefreshed = append(s.likesRefreshed, postID)
	return nil
}

func (s *stubPostStore) RefreshCommentsCount(_ context.Context, _ int64) error {
	return nil
}

func (s *stubPostStore) RefreshViewsCount(_ context.Context, _ int64) error {
	return nil
}

func (s *stubPostStore) RecordView(_ context.Context, postID, _ int64) error {
	if s.recordViewErr != nil {
		return s.recordViewErr
	}
	s.viewsRecorded = append(s.viewsRecorded, postID)
	return nil
}

type stubReactionStore struct {
	existing   *models.PostReaction
	getErr     error
	created    []string
	updated    []string
	deletes    int
	listResult []repository.ReactionWithUser
	listErr    error
}

func (s *stubReactionStore) GetByPostAndEducator(_ context.Context, _, _ int64) (*models.PostReaction, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.existing, nil
}

func (s *stubReactionStore) Create(_ context.Context, _, _ int64, reactionType string) error {
	s.created = append(s.created, reactionType)
	return nil
}

func (s *stubReactionStore) UpdateType(_ context.Context, _, _ int64, reactionType string) error {
	s.updated = append(s.updated, reactionType)
	return nil
}

func (s *stubReactionStore) Delete(_ context.Context, _, _ int64) error {
	s.deletes++
	return nil
}

func (s *stubReactionStore) ListByPost(_ context.Context, _ int64) ([]repository.ReactionWithUser, error) {
	return s.listResult, s.listErr
}

type stubCommentStore struct {
	listResult   []models.CommentView
	listErr      error
	createResult *models.PostComment
	createErr    error
	lastContent  string
	getResult    *models.PostComment
	getErr       error
	deleted      []int64
}

func (s *stubCommentStore) ListByPost(_ context.Context, _ int64) ([]models.CommentView, error) {
	return s.listResult, s.listErr
}

func (s *stubCommentStore) Create(_ context.Context, postID, educatorID int64, content string, parentCommentID *int64) (*models.PostComment, error) {
	s.lastContent = content
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResult != nil {
		return s.createResult, nil
	}
	return &models.PostComment{ID: 1, PostID: postID, EducatorID: educatorID, Content: content, ParentCommentID: parentCommentID}, nil
}

func (s *stubCommentStore) GetByID(_ context.Context, _ int64) (*models.PostComment, error) {
	return s.getResult, s.getErr
}

func (s *stubCommentStore) UpdateContent(_ context.Context, id int64, content string) (*models.PostComment, error) {
	s.lastContent = content
	return &models.PostComment{ID: id, Content: content}, nil
}

func (s *stubCommentStore) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubAuthorReader struct {
	educator   *models.Educator
	err        error
	listResult []models.Educator
	listErr    error
	lastIDs    []int64
}

func (r *stubAuthorReader) GetByUserID(_ context.Context, _ int64) (*models.Educator, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.educator, nil
}

func (r *stubAuthorReader) ListByIDs(_ context.Context, ids []int64) ([]models.Educator, error) {
	r.lastIDs = ids
	return r.listResult, r.listErr
}

func newTestPostService(
	posts *stubPostStore,
	reactions *stubReactionStore,
	comments *stubCommentStore,
	educators *stubAuthorReader,
) *PostService {
	return &PostService{
		posts:     posts,
		reactions: reactions,
		comments:  comments,
		educators: educators,
		logger:    zerolog.Nop(),
	}
}

func TestFeedAttachesAuthors(t *testing.T) {
	posts := &stubPostStore{
		listResult: []models.Post{
			{ID: 1, EducatorID: 7, Content: "first"},
			{ID: 2, EducatorID: 8, Content: "second"},
			{ID: 3, EducatorID: 7, Content: "third"},
		},
		listTotal: 3,
	}
	educators := &stubAuthorReader{
		listResult: []models.Educator{
			{ID: 7, FirstName: "Maria", LastName: "Lopez"},
		},
	}
	service := newTestPostService(posts, &stubReactionStore{}, &stubCommentStore{}, educators)

	feed, total, err := service.Feed(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(educators.lastIDs) != 2 {
		t.Fatalf("expected deduplicated author ids, got %v", educators.lastIDs)
	}
	if feed[0].Author == nil || feed[0].Author.FirstName != "Maria" {
		t.Fatalf("expected author attached, got %+v", feed[0].Author)
	}
	if feed[1].Author != nil {
		t.Fatalf("expected nil author for unknown educator, got %+v", feed[1].Author)
	}
}

func TestFeedDegradesToEmptyOnStoreFailure(t *testing.T) {
	posts := &stubPostStore{listErr: errors.New("timeout")}
	service := newTestPostService(posts, &stubReactionStore{}, &stubCommentStore{}, &stubAuthorReader{})

	feed, total, err := service.Feed(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(feed) != 0 || total != 0 {
		t.Fatalf("expected empty feed, got %d posts total %d", len(feed), total)
	}
}

func TestCreatePostRejectsWhitespace(t *testing.T) {
	posts := &stubPostStore{}
	service := newTestPostService(posts, &stubReactionStore{}, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	_, err := service.CreatePost(context.Background(), 42, "   ", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if posts.lastContent != "" {
		t.Fatalf("expected no insert, got %q", posts.lastContent)
	}
}

func TestUpdatePostEnforcesOwnership(t *testing.T) {
	posts := &stubPostStore{getResult: &models.Post{ID: 3, EducatorID: 99}}
	service := newTestPostService(posts, &stubReactionStore{}, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	_, err := service.UpdatePost(context.Background(), 42, 3, "edited", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeletePostMissingPost(t *testing.T) {
	posts := &stubPostStore{getErr: pgx.ErrNoRows}
	service := newTestPostService(posts, &stubReactionStore{}, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	err := service.DeletePost(context.Background(), 42, 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleReactionSameTypeRemoves(t *testing.T) {
	reactions := &stubReactionStore{existing: &models.PostReaction{ReactionType: "like"}}
	posts := &stubPostStore{}
	service := newTestPostService(posts, reactions, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	reacted, reactionType, err := service.ToggleReaction(context.Background(), 42, 3, "like")
	if err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	if reacted || reactionType != "" {
		t.Fatalf("expected reaction removed, got reacted=%v type=%q", reacted, reactionType)
	}
	if reactions.deletes != 1 {
		t.Fatalf("expected one delete, got %d", reactions.deletes)
	}
	if len(posts.likesRefreshed) != 1 {
		t.Fatalf("expected likes count refreshed, got %v", posts.likesRefreshed)
	}
}

func TestToggleReactionDifferentTypeSwitches(t *testing.T) {
	reactions := &stubReactionStore{existing: &models.PostReaction{ReactionType: "like"}}
	service := newTestPostService(&stubPostStore{}, reactions, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	reacted, reactionType, err := service.ToggleReaction(context.Background(), 42, 3, "love")
	if err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	if !reacted || reactionType != "love" {
		t.Fatalf("expected switched reaction, got reacted=%v type=%q", reacted, reactionType)
	}
	if len(reactions.updated) != 1 || reactions.updated[0] != "love" {
		t.Fatalf("expected type update to love, got %v", reactions.updated)
	}
}

func TestToggleReactionNewReactionInserts(t *testing.T) {
	reactions := &stubReactionStore{getErr: pgx.ErrNoRows}
	service := newTestPostService(&stubPostStore{}, reactions, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	reacted, reactionType, err := service.ToggleReaction(context.Background(), 42, 3, "")
	if err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	if !reacted || reactionType != "like" {
		t.Fatalf("expected default like inserted, got reacted=%v type=%q", reacted, reactionType)
	}
	if len(reactions.created) != 1 || reactions.created[0] != "like" {
		t.Fatalf("expected like insert, got %v", reactions.created)
	}
}

func TestPostReactionsGroupsByTypeInOrder(t *testing.T) {
	reactions := &stubReactionStore{
		listResult: []repository.ReactionWithUser{
			{PostReaction: models.PostReaction{ReactionType: "like"}, FirstName: "Ana", LastName: "Silva"},
			{PostReaction: models.PostReaction{ReactionType: "love"}, FirstName: "Ben", LastName: "Ortiz"},
			{PostReaction: models.PostReaction{ReactionType: "like"}, FirstName: "Maria", LastName: "Lopez"},
		},
	}
	service := newTestPostService(&stubPostStore{}, reactions, &stubCommentStore{}, &stubAuthorReader{})

	groups, err := service.PostReactions(context.Background(), 3)
	if err != nil {
		t.Fatalf("PostReactions: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Type != "like" || groups[0].Count != 2 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[0].Emoji != "👍" {
		t.Fatalf("expected like emoji, got %q", groups[0].Emoji)
	}
	if len(groups[0].Users) != 2 || groups[0].Users[1] != "Maria Lopez" {
		t.Fatalf("unexpected users %v", groups[0].Users)
	}
	if groups[1].Type != "love" || groups[1].Count != 1 {
		t.Fatalf("unexpected second group %+v", groups[1])
	}
}

func TestAddCommentTrimsAndRefreshesCount(t *testing.T) {
	comments := &stubCommentStore{}
	service := newTestPostService(&stubPostStore{}, &stubReactionStore{}, comments, &stubAuthorReader{educator: testEducator()})

	comment, err := service.AddComment(context.Background(), 42, 3, "  Nice post  ", nil)
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comments.lastContent != "Nice post" {
		t.Fatalf("expected trimmed content, got %q", comments.lastContent)
	}
	if comment.PostID != 3 {
		t.Fatalf("unexpected post id %d", comment.PostID)
	}
}

func TestUpdateCommentEnforcesOwnership(t *testing.T) {
	comments := &stubCommentStore{getResult: &models.PostComment{ID: 4, EducatorID: 99}}
	service := newTestPostService(&stubPostStore{}, &stubReactionStore{}, comments, &stubAuthorReader{educator: testEducator()})

	_, err := service.UpdateComment(context.Background(), 42, 4, "edited")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRecordViewSwallowsErrors(t *testing.T) {
	posts := &stubPostStore{recordViewErr: errors.New("duplicate")}
	service := newTestPostService(posts, &stubReactionStore{}, &stubCommentStore{}, &stubAuthorReader{educator: testEducator()})

	// Must not panic or surface anything.
	service.RecordView(context.Background(), 42, 3)
	if len(posts.viewsRecorded) != 0 {
		t.Fatalf("expected failed insert not recorded, got %v", posts.viewsRecorded)
	}
}
