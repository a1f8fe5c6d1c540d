package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
)

type postStore interface {
	List(ctx context.Context, limit, offset int) ([]models.Post, int, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, educatorID int64, content string, imageURL *string) (*models.Post, error)
	Update(ctx context.Context, id int64, content string, imageURL *string) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
	RefreshLikesCount(ctx context.Context, postID int64) error
	RefreshCommentsCount(ctx context.Context, postID int64) error
	RefreshViewsCount(ctx context.Context, postID int64) error
	RecordView(ctx context.Context, postID, educatorID int64) error
}

type reactionStore interface {
	GetByPostAndEducator(ctx context.Context, postID, educatorID int64) (*models.PostReaction, error)
	Create(ctx context.Context, postID, educatorID int64, reactionType string) error
	UpdateType(ctx context.Context, postID, educatorID int64, reactionType string) error
	Delete(ctx context.Context, postID, educatorID int64) error
	ListByPost(ctx context.Context, postID int64) ([]repository.ReactionWithUser, error)
}

type commentStore interface {
	ListByPost(ctx context.Context, postID int64) ([]models.CommentView, error)
	Create(ctx context.Context, postID, educatorID int64, content string, parentCommentID *int64) (*models.PostComment, error)
	GetByID(ctx context.Context, id int64) (*models.PostComment, error)
	UpdateContent(ctx context.Context, id int64, content string) (*models.PostComment, error)
	Delete(ctx context.Context, id int64) error
}

type postAuthorReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Educator, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Educator, error)
}

// PostService backs the dashboard feed: posts with authors, reactions with
// toggle semantics, threaded comments and view tracking.
type PostService struct {
	posts     postStore
	reactions reactionStore
	comments  commentStore
	educators postAuthorReader
	logger    zerolog.Logger
}

func NewPostService(
	posts postStore,
	reactions reactionStore,
	comments commentStore,
	educators postAuthorReader,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		posts:     posts,
		reactions: reactions,
		comments:  comments,
		educators: educators,
		logger:    logger,
	}
}

func (s *PostService) resolveEducator(ctx context.Context, userID int64) (*models.Educator, error) {
	educator, err := s.educators.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEducatorNotFound
		}
		return nil, err
	}
	return educator, nil
}

// Feed returns posts newest-first with authors attached. Store failures
// degrade to an empty feed.
func (s *PostService) Feed(ctx context.Context, page, limit int) ([]models.FeedPost, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	posts, total, err := s.posts.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("posts: feed query failed, returning empty feed")
		return []models.FeedPost{}, 0, nil
	}

	authorIDs := make([]int64, 0, len(posts))
	seen := make(map[int64]bool, len(posts))
	for _, post := range posts {
		if !seen[post.EducatorID] {
			seen[post.EducatorID] = true
			authorIDs = append(authorIDs, post.EducatorID)
		}
	}

	authors, err := s.educators.ListByIDs(ctx, authorIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("posts: author fetch failed, returning feed without authors")
		authors = nil
	}

	return joinPostsWithAuthors(posts, authors), total, nil
}

func (s *PostService) CreatePost(ctx context.Context, userID int64, content string, imageURL *string) (*models.Post, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.posts.Create(ctx, educator.ID, trimmed, imageURL)
}

func (s *PostService) UpdatePost(ctx context.Context, userID, postID int64, content string, imageURL *string) (*models.Post, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.EducatorID != educator.ID {
		return nil, ErrForbidden
	}
	return s.posts.Update(ctx, postID, trimmed, imageURL)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID int64) error {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if post.EducatorID != educator.ID {
		return ErrForbidden
	}
	return s.posts.Delete(ctx, postID)
}

// ToggleReaction applies the toggle semantics on post_likes: reacting with
// the type already present removes it, a different type updates in place,
// and no prior reaction inserts one. The denormalized likes_count is
// refreshed afterwards.
func (s *PostService) ToggleReaction(ctx context.Context, userID, postID int64, reactionType string) (bool, string, error) {
	if reactionType == "" {
		reactionType = "like"
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return false, "", err
	}

	existing, err := s.reactions.GetByPostAndEducator(ctx, postID, educator.ID)
	switch {
	case err == nil && existing.ReactionType == reactionType:
		if err := s.reactions.Delete(ctx, postID, educator.ID); err != nil {
			return false, "", err
		}
		s.refreshLikes(ctx, postID)
		return false, "", nil
	case err == nil:
		if err := s.reactions.UpdateType(ctx, postID, educator.ID, reactionType); err != nil {
			return false, "", err
		}
		return true, reactionType, nil
	case errors.Is(err, pgx.ErrNoRows):
		if err := s.reactions.Create(ctx, postID, educator.ID, reactionType); err != nil {
			return false, "", err
		}
		s.refreshLikes(ctx, postID)
		return true, reactionType, nil
	default:
		return false, "", err
	}
}

func (s *PostService) refreshLikes(ctx context.Context, postID int64) {
	if err := s.posts.RefreshLikesCount(ctx, postID); err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("posts: likes count refresh failed")
	}
}

var reactionEmojis = map[string]string{
	"like":       "👍",
	"love":       "❤️",
	"celebrate":  "🎉",
	"insightful": "💡",
	"curious":    "🤔",
}

// PostReactions groups a post's reactions by type for display. Failures
// degrade to an empty result.
func (s *PostService) PostReactions(ctx context.Context, postID int64) ([]models.ReactionGroup, error) {
	reactions, err := s.reactions.ListByPost(ctx, postID)
	if err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("posts: reaction fetch failed, returning empty result")
		return []models.ReactionGroup{}, nil
	}

	order := make([]string, 0)
	groups := make(map[string]*models.ReactionGroup)
	for _, reaction := range reactions {
		reactionType := reaction.ReactionType
		if reactionType == "" {
			reactionType = "like"
		}
		group, ok := groups[reactionType]
		if !ok {
			emoji := reactionEmojis[reactionType]
			if emoji == "" {
				emoji = reactionEmojis["like"]
			}
			group = &models.ReactionGroup{Type: reactionType, Emoji: emoji}
			groups[reactionType] = group
			order = append(order, reactionType)
		}
		group.Count++
		group.Users = append(group.Users, strings.TrimSpace(reaction.FirstName+" "+reaction.LastName))
	}

	result := make([]models.ReactionGroup, 0, len(order))
	for _, reactionType := range order {
		result = append(result, *groups[reactionType])
	}
	return result, nil
}

// ListComments returns a post's comments oldest-first with author identity.
// Failures degrade to an empty list.
func (s *PostService) ListComments(ctx context.Context, postID int64) ([]models.CommentView, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("posts: comment fetch failed, returning empty list")
		return []models.CommentView{}, nil
	}
	return comments, nil
}

func (s *PostService) AddComment(ctx context.Context, userID, postID int64, content string, parentCommentID *int64) (*models.PostComment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(ctx, postID, educator.ID, trimmed, parentCommentID)
	if err != nil {
		return nil, err
	}

	if err := s.posts.RefreshCommentsCount(ctx, postID); err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("posts: comments count refresh failed")
	}
	return comment, nil
}

func (s *PostService) UpdateComment(ctx context.Context, userID, commentID int64, content string) (*models.PostComment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if comment.EducatorID != educator.ID {
		return nil, ErrForbidden
	}
	return s.comments.UpdateContent(ctx, commentID, trimmed)
}

func (s *PostService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if comment.EducatorID != educator.ID {
		return ErrForbidden
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	if err := s.posts.RefreshCommentsCount(ctx, comment.PostID); err != nil {
		s.logger.Error().Err(err).Int64("post_id", comment.PostID).Msg("posts: comments count refresh failed")
	}
	return nil
}

// RecordView tracks at most one view per educator per post. Tracking must
// never fail the page, so every error is swallowed after logging.
func (s *PostService) RecordView(ctx context.Context, userID, postID int64) {
	educator, err := s.resolveEducator(ctx, userID)
	if err != nil {
		s.logger.Debug().Err(err).Int64("user_id", userID).Msg("posts: view tracking skipped")
		return
	}
	if err := s.posts.RecordView(ctx, postID, educator.ID); err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("posts: view insert failed")
		return
	}
	if err := s.posts.RefreshViewsCount(ctx, postID); err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("posts: views count refresh failed")
	}
}
