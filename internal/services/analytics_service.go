package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

const maxSearchAppearances = 50

type analyticsEducatorReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Educator, error)
}

type analyticsPostReader interface {
	ListIDsByEducator(ctx context.Context, educatorID int64) ([]int64, error)
}

type analyticsCounter interface {
	CountByPosts(ctx context.Context, postIDs []int64) (int, error)
}

type analyticsProfileReader interface {
	CountProfileViews(ctx context.Context, ownerID int64) (int, error)
	CountConnections(ctx context.Context, educatorID int64) (int, error)
}

// AnalyticsService computes the dashboard metrics live from activity
// tables. Every metric degrades to zero on failure; the aggregate call
// never errors once the educator is resolved.
type AnalyticsService struct {
	educators analyticsEducatorReader
	posts     analyticsPostReader
	likes     analyticsCounter
	comments  analyticsCounter
	profiles  analyticsProfileReader
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAnalyticsService(
	educators analyticsEducatorReader,
	posts analyticsPostReader,
	likes analyticsCounter,
	comments analyticsCounter,
	profiles analyticsProfileReader,
	logger zerolog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		educators: educators,
		posts:     posts,
		likes:     likes,
		comments:  comments,
		profiles:  profiles,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AnalyticsService) UserAnalytics(ctx context.Context, userID int64) (*models.ProfileAnalytics, error) {
	educator, err := s.educators.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEducatorNotFound
		}
		return nil, err
	}

	analytics := &models.ProfileAnalytics{CalculatedAt: s.now()}

	if views, err := s.profiles.CountProfileViews(ctx, educator.ID); err != nil {
		s.logger.Error().Err(err).Int64("educator_id", educator.ID).Msg("analytics: profile view count failed")
	} else {
		analytics.ProfileViews = views
	}

	if impressions, err := s.postImpressions(ctx, educator.ID); err != nil {
		s.logger.Error().Err(err).Int64("educator_id", educator.ID).Msg("analytics: post impressions failed")
	} else {
		analytics.PostImpressions = impressions
	}

	analytics.SearchAppearances = searchAppearances(educator)

	if connections, err := s.profiles.CountConnections(ctx, educator.ID); err != nil {
		s.logger.Error().Err(err).Int64("educator_id", educator.ID).Msg("analytics: connection count failed")
	} else {
		analytics.ConnectionsCount = connections
	}

	return analytics, nil
}

// postImpressions estimates reach from engagement: likes + comments plus
// ten estimated views per like.
func (s *AnalyticsService) postImpressions(ctx context.Context, educatorID int64) (int, error) {
	postIDs, err := s.posts.ListIDsByEducator(ctx, educatorID)
	if err != nil {
		return 0, err
	}
	if len(postIDs) == 0 {
		return 0, nil
	}

	likes, err := s.likes.CountByPosts(ctx, postIDs)
	if err != nil {
		return 0, err
	}
	comments, err := s.comments.CountByPosts(ctx, postIDs)
	if err != nil {
		return 0, err
	}

	estimatedViews := likes * 10
	return likes + comments + estimatedViews, nil
}

// searchAppearances scores profile completeness; private profiles never
// appear in search.
func searchAppearances(educator *models.Educator) int {
	if !educator.IsProfilePublic {
		return 0
	}

	score := 0
	if educator.Headline != nil && *educator.Headline != "" {
		score += 2
	}
	if educator.Summary != nil && *educator.Summary != "" {
		score += 3
	}
	if len(educator.Subjects) > 0 {
		score += 2
	}
	if len(educator.Skills) > 0 {
		score += 2
	}

	appearances := score * 5
	if appearances > maxSearchAppearances {
		appearances = maxSearchAppearances
	}
	return appearances
}
