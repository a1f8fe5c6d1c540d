package repository

import (
	"context"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

type ReactionRepository struct {
	db DBTX
}

func NewReactionRepository(db DBTX) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// ReactionWithUser joins a reaction with the reacting educator's identity.
type ReactionWithUser struct {
	models.PostReaction
	FirstName string
	LastName  string
}

func (r *ReactionRepository) GetByPostAndEducator(ctx context.Context, postID, educatorID int64) (*models.PostReaction, error) {
	query := `
		SELECT id, post_id, educator_id, reaction_type, created_at
		FROM post_likes
		WHERE post_id = $1 AND educator_id = $2
	`
	var reaction models.PostReaction
	err := r.db.QueryRow(ctx, query, postID, educatorID).Scan(
		&reaction.ID,
		&reaction.PostID,
		&reaction.EducatorID,
		&reaction.ReactionType,
		&reaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *ReactionRepository) Create(ctx context.Context, postID, educatorID int64, reactionType string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO post_likes (post_id, educator_id, reaction_type)
		VALUES ($1, $2, $3)
	`, postID, educatorID, reactionType)
	return err
}

func (r *ReactionRepository) UpdateType(ctx context.Context, postID, educatorID int64, reactionType string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE post_likes
		SET reaction_type = $3
		WHERE post_id = $1 AND educator_id = $2
	`, postID, educatorID, reactionType)
	return err
}

func (r *ReactionRepository) Delete(ctx context.Context, postID, educatorID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM post_likes
		WHERE post_id = $1 AND educator_id = $2
	`, postID, educatorID)
	return err
}

func (r *ReactionRepository) ListByPost(ctx context.Context, postID int64) ([]ReactionWithUser, error) {
	query := `
		SELECT pl.id, pl.post_id, pl.educator_id, pl.reaction_type, pl.created_at,
			e.first_name, e.last_name
		FROM post_likes pl
		JOIN educators e ON e.id = pl.educator_id
		WHERE pl.post_id = $1
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reactions := make([]ReactionWithUser, 0)
	for rows.Next() {
		var reaction ReactionWithUser
		if err := rows.Scan(
			&reaction.ID,
			&reaction.PostID,
			&reaction.EducatorID,
			&reaction.ReactionType,
			&reaction.CreatedAt,
			&reaction.FirstName,
			&reaction.LastName,
		); err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}

func (r *ReactionRepository) CountByPosts(ctx context.Context, postIDs []int64) (int, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id = ANY($1)
	`, postIDs).Scan(&count)
	return count, err
}
