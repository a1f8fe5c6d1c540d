package repository

import (
	"context"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `
	id, educator_id, content, image_url, likes_count, comments_count,
	views_count, created_at, updated_at
`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.EducatorID,
		&post.Content,
		&post.ImageURL,
		&post.LikesCount,
		&post.CommentsCount,
		&post.ViewsCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts newest-first. Authors are attached by the service
// through a second query and an in-memory join; the store has no join path
// from posts to educators that preserves the educator's full column set.
func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *post)
	}
	return posts, total, rows.Err()
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRow(ctx, query, id))
}

func (r *PostRepository) ListIDsByEducator(ctx context.Context, educatorID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM posts WHERE educator_id = $1`, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostRepository) Create(ctx context.Context, educatorID int64, content string, imageURL *string) (*models.Post, error) {
	query := `
		INSERT INTO posts (educator_id, content, image_url)
		VALUES ($1, $2, $3)
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRow(ctx, query, educatorID, content, imageURL))
}

func (r *PostRepository) Update(ctx context.Context, id int64, content string, imageURL *string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET content = $1,
			image_url = COALESCE($2, image_url),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + postColumns
	return scanPost(r.db.QueryRow(ctx, query, content, imageURL, id))
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

// RefreshLikesCount rewrites the denormalized counter from an exact count.
func (r *PostRepository) RefreshLikesCount(ctx context.Context, postID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE posts
		SET likes_count = (SELECT COUNT(*) FROM post_likes WHERE post_id = $1)
		WHERE id = $1
	`, postID)
	return err
}

func (r *PostRepository) RefreshCommentsCount(ctx context.Context, postID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE posts
		SET comments_count = (SELECT COUNT(*) FROM post_comments WHERE post_id = $1)
		WHERE id = $1
	`, postID)
	return err
}

func (r *PostRepository) RefreshViewsCount(ctx context.Context, postID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE posts
		SET views_count = (SELECT COUNT(*) FROM post_views WHERE post_id = $1)
		WHERE id = $1
	`, postID)
	return err
}

// RecordView inserts at most one view per (post, educator) pair.
func (r *PostRepository) RecordView(ctx context.Context, postID, educatorID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO post_views (post_id, educator_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, educator_id) DO NOTHING
	`, postID, educatorID)
	return err
}
