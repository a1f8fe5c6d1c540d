package repository

import (
	"context"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `
	pc.id, pc.post_id, pc.educator_id, pc.parent_comment_id, pc.content,
	pc.created_at, pc.updated_at
`

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]models.CommentView, error) {
	query := `
		SELECT ` + commentColumns + `,
			TRIM(e.first_name || ' ' || e.last_name), e.profile_photo_url
		FROM post_comments pc
		JOIN educators e ON e.id = pc.educator_id
		WHERE pc.post_id = $1
		ORDER BY pc.created_at ASC, pc.id ASC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.CommentView, 0)
	for rows.Next() {
		var comment models.CommentView
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.EducatorID,
			&comment.ParentCommentID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.AuthorName,
			&comment.AuthorAvatar,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Create(ctx context.Context, postID, educatorID int64, content string, parentCommentID *int64) (*models.PostComment, error) {
	query := `
		INSERT INTO post_comments (post_id, educator_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, educator_id, parent_comment_id, content, created_at, updated_at
	`
	var comment models.PostComment
	err := r.db.QueryRow(ctx, query, postID, educatorID, content, parentCommentID).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.EducatorID,
		&comment.ParentCommentID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.PostComment, error) {
	query := `
		SELECT id, post_id, educator_id, parent_comment_id, content, created_at, updated_at
		FROM post_comments
		WHERE id = $1
	`
	var comment models.PostComment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.EducatorID,
		&comment.ParentCommentID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string) (*models.PostComment, error) {
	query := `
		UPDATE post_comments
		SET content = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, post_id, educator_id, parent_comment_id, content, created_at, updated_at
	`
	var comment models.PostComment
	err := r.db.QueryRow(ctx, query, content, id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.EducatorID,
		&comment.ParentCommentID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM post_comments WHERE id = $1`, id)
	return err
}

func (r *CommentRepository) CountByPosts(ctx context.Context, postIDs []int64) (int, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_comments WHERE post_id = ANY($1)
	`, postIDs).Scan(&count)
	return count, err
}
