package repository

import (
	"context"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

const educatorColumns = `
	id, user_id, first_name, last_name, email, title, headline, summary,
	institution, subjects, skills, profile_photo_url, cover_photo_url,
	is_profile_public, created_at, updated_at
`

type EducatorRepository struct {
	db DBTX
}

func NewEducatorRepository(db DBTX) *EducatorRepository {
	return &EducatorRepository{db: db}
}

type CreateEducatorInput struct {
	UserID      int64
	FirstName   string
	LastName    string
	Email       string
	Title       *string
	Institution *string
}

type UpdateEducatorInput struct {
	FirstName       *string   `json:"first_name"`
	LastName        *string   `json:"last_name"`
	Title           *string   `json:"title"`
	Headline        *string   `json:"headline"`
	Summary         *string   `json:"summary"`
	Institution     *string   `json:"institution"`
	Subjects        *[]string `json:"subjects"`
	Skills          *[]string `json:"skills"`
	IsProfilePublic *bool     `json:"is_profile_public"`
}

func scanEducator(row interface{ Scan(...any) error }) (*models.Educator, error) {
	var educator models.Educator
	err := row.Scan(
		&educator.ID,
		&educator.UserID,
		&educator.FirstName,
		&educator.LastName,
		&educator.Email,
		&educator.Title,
		&educator.Headline,
		&educator.Summary,
		&educator.Institution,
		&educator.Subjects,
		&educator.Skills,
		&educator.ProfilePhotoURL,
		&educator.CoverPhotoURL,
		&educator.IsProfilePublic,
		&educator.CreatedAt,
		&educator.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &educator, nil
}

func (r *EducatorRepository) Create(ctx context.Context, input CreateEducatorInput) (*models.Educator, error) {
	query := `
		INSERT INTO educators (user_id, first_name, last_name, email, title, institution)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + educatorColumns
	return scanEducator(r.db.QueryRow(ctx, query,
		input.UserID,
		input.FirstName,
		input.LastName,
		input.Email,
		input.Title,
		input.Institution,
	))
}

func (r *EducatorRepository) GetByUserID(ctx context.Context, userID int64) (*models.Educator, error) {
	query := `SELECT ` + educatorColumns + ` FROM educators WHERE user_id = $1`
	return scanEducator(r.db.QueryRow(ctx, query, userID))
}

func (r *EducatorRepository) GetByID(ctx context.Context, id int64) (*models.Educator, error) {
	query := `SELECT ` + educatorColumns + ` FROM educators WHERE id = $1`
	return scanEducator(r.db.QueryRow(ctx, query, id))
}

func (r *EducatorRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Educator, error) {
	if len(ids) == 0 {
		return []models.Educator{}, nil
	}

	query := `SELECT ` + educatorColumns + ` FROM educators WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	educators := make([]models.Educator, 0, len(ids))
	for rows.Next() {
		educator, err := scanEducator(rows)
		if err != nil {
			return nil, err
		}
		educators = append(educators, *educator)
	}
	return educators, rows.Err()
}

func (r *EducatorRepository) UpdatePartial(ctx context.Context, userID int64, input UpdateEducatorInput) (*models.Educator, error) {
	query := `
		UPDATE educators
		SET first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			title = COALESCE($3, title),
			headline = COALESCE($4, headline),
			summary = COALESCE($5, summary),
			institution = COALESCE($6, institution),
			subjects = COALESCE($7, subjects),
			skills = COALESCE($8, skills),
			is_profile_public = COALESCE($9, is_profile_public),
			updated_at = NOW()
		WHERE user_id = $10
		RETURNING ` + educatorColumns
	return scanEducator(r.db.QueryRow(ctx, query,
		input.FirstName,
		input.LastName,
		input.Title,
		input.Headline,
		input.Summary,
		input.Institution,
		input.Subjects,
		input.Skills,
		input.IsProfilePublic,
		userID,
	))
}

func (r *EducatorRepository) SetPhotoURL(ctx context.Context, userID int64, photoType string, url string) (*models.Educator, error) {
	column := "profile_photo_url"
	if photoType == "cover" {
		column = "cover_photo_url"
	}

	query := `
		UPDATE educators
		SET ` + column + ` = $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING ` + educatorColumns
	return scanEducator(r.db.QueryRow(ctx, query, url, userID))
}

// Search matches first name, last name or email case-insensitively,
// excluding the searching user.
func (r *EducatorRepository) Search(ctx context.Context, excludeUserID int64, term string, limit int) ([]models.Educator, error) {
	query := `
		SELECT ` + educatorColumns + `
		FROM educators
		WHERE user_id <> $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
		ORDER BY first_name, last_name
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, excludeUserID, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	educators := make([]models.Educator, 0)
	for rows.Next() {
		educator, err := scanEducator(rows)
		if err != nil {
			return nil, err
		}
		educators = append(educators, *educator)
	}
	return educators, rows.Err()
}
