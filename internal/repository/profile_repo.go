package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const sectionColumns = `
	id, educator_id, section_type, title, subtitle, description,
	start_date, end_date, display_order, is_visible, created_at, updated_at
`

type ProfileSectionInput struct {
	SectionType  string  `json:"section_type"`
	Title        string  `json:"title"`
	Subtitle     *string `json:"subtitle"`
	Description  *string `json:"description"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	DisplayOrder int     `json:"display_order"`
}

func scanSection(row interface{ Scan(...any) error }) (*models.ProfileSection, error) {
	var section models.ProfileSection
	err := row.Scan(
		&section.ID,
		&section.EducatorID,
		&section.SectionType,
		&section.Title,
		&section.Subtitle,
		&section.Description,
		&section.StartDate,
		&section.EndDate,
		&section.DisplayOrder,
		&section.IsVisible,
		&section.CreatedAt,
		&section.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// ListSections returns the visible sections in display order.
func (r *ProfileRepository) ListSections(ctx context.Context, educatorID int64) ([]models.ProfileSection, error) {
	query := `
		SELECT ` + sectionColumns + `
		FROM profile_sections
		WHERE educator_id = $1 AND is_visible = TRUE
		ORDER BY section_type ASC, display_order ASC
	`
	rows, err := r.db.Query(ctx, query, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := make([]models.ProfileSection, 0)
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *section)
	}
	return sections, rows.Err()
}

func (r *ProfileRepository) AddSection(ctx context.Context, educatorID int64, input ProfileSectionInput) (*models.ProfileSection, error) {
	query := `
		INSERT INTO profile_sections (educator_id, section_type, title, subtitle, description, start_date, end_date, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + sectionColumns
	return scanSection(r.db.QueryRow(ctx, query,
		educatorID,
		input.SectionType,
		input.Title,
		input.Subtitle,
		input.Description,
		input.StartDate,
		input.EndDate,
		input.DisplayOrder,
	))
}

// UpdateSection only touches rows owned by educatorID; a mismatched
// owner surfaces as pgx.ErrNoRows.
func (r *ProfileRepository) UpdateSection(ctx context.Context, sectionID, educatorID int64, input ProfileSectionInput) (*models.ProfileSection, error) {
	query := `
		UPDATE profile_sections
		SET section_type = $1,
			title = $2,
			subtitle = $3,
			description = $4,
			start_date = $5,
			end_date = $6,
			display_order = $7,
			updated_at = NOW()
		WHERE id = $8 AND educator_id = $9
		RETURNING ` + sectionColumns
	return scanSection(r.db.QueryRow(ctx, query,
		input.SectionType,
		input.Title,
		input.Subtitle,
		input.Description,
		input.StartDate,
		input.EndDate,
		input.DisplayOrder,
		sectionID,
		educatorID,
	))
}

func (r *ProfileRepository) DeleteSection(ctx context.Context, sectionID, educatorID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profile_sections WHERE id = $1 AND educator_id = $2`, sectionID, educatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ProfileRepository) AddPhoto(ctx context.Context, photo *models.ProfilePhoto) error {
	query := `
		INSERT INTO profile_photos (educator_id, photo_type, file_name, file_path, file_size, mime_type, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		photo.EducatorID,
		photo.PhotoType,
		photo.FileName,
		photo.FilePath,
		photo.FileSize,
		photo.MimeType,
		photo.IsActive,
	).Scan(&photo.ID, &photo.CreatedAt)
}

func (r *ProfileRepository) RecordProfileView(ctx context.Context, ownerID int64, viewerID *int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO profile_views (profile_owner_id, viewer_id)
		VALUES ($1, $2)
	`, ownerID, viewerID)
	return err
}

func (r *ProfileRepository) CountProfileViews(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM profile_views WHERE profile_owner_id = $1
	`, ownerID).Scan(&count)
	return count, err
}

// CountConnections counts accepted connections in either direction.
func (r *ProfileRepository) CountConnections(ctx context.Context, educatorID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM connections
		WHERE (requester_id = $1 OR recipient_id = $1)
		  AND status = 'accepted'
	`, educatorID).Scan(&count)
	return count, err
}
