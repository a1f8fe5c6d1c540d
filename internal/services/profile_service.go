package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
)

const (
	ProfilePhotoBucket = "profile-photos"
	CoverPhotoBucket   = "cover-photos"
)

type profileEducatorStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Educator, error)
	GetByID(ctx context.Context, id int64) (*models.Educator, error)
	UpdatePartial(ctx context.Context, userID int64, input repository.UpdateEducatorInput) (*models.Educator, error)
	SetPhotoURL(ctx context.Context, userID int64, photoType string, url string) (*models.Educator, error)
}

type profileStore interface {
	ListSections(ctx context.Context, educatorID int64) ([]models.ProfileSection, error)
	AddSection(ctx context.Context, educatorID int64, input repository.ProfileSectionInput) (*models.ProfileSection, error)
	UpdateSection(ctx context.Context, sectionID, educatorID int64, input repository.ProfileSectionInput) (*models.ProfileSection, error)
	DeleteSection(ctx context.Context, sectionID, educatorID int64) error
	AddPhoto(ctx context.Context, photo *models.ProfilePhoto) error
	RecordProfileView(ctx context.Context, ownerID int64, viewerID *int64) error
}

type ProfileService struct {
	educators profileEducatorStore
	profiles  profileStore
	storage   StorageService
	logger    zerolog.Logger
	now       func() time.Time
}

func NewProfileService(
	educators profileEducatorStore,
	profiles profileStore,
	storage StorageService,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		educators: educators,
		profiles:  profiles,
		storage:   storage,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Educator, error) {
	educator, err := s.educators.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEducatorNotFound
		}
		return nil, err
	}
	return educator, nil
}

// ViewEducator loads another educator's public profile with sections and
// records the visit. A hidden profile reads the same as a missing one.
func (s *ProfileService) ViewEducator(ctx context.Context, educatorID int64, viewerUserID *int64) (*models.Educator, []models.ProfileSection, error) {
	educator, err := s.educators.GetByID(ctx, educatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !educator.IsProfilePublic {
		return nil, nil, ErrNotFound
	}

	sections, err := s.profiles.ListSections(ctx, educator.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("educator_id", educator.ID).Msg("profile: section load failed")
		sections = []models.ProfileSection{}
	}

	s.RecordProfileView(ctx, educator.ID, viewerUserID)
	return educator, sections, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, input repository.UpdateEducatorInput) (*models.Educator, error) {
	educator, err := s.educators.UpdatePartial(ctx, userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEducatorNotFound
		}
		return nil, err
	}
	return educator, nil
}

// UploadPhoto stores a profile or cover photo, writes the public URL back to
// the educator row and records the upload in profile_photos.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID int64, photoType, fileName string, content []byte, mimeType string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	if photoType != "profile" && photoType != "cover" {
		return "", ErrInvalidInput
	}
	if len(content) == 0 {
		return "", ErrInvalidInput
	}

	bucket := ProfilePhotoBucket
	if photoType == "cover" {
		bucket = CoverPhotoBucket
	}

	current, err := s.educators.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrEducatorNotFound
		}
		return "", err
	}
	previousURL := current.ProfilePhotoURL
	if photoType == "cover" {
		previousURL = current.CoverPhotoURL
	}

	ext := path.Ext(fileName)
	objectPath := fmt.Sprintf("%d/%s-%d%s", userID, photoType, s.now().UnixMilli(), ext)

	publicURL, err := s.storage.UploadFile(ctx, bucket, objectPath, content, mimeType)
	if err != nil {
		return "", err
	}

	educator, err := s.educators.SetPhotoURL(ctx, userID, photoType, publicURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrEducatorNotFound
		}
		return "", err
	}

	if previousURL != nil && *previousURL != "" && *previousURL != publicURL {
		// Cleanup of the replaced object is best-effort; a failure
		// leaks a file, never the upload.
		if err := s.storage.DeleteFile(ctx, bucket, *previousURL); err != nil {
			s.logger.Error().Err(err).Str("url", *previousURL).Msg("profile: stale photo cleanup failed")
		}
	}

	photo := &models.ProfilePhoto{
		EducatorID: educator.ID,
		PhotoType:  photoType,
		FileName:   objectPath,
		FilePath:   publicURL,
		FileSize:   int64(len(content)),
		MimeType:   mimeType,
		IsActive:   true,
	}
	if err := s.profiles.AddPhoto(ctx, photo); err != nil {
		// The photo is already live on the profile; the audit row is
		// best-effort.
		s.logger.Error().Err(err).Int64("educator_id", educator.ID).Msg("profile: photo audit insert failed")
	}
	return publicURL, nil
}

func (s *ProfileService) ListSections(ctx context.Context, userID int64) ([]models.ProfileSection, error) {
	educator, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.ListSections(ctx, educator.ID)
}

func (s *ProfileService) AddSection(ctx context.Context, userID int64, input repository.ProfileSectionInput) (*models.ProfileSection, error) {
	if input.SectionType == "" || input.Title == "" {
		return nil, ErrInvalidInput
	}

	educator, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.AddSection(ctx, educator.ID, input)
}

// UpdateSection edits a section the caller owns. A section belonging to
// another educator reads the same as a missing one.
func (s *ProfileService) UpdateSection(ctx context.Context, sectionID, userID int64, input repository.ProfileSectionInput) (*models.ProfileSection, error) {
	educator, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	section, err := s.profiles.UpdateSection(ctx, sectionID, educator.ID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return section, nil
}

func (s *ProfileService) DeleteSection(ctx context.Context, sectionID, userID int64) error {
	educator, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.profiles.DeleteSection(ctx, sectionID, educator.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// RecordProfileView tracks a profile visit. Tracking never fails the page.
func (s *ProfileService) RecordProfileView(ctx context.Context, ownerEducatorID int64, viewerUserID *int64) {
	var viewerID *int64
	if viewerUserID != nil {
		viewer, err := s.educators.GetByUserID(ctx, *viewerUserID)
		if err == nil {
			viewerID = &viewer.ID
		}
	}
	if err := s.profiles.RecordProfileView(ctx, ownerEducatorID, viewerID); err != nil {
		s.logger.Error().Err(err).Int64("profile_owner_id", ownerEducatorID).Msg("profile: view insert failed")
	}
}
