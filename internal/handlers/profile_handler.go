package handlers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/services"
)

const maxPhotoSizeBytes = 5 * 1024 * 1024

type profileApplicationService interface {
	GetProfile(ctx context.Context, userID int64) (*models.Educator, error)
	ViewEducator(ctx context.Context, educatorID int64, viewerUserID *int64) (*models.Educator, []models.ProfileSection, error)
	UpdateProfile(ctx context.Context, userID int64, input repository.UpdateEducatorInput) (*models.Educator, error)
	UploadPhoto(ctx context.Context, userID int64, photoType, fileName string, content []byte, mimeType string) (string, error)
	ListSections(ctx context.Context, userID int64) ([]models.ProfileSection, error)
	AddSection(ctx context.Context, userID int64, input repository.ProfileSectionInput) (*models.ProfileSection, error)
	UpdateSection(ctx context.Context, sectionID, userID int64, input repository.ProfileSectionInput) (*models.ProfileSection, error)
	DeleteSection(ctx context.Context, sectionID, userID int64) error
}

type ProfileHandler struct {
	service profileApplicationService
}

func NewProfileHandler(service profileApplicationService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetOwnProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	educator, err := h.service.GetProfile(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"educator": educator})
}

func (h *ProfileHandler) ViewEducator(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	educatorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || educatorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid educator id"})
	}

	educator, sections, err := h.service.ViewEducator(c.Context(), educatorID, &userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{
		"educator": educator,
		"sections": sections,
	})
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var input repository.UpdateEducatorInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	educator, err := h.service.UpdateProfile(c.Context(), userID, input)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"educator": educator})
}

func (h *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	photoType := c.FormValue("photo_type", "profile")
	if photoType != "profile" && photoType != "cover" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo_type must be profile or cover"})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is empty"})
	}
	if fileHeader.Size > maxPhotoSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "photo must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open photo file"})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read photo file"})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	photoURL, err := h.service.UploadPhoto(c.Context(), userID, photoType, fileHeader.Filename, content, mimeType)
	if err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"error": "Storage service is not configured"})
		}
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"photo_url": photoURL})
}

func (h *ProfileHandler) ListSections(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sections, err := h.service.ListSections(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"sections": sections})
}

func (h *ProfileHandler) AddSection(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var input repository.ProfileSectionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	section, err := h.service.AddSection(c.Context(), userID, input)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"section": section})
}

func (h *ProfileHandler) UpdateSection(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sectionID, err := strconv.ParseInt(c.Params("sectionId"), 10, 64)
	if err != nil || sectionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid section id"})
	}

	var input repository.ProfileSectionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	section, err := h.service.UpdateSection(c.Context(), sectionID, userID, input)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"section": section})
}

func (h *ProfileHandler) DeleteSection(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sectionID, err := strconv.ParseInt(c.Params("sectionId"), 10, 64)
	if err != nil || sectionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid section id"})
	}

	if err := h.service.DeleteSection(c.Context(), sectionID, userID); err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func mapProfileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrEducatorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Educator profile not found"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process profile request"})
	}
}
