package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/services"
)

type postApplicationService interface {
	Feed(ctx context.Context, page, limit int) ([]models.FeedPost, int, error)
	CreatePost(ctx context.Context, userID int64, content string, imageURL *string) (*models.Post, error)
	UpdatePost(ctx context.Context, userID, postID int64, content string, imageURL *string) (*models.Post, error)
	DeletePost(ctx context.Context, userID, postID int64) error
	ToggleReaction(ctx context.Context, userID, postID int64, reactionType string) (bool, string, error)
	PostReactions(ctx context.Context, postID int64) ([]models.ReactionGroup, error)
	ListComments(ctx context.Context, postID int64) ([]models.CommentView, error)
	AddComment(ctx context.Context, userID, postID int64, content string, parentCommentID *int64) (*models.PostComment, error)
	UpdateComment(ctx context.Context, userID, commentID int64, content string) (*models.PostComment, error)
	DeleteComment(ctx context.Context, userID, commentID int64) error
	RecordView(ctx context.Context, userID, postID int64)
}

type PostHandler struct {
	service postApplicationService
}

func NewPostHandler(service postApplicationService) *PostHandler {
	return &PostHandler{service: service}
}

type postRequest struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url"`
}

type reactionRequest struct {
	ReactionType string `json:"reaction_type"`
}

type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *int64 `json:"parent_comment_id"`
}

func (h *PostHandler) Feed(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	posts, total, err := h.service.Feed(c.Context(), page, limit)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":      posts,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	post, err := h.service.CreatePost(c.Context(), userID, req.Content, req.ImageURL)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	post, err := h.service.UpdatePost(c.Context(), userID, postID, req.Content, req.ImageURL)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{"post": post})
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	if err := h.service.DeletePost(c.Context(), userID, postID); err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *PostHandler) ToggleReaction(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	var req reactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	reacted, reactionType, err := h.service.ToggleReaction(c.Context(), userID, postID, req.ReactionType)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{
		"reacted":       reacted,
		"reaction_type": reactionType,
	})
}

func (h *PostHandler) ListReactions(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	reactions, err := h.service.PostReactions(c.Context(), postID)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{"reactions": reactions})
}

func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	comments, err := h.service.ListComments(c.Context(), postID)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{"comments": comments})
}

func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	comment, err := h.service.AddComment(c.Context(), userID, postID, req.Content, req.ParentCommentID)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

func (h *PostHandler) UpdateComment(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	commentID, err := strconv.ParseInt(c.Params("commentId"), 10, 64)
	if err != nil || commentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid comment id"})
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	comment, err := h.service.UpdateComment(c.Context(), userID, commentID, req.Content)
	if err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{"comment": comment})
}

func (h *PostHandler) DeleteComment(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	commentID, err := strconv.ParseInt(c.Params("commentId"), 10, 64)
	if err != nil || commentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid comment id"})
	}

	if err := h.service.DeleteComment(c.Context(), userID, commentID); err != nil {
		return mapPostError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// RecordView always answers ok; view tracking must never surface errors to
// the reader.
func (h *PostHandler) RecordView(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	postID, err := parsePostID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post id"})
	}

	h.service.RecordView(c.Context(), userID, postID)
	return c.JSON(fiber.Map{"status": "ok"})
}

func parsePostID(c *fiber.Ctx) (int64, error) {
	postID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || postID <= 0 {
		return 0, strconv.ErrSyntax
	}
	return postID, nil
}

func mapPostError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrEducatorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Educator profile not found"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process post request"})
	}
}
