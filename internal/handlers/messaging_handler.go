package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/feed"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/models"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/services"
	chatws "github.com/DMcoder75/Teachermeet-1Aug25/internal/websocket"
	"github.com/DMcoder75/Teachermeet-1Aug25/pkg/utils"
)

type messagingApplicationService interface {
	ListConversations(ctx context.Context, userID int64) ([]models.ConversationSummary, error)
	CreateConversation(ctx context.Context, userID int64, participantIDs []int64, title *string, isGroup bool) (*models.Conversation, error)
	FetchMessages(ctx context.Context, conversationID, userID int64, markRead bool) (*models.MessageHistory, error)
	SendMessage(ctx context.Context, input services.SendMessageInput) (*models.MessageView, error)
	MarkConversationRead(ctx context.Context, conversationID, userID int64) error
	SearchEducators(ctx context.Context, userID int64, term string, limit int) ([]models.Educator, error)
	EducatorID(ctx context.Context, userID int64) (int64, error)
	CanAccessConversation(ctx context.Context, conversationID, userID int64) (bool, error)
}

type MessagingHandler struct {
	service   messagingApplicationService
	hub       *chatws.Hub
	broker    feed.Broker
	jwtSecret string
}

func NewMessagingHandler(
	service messagingApplicationService,
	hub *chatws.Hub,
	broker feed.Broker,
	jwtSecret string,
) *MessagingHandler {
	return &MessagingHandler{
		service:   service,
		hub:       hub,
		broker:    broker,
		jwtSecret: jwtSecret,
	}
}

type createConversationRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
	Title          *string `json:"title"`
	IsGroup        bool    `json:"is_group"`
}

type sendMessageRequest struct {
	Content       string  `json:"content"`
	MessageType   string  `json:"message_type"`
	AttachmentURL *string `json:"attachment_url"`
	ClientKey     string  `json:"client_key"`
}

func (h *MessagingHandler) ListConversations(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversations, err := h.service.ListConversations(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrEducatorNotFound) {
			return c.JSON(fiber.Map{
				"conversations":        []models.ConversationSummary{},
				"needs_educator_setup": true,
			})
		}
		return mapMessagingError(c, err)
	}

	return c.JSON(fiber.Map{"conversations": conversations})
}

func (h *MessagingHandler) CreateConversation(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.ParticipantIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "At least one participant is required"})
	}

	conversation, err := h.service.CreateConversation(c.Context(), userID, req.ParticipantIDs, req.Title, req.IsGroup)
	if err != nil {
		return mapMessagingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"conversation": conversation})
}

func (h *MessagingHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || conversationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	markRead := c.Query("mark_read", "true") != "false"

	history, err := h.service.FetchMessages(c.Context(), conversationID, userID, markRead)
	if err != nil {
		return mapMessagingError(c, err)
	}

	return c.JSON(history)
}

func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || conversationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.SendMessage(c.Context(), services.SendMessageInput{
		ConversationID: conversationID,
		UserID:         userID,
		Content:        req.Content,
		MessageType:    req.MessageType,
		AttachmentURL:  req.AttachmentURL,
		ClientKey:      req.ClientKey,
	})
	if err != nil {
		return mapMessagingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}

func (h *MessagingHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || conversationID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	if err := h.service.MarkConversationRead(c.Context(), conversationID, userID); err != nil {
		return mapMessagingError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *MessagingHandler) SearchEducators(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	term := strings.TrimSpace(c.Query("q"))
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	educators, err := h.service.SearchEducators(c.Context(), userID, term, limit)
	if err != nil {
		return mapMessagingError(c, err)
	}

	return c.JSON(fiber.Map{"educators": educators})
}

func (h *MessagingHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	return c.Next()
}

func (h *MessagingHandler) HandleWebSocket(conn *websocket.Conn) {
	userIDStr, _ := conn.Locals("user_id").(string)
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := chatws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump(h.service, h.broker)
}

func (h *MessagingHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

func mapMessagingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrEducatorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Educator profile not found"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process messaging request"})
	}
}
