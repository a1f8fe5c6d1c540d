package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DMcoder75/Teachermeet-1Aug25/internal/config"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/feed"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/handlers"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/middleware"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/repository"
	"github.com/DMcoder75/Teachermeet-1Aug25/internal/services"
	chatws "github.com/DMcoder75/Teachermeet-1Aug25/internal/websocket"
)

// RegisterRoutes wires repositories, services and handlers onto the app.
// redisClient may be nil; live updates then run on the in-process broker.
func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, redisClient *redis.Client, logger zerolog.Logger) {
	userRepo := repository.NewUserRepository(db)
	educatorRepo := repository.NewEducatorRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	var broker feed.Broker
	if redisClient != nil {
		broker = feed.NewRedisBroker(redisClient, logger)
	} else {
		broker = feed.NewMemoryBroker()
	}

	var storageService services.StorageService
	if cfg.StorageURL != "" && cfg.StorageServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.StorageURL, cfg.StorageServiceKey)
	}

	authHandler := handlers.NewAuthHandler(db, userRepo, educatorRepo, cfg.JWTSecret)

	messagingService := services.NewMessagingService(educatorRepo, conversationRepo, messageRepo, broker, logger)
	hub := chatws.NewHub(logger)
	go hub.Run()
	messagingHandler := handlers.NewMessagingHandler(messagingService, hub, broker, cfg.JWTSecret)

	postService := services.NewPostService(postRepo, reactionRepo, commentRepo, educatorRepo, logger)
	postHandler := handlers.NewPostHandler(postService)

	profileService := services.NewProfileService(educatorRepo, profileRepo, storageService, logger)
	profileHandler := handlers.NewProfileHandler(profileService)

	analyticsService := services.NewAnalyticsService(educatorRepo, postRepo, reactionRepo, commentRepo, profileRepo, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	protected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	conversations := protected.Group("/conversations")
	conversations.Get("", messagingHandler.ListConversations)
	conversations.Post("", messagingHandler.CreateConversation)
	conversations.Get("/:id/messages", messagingHandler.GetMessages)
	conversations.Post("/:id/messages", messagingHandler.SendMessage)
	conversations.Post("/:id/read", messagingHandler.MarkRead)

	educators := protected.Group("/educators")
	educators.Get("/search", messagingHandler.SearchEducators)
	educators.Get("/:id", profileHandler.ViewEducator)

	posts := protected.Group("/posts")
	posts.Get("", postHandler.Feed)
	posts.Post("", postHandler.CreatePost)
	posts.Put("/:id", postHandler.UpdatePost)
	posts.Delete("/:id", postHandler.DeletePost)
	posts.Post("/:id/reactions", postHandler.ToggleReaction)
	posts.Get("/:id/reactions", postHandler.ListReactions)
	posts.Get("/:id/comments", postHandler.ListComments)
	posts.Post("/:id/comments", postHandler.AddComment)
	posts.Put("/comments/:commentId", postHandler.UpdateComment)
	posts.Delete("/comments/:commentId", postHandler.DeleteComment)
	posts.Post("/:id/view", postHandler.RecordView)

	profile := protected.Group("/profile")
	profile.Get("", profileHandler.GetOwnProfile)
	profile.Put("", profileHandler.UpdateProfile)
	profile.Post("/photo", profileHandler.UploadPhoto)
	profile.Get("/sections", profileHandler.ListSections)
	profile.Post("/sections", profileHandler.AddSection)
	profile.Put("/sections/:sectionId", profileHandler.UpdateSection)
	profile.Delete("/sections/:sectionId", profileHandler.DeleteSection)

	protected.Get("/analytics", analyticsHandler.UserAnalytics)

	api.Use("/v1/ws", messagingHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(messagingHandler.HandleWebSocket))
}
