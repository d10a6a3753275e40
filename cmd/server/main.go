package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/njerikim/baraza/internal/ai"
	"github.com/njerikim/baraza/internal/config"
	"github.com/njerikim/baraza/internal/database"
	postgresrepo "github.com/njerikim/baraza/internal/repository/postgres"
	"github.com/njerikim/baraza/internal/service"
	"github.com/njerikim/baraza/internal/storage"
	"github.com/njerikim/baraza/internal/transport/http/handlers"
	"github.com/njerikim/baraza/internal/transport/http/middleware"
	"github.com/njerikim/baraza/internal/transport/ws"
	"github.com/njerikim/baraza/internal/util"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	util.InitLogger(cfg.LogLevel)
	defer util.Logger.Sync()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	util.Logger.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)
	followRepo := postgresrepo.NewFollowRepo(pool)
	notificationRepo := postgresrepo.NewNotificationRepo(pool)

	// Generative AI
	geminiClient := ai.NewGeminiClient(ai.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.AITimeout,
	})
	moderator := ai.NewModerator(geminiClient, ai.ModeratorConfig{
		CacheTTL:   cfg.ModerationCacheTTL,
		FailClosed: cfg.ModerationFailClosed,
	})
	suggester := ai.NewSuggester(geminiClient)

	// Media storage
	store, err := newStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	notificationService := service.NewNotificationService(notificationRepo)
	userService := service.NewUserService(userRepo, followRepo, postRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, moderator, suggester, notificationService)
	postService := service.NewPostService(postRepo, userRepo, moderator, notificationService)
	followService := service.NewFollowService(followRepo, userRepo, notificationService)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()
	dispatcher := ws.NewDispatcher(hub, messageService)
	notifier := ws.NewHubNotifier(hub)
	messageService.SetNotifier(notifier)
	notificationService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService)
	postHandler := handlers.NewPostHandler(postService)
	followHandler := handlers.NewFollowHandler(followService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	mediaHandler := handlers.NewMediaHandler(store)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Account
	mux.Handle("DELETE /api/v1/auth/account", auth(http.HandlerFunc(authHandler.DeleteAccount)))

	// Protected - Users
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.ListUsers)))
	mux.Handle("GET /api/v1/users/{username}", auth(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PATCH /api/v1/users/me", auth(http.HandlerFunc(userHandler.UpdateProfile)))

	// Protected - Follows
	mux.Handle("POST /api/v1/users/{username}/follow", auth(http.HandlerFunc(followHandler.Follow)))
	mux.Handle("DELETE /api/v1/users/{username}/follow", auth(http.HandlerFunc(followHandler.Unfollow)))
	mux.Handle("GET /api/v1/users/{username}/followers", auth(http.HandlerFunc(followHandler.Followers)))
	mux.Handle("GET /api/v1/users/{username}/following", auth(http.HandlerFunc(followHandler.Following)))

	// Protected - Posts
	mux.Handle("POST /api/v1/posts", auth(http.HandlerFunc(postHandler.Create)))
	mux.Handle("GET /api/v1/posts/feed", auth(http.HandlerFunc(postHandler.Feed)))
	mux.Handle("GET /api/v1/posts/by/{userID}", auth(http.HandlerFunc(postHandler.ListByUser)))
	mux.Handle("DELETE /api/v1/posts/{id}", auth(http.HandlerFunc(postHandler.Delete)))
	mux.Handle("POST /api/v1/posts/{id}/like", auth(http.HandlerFunc(postHandler.Like)))
	mux.Handle("DELETE /api/v1/posts/{id}/like", auth(http.HandlerFunc(postHandler.Unlike)))
	mux.Handle("POST /api/v1/posts/{id}/comments", auth(http.HandlerFunc(postHandler.Comment)))
	mux.Handle("GET /api/v1/posts/{id}/comments", auth(http.HandlerFunc(postHandler.ListComments)))
	mux.Handle("DELETE /api/v1/comments/{id}", auth(http.HandlerFunc(postHandler.DeleteComment)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/v1/messages/inbox", auth(http.HandlerFunc(messageHandler.Inbox)))
	mux.Handle("GET /api/v1/messages/with/{userID}", auth(http.HandlerFunc(messageHandler.ListConversation)))
	mux.Handle("GET /api/v1/messages/with/{userID}/search", auth(http.HandlerFunc(messageHandler.Search)))
	mux.Handle("DELETE /api/v1/messages/with/{userID}", auth(http.HandlerFunc(messageHandler.DeleteConversation)))
	mux.Handle("POST /api/v1/messages/{id}/read", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("GET /api/v1/messages/with/{userID}/suggest-reply", auth(http.HandlerFunc(messageHandler.SuggestReply)))
	mux.Handle("GET /api/v1/messages/with/{userID}/suggest-starters", auth(http.HandlerFunc(messageHandler.SuggestStarters)))

	// Protected - Notifications
	mux.Handle("GET /api/v1/notifications", auth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("POST /api/v1/notifications/{id}/read", auth(http.HandlerFunc(notificationHandler.MarkRead)))

	// Protected - Media
	mux.Handle("POST /api/v1/media", auth(http.HandlerFunc(mediaHandler.Upload)))
	if cfg.StorageBackend == "local" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, dispatcher, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	util.Logger.Info("starting server", zap.String("addr", addr))
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}

func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "s3":
		return storage.NewS3Store(cfg.S3Region, cfg.S3Bucket)
	default:
		return storage.NewLocalStore(cfg.UploadDir)
	}
}
