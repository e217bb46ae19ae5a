package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/davorm/tether/internal/cache"
	"github.com/davorm/tether/internal/config"
	"github.com/davorm/tether/internal/database"
	postgresrepo "github.com/davorm/tether/internal/repository/postgres"
	"github.com/davorm/tether/internal/service"
	"github.com/davorm/tether/internal/transport/http/handlers"
	"github.com/davorm/tether/internal/transport/http/middleware"
	"github.com/davorm/tether/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Redis (conversation cache)
	rdb, err := cache.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()
	log.Println("Connected to redis")
	convCache := cache.NewConversationCache(rdb, 10*time.Second)

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	requestRepo := postgresrepo.NewMessageRequestRepo(pool)
	connRepo := postgresrepo.NewConnectionRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	requestService := service.NewRequestService(requestRepo, convCache)
	messageService := service.NewMessageService(messageRepo, userRepo, requestService, convCache)
	connService := service.NewConnectionService(connRepo, userRepo, convCache)
	convService := service.NewConversationService(connRepo, messageRepo, requestRepo, convCache)

	// WebSocket hub + notifier
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)
	messageService.SetNotifier(notifier)
	requestService.SetNotifier(notifier)

	// Fallback poller
	poller := service.NewPoller(convService, hub, notifier, time.Duration(cfg.PollInterval)*time.Second)
	go poller.Run(context.Background())

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	messageHandler := handlers.NewMessageHandler(messageService)
	convHandler := handlers.NewConversationHandler(convService, messageService)
	requestHandler := handlers.NewRequestHandler(requestService)
	connHandler := handlers.NewConnectionHandler(connService)

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
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/v1/messages/{peerId}", auth(http.HandlerFunc(messageHandler.ListWith)))

	// Protected - Conversations
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(convHandler.List)))
	mux.Handle("POST /api/v1/conversations/{peerId}/open", auth(http.HandlerFunc(convHandler.Open)))

	// Protected - Message requests
	mux.Handle("GET /api/v1/requests", auth(http.HandlerFunc(requestHandler.List)))
	mux.Handle("POST /api/v1/requests/{id}/accept", auth(http.HandlerFunc(requestHandler.Accept)))

	// Protected - Connections
	mux.Handle("POST /api/v1/connections", auth(http.HandlerFunc(connHandler.Create)))
	mux.Handle("GET /api/v1/connections", auth(http.HandlerFunc(connHandler.List)))
	mux.Handle("DELETE /api/v1/connections/{uid}", auth(http.HandlerFunc(connHandler.Delete)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
