package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vdsasi/NoteSharingApp/internal/config"
	"github.com/vdsasi/NoteSharingApp/internal/handler"
	"github.com/vdsasi/NoteSharingApp/internal/middleware"
	"github.com/vdsasi/NoteSharingApp/internal/repository"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/internal/websocket"
	"github.com/vdsasi/NoteSharingApp/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	mongoClient, err := repository.ConnectMongo(context.Background(), cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	metrics.RegisterCollectors(registry)

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	versionRepo := repository.NewNoteVersionRepository(db)
	collabRepo := repository.NewCollaboratorRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, "session:")

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
		logger,
	)
	go wsManager.Run()

	authService := service.NewAuthService(userRepo, sessionRepo, cfg.Session.TTL)
	userService := service.NewUserService(userRepo)
	noteService := service.NewNoteService(noteRepo, versionRepo, collabRepo, wsManager, service.NotePolicy{
		RestoreResetsPin:         cfg.Notes.RestoreResetsPin,
		SnapshotOnVersionRestore: cfg.Notes.SnapshotOnVersionRestore,
	})
	collabService := service.NewCollabService(noteRepo, userRepo, collabRepo, wsManager)

	authHandler := handler.NewAuthHandler(authService, cfg.Session)
	userHandler := handler.NewUserHandler(userService)
	noteHandler := handler.NewNoteHandler(noteService)
	shareHandler := handler.NewShareHandler(collabService)
	wsHandler := handler.NewWebSocketHandler(wsManager, authService, *cfg, logger)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS))

	api := r.PathPrefix("/api").Subrouter()

	// public routes are limited per client IP; protected ones get their
	// limiter after auth so the key is the user id
	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		public.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	public.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	public.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	public.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(authService, cfg.Session.CookieName))
	if cfg.RateLimit.Enabled {
		protected.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	protected.HandleFunc("/auth/me", userHandler.Me).Methods("GET", "OPTIONS")
	protected.HandleFunc("/auth/change-password", authHandler.ChangePassword).Methods("POST", "OPTIONS")
	protected.HandleFunc("/auth/search-users", shareHandler.SearchUsers).Methods("GET", "OPTIONS")

	protected.HandleFunc("/notes", noteHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes", noteHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/trash", noteHandler.ListTrashed).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/filter", noteHandler.ListByTag).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}", noteHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/notes/{id}/autosave", noteHandler.AutoSave).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}/restore", noteHandler.Restore).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/{id}/pin", noteHandler.TogglePin).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/{id}/versions", noteHandler.ListVersions).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}/versions/{index}/restore", noteHandler.RestoreVersion).Methods("POST", "OPTIONS")

	protected.HandleFunc("/notes/{id}/collaborators", shareHandler.ListCollaborators).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}/collaborators", shareHandler.AddCollaborator).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/{id}/collaborators/{username}", shareHandler.RemoveCollaborator).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting notes server",
			zap.String("addr", addr),
			zap.String("env", cfg.Server.Env),
			zap.String("database", cfg.Mongo.Database),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}

func newLogger(level, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"notes-server"}`))
}
