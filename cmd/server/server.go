package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/matcha/internal/cache"
	"github.com/thereayou/matcha/internal/config"
	"github.com/thereayou/matcha/internal/database"
	"github.com/thereayou/matcha/internal/handlers"
	"github.com/thereayou/matcha/internal/memstore"
	"github.com/thereayou/matcha/internal/services"
	"github.com/thereayou/matcha/internal/websocket"
	"github.com/thereayou/matcha/pkg/auth"
	"github.com/thereayou/matcha/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// storage is what both storage drivers provide.
type storage interface {
	services.ChatRepository
	services.MessageRepository
	services.NotificationRepository
	services.RelationshipRepository
	services.ProfileRepository
	Close() error
}

type Server struct {
	cfg    config.Config
	Router *gin.Engine
	Store  storage
	Redis  *redis.Client
	Hub    *websocket.Hub
}

func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	var (
		rdb       *redis.Client
		blacklist *cache.Blacklist
		presence  *cache.Presence
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		blacklist = cache.NewBlacklist(rdb)
		presence = cache.NewPresence(rdb, cfg.PresenceTTL)
	} else {
		logger.Warn(ctx, "REDIS_URL is empty: token revocation and presence are disabled")
	}

	// JWTManager only verifies here; the duration is unused
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)
	hub := websocket.NewHub()

	var (
		tokenBlacklist services.TokenBlacklist
		tracker        services.PresenceTracker
		revoker        handlers.TokenRevoker
	)
	if blacklist != nil {
		tokenBlacklist, revoker, tracker = blacklist, blacklist, presence
	}

	guard := services.NewRelationshipGuard(store)
	messages := services.NewMessageStore(store)
	unread := services.NewUnreadCounter(store)
	directory := services.NewChatDirectory(store, guard, unread, store)
	fanout := services.NewNotificationFanout(store, store, hub)
	views := services.NewProfileViews(store, guard, fanout)
	authenticator := services.NewSessionAuthenticator(jwtMgr, tokenBlacklist)
	events := services.NewEventService(guard, messages, unread, tracker, store, hub)

	h := Handlers{
		Auth:          handlers.NewAuthHandler(jwtMgr, revoker),
		Chats:         handlers.NewChatHandler(directory),
		Messages:      handlers.NewHTTPMessageHandler(messages, unread, events),
		Notifications: handlers.NewNotificationHandler(fanout),
		Users:         handlers.NewUserHandler(views),
		WebSocket: handlers.NewWebSocketHandler(authenticator, events, handlers.NewEventHandler(events),
			cfg.WSAllowedOrigins, cfg.WSSendBuffer),
	}

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	APIEndpoints(router, authenticator, h)

	return &Server{
		cfg:    cfg,
		Router: router,
		Store:  store,
		Redis:  rdb,
		Hub:    hub,
	}, nil
}

func openStorage(cfg config.Config) (storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn(context.Background(), "using in-memory storage; data is lost on restart")
		return memstore.New(), nil
	case config.StoragePostgres:
		db, err := database.Connect(cfg.DatabaseURL, cfg.StorageTimeout)
		if err != nil {
			return nil, fmt.Errorf("postgres connect failed: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Run serves until ctx is done, then stops accepting requests, closes every
// live session and releases storage.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", logger.String("port", s.cfg.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http shutdown incomplete", logger.ErrorField(err))
	}
	// hijacked websocket connections are not tracked by http.Server
	s.Hub.Stop()

	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if err := s.Store.Close(); err != nil {
		logger.Warn(shutdownCtx, "storage close failed", logger.ErrorField(err))
	}
	logger.Info(shutdownCtx, "server stopped")
	return runErr
}
