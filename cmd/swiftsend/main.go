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

	"github.com/gin-gonic/gin"

	"github.com/arijitchhatui/swiftsend-service/internal/cache"
	"github.com/arijitchhatui/swiftsend-service/internal/config"
	"github.com/arijitchhatui/swiftsend-service/internal/handler"
	"github.com/arijitchhatui/swiftsend-service/internal/presence"
	"github.com/arijitchhatui/swiftsend-service/internal/reconciler"
	"github.com/arijitchhatui/swiftsend-service/internal/repository"
	"github.com/arijitchhatui/swiftsend-service/internal/search"
	"github.com/arijitchhatui/swiftsend-service/internal/service"
	"github.com/arijitchhatui/swiftsend-service/pkg/auth"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	db, err := repository.Connect(ctx, cfg.Mongo)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongo")
	}

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	err = repository.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// Repositories
	profileRepo := repository.NewMongoProfileRepository(db)
	followRepo := repository.NewMongoFollowRepository(db)
	channelRepo := repository.NewMongoChannelRepository(db)
	messageRepo := repository.NewMongoMessageRepository(db)

	// Redis: presence tracking and profile cache
	redisClient, err := presence.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	tracker := presence.NewRedisTracker(redisClient, cfg.Presence)
	profileCache := cache.NewRedisProfileCache(redisClient, cfg.Cache.Prefix, cfg.Cache.TTL)

	// Elasticsearch profile index
	profileIndex, err := search.NewESProfileIndex(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create elasticsearch client")
	}

	// Services
	profileService := service.NewProfileService(profileRepo, followRepo, profileCache, profileIndex, tracker)
	followService := service.NewFollowService(followRepo, profileRepo, tracker)
	channelService := service.NewChannelService(channelRepo, messageRepo, profileRepo, tracker)
	messageService := service.NewMessageService(messageRepo, channelService, channelRepo)

	// Auth
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	authMW := auth.NewMiddleware(verifier)

	// Handlers
	httpHandler := handler.NewHandler(profileService, followService, channelService, messageService, authMW)
	wsHandler := presence.NewWSHandler(tracker, verifier, cfg.Presence)

	// Counter reconciler
	var rec *reconciler.Reconciler
	if cfg.Reconciler.Enabled {
		rec = reconciler.New(profileRepo, followRepo, cfg.Reconciler)
		rec.Start(context.Background())
	}

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkglog.GinMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/ws/presence", wsHandler.Handle)
	httpHandler.RegisterRoutes(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("starting swiftsend service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	if rec != nil {
		rec.Stop()
		<-rec.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if err := tracker.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close redis")
	}

	logger.Info().Msg("server exited")
}
