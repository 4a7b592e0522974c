package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentmart/relay-service/internal/config"
	"github.com/agentmart/relay-service/internal/events"
	"github.com/agentmart/relay-service/internal/handler"
	"github.com/agentmart/relay-service/internal/hub"
	"github.com/agentmart/relay-service/internal/presence"
	"github.com/agentmart/relay-service/internal/repository"
	"github.com/agentmart/relay-service/internal/service"
	"github.com/agentmart/relay-service/pkg/database"
	"github.com/agentmart/relay-service/pkg/jwt"
	"github.com/agentmart/relay-service/pkg/log"
	"github.com/agentmart/relay-service/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()
	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting relay service")

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("auth.jwt_secret must be configured")
	}

	// Database
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	store := repository.NewGormStore(db)
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	// Presence mirror
	reg, err := presence.NewRedisRegistry(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer reg.Close()
	logger.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")

	// Activity event stream
	producer, err := events.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer producer.Close()
	logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to kafka")

	// Identity
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration, cfg.Auth.Issuer)

	// Hub and relay service
	wsHub := hub.NewHub()
	relay := service.NewRelayService(wsHub, store, tokens, reg, producer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.StartHeartbeat(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start presence heartbeat")
	}

	// HTTP + WebSocket surface
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(log.GinMiddleware(logger), gin.Recovery())

	wsHandler := handler.NewWSHandler(wsHub, relay, cfg.WebSocket)
	wsHandler.RegisterRoutes(router)

	auth := middleware.NewAuthMiddleware(tokens)
	httpHandler := handler.NewHTTPHandler(store, auth)
	httpHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("relay listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down relay service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("relay service stopped")
}
