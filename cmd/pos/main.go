package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/backend"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/catalog"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/config"
	httphandler "github.com/danishyusrah/Project-Go-Bisnis/internal/http"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/logger"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/publisher"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/repository"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/service"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)

	ctx := context.Background()

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, backend.WithLogger(l))
	l.Info("backend configured", zap.String("base_url", cfg.BackendBaseURL))

	opts := []service.Option{
		service.WithLogger(l),
		service.WithCheckoutTimeout(cfg.CheckoutTimeout),
		service.WithDefaultNotes(cfg.DefaultNotes),
	}

	if cfg.CacheEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			l.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		opts = append(opts, service.WithCatalogCache(catalog.NewRedisCache(redisClient, cfg.CatalogCacheTTL)))
		l.Info("catalog cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	repo, err := repository.NewRepository(cfg.ReceiptDBPath)
	if err != nil {
		l.Fatal("failed to open receipt journal", zap.Error(err))
	}
	defer repo.Close()
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		l.Fatal("failed to run migrations", zap.Error(err))
	}

	var pub publisher.Publisher = publisher.NoopPublisher{}
	if cfg.EventsEnabled() {
		pub = publisher.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		l.Info("sale events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := pub.Close(); err != nil {
			l.Error("failed to close publisher", zap.Error(err))
		}
	}()

	store := session.NewMemoryStore(
		session.WithTTL(cfg.SessionTTL),
		session.WithEvictHook(func(s *session.Session) {
			l.Info("pos session expired", zap.String("session_id", s.ID))
		}),
	)
	defer store.Close()

	svc := service.NewPOSService(
		func(token string) service.Backend { return client.WithToken(token) },
		store,
		repo,
		pub,
		opts...,
	)

	handler := httphandler.NewPOSHandler(svc, cfg.BackendTimeout)
	router := httphandler.NewRouter(handler, l)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           otelhttp.NewHandler(router, "pos"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		l.Info("pos service listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down pos service")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("http shutdown failed", zap.Error(err))
	}
	svc.Close()
	l.Info("pos service stopped")
}
