package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/josego85/pdf-content-search/internal/ai"
	"github.com/josego85/pdf-content-search/internal/cache"
	"github.com/josego85/pdf-content-search/internal/config"
	"github.com/josego85/pdf-content-search/internal/extract"
	"github.com/josego85/pdf-content-search/internal/langid"
	"github.com/josego85/pdf-content-search/internal/queue"
	"github.com/josego85/pdf-content-search/internal/server"
	"github.com/josego85/pdf-content-search/internal/service"
	"github.com/josego85/pdf-content-search/internal/store"
	"github.com/josego85/pdf-content-search/internal/translation"
	"github.com/josego85/pdf-content-search/pkg/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.LogLevel))

	db, err := store.NewPostgresDB(store.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		MaxPool:  cfg.Database.MaxPool,
	})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal("Failed to apply migrations: %v", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	producer, err := queue.NewProducer(cfg.Queue.URL, cfg.Queue.Name)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ: %v", err)
	}
	defer producer.Close()

	translator, err := ai.NewClient(&ai.Config{
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.APIKey,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to create model client: %v", err)
	}

	extractor, err := extract.NewClient(cfg.Extractor.BaseURL, cfg.Extractor.Timeout)
	if err != nil {
		log.Fatal("Failed to create extraction client: %v", err)
	}

	resolver := translation.NewResolver(
		langid.New(),
		translator,
		cache.NewTranslationCache(redisClient),
		store.NewTranslationStore(db),
		cfg.Translate.CacheTTL,
	)

	orchestrator := service.NewOrchestrator(
		store.NewDocumentStore(db),
		extractor,
		resolver,
		store.NewJobStore(db),
		producer,
		cache.NewDedupMarker(redisClient, cfg.Translate.DedupTTL),
		cfg.Translate.TargetLanguages,
	)

	srv := server.NewServer(orchestrator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("API listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown failed: %v", err)
	}
}
