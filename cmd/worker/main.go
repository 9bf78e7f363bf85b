package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/josego85/pdf-content-search/internal/ai"
	"github.com/josego85/pdf-content-search/internal/cache"
	"github.com/josego85/pdf-content-search/internal/config"
	"github.com/josego85/pdf-content-search/internal/extract"
	"github.com/josego85/pdf-content-search/internal/langid"
	"github.com/josego85/pdf-content-search/internal/queue"
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

	jobStore := store.NewJobStore(db)
	dedup := cache.NewDedupMarker(redisClient, cfg.Translate.DedupTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stuck-job sweeper: requeues work whose worker died mid-processing.
	producer, err := queue.NewProducer(cfg.Queue.URL, cfg.Queue.Name)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ: %v", err)
	}
	defer producer.Close()

	sweeper := service.NewSweeper(jobStore, extractor, producer, dedup, cfg.Translate.StuckAfter)
	cronRunner := cron.New()
	if err := sweeper.Schedule(cronRunner, cfg.Translate.SweepCron); err != nil {
		log.Fatal("Failed to schedule sweeper: %v", err)
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Queue.WorkerCount; i++ {
		// Each consumer gets its own connection so Qos(1) applies per
		// worker, not per process.
		consumer, err := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name)
		if err != nil {
			log.Fatal("Failed to create consumer: %v", err)
		}
		defer consumer.Close()

		worker := service.NewWorker(resolver, jobStore, dedup)
		log.Info("Starting worker %s", worker.ID())

		group.Go(func() error {
			return consumer.Start(ctx, worker.Handle)
		})
	}

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal("Worker pool stopped: %v", err)
	}
	log.Info("Shutting down")
}
