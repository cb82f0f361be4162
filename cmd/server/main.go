package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/finboard/internal/api"
	"github.com/honeynil/finboard/internal/config"
	"github.com/honeynil/finboard/internal/infrastructure/cache"
	"github.com/honeynil/finboard/internal/infrastructure/kafka"
	"github.com/honeynil/finboard/internal/notify"
	"github.com/honeynil/finboard/internal/observability"
	"github.com/honeynil/finboard/internal/repository/memory"
	core "github.com/honeynil/finboard/internal/repository/postgres"
	service "github.com/honeynil/finboard/internal/services"
	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	// Logs, metrics, traces
	shutdownTracing := observability.Setup(ctx, cfg)
	defer shutdownTracing(context.Background())

	data, err := memory.LoadSampleData()
	if err != nil {
		slog.Error("failed to load sample data", "error", err)
		os.Exit(1)
	}
	repos := service.Repositories{
		Accounts:      memory.NewAccountRepository(data.Accounts),
		Transactions:  memory.NewTransactionRepository(data.Transactions),
		Cards:         memory.NewCardRepository(data.Cards),
		Beneficiaries: memory.NewBeneficiaryRepository(data.Beneficiaries),
		Billers:       memory.NewBillerRepository(data.Billers),
		Payments:      memory.NewPaymentRepository(data.Payments),
	}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := core.Migrate(db); err != nil {
			slog.Error("failed to migrate Postgres", "error", err)
			os.Exit(1)
		}
		repos.Accounts = core.NewPostgresAccountRepository(db)
		repos.Transactions = core.NewPostgresTransactionRepository(db)
		slog.Info("using Postgres for accounts and transactions")
	}

	var cacheClient cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Error("failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cacheClient = redisCache
	} else {
		cacheClient = cache.NewLocalCache(cfg.CacheTTL, 2*cfg.CacheTTL)
		slog.Info("using in-process cache")
	}
	defer cacheClient.Close()

	feed := notify.NewFeed(notify.DefaultCapacity)
	var publisher notify.Publisher = feed
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.NotificationsTopic)
		defer producer.Close()
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.NotificationsTopic, cfg.ConsumerGroup, feed)
		defer consumer.Close()
		go consumer.Consume(ctx)
		publisher = producer
	}

	svc, err := service.NewDashboardService(repos, cacheClient, publisher, feed, service.Options{
		PageSize:     cfg.PageSize,
		CacheTTL:     cfg.CacheTTL,
		CurrencyCode: cfg.CurrencyCode,
	})
	if err != nil {
		slog.Error("failed to initialise dashboard service", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.SetupRouter(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
