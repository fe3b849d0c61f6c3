package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekaraca/txbatch-backend/internal/api"
	"github.com/ekaraca/txbatch-backend/internal/config"
	"github.com/ekaraca/txbatch-backend/internal/db"
	"github.com/ekaraca/txbatch-backend/internal/events"
	"github.com/ekaraca/txbatch-backend/internal/logger"
	"github.com/ekaraca/txbatch-backend/internal/metrics"
	repo "github.com/ekaraca/txbatch-backend/internal/repository"
	"github.com/ekaraca/txbatch-backend/internal/repository/memory"
	"github.com/ekaraca/txbatch-backend/internal/repository/postgres"
	"github.com/ekaraca/txbatch-backend/internal/services"
	"github.com/ekaraca/txbatch-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		transactions repo.Transactions
		auditLogs    repo.AuditLogs
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, 10)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		repos := postgres.NewRepositories(pool)
		transactions, auditLogs = repos.Transactions, repos.AuditLogs
	} else {
		log.Warn("DATABASE_URL empty, using in-memory repositories")
		transactions, auditLogs = memory.NewTransactions(), memory.NewAuditLogs()
	}

	pub, err := newPublisher(cfg, log)
	if err != nil {
		log.Error("event publisher", "err", err)
		os.Exit(1)
	}
	defer func() { _ = pub.Close() }()

	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	txnSvc := services.NewTransactionService(transactions, auditLogs, pub, wp)

	metrics.Init()
	r := api.NewRouter(cfg, txnSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "event_bus", cfg.EventBus)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newPublisher(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventBus {
	case "redis":
		return events.NewRedisPublisher(cfg.RedisAddr, cfg.EventChannel)
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBroker, cfg.EventTopic)
	default:
		return events.NewLogPublisher(log), nil
	}
}
