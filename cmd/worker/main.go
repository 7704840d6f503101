package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ariefcatur/go-warehouse-api.git/internal/config"
	kafkax "github.com/ariefcatur/go-warehouse-api.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse-api.git/internal/orders"
	"github.com/ariefcatur/go-warehouse-api.git/internal/postgres"
	"github.com/ariefcatur/go-warehouse-api.git/internal/redisx"
	"github.com/ariefcatur/go-warehouse-api.git/internal/worker"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &worker.Service{
		Products:    &orders.ProductRepo{DB: db},
		Cache:       redisx.Cache{R: rdb},
		LowStock:    cfg.LowStock,
		ServiceName: cfg.ServiceName + "-worker",
		Log:         logger,
	}

	// Consumer across all order topics
	group := getenv("WORKER_GROUP", "warehouse-worker")
	workers := mustAtoi(os.Getenv("WORKER_COUNT"), "8")
	topics := []string{orders.TopicOrderPlaced, orders.TopicOrderStatus, orders.TopicOrderDeleted}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("worker consumer started",
			zap.String("group", group),
			zap.Strings("topics", topics),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
