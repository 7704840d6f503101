package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-warehouse-api.git/internal/config"
	"github.com/ariefcatur/go-warehouse-api.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-warehouse-api.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse-api.git/internal/orders"
	"github.com/ariefcatur/go-warehouse-api.git/internal/postgres"
	"github.com/ariefcatur/go-warehouse-api.git/internal/redisx"
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
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.Cache{R: rdb}

	// Kafka producers, one per topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatus, 1024)
	pStatus.Start(ctx)
	pDeleted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderDeleted, 1024)
	pDeleted.Start(ctx)

	// Repos & handlers
	router := httpx.NewRouter()
	ph := &httpx.ProductsHandler{
		Store: &orders.ProductRepo{DB: db},
		Log:   logger,
	}
	ph.Register(router)
	oh := &httpx.OrdersHandler{
		Store:     &orders.Repo{DB: db},
		Cache:     cache,
		Placed:    pPlaced,
		Statuses:  pStatus,
		Deletions: pDeleted,
		Service:   cfg.ServiceName,
		Log:       logger,
	}
	oh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close() // close inbox -> flush & close writer
	pStatus.Close()
	pDeleted.Close()
	cancel() // stop producer loops
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
	pDeleted.WaitClosed()
}
