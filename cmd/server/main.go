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

	"bistro-service/config"
	"bistro-service/internal/api"
	"bistro-service/internal/broker"
	"bistro-service/internal/cart"
	"bistro-service/internal/feed"
	"bistro-service/internal/redisclient"
	"bistro-service/internal/service"
	"bistro-service/internal/store"
	"bistro-service/internal/util"
	"bistro-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bistro service")

	tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	repo, err := openRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Backend, err)
	}
	defer repo.Close()
	logger.Info("Storage connected", zap.String("backend", cfg.Storage.Backend))

	hub := feed.NewHub()
	defer hub.Close()
	feedHandler := worker.NewFeedHandler(hub)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var sink broker.Sink
	var feedWorker *worker.FeedWorker
	if cfg.Kafka.Enabled {
		sink = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		feedWorker = worker.NewFeedWorker(consumer, feedHandler)
		go func() {
			if err := feedWorker.Start(workerCtx); err != nil {
				logger.Error("Feed worker error", zap.Error(err))
			}
		}()
	} else {
		sink = broker.NewLocalSink(feedHandler.HandleMessage)
		logger.Info("Kafka disabled, dispatching events in process")
	}
	defer sink.Close()

	eventPublisher := broker.NewEventPublisher(sink)

	catalogService := service.NewCatalogService(repo, eventPublisher, cfg.Business.MenuSeedFile)
	if err := catalogService.Seed(context.Background()); err != nil {
		log.Fatalf("Failed to seed menu: %v", err)
	}

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret && cfg.Server.Env == "production" {
		logger.Warn("ADMIN_JWT_SECRET is not set, using the development secret")
	}
	fallback := make(map[string]string, len(cfg.Auth.FallbackCredentials))
	for _, cred := range cfg.Auth.FallbackCredentials {
		fallback[cred.Username] = cred.Password
	}
	authService, err := service.NewAuthService(repo, service.AuthOptions{
		Secret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL: cfg.Auth.TokenTTL,
		Fallback: fallback,
	})
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	var llm service.Generator
	if cfg.AI.APIKey != "" {
		llm, err = service.NewOpenAIGenerator(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize AI waiter: %v", err)
		}
	} else {
		logger.Warn("API_KEY not set, AI waiter disabled")
	}

	handler := api.NewHandler(api.Services{
		Catalog:  catalogService,
		Checkout: service.NewCheckoutService(repo, eventPublisher),
		Orders:   service.NewOrderService(repo, eventPublisher, service.ParseStatusPolicy(cfg.Business.StatusPolicy)),
		Analytics: service.NewAnalyticsService(repo, service.AnalyticsOptions{
			Location:         cfg.Business.Location(),
			MonthIgnoresYear: cfg.Business.MonthIgnoresYear,
			ChartPlaceholder: cfg.Business.ChartPlaceholder,
		}),
		Auth:   authService,
		Waiter: service.NewWaiterService(catalogService, llm, cfg.AI.Timeout),
		Carts:  cart.NewRegistry(),
		Feed:   hub,
		Store:  repo,
	}, api.Config{
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
		LoginBurst:         cfg.Auth.LoginBurst,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if feedWorker != nil {
		if err := feedWorker.Stop(); err != nil {
			logger.Error("Failed to stop feed worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// openRepository connects the storage backend named by STORAGE_BACKEND
func openRepository(cfg *config.Config) (store.Repository, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewStore(store.DriverSQLite, cfg.Storage.SQLitePath)
	case "postgres":
		return store.NewStore(store.DriverPostgres, cfg.Storage.DatabaseURL)
	case "redis":
		return redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
