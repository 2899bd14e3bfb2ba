// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equipment-dispatch-api-server/config"
	"equipment-dispatch-api-server/internal/api/routes"
	"equipment-dispatch-api-server/internal/cache"
	"equipment-dispatch-api-server/internal/dispatch"
	"equipment-dispatch-api-server/internal/health"
	"equipment-dispatch-api-server/internal/logger"
	"equipment-dispatch-api-server/internal/queue"
	"equipment-dispatch-api-server/internal/registry"
	"equipment-dispatch-api-server/internal/socket"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("service", cfg.Server.ServiceName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Redis. A failed connection is recorded and the API runs without cache.
	equipmentCache, err := cache.New(cfg.Redis, cfg.Cache, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid redis configuration", zap.Error(err))
	}
	_ = equipmentCache.Connect(ctx)

	// 3. RabbitMQ. A failed connection makes every dispatch fail fast.
	publisher := queue.NewPublisher(cfg.RabbitMQ, zapLogger)
	_ = publisher.Connect()

	// 4. Registry, warmed into the cache
	registryStore := registry.NewDefault()
	equipmentCache.PutEquipments(ctx, registryStore.All())

	wsHub := socket.NewHub(zapLogger)
	dispatchService := dispatch.NewService(registryStore, publisher, equipmentCache, cfg.Server.ServiceName, zapLogger,
		dispatch.WithNotifier(wsHub))
	reporter := health.NewReporter(cfg.Server.ServiceName, equipmentCache, publisher)

	router := routes.SetupRouter(registryStore, equipmentCache, dispatchService, reporter, wsHub, zapLogger)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. Serve until a signal arrives, then drain
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("starting API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
	}

	// 6. Release the broker and the cache
	if err := publisher.Close(); err != nil {
		zapLogger.Warn("error closing rabbitmq", zap.Error(err))
	}
	if err := equipmentCache.Close(); err != nil {
		zapLogger.Warn("error closing redis", zap.Error(err))
	}
	zapLogger.Info("shutdown complete")
}
