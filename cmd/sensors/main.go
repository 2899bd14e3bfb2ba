// server/cmd/sensors/main.go
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
	"equipment-dispatch-api-server/internal/health"
	"equipment-dispatch-api-server/internal/logger"
	"equipment-dispatch-api-server/internal/sensors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "sensors-api"

func main() {
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("service", serviceName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readingCache, err := cache.New(cfg.Redis, cfg.Cache, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid redis configuration", zap.Error(err))
	}
	_ = readingCache.Connect(ctx)

	readings := sensors.NewReadings(readingCache, sensors.NewSimulator(nil), cfg.Sensors.CacheTTL)
	forwarder := sensors.NewForwarder(cfg.Sensors.EventsURL, cfg.Sensors.ForwardTimeout, zapLogger)
	reporter := health.NewReporter(serviceName, readingCache, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.Sensors.Port,
		Handler:           routes.SetupSensorsRouter(readings, forwarder, reporter, zapLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("starting sensors API", zap.String("addr", srv.Addr), zap.String("events_url", cfg.Sensors.EventsURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
	}
	if err := readingCache.Close(); err != nil {
		zapLogger.Warn("error closing redis", zap.Error(err))
	}
}
