package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kea-dealership/event-core/common/cache"
	"github.com/kea-dealership/event-core/common/config"
	"github.com/kea-dealership/event-core/common/logger"
	"github.com/kea-dealership/event-core/common/store"
	"github.com/kea-dealership/event-core/common/tracing"
)

func main() {
	serviceName := config.GetEnv("SERVICE_NAME", "synch")
	log := logger.NewLogger(serviceName)

	cfg := Config{
		ServiceName:   serviceName,
		Broker:        config.LoadBrokerConfig(),
		Mongo:         config.LoadMongoConfig(),
		Redis:         config.LoadRedisConfig(),
		Observability: config.LoadObservabilityConfig(),
	}

	shutdownTracer, err := tracing.InitTracer(serviceName, log, cfg.Observability.OTLPAddr)
	if err != nil {
		log.Error("failed to initialize tracer", slog.Any("error", err))
		os.Exit(1)
	}
	defer shutdownTracer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Synch only ever replicates what Employee publishes, so the
	// application-role credentials suffice.
	db, disconnect, err := store.OpenMongo(ctx, cfg.Mongo, false)
	if err != nil {
		log.Error("failed to connect to mongo", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.NewClient(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	app, err := NewApp(ctx, cfg, db, disconnect, redisClient, log)
	if err != nil {
		log.Error("failed to create app", slog.Any("error", err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("received shutdown signal")
		if err := app.Shutdown(context.Background()); err != nil {
			log.Error("error during shutdown", slog.Any("error", err))
		}
		cancel()
	}()

	if err := app.Start(ctx); err != nil {
		log.Error("failed to start app", slog.Any("error", err))
		os.Exit(1)
	}
}
