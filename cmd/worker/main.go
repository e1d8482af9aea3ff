package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	stdlog "github.com/rs/zerolog/log"

	"go-chatline/internal/bootstrap"
	"go-chatline/internal/config"
	"go-chatline/internal/infrastructure/logger"
	queueAdapter "go-chatline/internal/infrastructure/queue/adapter"
	"go-chatline/internal/infrastructure/realtime"
	"go-chatline/internal/pkg/chat/application/task"
)

// The worker drains queued sends. It holds no websocket sessions, so it runs
// only against the shared Postgres store and the Redis room bus.
func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Debug().Err(err).Msg(".env file not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg).With().Str("process", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal().Err(err).Msg("invalid worker config")
	}

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer closeStore()

	rdb, err := bootstrap.OpenRedis(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// publish-only: the registry stays empty
	bus, err := bootstrap.NewBus(cfg, rdb, realtime.NewRegistry(log), log)
	if err != nil {
		log.Fatal().Err(err).Msg("create room bus")
	}

	srv, err := queueAdapter.NewAsynqServer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create queue worker")
	}
	task.RegisterSendMessageTask(srv, bootstrap.NewSendMessage(store, bus, log))

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker exited")
		os.Exit(1)
	}
}
