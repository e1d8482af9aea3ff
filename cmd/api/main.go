package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	stdlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	v1 "go-chatline/cmd/api/router/v1"
	"go-chatline/internal/bootstrap"
	"go-chatline/internal/config"
	"go-chatline/internal/infrastructure/auth"
	"go-chatline/internal/infrastructure/logger"
	queueAdapter "go-chatline/internal/infrastructure/queue/adapter"
	"go-chatline/internal/infrastructure/realtime"
	"go-chatline/internal/pkg/chat/application/task"
	"go-chatline/internal/pkg/chat/application/usecase"
	httpHandler "go-chatline/internal/pkg/chat/presentation/http"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		stdlog.Debug().Err(err).Msg(".env file not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	registry := realtime.NewRegistry(log)
	bus, err := bootstrap.NewBus(cfg, rdb, registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create room bus")
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return bus.Run(ctx) })

	var enqueuer usecase.MessageEnqueuer
	if cfg.QueueEnabled {
		client, err := queueAdapter.NewAsynqClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create queue client")
		}
		defer client.Close()
		enqueuer = task.NewEnqueuer(client)

		if cfg.WorkerEmbedded {
			srv, err := queueAdapter.NewAsynqServer(cfg, log)
			if err != nil {
				log.Fatal().Err(err).Msg("create queue worker")
			}
			task.RegisterSendMessageTask(srv, bootstrap.NewSendMessage(store, bus, log))
			eg.Go(func() error { return srv.Run(ctx) })
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), httpHandler.RequestID(), httpHandler.RequestLogger(log))
	v1.RegisterRoutes(r, httpHandler.Deps{
		Repo:     store,
		Bus:      bus,
		Registry: registry,
		Cache:    bootstrap.NewCache(rdb),
		Enqueuer: enqueuer,
		JWT:      auth.NewJWT(cfg.JWTSecret),
		Config:   cfg,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	eg.Go(func() error {
		if rb, ok := bus.(*realtime.RedisBus); ok {
			// serve only once remote publications can reach local sessions
			select {
			case <-rb.Ready():
			case <-ctx.Done():
				return nil
			}
		}
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Str("bus", cfg.BusDriver).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// hijacked websocket connections are not tracked by the server
		registry.Close()
		log.Info().Msg("http server stopped")
		return err
	})

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
