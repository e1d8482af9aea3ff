// Package bootstrap opens the infrastructure shared by the api and worker binaries.
package bootstrap

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"go-chatline/internal/config"
	cacheAdapter "go-chatline/internal/infrastructure/cache/adapter"
	cport "go-chatline/internal/infrastructure/cache/port"
	"go-chatline/internal/infrastructure/database"
	"go-chatline/internal/infrastructure/realtime"
	"go-chatline/internal/infrastructure/redisclient"
	"go-chatline/internal/pkg/chat/application/usecase"
	"go-chatline/internal/pkg/chat/persistence/repository/adapter"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

const cachePrefix = "chatline:cache:"

// OpenStore opens the chat store selected by STORE_DRIVER. The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.ChatRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		repo := adapter.NewMemoryChatRepository()
		for _, name := range cfg.DevUsers {
			u := repo.AddUser(name)
			log.Debug().Int64("user_id", u.ID).Str("username", u.Username).Msg("seeded user")
		}
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return repo, func() {}, nil
	case config.StoreDriverPostgres:
		if cfg.DBAutoMigrate {
			if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := database.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Int32("max_conns", pool.Config().MaxConns).Msg("connected to postgres")
		return adapter.NewPgChatRepository(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// OpenRedis returns nil when REDIS_URL is unset.
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		return nil, nil
	}
	return redisclient.Open(ctx, cfg.RedisURL)
}

// NewBus builds the room bus selected by BUS_DRIVER on top of registry.
func NewBus(cfg *config.Config, client *redis.Client, registry *realtime.Registry, log zerolog.Logger) (realtime.Bus, error) {
	switch cfg.BusDriver {
	case config.BusDriverRedis:
		if client == nil {
			return nil, fmt.Errorf("redis bus needs REDIS_URL")
		}
		return realtime.NewRedisBus(client, cfg.BusChannelPrefix, registry, log), nil
	case config.BusDriverLocal:
		return realtime.NewLocalBus(registry), nil
	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.BusDriver)
	}
}

// NewCache prefers Redis so name resolutions are shared between instances.
func NewCache(client *redis.Client) cport.Cache {
	if client != nil {
		return cacheAdapter.NewRedisCache(client, cachePrefix)
	}
	return cacheAdapter.NewMemoryCache()
}

// NewSendMessage assembles the send path used by every producer outside the router.
func NewSendMessage(repo repository.ChatRepository, bus usecase.Publisher, log zerolog.Logger) *usecase.SendMessageUseCase {
	guard := usecase.NewAuthorizationGuard(repo, repo)
	return usecase.NewSendMessageUseCase(repo, guard, usecase.NewBroadcastMessageUseCase(bus), log)
}
