package cache

import (
	"context"
	"fmt"

	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// NewRedisClient builds the shared redis client; it is pinged on start and closed on stop.
func NewRedisClient(opts Opts) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Config.Redis.Addr,
		Password: opts.Config.Redis.Pass,
		DB:       opts.Config.Redis.DB,
	})

	log := opts.Logger.WithComponent("Redis")
	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to ping redis: %w", err)
			}
			log.Info("Connected to redis", "addr", opts.Config.Redis.Addr)
			return nil
		},
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})

	return rdb
}

var Module = fx.Provide(
	NewRedisClient,
	fx.Annotate(
		NewRedisCache,
		fx.As(new(Cache)),
	),
)
