package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/humoyun-dev/anonim-chat/internal/config"
	cacheadapter "github.com/humoyun-dev/anonim-chat/internal/infrastructure/cache/adapter"
	cacheport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/cache/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/database"
	qadapter "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/adapter"
	qport "github.com/humoyun-dev/anonim-chat/internal/infrastructure/queue/port"
	"github.com/humoyun-dev/anonim-chat/internal/infrastructure/scheduler"
	repoadapter "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/adapter"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/memory"
	repository "github.com/humoyun-dev/anonim-chat/internal/pkg/anon/persistence/repository/port"
	"github.com/humoyun-dev/anonim-chat/internal/pkg/anon/presentation/controller"
)

// stores bundles the repositories one process runs on.
type stores struct {
	users     repository.UserRepository
	pairs     repository.PairingRepository
	messages  repository.MessageRepository
	summaries repository.SummaryRepository
	changes   repository.ChangeStream
	checks    map[string]controller.Pinger
	close     func()
}

// openStores connects to Postgres, or falls back to an in-process store when
// DB_URL is empty. The fallback loses everything on restart.
func openStores(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("store_in_memory", "reason", "DB_URL not set")
		m := memory.NewStore()
		return &stores{
			users:     m,
			pairs:     m,
			messages:  m,
			summaries: m,
			changes:   m,
			checks:    map[string]controller.Pinger{},
			close:     func() {},
		}, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		users:     repoadapter.NewPgUserRepository(pool),
		pairs:     repoadapter.NewPgPairingRepository(pool),
		messages:  repoadapter.NewPgMessageRepository(pool),
		summaries: repoadapter.NewPgSummaryRepository(pool),
		changes:   repoadapter.NewPgChangeStream(pool),
		checks:    map[string]controller.Pinger{"postgres": pool},
		close:     pool.Close,
	}, nil
}

// background holds the Redis-backed pieces or their in-process stand-ins.
type background struct {
	cache  cacheport.Cache
	client qport.Client
	server qport.Server
	jobs   []scheduler.Job
	close  func()
}

func openBackground(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*background, error) {
	if cfg.RedisURL == "" {
		logger.Warn("queue_inline", "reason", "REDIS_URL not set")
		mc := cacheadapter.NewMemoryCache()
		inline := qadapter.NewInline(logger)
		return &background{
			cache:  mc,
			client: inline,
			server: inline,
			jobs: []scheduler.Job{{
				Name: "locale_cache_sweep",
				Run: func(context.Context, time.Time) error {
					if n := mc.Sweep(); n > 0 {
						logger.Debug("locale_cache_swept", "evicted", n)
					}
					return nil
				},
			}},
			close: func() {},
		}, nil
	}

	rc, err := cacheadapter.NewRedisCache(ctx, cfg.RedisURL, "anonrelay:")
	if err != nil {
		return nil, err
	}
	client, err := qadapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	server, err := qadapter.NewAsynqServer(cfg.RedisURL, qadapter.ServerOptions{
		Concurrency: cfg.Concurrency,
		Queues:      cfg.QueueWeights,
		Logger:      logger,
	})
	if err != nil {
		_ = client.Close()
		_ = rc.Close()
		return nil, err
	}
	return &background{
		cache:  rc,
		client: client,
		server: server,
		close: func() {
			_ = client.Close()
			_ = rc.Close()
		},
	}, nil
}
