package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/quiz-catalog/internal/domain/auth"
	"github.com/yanqian/quiz-catalog/internal/domain/bookmark"
	"github.com/yanqian/quiz-catalog/internal/domain/catalog"
	"github.com/yanqian/quiz-catalog/internal/domain/premium"
	"github.com/yanqian/quiz-catalog/internal/infra/cache"
	"github.com/yanqian/quiz-catalog/internal/infra/catalogrepo"
	"github.com/yanqian/quiz-catalog/internal/infra/config"
	"github.com/yanqian/quiz-catalog/internal/infra/credlock"
	"github.com/yanqian/quiz-catalog/internal/infra/kvstore"
	"github.com/yanqian/quiz-catalog/internal/infra/profilerepo"
	httpiface "github.com/yanqian/quiz-catalog/internal/interface/http"
	"github.com/yanqian/quiz-catalog/pkg/metrics"
)

func provideCatalogConfig(cfg *config.Config) catalog.Config {
	return catalog.Config{
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     cfg.Catalog.MaxPageSize,
	}
}

func provideCacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		CatalogTTL: cfg.Cache.CatalogTTL,
		ProfileTTL: cfg.Cache.ProfileTTL,
		OpTimeout:  cfg.Cache.OpTimeout,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{AdminEmails: cfg.Auth.AdminEmails}
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func provideCacheRecorder(reg prometheus.Registerer) metrics.CacheRecorder {
	return metrics.NewPrometheusCache(reg)
}

func provideCodec(cfg *config.Config) (cache.Codec, error) {
	return cache.CodecByName(cfg.Cache.Codec)
}

// provideCacheBackend connects the configured cache and falls back to the
// process-local store when the remote one is unreachable.
func provideCacheBackend(cfg *config.Config, logger *slog.Logger) cache.Backend {
	switch cfg.Cache.Driver {
	case config.CacheDriverValkey:
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return kvstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return kvstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
			return kvstore.NewMemoryStore()
		}
		logger.Info("valkey cache enabled", "addr", cfg.Cache.Addr)
		return kvstore.NewValkeyStore(client)
	case config.CacheDriverRedis:
		opt, err := buildRedisOptions(cfg)
		if err != nil {
			logger.Error("invalid redis configuration, falling back to memory store", "error", err)
			return kvstore.NewMemoryStore()
		}
		rdb := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping failed, falling back to memory store", "error", err)
			_ = rdb.Close()
			return kvstore.NewMemoryStore()
		}
		logger.Info("redis cache enabled", "addr", cfg.Cache.Addr)
		return kvstore.NewRedisStore(rdb)
	}
	logger.Info("using in-process cache store")
	return kvstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}, Password: cfg.Cache.Password}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func buildRedisOptions(cfg *config.Config) (*redis.Options, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return redis.ParseURL(cfg.Cache.Addr)
	}
	return &redis.Options{Addr: cfg.Cache.Addr, Password: cfg.Cache.Password}, nil
}

// providePostgresPool returns nil when no DSN is configured or the database
// cannot be reached; the repositories then run in memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideCatalogRepository(pool *pgxpool.Pool) catalog.Repository {
	if pool == nil {
		return catalogrepo.NewMemoryRepository()
	}
	return catalogrepo.NewPostgresRepository(pool)
}

func provideProfileRepository(pool *pgxpool.Pool) bookmark.Repository {
	if pool == nil {
		return profilerepo.NewMemoryRepository()
	}
	return profilerepo.NewPostgresRepository(pool)
}

func provideProviderStore(repo catalog.Repository, aside *cache.Aside, logger *slog.Logger) *catalog.ProviderStore {
	return catalog.NewProviderStore(repo, aside, logger)
}

func provideTopicStore(repo catalog.Repository, aside *cache.Aside, logger *slog.Logger) *catalog.TopicStore {
	return catalog.NewTopicStore(repo, aside, logger)
}

func provideQuestionStore(repo catalog.Repository, topics *catalog.TopicStore, aside *cache.Aside, logger *slog.Logger) *catalog.QuestionStore {
	return catalog.NewQuestionStore(repo, topics, aside, logger)
}

func provideSequencer(repo catalog.Repository, aside *cache.Aside, logger *slog.Logger) *catalog.Sequencer {
	return catalog.NewSequencer(repo, aside, logger)
}

func provideTopicLookup(svc catalog.Service) bookmark.TopicLookup {
	return svc
}

func provideIdentityClient(cfg *config.Config) auth.IdentityClient {
	return credlock.NewClient(cfg.Auth.BaseURL, cfg.Auth.Timeout)
}

func provideSubscriptionChecker(cfg *config.Config, logger *slog.Logger) premium.SubscriptionChecker {
	b := cfg.Subscription.Breaker
	return credlock.NewSubscriptionClient(credlock.SubscriptionConfig{
		BaseURL:     cfg.Subscription.BaseURL,
		ServiceName: cfg.Catalog.ServiceName,
		Timeout:     cfg.Subscription.Timeout,
		Breaker: credlock.BreakerConfig{
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			MinRequests:      b.MinRequests,
			FailureThreshold: b.FailureThreshold,
		},
	}, logger)
}

func provideHealthChecks(repo catalog.Repository, aside *cache.Aside) httpiface.HealthChecks {
	checks := httpiface.HealthChecks{"cache": aside}
	if pinger, ok := repo.(httpiface.Pinger); ok {
		checks["store"] = pinger
	}
	return checks
}
