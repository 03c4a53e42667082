package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/quiz-catalog/pkg/metrics"
)

// Default TTLs. Catalog writes invalidate proactively so catalog entries can
// live long; profiles may change outside this process.
const (
	DefaultCatalogTTL = 24 * time.Hour
	DefaultProfileTTL = 5 * time.Minute
	defaultOpTimeout  = 500 * time.Millisecond
)

// Config tunes the cache-aside layer.
type Config struct {
	CatalogTTL time.Duration
	ProfileTTL time.Duration
	OpTimeout  time.Duration
}

// Aside wraps a Backend so that every failure degrades to a miss or a no-op.
// Callers never see cache errors.
type Aside struct {
	backend Backend
	codec   Codec
	cfg     Config
	metrics metrics.CacheRecorder
	logger  *slog.Logger
}

// NewAside constructs the cache-aside store.
func NewAside(backend Backend, codec Codec, cfg Config, recorder metrics.CacheRecorder, logger *slog.Logger) *Aside {
	if codec == nil {
		codec = JSONCodec{}
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = DefaultCatalogTTL
	}
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = DefaultProfileTTL
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = defaultOpTimeout
	}
	if recorder == nil {
		recorder = metrics.NopCache{}
	}
	return &Aside{
		backend: backend,
		codec:   codec,
		cfg:     cfg,
		metrics: recorder,
		logger:  logger.With("component", "cache.aside"),
	}
}

// CatalogTTL is the expiry used for provider, topic and question entries.
func (a *Aside) CatalogTTL() time.Duration { return a.cfg.CatalogTTL }

// ProfileTTL is the expiry used for profile entries.
func (a *Aside) ProfileTTL() time.Duration { return a.cfg.ProfileTTL }

// Read decodes the cached value for key into dest and reports a hit.
func (a *Aside) Read(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	payload, ok, err := a.backend.Get(opCtx, key)
	if err != nil {
		a.metrics.Observe("read", metrics.ResultError)
		a.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		a.metrics.Observe("read", metrics.ResultMiss)
		return false
	}
	if err := a.codec.Unmarshal(payload, dest); err != nil {
		a.metrics.Observe("read", metrics.ResultError)
		a.logger.Warn("cache payload decode failed, dropping entry", "key", key, "error", err)
		a.Invalidate(ctx, key)
		return false
	}
	a.metrics.Observe("read", metrics.ResultHit)
	return true
}

// Write stores value under key with the given ttl.
func (a *Aside) Write(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := a.codec.Marshal(value)
	if err != nil {
		a.metrics.Observe("write", metrics.ResultError)
		a.logger.Warn("cache payload encode failed", "key", key, "error", err)
		return
	}
	opCtx, cancel := a.opContext(ctx)
	defer cancel()
	if err := a.backend.Set(opCtx, key, payload, ttl); err != nil {
		a.metrics.Observe("write", metrics.ResultError)
		a.logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	a.metrics.Observe("write", metrics.ResultOK)
}

// Invalidate deletes the given keys.
func (a *Aside) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	opCtx, cancel := a.opContext(ctx)
	defer cancel()
	if err := a.backend.Delete(opCtx, keys...); err != nil {
		a.metrics.Observe("invalidate", metrics.ResultError)
		a.logger.Warn("cache invalidate failed", "keys", keys, "error", err)
		return
	}
	a.metrics.Observe("invalidate", metrics.ResultOK)
}

// InvalidatePattern deletes every key matching pattern in one batch.
func (a *Aside) InvalidatePattern(ctx context.Context, pattern string) {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()
	keys, err := a.backend.Keys(opCtx, pattern)
	if err != nil {
		a.metrics.Observe("invalidate_pattern", metrics.ResultError)
		a.logger.Warn("cache key enumeration failed", "pattern", pattern, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := a.backend.Delete(opCtx, keys...); err != nil {
		a.metrics.Observe("invalidate_pattern", metrics.ResultError)
		a.logger.Warn("cache pattern delete failed", "pattern", pattern, "count", len(keys), "error", err)
		return
	}
	a.metrics.Observe("invalidate_pattern", metrics.ResultOK)
	a.logger.Debug("cache pattern invalidated", "pattern", pattern, "count", len(keys))
}

// InvalidatePatterns applies InvalidatePattern to each pattern in order.
func (a *Aside) InvalidatePatterns(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		a.InvalidatePattern(ctx, pattern)
	}
}

// Ping reports backend reachability for health checks.
func (a *Aside) Ping(ctx context.Context) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()
	return a.backend.Ping(opCtx)
}

func (a *Aside) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.OpTimeout)
}

// Fetch runs the read-through step: a cache hit is returned as is; on a miss
// load is called and, when it reports found, the value is cached with ttl.
// Load errors are returned unchanged and nothing is cached.
func Fetch[T any](ctx context.Context, a *Aside, key string, ttl time.Duration, load func(context.Context) (T, bool, error)) (T, bool, error) {
	var cached T
	if a.Read(ctx, key, &cached) {
		return cached, true, nil
	}
	value, found, err := load(ctx)
	if err != nil || !found {
		return value, found, err
	}
	a.Write(ctx, key, value, ttl)
	return value, true, nil
}
