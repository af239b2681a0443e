package rates

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openagora/shipping-engine/internal/engine"
	"github.com/openagora/shipping-engine/internal/lock"
	"github.com/openagora/shipping-engine/internal/obs"
)

// InvalidationChannel is the Redis pub/sub channel admin tooling publishes to
// after changing configuration rows. Every replica refreshes on a message.
const InvalidationChannel = "shipping:config:invalidate"

// refreshLockKey serializes configuration loads across replicas. An
// invalidation message fans out to every replica at once; the lock keeps them
// from hammering Postgres in the same instant.
const refreshLockKey = "shipping:config:refresh:lock"

// ErrNoSnapshot is returned before the first successful configuration load.
var ErrNoSnapshot = errors.New("no configuration snapshot loaded")

// Loader produces a full set of configuration rows.
type Loader interface {
	Load(ctx context.Context) (engine.Config, error)
}

// ProviderOptions carries snapshot policy applied to every loaded config.
type ProviderOptions struct {
	MaxAge            time.Duration
	RefreshInterval   time.Duration
	Currency          string
	VolumetricDivisor int64
}

// Provider owns the active configuration snapshot. Quotes read the snapshot
// through Current; refreshes swap it atomically so in-flight quotes keep the
// generation they started with.
type Provider struct {
	loader  Loader
	redis   *redis.Client
	log     zerolog.Logger
	opts    ProviderOptions
	current atomic.Pointer[engine.Snapshot]
}

// NewProvider constructs a provider. The Redis client may be nil; the ticker
// alone then drives refreshes.
func NewProvider(loader Loader, rdb *redis.Client, log zerolog.Logger, opts ProviderOptions) *Provider {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Minute
	}
	return &Provider{loader: loader, redis: rdb, log: log, opts: opts}
}

// Refresh loads configuration and swaps in a fresh snapshot. When Redis is
// available the load runs under a distributed lock so concurrent refreshes
// across replicas are staggered.
func (p *Provider) Refresh(ctx context.Context) error {
	if p.redis != nil {
		locker := lock.Locker{R: p.redis}
		return locker.WithLock(ctx, refreshLockKey, 30*time.Second, p.refresh)
	}
	return p.refresh(ctx)
}

func (p *Provider) refresh(ctx context.Context) error {
	cfg, err := p.loader.Load(ctx)
	if err != nil {
		if obs.SnapshotRefreshTotal != nil {
			obs.SnapshotRefreshTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	cfg.MaxAge = p.opts.MaxAge
	if cfg.Currency == "" {
		cfg.Currency = p.opts.Currency
	}
	if cfg.VolumetricDivisor == 0 {
		cfg.VolumetricDivisor = p.opts.VolumetricDivisor
	}

	snapshot := engine.New(cfg)
	p.current.Store(snapshot)

	if obs.SnapshotRefreshTotal != nil {
		obs.SnapshotRefreshTotal.WithLabelValues("ok").Inc()
	}
	p.observeSnapshot(snapshot)
	p.log.Info().
		Int64("version", snapshot.Version()).
		Time("loaded_at", snapshot.LoadedAt()).
		Msg("configuration snapshot refreshed")
	return nil
}

// Current returns the active snapshot.
func (p *Provider) Current() (*engine.Snapshot, error) {
	snapshot := p.current.Load()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return snapshot, nil
}

// SnapshotLoaded reports readiness: it errors until the first successful load.
func (p *Provider) SnapshotLoaded() error {
	_, err := p.Current()
	return err
}

// Invalidate notifies all replicas that configuration rows changed.
func (p *Provider) Invalidate(ctx context.Context) error {
	if p.redis == nil {
		return nil
	}
	return p.redis.Publish(ctx, InvalidationChannel, "refresh").Err()
}

// Run refreshes the snapshot on a fixed interval and on every invalidation
// message until the context is cancelled. Refresh failures are logged and
// retried on the next trigger; the last good snapshot keeps serving until it
// ages out.
func (p *Provider) Run(ctx context.Context) {
	var messages <-chan *redis.Message
	if p.redis != nil {
		sub := p.redis.Subscribe(ctx, InvalidationChannel)
		defer func() { _ = sub.Close() }()
		messages = sub.Channel()
	}

	ticker := time.NewTicker(p.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case _, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			p.log.Debug().Msg("configuration invalidation received")
		}
		if err := p.Refresh(ctx); err != nil {
			p.log.Error().Err(err).Msg("configuration snapshot refresh failed")
		}
		if snapshot := p.current.Load(); snapshot != nil {
			p.observeSnapshot(snapshot)
		}
	}
}

func (p *Provider) observeSnapshot(snapshot *engine.Snapshot) {
	if obs.SnapshotVersion != nil {
		obs.SnapshotVersion.Set(float64(snapshot.Version()))
	}
	if obs.SnapshotAgeSeconds != nil {
		obs.SnapshotAgeSeconds.Set(time.Since(snapshot.LoadedAt()).Seconds())
	}
}
