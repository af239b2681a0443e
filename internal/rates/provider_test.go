package rates

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/openagora/shipping-engine/internal/engine"
)

type fakeLoader struct {
	version atomic.Int64
	fail    atomic.Bool
}

func (f *fakeLoader) Load(context.Context) (engine.Config, error) {
	if f.fail.Load() {
		return engine.Config{}, errors.New("database unavailable")
	}
	return engine.Config{
		Version:  f.version.Load(),
		LoadedAt: time.Now(),
		Zones:    []engine.Zone{{ID: 1, Name: "Athens", Active: true}},
		Prefixes: []engine.ZonePrefix{{Prefix: "10", ZoneID: 1}},
	}, nil
}

func TestProviderCurrentBeforeFirstLoad(t *testing.T) {
	p := NewProvider(&fakeLoader{}, nil, zerolog.Nop(), ProviderOptions{})
	_, err := p.Current()
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestProviderRefreshSwapsSnapshot(t *testing.T) {
	loader := &fakeLoader{}
	loader.version.Store(3)
	p := NewProvider(loader, nil, zerolog.Nop(), ProviderOptions{
		MaxAge:   time.Hour,
		Currency: "EUR",
	})

	require.NoError(t, p.Refresh(context.Background()))
	first, err := p.Current()
	require.NoError(t, err)
	require.Equal(t, int64(3), first.Version())
	require.Equal(t, "EUR", first.Currency())

	loader.version.Store(4)
	require.NoError(t, p.Refresh(context.Background()))
	second, err := p.Current()
	require.NoError(t, err)
	require.Equal(t, int64(4), second.Version())

	// the first snapshot is untouched by the swap
	require.Equal(t, int64(3), first.Version())
}

func TestProviderRefreshFailureKeepsLastSnapshot(t *testing.T) {
	loader := &fakeLoader{}
	loader.version.Store(1)
	p := NewProvider(loader, nil, zerolog.Nop(), ProviderOptions{})

	require.NoError(t, p.Refresh(context.Background()))
	loader.fail.Store(true)
	require.Error(t, p.Refresh(context.Background()))

	snapshot, err := p.Current()
	require.NoError(t, err)
	require.Equal(t, int64(1), snapshot.Version())
}

func TestProviderInvalidationTriggersRefresh(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	loader := &fakeLoader{}
	loader.version.Store(1)
	p := NewProvider(loader, client, zerolog.Nop(), ProviderOptions{
		RefreshInterval: time.Hour, // only the pub/sub message may trigger
	})
	require.NoError(t, p.Refresh(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	loader.version.Store(2)
	require.Eventually(t, func() bool {
		if err := p.Invalidate(context.Background()); err != nil {
			return false
		}
		snapshot, err := p.Current()
		return err == nil && snapshot.Version() == 2
	}, 5*time.Second, 50*time.Millisecond)
}
