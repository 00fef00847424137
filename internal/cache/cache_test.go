package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/repository/sqlite"
	"github.com/vytor/web3profile/internal/testutil"
)

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func (failingCache) Delete(context.Context, ...string) error { return errors.New("down") }

func TestKey(t *testing.T) {
	assert.Equal(t, "poap:0xabc", Key("poap", "0xabc"))
	assert.Equal(t, "efp:followers:0xabc:20:0", Key("efp", "followers", "0xabc", "20", "0"))
}

func TestFetch_CachesSuccessfulLoads(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	var calls int

	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	got, err := Fetch(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = Fetch(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)
}

func TestFetch_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	boom := errors.New("boom")

	_, err := Fetch(ctx, c, "k", time.Minute, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	got, err := Fetch(ctx, c, "k", time.Minute, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestFetch_CacheFailureIsAMiss(t *testing.T) {
	got, err := Fetch(context.Background(), failingCache{}, "k", time.Minute, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestFetch_DeduplicatesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, "dedup", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestFetch_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := NewMemory()
	started := make(chan struct{})
	release := make(chan struct{})

	load := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "profile", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := Fetch(firstCtx, c, "shared", time.Minute, load)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := Fetch(context.Background(), c, "shared", time.Minute, func(context.Context) (string, error) {
			return "", errors.New("second load must not run while the first is in flight")
		})
		second <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "profile", got.v)

	cached, ok, err := c.Get(context.Background(), "shared")
	require.NoError(t, err)
	assert.True(t, ok, "the detached load still fills the cache")
	assert.JSONEq(t, `"profile"`, string(cached))
}

func TestFetch_ReturnsWhenCallerIsDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Fetch(ctx, NewMemory(), "slow", time.Minute, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemory_ExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, m.Set(ctx, "zero", []byte("3"), 0))

	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	_, ok, _ = m.Get(ctx, "zero")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)

	n, err := m.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "b"))
	assert.Equal(t, 0, m.Len())
}

func TestSQL_RoundTripAndPurge(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSQL(sqlite.NewCacheRepository(db))
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", []byte(`{"x":1}`), time.Minute))
	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(v))

	now = now.Add(time.Hour)
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, config.Config{CacheBackend: config.CacheOff}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, c)

	c, err = Open(ctx, config.Config{CacheBackend: config.CacheMemory, CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = Open(ctx, config.Config{CacheBackend: config.CacheSQLite}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, config.Config{CacheBackend: config.CacheRedis, RedisURL: "not a url"}, nil)
	assert.Error(t, err)
}

func TestRedis_UnreachableServerIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedis(rdb)
	defer c.Close()

	v, err := Fetch(context.Background(), c, "k", time.Minute, func(context.Context) (string, error) {
		return "loaded", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)

	_, err = DialRedis(context.Background(), "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}
