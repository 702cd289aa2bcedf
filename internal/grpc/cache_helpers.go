package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	maxTTLJitter        = 15 * time.Second
	maxRefreshDelay     = time.Second
)

// readThrough is the cache state shared by every analytics read. generation
// moves forward on invalidation; values computed under an older generation
// are returned to their caller but never written back.
type readThrough struct {
	cache      Cacher
	sf         *singleflight.Group
	ttl        time.Duration
	logger     *zap.Logger
	generation *atomic.Uint64
}

// addTTLJitter spreads expirations by up to ±15s, never more than a tenth of ttl.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	span := min(ttl/10, maxTTLJitter)
	if span <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int64N(int64(2*span))) - span
}

func (rt readThrough) current() uint64 {
	if rt.generation == nil {
		return 0
	}
	return rt.generation.Load()
}

// flightKey scopes singleflight by generation so a request arriving after an
// invalidation never joins a fetch that started before it.
func (rt readThrough) flightKey(key string, gen uint64) string {
	return key + "@" + strconv.FormatUint(gen, 10)
}

func (rt readThrough) store(key string, value any, gen uint64, event string) {
	if rt.current() != gen {
		rt.logger.Debug("discarding stale cache write", zap.String("key", key), zap.String("event", event))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(rt.ttl)
	if err := rt.cache.Set(ctx, key, value, ttl); err != nil {
		rt.logger.Warn("cache write failed",
			zap.String("key", key),
			zap.String("event", event),
			zap.Error(err))
		return
	}
	rt.logger.Debug("cache written",
		zap.String("key", key),
		zap.String("event", event),
		zap.Duration("ttl", ttl))
}

// invalidate drops every key under prefix. The generation bump is immediate;
// the redis delete runs in the background and only affects freshness.
func (rt readThrough) invalidate(prefix string) {
	if rt.generation != nil {
		rt.generation.Add(1)
	}
	if rt.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
		defer cancel()

		n, err := rt.cache.DeletePrefix(ctx, prefix)
		if err != nil {
			rt.logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		rt.logger.Debug("cache invalidated", zap.String("prefix", prefix), zap.Int("keys", n))
	}()
}

func refreshAhead[T any](rt readThrough, key string, gen uint64, fn FetchFunc[T]) {
	go func() {
		time.Sleep(rand.N(maxRefreshDelay))

		_, _, _ = rt.sf.Do(rt.flightKey(key, gen)+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				rt.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			rt.store(key, value, gen, "refresh")
			return value, nil
		})
	}()
}

// FindAndCache serves key from the cache when present and refreshes it ahead
// of expiry; on a miss it fetches once per key and generation and writes the
// result back asynchronously. Without a cache it only collapses concurrent
// identical fetches.
func FindAndCache[T any](ctx context.Context, rt readThrough, key string, fn FetchFunc[T]) (T, error) {
	var zero T
	if rt.logger == nil {
		rt.logger = zap.NewNop()
	}
	gen := rt.current()

	if rt.cache != nil {
		var cached T
		err := rt.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			rt.logger.Debug("cache hit", zap.String("key", key))
			refreshAhead(rt, key, gen, fn)
			return cached, nil
		case errors.Is(err, redis.Nil):
			rt.logger.Debug("cache miss", zap.String("key", key))
		default:
			rt.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, shared := rt.sf.Do(rt.flightKey(key, gen), func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if rt.cache != nil {
			go rt.store(key, value, gen, "miss")
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		rt.logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		rt.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
