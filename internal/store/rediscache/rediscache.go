// Package rediscache puts a read-through Redis cache in front of another
// store. Only the full list is cached. Every write bumps a version counter
// after it lands, and a cached list is served only while it carries the
// current version, so a fill that raced a write is never served.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-redis/redis/v8"

	"github.com/idilsaglam/items/internal/model"
	"github.com/idilsaglam/items/internal/store"
)

// ListKey holds the cached collection, VersionKey the write counter.
const (
	ListKey    = "items:list"
	VersionKey = "items:ver"
)

// DefaultTTL bounds staleness when another writer bypasses the cache.
const DefaultTTL = 5 * time.Minute

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// entry is the cached value: the list and the version read before it was
// fetched.
type entry struct {
	Version int64        `json:"ver"`
	Items   []model.Item `json:"items"`
}

// Store wraps next. Cache failures are logged and fall through to next.
type Store struct {
	next   store.Store
	rdb    Client
	closer func() error
	ttl    time.Duration
	logger *log.Logger
}

var _ store.Store = (*Store)(nil)

// Dial connects to Redis at addr and wraps next.
func Dial(ctx context.Context, addr, password string, next store.Store, logger *log.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	s := New(rdb, next, logger)
	s.closer = rdb.Close
	return s, nil
}

// New wraps next with an existing client.
func New(rdb Client, next store.Store, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{next: next, rdb: rdb, ttl: DefaultTTL, logger: logger}
}

func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	ver, verOK := s.version(ctx)
	if verOK {
		if items, ok := s.cached(ctx, ver); ok {
			return items, nil
		}
	}

	items, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if !verOK {
		return items, nil
	}
	if b, err := json.Marshal(entry{Version: ver, Items: items}); err == nil {
		if err := s.rdb.Set(ctx, ListKey, b, s.ttl).Err(); err != nil {
			s.logger.Warn("cache set failed", "key", ListKey, "err", err)
		}
	}
	return items, nil
}

// version reads the write counter; a missing counter is version 0.
func (s *Store) version(ctx context.Context) (int64, bool) {
	v, err := s.rdb.Get(ctx, VersionKey).Int64()
	switch {
	case err == nil:
		return v, true
	case errors.Is(err, redis.Nil):
		return 0, true
	}
	s.logger.Warn("cache version read failed", "key", VersionKey, "err", err)
	return 0, false
}

func (s *Store) cached(ctx context.Context, ver int64) ([]model.Item, bool) {
	val, err := s.rdb.Get(ctx, ListKey).Result()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		return nil, false
	default:
		s.logger.Warn("cache get failed", "key", ListKey, "err", err)
		return nil, false
	}
	var e entry
	if err := json.Unmarshal([]byte(val), &e); err != nil || e.Items == nil {
		s.logger.Warn("discarding unreadable cache entry", "key", ListKey)
		return nil, false
	}
	if e.Version != ver {
		s.logger.Debug("cache entry outdated", "have", e.Version, "want", ver)
		return nil, false
	}
	return e.Items, true
}

func (s *Store) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	it, err := s.next.Create(ctx, in)
	s.invalidate(ctx)
	return it, err
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.next.Delete(ctx, id)
	s.invalidate(ctx)
	return ok, err
}

func (s *Store) Close() error {
	err := s.next.Close()
	if s.closer != nil {
		if cerr := s.closer(); err == nil {
			err = cerr
		}
	}
	return err
}

// invalidate runs after the inner write returns, so any fill that read the
// old version is outdated from here on.
func (s *Store) invalidate(ctx context.Context) {
	if err := s.rdb.Incr(ctx, VersionKey).Err(); err != nil {
		s.logger.Warn("cache version bump failed", "key", VersionKey, "err", err)
	}
	if err := s.rdb.Del(ctx, ListKey).Err(); err != nil {
		s.logger.Warn("cache invalidate failed", "key", ListKey, "err", err)
	}
}
