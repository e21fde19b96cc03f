// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/internal/fetch"
	"github.com/pdiddy/estate-search/pkg/types"
)

const suggestPrefix = "suggest"

// Cached wraps a suggestion source with a Store. Store failures are logged
// and fall through to the source; they never fail a lookup.
type Cached struct {
	src    fetch.SuggestSource
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached returns src fronted by store. A zero ttl uses
// types.DefaultCacheTTL.
func NewCached(src fetch.SuggestSource, store Store, ttl time.Duration, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = types.DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{src: src, store: store, ttl: ttl, logger: logger}
}

// Search returns cached suggestions for term, or asks the source and
// caches a successful answer. Errors are never cached.
func (c *Cached) Search(ctx context.Context, term string) ([]types.PropertySummary, error) {
	key := Key(suggestPrefix, url.Values{"q": {strings.ToLower(strings.TrimSpace(term))}})

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var items []types.PropertySummary
		if err := json.Unmarshal(raw, &items); err == nil {
			c.logger.Debug("cache hit", zap.String("key", key))
			return items, nil
		}
	}

	items, err := c.src.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// New builds the suggestion source selected by cfg. The returned close
// function releases the store.
func New(ctx context.Context, cfg types.CacheConfig, src fetch.SuggestSource, logger *zap.Logger) (fetch.SuggestSource, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "", types.CacheNone:
		return src, noop, nil
	case types.CacheMemory:
		return NewCached(src, NewMemory(), cfg.TTL, logger), noop, nil
	case types.CacheRedis:
		store, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewCached(src, store, cfg.TTL, logger), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
