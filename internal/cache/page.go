// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blockpress/internal/metrics"
)

const (
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache stores rendered page HTML in Valkey under page:<site>:<slug>.
// Cache errors are logged and treated as misses.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache. A zero ttl uses DefaultPageTTL.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Key returns the Valkey key of a page.
func Key(siteID uuid.UUID, slug string) string {
	return pageKeyPrefix + siteID.String() + ":" + slug
}

func sitePattern(siteID uuid.UUID) string {
	return pageKeyPrefix + siteID.String() + ":*"
}

// Get returns the cached HTML of a page.
func (pc *PageCache) Get(ctx context.Context, siteID uuid.UUID, slug string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, Key(siteID, slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.PageCacheResults.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.PageCacheResults.WithLabelValues("error").Inc()
		zap.S().Warnw("page cache get error", "site_id", siteID, "slug", slug, "error", err)
		return nil, false
	}
	metrics.PageCacheResults.WithLabelValues("hit").Inc()
	return val, true
}

// Set stores the rendered HTML of a page.
func (pc *PageCache) Set(ctx context.Context, siteID uuid.UUID, slug string, html []byte) {
	if err := pc.client.Set(ctx, Key(siteID, slug), html, pc.ttl).Err(); err != nil {
		zap.S().Warnw("page cache set error", "site_id", siteID, "slug", slug, "error", err)
	}
}

// Invalidate removes one page.
func (pc *PageCache) Invalidate(ctx context.Context, siteID uuid.UUID, slug string) {
	if err := pc.client.Del(ctx, Key(siteID, slug)).Err(); err != nil {
		zap.S().Warnw("page cache invalidate error", "site_id", siteID, "slug", slug, "error", err)
	}
}

// InvalidateSite removes every cached page of a site. Any change to a site's
// templates, navigation or settings can affect all of its pages.
func (pc *PageCache) InvalidateSite(ctx context.Context, siteID uuid.UUID) int {
	n := pc.deleteMatching(ctx, sitePattern(siteID))
	zap.S().Debugw("page cache invalidated", "site_id", siteID, "deleted", n)
	return n
}

// InvalidateAll removes every cached page of every site.
func (pc *PageCache) InvalidateAll(ctx context.Context) int {
	n := pc.deleteMatching(ctx, pageKeyPrefix+"*")
	if n > 0 {
		zap.S().Infow("page cache fully cleared", "deleted", n)
	}
	return n
}

// Keys lists cached page keys of a site, for diagnostics.
func (pc *PageCache) Keys(ctx context.Context, siteID uuid.UUID) ([]string, error) {
	var out []string
	iter := pc.client.Scan(ctx, 0, sitePattern(siteID), 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

func (pc *PageCache) deleteMatching(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			zap.S().Warnw("page cache scan error", "pattern", pattern, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				zap.S().Warnw("page cache bulk delete error", "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted
		}
	}
}
