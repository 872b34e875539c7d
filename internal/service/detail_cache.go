package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"offio/backend/internal/dto"
	"offio/backend/internal/model"
	"offio/backend/pkg/metrics"
	"offio/backend/pkg/redis"
)

// SharedCache cross-instance JSON cache (Redis in production)
type SharedCache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// detailCache two tiers: an in-process LRU in front of the shared cache.
// Keys embed the session version and updated_at, so edits never serve stale
// entries; the TTL only bounds the lifetime of presigned screenshot URLs.
type detailCache struct {
	local  *expirable.LRU[string, *dto.SessionDetailResponse]
	shared SharedCache
	ttl    time.Duration
	logger *zap.Logger
}

func newDetailCache(size int, ttl time.Duration, shared SharedCache, logger *zap.Logger) *detailCache {
	if size <= 0 {
		size = 512
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &detailCache{
		local:  expirable.NewLRU[string, *dto.SessionDetailResponse](size, nil, ttl),
		shared: shared,
		ttl:    ttl,
		logger: logger,
	}
}

// viewer kinds see different screenshot lists
const (
	viewerOwner    = "owner"
	viewerReviewer = "reviewer"
)

func detailKey(s *model.WorkSession, interval int, viewer string) string {
	return fmt.Sprintf("session-detail:%s:v%d:%d:i%d:%s",
		s.SessionID, s.Version, s.UpdatedAt.UnixNano(), interval, viewer)
}

func (c *detailCache) get(ctx context.Context, key string) (*dto.SessionDetailResponse, bool) {
	if v, ok := c.local.Get(key); ok {
		metrics.DetailCacheHits.WithLabelValues("local").Inc()
		return v, true
	}
	if c.shared != nil {
		var v dto.SessionDetailResponse
		err := c.shared.GetJSON(ctx, key, &v)
		if err == nil {
			metrics.DetailCacheHits.WithLabelValues("shared").Inc()
			c.local.Add(key, &v)
			return &v, true
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn("session detail cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	metrics.DetailCacheMisses.Inc()
	return nil, false
}

func (c *detailCache) set(ctx context.Context, key string, v *dto.SessionDetailResponse) {
	c.local.Add(key, v)
	if c.shared == nil {
		return
	}
	if err := c.shared.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warn("session detail cache write failed", zap.String("key", key), zap.Error(err))
	}
}
