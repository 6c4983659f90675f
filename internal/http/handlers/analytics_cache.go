package handlers

import (
	"context"
	"encoding/json"
	"time"

	"genfity-report-service/internal/cache"

	"go.uber.org/zap"
)

const defaultReportCacheTTL = 5 * time.Minute

func (h *Handler) reportCacheTTL() time.Duration {
	if h.Config.ReportCacheTTL > 0 {
		return h.Config.ReportCacheTTL
	}
	return defaultReportCacheTTL
}

// analyticsCacheKey scopes the key to the merchant and to the current TTL
// bucket so entries roll over even if the store ignores expiry.
func (h *Handler) analyticsCacheKey(prefix string, merchantID int64, parts ...string) string {
	ttl := h.reportCacheTTL()
	parts = append(parts, cache.Bucket(time.Now(), ttl))
	return cache.Key(prefix, merchantID, parts...)
}

// getAnalyticsCache treats cache failures as misses.
func (h *Handler) getAnalyticsCache(ctx context.Context, key string) ([]byte, bool) {
	if h.Cache == nil {
		return nil, false
	}
	body, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		h.Logger.Warn("report cache read failed", zap.String("key", key), zapError(err))
		return nil, false
	}
	return body, ok
}

// setAnalyticsCache stores the encoded payload and returns the bytes to
// write, so cached and fresh responses are byte-identical.
func (h *Handler) setAnalyticsCache(ctx context.Context, key string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, key, body, h.reportCacheTTL()); err != nil {
			h.Logger.Warn("report cache write failed", zap.String("key", key), zapError(err))
		}
	}
	return body, nil
}
