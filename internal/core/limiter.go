package core

import (
	"context"
	"log/slog"
	"time"
)

// CheckRateLimit counts an attempt against key and reports whether it is
// still within maxAttempts for the window. It fails open when redis is down.
func CheckRateLimit(ctx context.Context, kind, key string, maxAttempts int, window time.Duration) bool {
	fullKey := "rate_limit:" + kind + ":" + key

	count, err := RateLimitDB.Incr(ctx, fullKey).Result()
	if err != nil {
		slog.Warn("Rate limit check failed, allowing", "kind", kind, "error", err)
		return true
	}

	if count == 1 {
		RateLimitDB.Expire(ctx, fullKey, window)
	}

	if int(count) > maxAttempts {
		RateLimitHitsTotal.WithLabelValues(kind).Inc()
		return false
	}

	return true
}

func ResetRateLimit(ctx context.Context, kind, key string) {
	RateLimitDB.Del(ctx, "rate_limit:"+kind+":"+key)
}
