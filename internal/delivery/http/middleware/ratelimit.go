package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	h "campusevents/internal/delivery/http/helpers"
)

// RateLimit returns a per-user fixed-window limiter backed by Redis, sized
// for door scanners hammering the scan endpoint. limit is requests per
// minute; zero disables limiting. A nil client or a Redis failure degrades
// to allowing the request: losing rate limiting is preferable to dropping
// check-ins.
func RateLimit(rdb *redis.Client, limit int, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if rdb == nil || limit <= 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				next(w, r)
				return
			}
			key := fmt.Sprintf("ratelimit:%s:%s", r.URL.Path, userID)

			ctx := r.Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				logger.Warn("rate limiter unavailable", "err", err)
				next(w, r)
				return
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, time.Minute).Err()
			}
			if count > int64(limit) {
				w.Header().Set("Retry-After", "60")
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, "too many requests")
				return
			}
			next(w, r)
		}
	}
}
