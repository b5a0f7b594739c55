package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// tokenBucket refills and takes one token atomically.  The bucket lives in a
// hash {tokens, last_refill_ms} that expires when idle.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1]) or capacity
local last = tonumber(state[2]) or now_ms

local steps = math.floor(math.max(0, now_ms - last) / interval_ms)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval_ms
end

local allowed, retry = 0, 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry = math.max(0, interval_ms - (now_ms - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, retry}
`)

type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

func parseBucket(v any) (bucketResult, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 3 {
		return bucketResult{}, fmt.Errorf("unexpected script result %#v", v)
	}
	n := make([]int64, 3)
	for i, x := range arr {
		switch t := x.(type) {
		case int64:
			n[i] = t
		case string:
			parsed, err := strconv.ParseInt(t, 10, 64)
			if err != nil {
				return bucketResult{}, fmt.Errorf("script field %d: %w", i, err)
			}
			n[i] = parsed
		default:
			return bucketResult{}, fmt.Errorf("script field %d has type %T", i, x)
		}
	}
	return bucketResult{allowed: n[0] == 1, remaining: n[1], retry: time.Duration(n[2]) * time.Millisecond}, nil
}

// bucketFor picks the key and capacity for the caller.  Authenticated
// callers are limited per account, anonymous ones per client IP.
func bucketFor(cfg config.RateLimitConfig, c echo.Context) (string, int) {
	if a, ok := Actor(c); ok {
		capacity := cfg.Capacity
		if a.Role == model.RoleTable {
			capacity = cfg.TableCapacity
		}
		return fmt.Sprintf("%s:user:%s", cfg.Prefix, userKey(c)), capacity
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s:ip:%s", cfg.Prefix, ip), cfg.Capacity
}

// NewTokenBucket rate limits requests with a Redis token bucket.  It is
// mounted after JWTAuth so the bucket follows the account rather than the
// till's IP address.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *logger.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, capacity := bucketFor(cfg, c)
			args := []any{
				time.Now().UnixMilli(),
				capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}
			raw, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				log.Error("ratelimit_redis", err, map[string]any{"key": key})
				return next(c)
			}
			res, err := parseBucket(raw)
			if err != nil {
				log.Warn("ratelimit_unexpected_result", map[string]any{"key": key, "error": err.Error()})
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if !res.allowed {
				secs := int((res.retry + time.Second - 1) / time.Second)
				h.Set("Retry-After", strconv.Itoa(secs))
				log.Debug("ratelimit_block", map[string]any{"key": key, "retry_ms": res.retry.Milliseconds()})
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
