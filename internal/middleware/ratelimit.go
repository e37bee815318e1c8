package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/blog-api/internal/config"
)

// tokenBucketScript refills the bucket at KEYS[1] for the time elapsed and
// takes one token.  ARGV: now_ms, capacity, refill_tokens, interval_ms,
// ttl_s.  Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local now, capacity = tonumber(ARGV[1]), tonumber(ARGV[2])
local refill, interval, ttl = tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'ts'))
if tokens == nil or last == nil then
    tokens, last = capacity, now
elseif interval > 0 then
    local steps = math.floor(math.max(0, now - last) / interval)
    if steps > 0 then
        tokens = math.min(capacity, tokens + steps * refill)
        last = last + steps * interval
    end
end

local allowed, wait = 0, 0
if tokens >= 1 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - last))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', last)
redis.call('EXPIRE', KEYS[1], ttl)
return { allowed, tokens, wait }
`)

type bucketResult struct {
    allowed    bool
    remaining  int64
    retryAfter time.Duration
}

// take spends one token from the bucket at key.
func take(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, capacity int, now time.Time) (bucketResult, error) {
    vals, err := tokenBucketScript.Run(ctx, rdb, []string{key},
        now.UnixMilli(), capacity, cfg.RefillTokens, cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return bucketResult{}, err
    }
    if len(vals) != 3 {
        return bucketResult{}, fmt.Errorf("unexpected token bucket reply %v", vals)
    }
    return bucketResult{
        allowed:    vals[0] == 1,
        remaining:  vals[1],
        retryAfter: time.Duration(vals[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits requests with a Redis token bucket per client.
// Reads, writes and credential endpoints draw from separate buckets (see
// config.RateLimitConfig.BucketFor).  When Redis is missing or failing the
// request goes through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            class, capacity := cfg.BucketFor(req.Method, req.URL.Path)
            key := buildRateKey(cfg, class, c)

            res, err := take(req.Context(), rdb, cfg, key, capacity, time.Now())
            if err != nil {
                c.Logger().Warnf("[ratelimit] key=%s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if res.allowed {
                return next(c)
            }

            secs := int(math.Ceil(res.retryAfter.Seconds()))
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                c.Logger().Infof("[ratelimit] block key=%s retry=%s", key, res.retryAfter)
            }
            msg := "rate limit exceeded"
            if class == config.BucketAuth {
                msg = "too many attempts, try again later"
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too_many_requests",
                "message":     msg,
                "retry_after": secs,
            })
        }
    }
}

// buildRateKey names the bucket for a request.  The auth bucket is keyed by
// client IP and path only: login and signup callers are anonymous, and
// rotating the target account must not buy fresh tokens.
func buildRateKey(cfg config.RateLimitConfig, class string, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix, class}
    if class == config.BucketAuth {
        return strings.Join(append(parts, "ip", ip, "path", c.Request().URL.Path), ":")
    }

    uid := userID(c)
    route := c.Request().Method + " " + c.Path()
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
