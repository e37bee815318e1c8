package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig drives the Redis token bucket.  Requests fall into one of
// three buckets: reads use Capacity, writes (comments, likes) the smaller
// WriteCapacity, and the credential endpoints in AuthPaths the smallest,
// AuthCapacity, keyed by client IP alone.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    WriteCapacity  int
    AuthCapacity   int
    AuthPaths      []string
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        WriteCapacity:  envInt("RATE_LIMIT_WRITE_CAPACITY", 20),
        AuthCapacity:   envInt("RATE_LIMIT_AUTH_CAPACITY", 5),
        AuthPaths:      splitList(envStr("RATE_LIMIT_AUTH_PATHS", "/login,/signup,/resend-verification")),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "blog:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    return def.normalize()
}

func (c RateLimitConfig) normalize() RateLimitConfig {
    if c.Capacity < 1 { c.Capacity = 1 }
    if c.WriteCapacity < 1 { c.WriteCapacity = c.Capacity }
    if c.AuthCapacity < 1 { c.AuthCapacity = c.WriteCapacity }
    if c.RefillTokens < 1 { c.RefillTokens = 1 }
    if c.RefillInterval <= 0 { c.RefillInterval = time.Second }
    if minTTL := 5 * c.RefillInterval; c.TTL < minTTL { c.TTL = minTTL }
    return c
}

// Bucket classes.
const (
    BucketRead  = "r"
    BucketWrite = "w"
    BucketAuth  = "auth"
)

// BucketFor classifies a request and returns its bucket size.
func (c RateLimitConfig) BucketFor(method, path string) (class string, capacity int) {
    for _, p := range c.AuthPaths {
        if path == p {
            return BucketAuth, c.AuthCapacity
        }
    }
    switch strings.ToUpper(method) {
    case "GET", "HEAD", "OPTIONS":
        return BucketRead, c.Capacity
    }
    return BucketWrite, c.WriteCapacity
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch strings.ToLower(v) {
    case "1", "true", "yes", "on": return true
    case "0", "false", "no", "off": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
