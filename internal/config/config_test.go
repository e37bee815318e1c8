package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
    t.Setenv("X_INT", "nope")
    t.Setenv("X_DUR", "5 minutes")
    t.Setenv("X_BOOL", "maybe")

    assert.Equal(t, 7, envInt("X_INT", 7))
    assert.Equal(t, time.Second, envDur("X_DUR", time.Second))
    assert.True(t, envBool("X_BOOL", true))
    assert.Equal(t, "d", envStr("X_UNSET_FOR_TEST", "d"))
}

func TestLoadReadsTokenSettings(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("DB_DRIVER", "SQLite")
    t.Setenv("TOKEN_TTL", "2h")
    t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")
    t.Setenv("FRONTEND_URL", "https://blog.example.com/")
    t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

    cfg := Load()

    assert.Equal(t, DriverSQLite, cfg.DBDriver)
    assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
    assert.Equal(t, "admin@example.com", cfg.AdminEmail)
    assert.Equal(t, "https://blog.example.com", cfg.FrontendURL)
    assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
    assert.Equal(t, 48*time.Hour, cfg.VerificationTTL)
}

func TestLoadDefaultsTokenTTLToADay(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("DB_DRIVER", "sqlite")

    assert.Equal(t, 24*time.Hour, Load().TokenTTL)
}

func TestRateLimitNormalize(t *testing.T) {
    c := RateLimitConfig{Capacity: 0, WriteCapacity: 0, RefillInterval: 2 * time.Second}.normalize()

    assert.Equal(t, 1, c.Capacity)
    assert.Equal(t, 1, c.WriteCapacity)
    assert.Equal(t, 1, c.AuthCapacity)
    assert.Equal(t, 1, c.RefillTokens)
    assert.Equal(t, 10*time.Second, c.TTL)
    _, n := c.BucketFor("get", "/posts")
    assert.Equal(t, 1, n)
}

func TestRateLimitBuckets(t *testing.T) {
    c := RateLimitConfig{Capacity: 60, WriteCapacity: 20, AuthCapacity: 5, AuthPaths: []string{"/login", "/signup"}}

    tests := []struct {
        method, path string
        class        string
        capacity     int
    }{
        {"GET", "/posts", BucketRead, 60},
        {"POST", "/posts/1/comments", BucketWrite, 20},
        {"DELETE", "/posts/1/like", BucketWrite, 20},
        {"POST", "/login", BucketAuth, 5},
        {"POST", "/signup", BucketAuth, 5},
        {"POST", "/login/extra", BucketWrite, 20},
    }
    for _, tt := range tests {
        class, n := c.BucketFor(tt.method, tt.path)
        assert.Equal(t, tt.class, class, tt.method+" "+tt.path)
        assert.Equal(t, tt.capacity, n, tt.method+" "+tt.path)
    }
}

func TestRateLimitAuthPathsFromEnv(t *testing.T) {
    t.Setenv("RATE_LIMIT_AUTH_PATHS", "/login, /token")
    t.Setenv("RATE_LIMIT_AUTH_CAPACITY", "3")
    c := LoadRateLimitConfig()

    assert.Equal(t, []string{"/login", "/token"}, c.AuthPaths)
    class, n := c.BucketFor("POST", "/token")
    assert.Equal(t, BucketAuth, class)
    assert.Equal(t, 3, n)
}

func TestCacheConfigParsesMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head ,")
    c := LoadCacheConfig()

    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
    assert.Equal(t, "blog:cache:gen", c.GenerationKey())
}
