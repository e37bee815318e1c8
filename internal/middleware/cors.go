package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/rs/cors"
)

// CORS wraps rs/cors for Echo.  A single "*" origin allows any origin
// without credentials; explicit origins allow credentials.
func CORS(origins []string) echo.MiddlewareFunc {
    anyOrigin := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
    opts := cors.Options{
        AllowedOrigins: origins,
        AllowedMethods: []string{
            http.MethodGet, http.MethodPost, http.MethodPut,
            http.MethodPatch, http.MethodDelete, http.MethodOptions,
        },
        AllowedHeaders:   []string{"Content-Type", "Authorization"},
        ExposedHeaders:   []string{"X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
        AllowCredentials: !anyOrigin,
    }
    if anyOrigin {
        opts.AllowedOrigins = []string{"*"}
    }
    return echo.WrapMiddleware(cors.New(opts).Handler)
}
