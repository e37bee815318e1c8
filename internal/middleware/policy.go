package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/policy"
)

// Require returns a middleware that lets the request through only when the
// current identity may perform action.  Owner-or-admin actions need the
// loaded resource and are checked by the handler with Authorize instead.
func Require(action policy.Action) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if d := policy.Authorize(CurrentIdentity(c), action, nil); !d.Allowed {
                return Deny(c, d.Reason)
            }
            return next(c)
        }
    }
}

// Authorize checks action against res for the current identity and writes
// the denial response when it is not allowed.  ok is false when a response
// has been written.
func Authorize(c echo.Context, action policy.Action, res *policy.Resource) (ok bool, err error) {
    d := policy.Authorize(CurrentIdentity(c), action, res)
    if d.Allowed {
        return true, nil
    }
    return false, Deny(c, d.Reason)
}

// Deny writes the response for a policy denial.
func Deny(c echo.Context, r policy.Reason) error {
    return c.JSON(r.StatusCode(), echo.Map{"error": r.Message(), "reason": string(r)})
}
