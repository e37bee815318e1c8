package middleware

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/auth"
)

// ResolveIdentity returns an Echo middleware that resolves the caller from
// the Authorization header and stores it with SetIdentity.  Requests
// without a Bearer token continue anonymously; the policy gate decides
// whether that is enough.  A Bearer token that cannot be trusted is
// rejected here with 401 and a message telling the client what to fix.
func ResolveIdentity(r *auth.Resolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            id, err := r.Resolve(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
            if err != nil {
                c.Logger().Debugf("identity resolution failed: %v", err)
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.Message(err)})
            }
            SetIdentity(c, id)
            return next(c)
        }
    }
}
