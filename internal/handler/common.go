package handler // handler defines http handlers

import (
    "context"  // request-scoped deadlines for DB calls
    "net/http" // http status codes
    "strconv"  // strconv converts path params to integers
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/blog-api/internal/auth"       // resolved caller
    "github.com/iliyamo/blog-api/internal/middleware" // identity lookup in the echo context
)

// dbTimeout bounds every database round trip made by a handler.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a positive numeric path parameter.  On failure it writes a
// 400 response and returns ok=false.
func pathID(c echo.Context, name string) (id uint64, ok bool, err error) {
    id, perr := strconv.ParseUint(c.Param(name), 10, 64)
    if perr != nil || id == 0 {
        return 0, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
    }
    return id, true, nil
}

// currentIdentity returns the resolved caller.  Routes that call it are
// gated by a policy that requires authentication, so a nil identity means
// the router is miswired.
func currentIdentity(c echo.Context) (*auth.Identity, error) {
    id := middleware.CurrentIdentity(c)
    if id == nil {
        return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    }
    return id, nil
}

func serverError(c echo.Context, msg string, err error) error {
    c.Logger().Errorf("%s: %v", msg, err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
