package middleware

// identity.go defines helper functions shared across middleware files and
// handlers.  The resolved caller is stored in the Echo context under
// identityKey; anonymous requests have no entry.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-api/internal/auth"
)

const identityKey = "identity"

// SetIdentity stores id as the caller of the request.
func SetIdentity(c echo.Context, id *auth.Identity) {
    if id == nil {
        return
    }
    c.Set(identityKey, id)
    c.Set("user_id", strconv.FormatUint(id.ID, 10))
}

// CurrentIdentity returns the caller, or nil for an anonymous request.
func CurrentIdentity(c echo.Context) *auth.Identity {
    id, _ := c.Get(identityKey).(*auth.Identity)
    return id
}

// userID returns the caller's id as a string for keys and logs.  It
// returns "anon" when no user is authenticated.
func userID(c echo.Context) string {
    if id := CurrentIdentity(c); id != nil {
        return strconv.FormatUint(id.ID, 10)
    }
    return "anon"
}
