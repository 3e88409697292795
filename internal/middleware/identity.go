package middleware

// identity.go holds the helpers that read the authenticated subject set by
// JWTAuth or OptionalAuth, and the ownership guard built on them.

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

const msgNotOwner = "Access denied. You can only access your own resources."

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
    if s, ok := c.Get(userIDKey).(string); ok {
        return s
    }
    return ""
}

// currentUserID is UserID with a placeholder for anonymous callers, used
// in rate limit keys.
func currentUserID(c echo.Context) string {
    if id := UserID(c); id != "" {
        return id
    }
    return "anon"
}

// ActingAs reports whether the caller may act as userID.  Anonymous
// callers may; authenticated callers only as themselves.
func ActingAs(c echo.Context, userID string) bool {
    sub := UserID(c)
    return sub == "" || sub == userID
}

// RequireSelf rejects authenticated requests whose subject differs from the
// path parameter named param.  Anonymous requests pass through.
func RequireSelf(param string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !ActingAs(c, c.Param(param)) {
                return deny(c, http.StatusForbidden, msgNotOwner)
            }
            return next(c)
        }
    }
}

// ForbidActor writes the 403 used when a body names another user.
func ForbidActor(c echo.Context) error {
    return deny(c, http.StatusForbidden, msgNotOwner)
}
