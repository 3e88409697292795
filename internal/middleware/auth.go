package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/skillswap/internal/utils"
)

// userIDKey is where the token subject is stored on the echo context.
const userIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores its subject in the request context.  The secret must match the
// one used when issuing tokens.  Handlers read the subject with UserID.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearer(c)
            if !ok {
                return deny(c, http.StatusUnauthorized, "Access token required")
            }
            sub, _, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return deny(c, http.StatusUnauthorized, "Invalid or expired token")
            }
            c.Set(userIDKey, sub)
            return next(c)
        }
    }
}

// OptionalAuth is JWTAuth that never rejects.  A valid token sets the
// subject; a missing or bad one leaves the request anonymous.
func OptionalAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearer(c); ok {
                if sub, _, err := utils.ParseAccessToken(secret, raw); err == nil {
                    c.Set(userIDKey, sub)
                }
            }
            return next(c)
        }
    }
}

// BearerToken returns the raw token of an "Authorization: Bearer" header.
func BearerToken(c echo.Context) string {
    raw, _ := bearer(c)
    return raw
}

func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(auth[7:])
    return raw, raw != ""
}

// deny writes the standard error envelope.
func deny(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "message": msg})
}
