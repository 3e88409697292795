package handler // handler defines http handlers

import (
    "context"  // request scoped deadlines for service calls
    "errors"   // errors.As for echo and service errors
    "log/slog" // structured logging of unexpected failures
    "net/http" // HTTP status codes
    "time"     // request timeout

    "github.com/labstack/echo/v4" // echo context and error types

    "github.com/iliyamo/skillswap/internal/service" // service error kinds
)

// requestTimeout bounds every service call made by a handler.
const requestTimeout = 5 * time.Second

const (
    msgInvalidBody   = "Invalid request body."
    msgRouteNotFound = "Route not found"
    msgInternal      = "Something went wrong!"
)

// withTimeout derives the context handlers pass to the service layer.
func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// ok writes a success envelope. body may be nil.
func ok(c echo.Context, status int, msg string, body echo.Map) error {
    out := echo.Map{"success": true}
    if msg != "" {
        out["message"] = msg
    }
    for k, v := range body {
        out[k] = v
    }
    return c.JSON(status, out)
}

// fail writes the error envelope used by every endpoint.
func fail(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// statusOf maps a service error kind to its HTTP status.
func statusOf(k service.Kind) int {
    switch k {
    case service.KindValidation:
        return http.StatusBadRequest
    case service.KindUnauthorized:
        return http.StatusUnauthorized
    case service.KindForbidden:
        return http.StatusForbidden
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindConflict:
        return http.StatusConflict
    }
    return http.StatusInternalServerError
}

// respondError renders err. Service errors carry a client-safe message;
// anything else is logged and answered with a generic 500.
func respondError(c echo.Context, err error) error {
    var se *service.Error
    if !errors.As(err, &se) {
        slog.ErrorContext(c.Request().Context(), "unhandled error", "path", c.Path(), "err", err)
        return fail(c, http.StatusInternalServerError, msgInternal)
    }
    status := statusOf(se.Kind)
    if status >= http.StatusInternalServerError {
        slog.ErrorContext(c.Request().Context(), se.Message, "path", c.Path(), "err", se.Err)
    }
    return fail(c, status, se.Message)
}

// HTTPErrorHandler replaces echo's default handler so framework errors
// (unknown route, body limit, bad bind) use the same envelope as handlers.
func HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }
    var he *echo.HTTPError
    if !errors.As(err, &he) {
        _ = respondError(c, err)
        return
    }

    msg := http.StatusText(he.Code)
    switch he.Code {
    case http.StatusNotFound:
        msg = msgRouteNotFound
    case http.StatusRequestEntityTooLarge:
        msg = "Request body too large."
    case http.StatusBadRequest:
        msg = msgInvalidBody
    case http.StatusMethodNotAllowed:
        msg = "Method not allowed"
    default:
        if s, ok := he.Message.(string); ok && s != "" {
            msg = s
        }
    }
    if he.Code >= http.StatusInternalServerError {
        slog.ErrorContext(c.Request().Context(), "http error", "status", he.Code, "err", he)
    }
    if c.Request().Method == http.MethodHead {
        _ = c.NoContent(he.Code)
        return
    }
    _ = fail(c, he.Code, msg)
}
