package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers
    "time"     // timestamp for the liveness check

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems. It returns a plain text "ok" with 200.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ping answers /api/test with a JSON liveness message.
func Ping(c echo.Context) error {
    return ok(c, http.StatusOK, "Skill Swap Platform Server is working!", echo.Map{
        "timestamp": time.Now().UTC().Format(time.RFC3339),
    })
}
