package handler

import (
    "log/slog" // logout failures are logged, never returned
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/skillswap/internal/middleware" // bearer token and subject helpers
    "github.com/iliyamo/skillswap/internal/service"    // auth and user services
    "github.com/iliyamo/skillswap/internal/utils"      // request validation
)

const (
    msgRegisterFields = "Username, email, and password are required."
    msgLoginFields    = "Email and password are required."
    msgBadEmail       = "Please provide a valid email address."
    msgBadPrivacy     = "Privacy must be public or private."
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth  *service.AuthService
    Users *service.UserService
}

func NewAuthHandler(a *service.AuthService, u *service.UserService) *AuthHandler {
    if a == nil || u == nil {
        panic("nil service passed to NewAuthHandler")
    }
    return &AuthHandler{Auth: a, Users: u}
}

// ----- DTOs -----

// registerReq accepts either username or name for the display name.
type registerReq struct {
    Username     string `json:"username" validate:"required_without=Name"`
    Name         string `json:"name"`
    Email        string `json:"email" validate:"required,email"`
    Password     string `json:"password" validate:"required"`
    Location     string `json:"location"`
    Privacy      string `json:"privacy" validate:"omitempty,oneof=public private"`
    Availability string `json:"availability"`
}

func (r registerReq) input() service.RegisterInput {
    name := r.Username
    if name == "" {
        name = r.Name
    }
    return service.RegisterInput{
        Username:     name,
        Email:        r.Email,
        Password:     r.Password,
        Location:     r.Location,
        Privacy:      r.Privacy,
        Availability: r.Availability,
    }
}

type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

var registerOverrides = map[string]string{
    "email.email":   msgBadEmail,
    "privacy.oneof": msgBadPrivacy,
}

// Register creates an account and opens a session for it.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }
    if err := utils.Validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, utils.ValidationMessage(err, msgRegisterFields, registerOverrides))
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, sess, err := h.Auth.SignUp(ctx, req.input())
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusCreated, "User created successfully.", echo.Map{
        "user":    u.View(),
        "session": sess,
    })
}

// Login verifies credentials and returns the user with a fresh session.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }
    if err := utils.Validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, msgLoginFields)
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, sess, err := h.Auth.SignIn(ctx, req.Email, req.Password)
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "Login successful", echo.Map{
        "user":    u.View(),
        "session": sess,
    })
}

// Me returns the profile of :userId.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, c.Param("userId"))
    if err != nil {
        if service.KindOf(err) == service.KindNotFound {
            return fail(c, http.StatusNotFound, "User profile not found")
        }
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "", echo.Map{"user": u.View()})
}

// Logout revokes the refresh token in the body, or every session of the
// bearer user. It always answers 200.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req) // an empty or malformed body just means "no token"

    ctx, cancel := withTimeout(c)
    defer cancel()

    if err := h.Auth.SignOut(ctx, req.RefreshToken, middleware.UserID(c)); err != nil {
        slog.WarnContext(ctx, "logout: revoke failed", "err", err)
    }
    return ok(c, http.StatusOK, "Logged out successfully", nil)
}

// Session resolves the bearer access token to the current session.
func (h *AuthHandler) Session(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, sess, err := h.Auth.GetSession(ctx, middleware.BearerToken(c))
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "", echo.Map{"user": u.View(), "session": sess})
}

// Refresh rotates a refresh token into a new session.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, sess, err := h.Auth.Refresh(ctx, req.RefreshToken)
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "Session refreshed", echo.Map{"user": u.View(), "session": sess})
}
