package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/skillswap/internal/model"
    "github.com/iliyamo/skillswap/internal/service"
    "github.com/iliyamo/skillswap/internal/utils"
)

const (
    msgProfileRegisterFields = "Email, password, and name are required."
    msgNoFile                = "No file uploaded."
)

// UserHandler serves profiles, public listings and avatar uploads.
type UserHandler struct {
    Users *service.UserService
}

func NewUserHandler(u *service.UserService) *UserHandler {
    if u == nil {
        panic("nil service passed to NewUserHandler")
    }
    return &UserHandler{Users: u}
}

// profileReq is a partial update; absent keys stay nil.
type profileReq struct {
    Username     *string `json:"username"`
    Name         *string `json:"name"`
    Location     *string `json:"location"`
    Privacy      *string `json:"privacy" validate:"omitempty,oneof=public private"`
    Availability *string `json:"availability"`
}

// Register is the profile-centric sign up used by the browser client. It
// takes name instead of username and returns no session.
func (h *UserHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }
    if err := utils.Validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, utils.ValidationMessage(err, msgProfileRegisterFields, registerOverrides))
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.Register(ctx, req.input())
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusCreated, "User created successfully", echo.Map{"user": u.View()})
}

// Public lists every public profile without email addresses.
func (h *UserHandler) Public(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    users, err := h.Users.ListPublic(ctx)
    if err != nil {
        return respondError(c, err)
    }
    out := make([]model.UserView, 0, len(users))
    for _, u := range users {
        out = append(out, u.PublicView())
    }
    return ok(c, http.StatusOK, "", echo.Map{"users": out})
}

func (h *UserHandler) Profile(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, c.Param("userId"))
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "", echo.Map{"user": u.View()})
}

// UpdateProfile applies the fields present in the body.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
    var req profileReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }
    if err := utils.Validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, msgBadPrivacy)
    }
    name := req.Username
    if name == nil {
        name = req.Name
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.Update(ctx, c.Param("userId"), service.ProfileUpdate{
        Username:     name,
        Location:     req.Location,
        Privacy:      req.Privacy,
        Availability: req.Availability,
    })
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "Profile updated successfully", echo.Map{"user": u.View()})
}

// UploadAvatar stores the multipart field "avatar" as the user's avatar.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
    fh, err := c.FormFile("avatar")
    if err != nil {
        return fail(c, http.StatusBadRequest, msgNoFile)
    }
    f, err := fh.Open()
    if err != nil {
        return respondError(c, err)
    }
    defer f.Close()

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Users.UploadAvatar(ctx, c.Param("userId"), &service.AvatarUpload{
        Filename:    fh.Filename,
        ContentType: fh.Header.Get(echo.HeaderContentType),
        Size:        fh.Size,
        Body:        f,
    })
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "Avatar uploaded successfully", echo.Map{
        "avatarUrl": u.Avatar,
        "user":      u.View(),
    })
}
