package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/skillswap/internal/middleware"
    "github.com/iliyamo/skillswap/internal/model"
    "github.com/iliyamo/skillswap/internal/service"
    "github.com/iliyamo/skillswap/internal/utils"
)

const msgSkillFields = "User ID and skill name are required."

// SkillHandler serves both skill tables. Handlers that depend on the
// table are built per kind, e.g. h.Add(model.SkillOffered).
type SkillHandler struct {
    Skills *service.SkillService
}

func NewSkillHandler(s *service.SkillService) *SkillHandler {
    if s == nil {
        panic("nil service passed to NewSkillHandler")
    }
    return &SkillHandler{Skills: s}
}

type addSkillReq struct {
    UserID      string `json:"user_id" validate:"required"`
    SkillName   string `json:"skill_name" validate:"required"`
    Description string `json:"description"`
    Category    string `json:"category"`
}

// deleteSkillReq takes user_id from the body or the query string.
type deleteSkillReq struct {
    UserID string `json:"user_id" query:"user_id"`
}

func (h *SkillHandler) Add(kind model.SkillKind) echo.HandlerFunc {
    return func(c echo.Context) error {
        var req addSkillReq
        if err := c.Bind(&req); err != nil {
            return fail(c, http.StatusBadRequest, msgInvalidBody)
        }
        if err := utils.Validate.Struct(req); err != nil {
            return fail(c, http.StatusBadRequest, msgSkillFields)
        }
        if !middleware.ActingAs(c, req.UserID) {
            return middleware.ForbidActor(c)
        }

        ctx, cancel := withTimeout(c)
        defer cancel()

        sk, err := h.Skills.Add(ctx, kind, service.AddSkillInput{
            UserID:      req.UserID,
            SkillName:   req.SkillName,
            Description: req.Description,
            Category:    req.Category,
        })
        if err != nil {
            return respondError(c, err)
        }
        return ok(c, http.StatusCreated, "Skill added successfully", echo.Map{"skill": sk})
    }
}

// List returns every skill of kind whose owner is public, newest first.
func (h *SkillHandler) List(kind model.SkillKind) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := withTimeout(c)
        defer cancel()

        skills, err := h.Skills.ListAll(ctx, kind)
        if err != nil {
            return respondError(c, err)
        }
        return ok(c, http.StatusOK, "", echo.Map{"skills": skills})
    }
}

func (h *SkillHandler) ListByUser(kind model.SkillKind) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := withTimeout(c)
        defer cancel()

        skills, err := h.Skills.ListByUser(ctx, kind, c.Param("userId"))
        if err != nil {
            return respondError(c, err)
        }
        return ok(c, http.StatusOK, "", echo.Map{"skills": skills})
    }
}

// Search matches ?q= against name, description and category.
func (h *SkillHandler) Search(kind model.SkillKind) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := withTimeout(c)
        defer cancel()

        skills, err := h.Skills.Search(ctx, kind, c.QueryParam("q"))
        if err != nil {
            return respondError(c, err)
        }
        return ok(c, http.StatusOK, "", echo.Map{"skills": skills})
    }
}

// ByCategory lists offered skills in :category.
func (h *SkillHandler) ByCategory(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    skills, err := h.Skills.ListByCategory(ctx, model.SkillOffered, c.Param("category"))
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "", echo.Map{"skills": skills})
}

func (h *SkillHandler) Categories(c echo.Context) error {
    return ok(c, http.StatusOK, "", echo.Map{"categories": h.Skills.Categories()})
}

// Delete removes :skillId when user_id owns it. A mismatch is a silent
// no-op and still answers 200.
func (h *SkillHandler) Delete(kind model.SkillKind) echo.HandlerFunc {
    return func(c echo.Context) error {
        var req deleteSkillReq
        if err := c.Bind(&req); err != nil {
            return fail(c, http.StatusBadRequest, msgInvalidBody)
        }
        if req.UserID != "" && !middleware.ActingAs(c, req.UserID) {
            return middleware.ForbidActor(c)
        }

        ctx, cancel := withTimeout(c)
        defer cancel()

        if _, err := h.Skills.Delete(ctx, kind, c.Param("skillId"), req.UserID); err != nil {
            return respondError(c, err)
        }
        return ok(c, http.StatusOK, "Skill deleted successfully", nil)
    }
}
