package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/skillswap/internal/middleware"
    "github.com/iliyamo/skillswap/internal/service"
    "github.com/iliyamo/skillswap/internal/utils"
)

const (
    msgSwapFields    = "All required fields must be provided."
    msgStatusFields  = "Status and user ID are required."
    msgInvalidStatus = "Invalid status. Must be accepted, declined, or completed."
)

type SwapHandler struct {
    Swaps *service.SwapService
}

func NewSwapHandler(s *service.SwapService) *SwapHandler {
    if s == nil {
        panic("nil service passed to NewSwapHandler")
    }
    return &SwapHandler{Swaps: s}
}

type createSwapReq struct {
    RequesterID    string `json:"requester_id" validate:"required"`
    ReceiverID     string `json:"receiver_id" validate:"required"`
    OfferedSkillID string `json:"offered_skill_id" validate:"required"`
    WantedSkillID  string `json:"wanted_skill_id" validate:"required"`
    Message        string `json:"message"`
}

type swapStatusReq struct {
    Status string `json:"status" validate:"required,oneof=accepted declined completed"`
    UserID string `json:"user_id" validate:"required"`
}

var statusOverrides = map[string]string{"status.oneof": msgInvalidStatus}

// Create opens a pending swap request from requester_id.
func (h *SwapHandler) Create(c echo.Context) error {
    var req createSwapReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }
    if err := utils.Validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, msgSwapFields)
    }
    if !middleware.ActingAs(c, req.RequesterID) {
        return middleware.ForbidActor(c)
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    w, err := h.Swaps.Create(ctx, service.CreateSwapInput{
        RequesterID:    req.RequesterID,
        ReceiverID:     req.ReceiverID,
        OfferedSkillID: req.OfferedSkillID,
        WantedSkillID:  req.WantedSkillID,
        Message:        req.Message,
    })
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusCreated, "Swap request created successfully", echo.Map{"swap": w})
}

// ListByUser returns swaps sent or received by :userId, newest first.
func (h *SwapHandler) ListByUser(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    swaps, err := h.Swaps.ListByUser(ctx, c.Param("userId"))
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "", echo.Map{"swaps": swaps})
}

// UpdateStatus lets the receiver (user_id) accept, decline or complete
// :swapId. Anyone else gets 404 and the swap stays as it was.
func (h *SwapHandler) UpdateStatus(c echo.Context) error {
    var req swapStatusReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, msgInvalidBody)
    }
    if err := utils.Validate.Struct(req); err != nil {
        return fail(c, http.StatusBadRequest, utils.ValidationMessage(err, msgStatusFields, statusOverrides))
    }
    if !middleware.ActingAs(c, req.UserID) {
        return middleware.ForbidActor(c)
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    w, err := h.Swaps.UpdateStatus(ctx, c.Param("swapId"), req.Status, req.UserID)
    if err != nil {
        return respondError(c, err)
    }
    return ok(c, http.StatusOK, "Swap status updated successfully", echo.Map{"swap": w})
}
