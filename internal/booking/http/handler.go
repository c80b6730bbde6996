package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/hotdesk-backend/internal/auth"
	"github.com/nekogravitycat/hotdesk-backend/internal/booking"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func bindDesk(c *gin.Context) (desk.Key, bool) {
	var uri request.DeskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid desk", err)
		return desk.Key{}, false
	}
	return desk.Key{Desk: uri.Desk, Location: uri.Location}, true
}

// Book books the desk for the authenticated user.
func (h *Handler) Book(c *gin.Context) {
	key, ok := bindDesk(c)
	if !ok {
		return
	}

	var body BookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	snap, err := h.service.Book(c.Request.Context(), auth.GetUsername(c), key, *body.Days)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, snap)
}

// Unbook releases the desk. Admins may release any booking; other users only their own.
func (h *Handler) Unbook(c *gin.Context) {
	key, ok := bindDesk(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	var (
		snap *desk.Snapshot
		err  error
	)
	if auth.IsAdmin(c) {
		snap, err = h.service.Unbook(ctx, key)
	} else {
		snap, err = h.service.UnbookOwn(ctx, auth.GetUsername(c), key)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// SetEnabled toggles desk availability (admin only).
func (h *Handler) SetEnabled(c *gin.Context) {
	key, ok := bindDesk(c)
	if !ok {
		return
	}

	var body SetEnabledBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	snap, err := h.service.SetEnabled(c.Request.Context(), key, *body.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// MyBooking returns the authenticated user's active booking.
func (h *Handler) MyBooking(c *gin.Context) {
	snap, err := h.service.ActiveForUser(c.Request.Context(), auth.GetUsername(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}
