package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/response"
)

type Handler struct {
	service desk.Service
	zone    *time.Location
}

func NewHandler(service desk.Service, zone *time.Location) *Handler {
	return &Handler{service: service, zone: zone}
}

// List returns the desks of a location with their current booking.
func (h *Handler) List(c *gin.Context) {
	var uri request.LocationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid location", err)
		return
	}

	var req ListDesksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	desks, total, err := h.service.List(c.Request.Context(), desk.Filter{
		Location:  uri.Location,
		Enabled:   req.Enabled,
		Booked:    req.Booked,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]DeskResponse, len(desks))
	for i, d := range desks {
		items[i] = NewDeskResponse(d, h.zone)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.DeskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid desk", err)
		return
	}

	d, err := h.service.Get(c.Request.Context(), desk.Key{Desk: uri.Desk, Location: uri.Location})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewDeskResponse(d, h.zone))
}

func (h *Handler) Create(c *gin.Context) {
	var uri request.LocationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid location", err)
		return
	}

	var body CreateDeskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	enabled := true
	if body.Enabled != nil {
		enabled = *body.Enabled
	}

	d, err := h.service.Create(c.Request.Context(), desk.CreateRequest{
		Location: uri.Location,
		Name:     body.Name,
		Enabled:  enabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewDeskResponse(d, h.zone))
}

// Delete removes a desk that is not booked.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.DeskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid desk", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), desk.Key{Desk: uri.Desk, Location: uri.Location}); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
