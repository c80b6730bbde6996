package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/hotdesk-backend/internal/location"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/response"
)

type LocationHandler struct {
	service location.Service
}

func NewHandler(service location.Service) *LocationHandler {
	return &LocationHandler{service: service}
}

// List retrieves a paginated list of locations with their desk counts.
func (h *LocationHandler) List(c *gin.Context) {
	var req ListLocationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := location.LocationFilter{
		Keyword:   req.Keyword,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	locs, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]LocationResponse, len(locs))
	for i, l := range locs {
		items[i] = NewLocationResponse(l)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *LocationHandler) Get(c *gin.Context) {
	var uri request.LocationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid location", err)
		return
	}

	loc, err := h.service.Get(c.Request.Context(), uri.Location)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewLocationResponse(loc))
}

func (h *LocationHandler) Create(c *gin.Context) {
	var body CreateLocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	loc, err := h.service.Create(c.Request.Context(), body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewLocationResponse(loc))
}

// Rename changes a location's name; the new name must be unused.
func (h *LocationHandler) Rename(c *gin.Context) {
	var uri request.LocationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid location", err)
		return
	}

	var body RenameLocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	loc, err := h.service.Rename(c.Request.Context(), uri.Location, body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewLocationResponse(loc))
}

// Delete removes a location that owns no desks.
func (h *LocationHandler) Delete(c *gin.Context) {
	var uri request.LocationURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid location", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.Location); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
