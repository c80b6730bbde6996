package http

import (
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/location"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/request"
)

type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	DeskCount int       `json:"desk_count"`
}

func NewLocationResponse(l *location.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
		DeskCount: l.DeskCount,
	}
}

type ListLocationsRequest struct {
	request.ListParams
	Keyword string `form:"q"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type CreateLocationBody struct {
	Name string `json:"name" binding:"required"`
}

type RenameLocationBody struct {
	Name string `json:"name" binding:"required"`
}
