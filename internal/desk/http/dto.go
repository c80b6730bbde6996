package http

import (
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/request"
)

type ListDesksRequest struct {
	request.ListParams
	Enabled *bool  `form:"enabled"`
	Booked  *bool  `form:"booked"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type CreateDeskBody struct {
	Name string `json:"name" binding:"required"`
	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled"`
}

// DeskResponse is a desk snapshot with its identifiers.
type DeskResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	*desk.Snapshot
}

func NewDeskResponse(d *desk.Desk, zone *time.Location) DeskResponse {
	return DeskResponse{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		Snapshot:  desk.NewSnapshot(d, zone),
	}
}
