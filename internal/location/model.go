package location

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "location not found")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "location name is required")
	ErrNameTooLong  = apperror.New(http.StatusBadRequest, "location name must be at most 100 characters")
	ErrNameTaken    = apperror.New(http.StatusConflict, "location name already exists")
	ErrNotEmpty     = apperror.New(http.StatusConflict, "location still has desks")
)

// Location is a named place that owns desks. Names are unique.
type Location struct {
	ID        string
	Name      string
	CreatedAt time.Time
	DeskCount int
}

// LocationFilter defines parameters for listing locations.
type LocationFilter struct {
	Keyword   string // Search in Name
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
