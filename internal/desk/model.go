package desk

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "desk not found")
	ErrLocationNotFound = apperror.New(http.StatusNotFound, "location not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "desk name is required")
	ErrNameTooLong      = apperror.New(http.StatusBadRequest, "desk name must be at most 100 characters")
	ErrNameTaken        = apperror.New(http.StatusConflict, "desk name already exists in this location")
	ErrBooked           = apperror.New(http.StatusConflict, "desk has an active booking")
)

// DateLayout is the dd-MM-yyyy layout used for booking dates in snapshots.
const DateLayout = "02-01-2006"

// Key identifies a desk by its name within a location.
type Key struct {
	Desk     string
	Location string
}

func (k Key) String() string {
	return k.Location + "/" + k.Desk
}

// Occupancy is the active booking held on a desk.
type Occupancy struct {
	ID        string
	UserID    string
	Username  string
	StartTime time.Time
	EndTime   time.Time
}

// Desk is a bookable seat inside a location.
type Desk struct {
	ID           string
	LocationID   string
	LocationName string
	Name         string
	Enabled      bool
	CreatedAt    time.Time

	// Booking is nil when the desk is free.
	Booking *Occupancy
}

func (d *Desk) Key() Key {
	return Key{Desk: d.Name, Location: d.LocationName}
}

func (d *Desk) IsBooked() bool {
	return d.Booking != nil
}

// Snapshot is the externally visible state of a desk. Username and the
// dates are nil when the desk is free.
type Snapshot struct {
	DeskName     string  `json:"desk_name"`
	LocationName string  `json:"location_name"`
	IsEnabled    bool    `json:"is_enabled"`
	Username     *string `json:"username"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
}

// NewSnapshot renders d with booking dates formatted in zone.
func NewSnapshot(d *Desk, zone *time.Location) *Snapshot {
	s := &Snapshot{
		DeskName:     d.Name,
		LocationName: d.LocationName,
		IsEnabled:    d.Enabled,
	}
	if b := d.Booking; b != nil {
		username := b.Username
		start := b.StartTime.In(zone).Format(DateLayout)
		end := b.EndTime.In(zone).Format(DateLayout)
		s.Username, s.StartTime, s.EndTime = &username, &start, &end
	}
	return s
}

// Filter defines parameters for listing desks of one location.
type Filter struct {
	Location  string
	Enabled   *bool
	Booked    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
