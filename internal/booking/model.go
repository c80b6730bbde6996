package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/apperror"
)

var (
	ErrInvalidDays     = apperror.New(http.StatusBadRequest, "days must be at least 1")
	ErrUserNotFound    = apperror.New(http.StatusNotFound, "user not found")
	ErrDeskNotFound    = apperror.New(http.StatusNotFound, "desk not found")
	ErrDeskDisabled    = apperror.New(http.StatusConflict, "desk is disabled")
	ErrDeskBooked      = apperror.New(http.StatusConflict, "desk is already booked")
	ErrUserHasBooking  = apperror.New(http.StatusConflict, "user already has an active booking")
	ErrNothingToUnbook = apperror.New(http.StatusConflict, "desk has no active booking")
	ErrDeskOccupied    = apperror.New(http.StatusConflict, "desk has an active booking and cannot be toggled")
	ErrNoActiveBooking = apperror.New(http.StatusNotFound, "user has no active booking")
	ErrNotHolder       = apperror.New(http.StatusForbidden, "desk is booked by another user")
)

// ReleaseReason records why a booking left the active set.
type ReleaseReason string

const (
	ReasonUnbooked ReleaseReason = "unbooked"
	ReasonExpired  ReleaseReason = "expired"
)

// Holder is the user a booking is made for.
type Holder struct {
	ID       string
	Username string
}

// Booking is an active booking row. It exists only while the booking is active.
type Booking struct {
	ID        string
	DeskID    string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
}

// EndTime returns the end of a booking of the given length. A one-day booking
// ends on the day it starts.
func EndTime(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, days-1)
}

// Expired reports whether the calendar day of end, in zone, has fully passed at now.
func Expired(end, now time.Time, zone *time.Location) bool {
	e := end.In(zone)
	nextDay := time.Date(e.Year(), e.Month(), e.Day()+1, 0, 0, 0, 0, zone)
	return !now.Before(nextDay)
}
