package booking

import (
	"context"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
)

// Store is the transactional persistence the booking engine runs on.
type Store interface {
	// InTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back when fn fails or ctx is cancelled.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// ListDesksWithActiveBookings returns every booked desk with its occupancy loaded.
	ListDesksWithActiveBookings(ctx context.Context) ([]desk.Desk, error)
}

// Tx is the set of operations available inside a Store transaction.
type Tx interface {
	// LockDesk locks the desk row until the transaction ends and returns it
	// with its active booking loaded. Unknown desks yield ErrDeskNotFound.
	LockDesk(ctx context.Context, key desk.Key) (*desk.Desk, error)

	// FindUser yields ErrUserNotFound for unknown usernames.
	FindUser(ctx context.Context, username string) (*Holder, error)

	// FindActiveBookingForUser returns the desk holding the user's booking, or nil.
	FindActiveBookingForUser(ctx context.Context, userID string) (*desk.Desk, error)

	// InsertBooking fills in b.ID. Uniqueness violations yield ErrDeskBooked
	// or ErrUserHasBooking.
	InsertBooking(ctx context.Context, b *Booking) error

	// DeleteBooking removes the active booking of d and archives it with reason.
	DeleteBooking(ctx context.Context, d *desk.Desk, reason ReleaseReason, at time.Time) error

	UpdateDeskEnabled(ctx context.Context, deskID string, enabled bool) error
}
