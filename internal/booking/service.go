package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/metrics"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/clock"
)

type Service interface {
	// Book gives username the desk at key for days calendar days starting today.
	Book(ctx context.Context, username string, key desk.Key, days int) (*desk.Snapshot, error)
	// Unbook releases the desk's active booking regardless of holder.
	Unbook(ctx context.Context, key desk.Key) (*desk.Snapshot, error)
	// UnbookOwn releases the desk's active booking only if username holds it.
	UnbookOwn(ctx context.Context, username string, key desk.Key) (*desk.Snapshot, error)
	ActiveForUser(ctx context.Context, username string) (*desk.Snapshot, error)
	SetEnabled(ctx context.Context, key desk.Key, enabled bool) (*desk.Snapshot, error)
	// ReleaseExpired releases the desk's booking if it is still present and
	// expired at now. It reports whether a booking was released.
	ReleaseExpired(ctx context.Context, key desk.Key, now time.Time) (bool, error)
}

type service struct {
	store   Store
	clock   clock.Clock
	zone    *time.Location
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, clk clock.Clock, zone *time.Location, log *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		store:   store,
		clock:   clk,
		zone:    zone,
		log:     log,
		metrics: m,
	}
}

func (s *service) Book(ctx context.Context, username string, key desk.Key, days int) (*desk.Snapshot, error) {
	if days < 1 {
		s.reject(ctx, "book", ErrInvalidDays)
		return nil, ErrInvalidDays
	}

	var snap *desk.Snapshot
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		holder, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}

		d, err := tx.LockDesk(ctx, key)
		if err != nil {
			return err
		}
		if !d.Enabled {
			return ErrDeskDisabled
		}
		if d.IsBooked() {
			return ErrDeskBooked
		}

		held, err := tx.FindActiveBookingForUser(ctx, holder.ID)
		if err != nil {
			return err
		}
		if held != nil {
			return ErrUserHasBooking
		}

		start := s.clock.Now().In(s.zone)
		b := &Booking{
			DeskID:    d.ID,
			UserID:    holder.ID,
			StartTime: start,
			EndTime:   EndTime(start, days),
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}

		d.Booking = &desk.Occupancy{
			ID:        b.ID,
			UserID:    holder.ID,
			Username:  holder.Username,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		}
		snap = desk.NewSnapshot(d, s.zone)
		return nil
	})
	if err != nil {
		s.reject(ctx, "book", err)
		return nil, err
	}

	s.metrics.BookingCreated()
	s.log.InfoContext(ctx, "desk booked",
		"desk", key.String(),
		"username", username,
		"days", days,
		"end", *snap.EndTime,
	)
	return snap, nil
}

func (s *service) Unbook(ctx context.Context, key desk.Key) (*desk.Snapshot, error) {
	snap, err := s.release(ctx, key, nil)
	if err != nil {
		s.reject(ctx, "unbook", err)
		return nil, err
	}
	return snap, nil
}

func (s *service) UnbookOwn(ctx context.Context, username string, key desk.Key) (*desk.Snapshot, error) {
	snap, err := s.release(ctx, key, func(d *desk.Desk) error {
		if d.Booking.Username != username {
			return ErrNotHolder
		}
		return nil
	})
	if err != nil {
		s.reject(ctx, "unbook", err)
		return nil, err
	}
	return snap, nil
}

// release removes the active booking of the desk at key. allow, when set, may
// veto the release after the desk is locked.
func (s *service) release(ctx context.Context, key desk.Key, allow func(*desk.Desk) error) (*desk.Snapshot, error) {
	var (
		snap   *desk.Snapshot
		holder string
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		d, err := tx.LockDesk(ctx, key)
		if err != nil {
			return err
		}
		if !d.IsBooked() {
			return ErrNothingToUnbook
		}
		if allow != nil {
			if err := allow(d); err != nil {
				return err
			}
		}

		holder = d.Booking.Username
		if err := tx.DeleteBooking(ctx, d, ReasonUnbooked, s.clock.Now()); err != nil {
			return err
		}

		d.Booking = nil
		snap = desk.NewSnapshot(d, s.zone)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BookingReleased(string(ReasonUnbooked))
	s.log.InfoContext(ctx, "desk unbooked", "desk", key.String(), "username", holder)
	return snap, nil
}

func (s *service) ActiveForUser(ctx context.Context, username string) (*desk.Snapshot, error) {
	var snap *desk.Snapshot
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		holder, err := tx.FindUser(ctx, username)
		if err != nil {
			return err
		}
		d, err := tx.FindActiveBookingForUser(ctx, holder.ID)
		if err != nil {
			return err
		}
		if d == nil {
			return ErrNoActiveBooking
		}
		snap = desk.NewSnapshot(d, s.zone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *service) ReleaseExpired(ctx context.Context, key desk.Key, now time.Time) (bool, error) {
	var (
		released bool
		holder   string
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		d, err := tx.LockDesk(ctx, key)
		if err != nil {
			return err
		}
		// The booking may have been released or replaced since it was listed.
		if !d.IsBooked() || !Expired(d.Booking.EndTime, now, s.zone) {
			return nil
		}

		holder = d.Booking.Username
		if err := tx.DeleteBooking(ctx, d, ReasonExpired, now); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if released {
		s.metrics.BookingReleased(string(ReasonExpired))
		s.log.InfoContext(ctx, "expired booking released", "desk", key.String(), "username", holder)
	}
	return released, nil
}

var rejectionReasons = map[error]string{
	ErrInvalidDays:     "invalid_days",
	ErrUserNotFound:    "user_not_found",
	ErrDeskNotFound:    "desk_not_found",
	ErrDeskDisabled:    "desk_disabled",
	ErrDeskBooked:      "desk_booked",
	ErrUserHasBooking:  "user_has_booking",
	ErrNothingToUnbook: "nothing_to_unbook",
	ErrDeskOccupied:    "desk_occupied",
	ErrNotHolder:       "not_holder",
}

// reject counts a failed operation and logs failures that are not domain rejections.
func (s *service) reject(ctx context.Context, op string, err error) {
	for sentinel, reason := range rejectionReasons {
		if errors.Is(err, sentinel) {
			s.metrics.Rejected(op, reason)
			s.log.DebugContext(ctx, "booking operation rejected", "operation", op, "reason", reason)
			return
		}
	}
	s.metrics.Rejected(op, "error")
	s.log.ErrorContext(ctx, "booking operation failed", "operation", op, "error", err)
}
