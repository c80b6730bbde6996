// Package sweeper releases bookings whose last day has passed.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nekogravitycat/hotdesk-backend/internal/booking"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/metrics"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/clock"
)

// Lister lists the desks that currently hold a booking.
type Lister interface {
	ListDesksWithActiveBookings(ctx context.Context) ([]desk.Desk, error)
}

// Releaser releases a desk's booking if it is still expired.
type Releaser interface {
	ReleaseExpired(ctx context.Context, key desk.Key, now time.Time) (bool, error)
}

type Sweeper struct {
	lister   Lister
	releaser Releaser
	clock    clock.Clock
	zone     *time.Location
	interval time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics

	// mu keeps sweeps from overlapping when RunSweep is also called on demand.
	mu sync.Mutex
}

func New(
	lister Lister,
	releaser Releaser,
	clk clock.Clock,
	zone *time.Location,
	interval time.Duration,
	log *slog.Logger,
	m *metrics.Metrics,
) *Sweeper {
	return &Sweeper{
		lister:   lister,
		releaser: releaser,
		clock:    clk,
		zone:     zone,
		interval: interval,
		log:      log,
		metrics:  m,
	}
}

// RunSweep releases every expired booking and returns how many were released.
// A failure on one desk is logged and the sweep moves on; only a failure to
// list the booked desks is returned.
func (s *Sweeper) RunSweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	now := s.clock.Now()

	desks, err := s.lister.ListDesksWithActiveBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("list booked desks: %w", err)
	}

	var released, failed int
	for _, d := range desks {
		if ctx.Err() != nil {
			break
		}
		if d.Booking == nil || !booking.Expired(d.Booking.EndTime, now, s.zone) {
			continue
		}

		ok, err := s.releaser.ReleaseExpired(ctx, d.Key(), now)
		if err != nil {
			failed++
			s.log.WarnContext(ctx, "failed to release expired booking",
				"desk", d.Key().String(),
				"username", d.Booking.Username,
				"error", err,
			)
			continue
		}
		if ok {
			released++
		}
	}

	s.metrics.SweepCompleted(time.Since(started), released, failed)
	s.log.InfoContext(ctx, "sweep finished",
		"booked_desks", len(desks),
		"released", released,
		"failed", failed,
	)
	return released, nil
}

// Run sweeps once immediately and then every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.InfoContext(ctx, "sweeper started", "interval", s.interval.String())
	s.sweep(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.RunSweep(ctx); err != nil && ctx.Err() == nil {
		s.log.ErrorContext(ctx, "sweep failed", "error", err)
	}
}
