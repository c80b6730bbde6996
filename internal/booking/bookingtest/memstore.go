// Package bookingtest provides an in-memory booking.Store for tests.
package bookingtest

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/hotdesk-backend/internal/booking"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
)

// HistoryEntry is an archived booking.
type HistoryEntry struct {
	Booking    booking.Booking
	ReleasedAt time.Time
	Reason     booking.ReleaseReason
}

type deskRow struct {
	id       string
	location string
	name     string
	enabled  bool
}

type state struct {
	users    map[string]string // id -> username
	desks    map[string]deskRow
	bookings map[string]booking.Booking // id -> booking
	history  []HistoryEntry
}

func (s state) clone() state {
	return state{
		users:    maps.Clone(s.users),
		desks:    maps.Clone(s.desks),
		bookings: maps.Clone(s.bookings),
		history:  append([]HistoryEntry(nil), s.history...),
	}
}

// MemStore keeps users, desks and bookings in memory. Transactions are
// serialized by a single mutex and roll back by restoring a copy of the
// state taken when they began. Uniqueness of a booking per desk and per user
// is enforced on insert, as the database constraints do.
type MemStore struct {
	mu sync.Mutex
	st state
}

var _ booking.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{st: state{
		users:    map[string]string{},
		desks:    map[string]deskRow{},
		bookings: map[string]booking.Booking{},
	}}
}

// AddUser registers username and returns its id.
func (m *MemStore) AddUser(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.st.users[id] = username
	return id
}

// AddDesk creates a desk and returns its id.
func (m *MemStore) AddDesk(location, name string, enabled bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.st.desks[id] = deskRow{id: id, location: location, name: name, enabled: enabled}
	return id
}

// Desk returns the committed state of the desk at key.
func (m *MemStore) Desk(key desk.Key) (*desk.Desk, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.st.findDesk(key)
	if !ok {
		return nil, false
	}
	return m.st.load(row), true
}

// BookingCount returns the number of active bookings.
func (m *MemStore) BookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.bookings)
}

// History returns the archived bookings in release order.
func (m *MemStore) History() []HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]HistoryEntry(nil), m.st.history...)
}

func (m *MemStore) InTx(ctx context.Context, fn func(ctx context.Context, tx booking.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.st.clone()
	err := fn(ctx, &memTx{st: &m.st})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.st = saved
		return err
	}
	return nil
}

func (m *MemStore) ListDesksWithActiveBookings(ctx context.Context) ([]desk.Desk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []desk.Desk
	for _, b := range m.st.bookings {
		out = append(out, *m.st.load(m.st.desks[b.DeskID]))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Booking.EndTime.Before(out[j].Booking.EndTime)
	})
	return out, nil
}

func (s *state) findDesk(key desk.Key) (deskRow, bool) {
	for _, row := range s.desks {
		if row.location == key.Location && row.name == key.Desk {
			return row, true
		}
	}
	return deskRow{}, false
}

func (s *state) load(row deskRow) *desk.Desk {
	d := &desk.Desk{
		ID:           row.id,
		LocationID:   row.location,
		LocationName: row.location,
		Name:         row.name,
		Enabled:      row.enabled,
	}
	for _, b := range s.bookings {
		if b.DeskID == row.id {
			d.Booking = &desk.Occupancy{
				ID:        b.ID,
				UserID:    b.UserID,
				Username:  s.users[b.UserID],
				StartTime: b.StartTime,
				EndTime:   b.EndTime,
			}
		}
	}
	return d
}

type memTx struct {
	st *state
}

func (t *memTx) LockDesk(ctx context.Context, key desk.Key) (*desk.Desk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, ok := t.st.findDesk(key)
	if !ok {
		return nil, booking.ErrDeskNotFound
	}
	return t.st.load(row), nil
}

func (t *memTx) FindUser(ctx context.Context, username string) (*booking.Holder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for id, name := range t.st.users {
		if name == username {
			return &booking.Holder{ID: id, Username: name}, nil
		}
	}
	return nil, booking.ErrUserNotFound
}

func (t *memTx) FindActiveBookingForUser(ctx context.Context, userID string) (*desk.Desk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, b := range t.st.bookings {
		if b.UserID == userID {
			return t.st.load(t.st.desks[b.DeskID]), nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *booking.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.EndTime.Before(b.StartTime) {
		return fmt.Errorf("insert booking: end %v before start %v", b.EndTime, b.StartTime)
	}
	for _, existing := range t.st.bookings {
		if existing.DeskID == b.DeskID {
			return booking.ErrDeskBooked
		}
		if existing.UserID == b.UserID {
			return booking.ErrUserHasBooking
		}
	}
	b.ID = uuid.NewString()
	t.st.bookings[b.ID] = *b
	return nil
}

func (t *memTx) DeleteBooking(ctx context.Context, d *desk.Desk, reason booking.ReleaseReason, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Booking == nil {
		return booking.ErrNothingToUnbook
	}
	b, ok := t.st.bookings[d.Booking.ID]
	if !ok {
		return booking.ErrNothingToUnbook
	}
	delete(t.st.bookings, b.ID)
	t.st.history = append(t.st.history, HistoryEntry{Booking: b, ReleasedAt: at, Reason: reason})
	return nil
}

func (t *memTx) UpdateDeskEnabled(ctx context.Context, deskID string, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, ok := t.st.desks[deskID]
	if !ok {
		return booking.ErrDeskNotFound
	}
	row.enabled = enabled
	t.st.desks[deskID] = row
	return nil
}
