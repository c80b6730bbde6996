package desk

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotdesk-backend/internal/location"
)

type stubRepository struct {
	desks map[Key]*Desk
}

func (r *stubRepository) Create(_ context.Context, d *Desk) error {
	if d.LocationName != "HQ" {
		return ErrLocationNotFound
	}
	if _, ok := r.desks[d.Key()]; ok {
		return ErrNameTaken
	}
	d.ID = "desk-" + d.Name
	cp := *d
	r.desks[d.Key()] = &cp
	return nil
}

func (r *stubRepository) Get(_ context.Context, key Key) (*Desk, error) {
	d, ok := r.desks[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *stubRepository) List(_ context.Context, filter Filter) ([]*Desk, int, error) {
	var out []*Desk
	for k, d := range r.desks {
		if k.Location == filter.Location {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (r *stubRepository) Delete(_ context.Context, key Key) error {
	d, ok := r.desks[key]
	if !ok {
		return ErrNotFound
	}
	if d.IsBooked() {
		return ErrBooked
	}
	delete(r.desks, key)
	return nil
}

// stubLocations knows a single location, HQ.
type stubLocations struct {
	location.Service
}

func (stubLocations) Get(_ context.Context, name string) (*location.Location, error) {
	if name != "HQ" {
		return nil, location.ErrNotFound
	}
	return &location.Location{ID: "loc-hq", Name: "HQ"}, nil
}

func newTestService() (Service, *stubRepository) {
	repo := &stubRepository{desks: map[Key]*Desk{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, stubLocations{}, log), repo
}

func TestCreateDesk(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	d, err := svc.Create(ctx, CreateRequest{Location: "HQ", Name: " A1 ", Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "A1", d.Name)
	assert.True(t, d.Enabled)

	_, err = svc.Create(ctx, CreateRequest{Location: "HQ", Name: "A1"})
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.Create(ctx, CreateRequest{Location: "Nowhere", Name: "A1"})
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = svc.Create(ctx, CreateRequest{Location: "HQ", Name: ""})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestListDesksUnknownLocation(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.List(context.Background(), Filter{Location: "Nowhere"})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestDeleteBookedDeskConflicts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	_, err := svc.Create(ctx, CreateRequest{Location: "HQ", Name: "A1", Enabled: true})
	require.NoError(t, err)
	key := Key{Desk: "A1", Location: "HQ"}
	repo.desks[key].Booking = &Occupancy{Username: "alice"}

	assert.ErrorIs(t, svc.Delete(ctx, key), ErrBooked)

	repo.desks[key].Booking = nil
	require.NoError(t, svc.Delete(ctx, key))

	_, err = svc.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
