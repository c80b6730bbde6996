package booking_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotdesk-backend/internal/booking"
	"github.com/nekogravitycat/hotdesk-backend/internal/db"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/clock"
)

// setupPostgres connects to TEST_DB_DSN, applies the schema and empties the tables.
// Tests using it are skipped when no database is configured.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE public.booking_history, public.bookings, public.desks, public.locations, public.users CASCADE`)
	require.NoError(t, err)

	return pool
}

func seedPostgres(t *testing.T, pool *pgxpool.Pool, users []string, desks ...string) {
	t.Helper()
	ctx := context.Background()

	for _, u := range users {
		_, err := pool.Exec(ctx, `INSERT INTO public.users (username, password_hash) VALUES ($1, 'x')`, u)
		require.NoError(t, err)
	}

	var locID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO public.locations (name) VALUES ($1) RETURNING id`, roomA).Scan(&locID))
	for _, d := range desks {
		_, err := pool.Exec(ctx, `INSERT INTO public.desks (location_id, name) VALUES ($1, $2)`, locID, d)
		require.NoError(t, err)
	}
}

func TestPgxStoreBookingLifecycle(t *testing.T) {
	pool := setupPostgres(t)
	seedPostgres(t, pool, []string{"alice", "bob"}, "Desk 1", "Desk 2")

	ctx := context.Background()
	svc := booking.NewService(booking.NewPgxStore(pool), clock.Real(), time.UTC,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	snap, err := svc.Book(ctx, "alice", desk1, 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", *snap.Username)

	_, err = svc.Book(ctx, "bob", desk1, 1)
	assert.ErrorIs(t, err, booking.ErrDeskBooked)

	_, err = svc.Book(ctx, "alice", desk2, 1)
	assert.ErrorIs(t, err, booking.ErrUserHasBooking)

	_, err = svc.SetEnabled(ctx, desk1, false)
	assert.ErrorIs(t, err, booking.ErrDeskOccupied)

	snap, err = svc.Unbook(ctx, desk1)
	require.NoError(t, err)
	assert.Nil(t, snap.Username)

	var reason string
	require.NoError(t, pool.QueryRow(ctx, `SELECT release_reason FROM public.booking_history`).Scan(&reason))
	assert.Equal(t, string(booking.ReasonUnbooked), reason)
}

func TestPgxStoreConcurrentBookSameDesk(t *testing.T) {
	pool := setupPostgres(t)
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	seedPostgres(t, pool, users, "Desk 1")

	ctx := context.Background()
	svc := booking.NewService(booking.NewPgxStore(pool), clock.Real(), time.UTC,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		i, u := i, u
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Book(ctx, u, desk1, 1)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, booking.ErrDeskBooked)
	}
	assert.Equal(t, 1, ok)

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.bookings`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestPgxStoreUniqueUserConstraint(t *testing.T) {
	pool := setupPostgres(t)
	seedPostgres(t, pool, []string{"alice"}, "Desk 1", "Desk 2")

	ctx := context.Background()
	store := booking.NewPgxStore(pool)
	now := time.Now()

	insert := func(key desk.Key) error {
		return store.InTx(ctx, func(ctx context.Context, tx booking.Tx) error {
			holder, err := tx.FindUser(ctx, "alice")
			if err != nil {
				return err
			}
			d, err := tx.LockDesk(ctx, key)
			if err != nil {
				return err
			}
			return tx.InsertBooking(ctx, &booking.Booking{
				DeskID: d.ID, UserID: holder.ID, StartTime: now, EndTime: now,
			})
		})
	}

	require.NoError(t, insert(desk1))
	assert.ErrorIs(t, insert(desk2), booking.ErrUserHasBooking)

	desks, err := store.ListDesksWithActiveBookings(ctx)
	require.NoError(t, err)
	require.Len(t, desks, 1)
	assert.Equal(t, "alice", desks[0].Booking.Username)
}
