package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
)

// Constraint names from schema.sql.
const (
	constraintDeskUnique = "bookings_desk_unique"
	constraintUserUnique = "bookings_user_unique"
)

type pgxStore struct {
	pool *pgxpool.Pool
}

// NewPgxStore returns a Store backed by PostgreSQL.
func NewPgxStore(pool *pgxpool.Pool) Store {
	return &pgxStore{pool: pool}
}

func (s *pgxStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &pgxTx{tx: tx})
	})
}

func (s *pgxStore) ListDesksWithActiveBookings(ctx context.Context) ([]desk.Desk, error) {
	query, args, err := desk.SelectDesks().
		Where("b.id IS NOT NULL").
		OrderBy("b.end_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list booked desks query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booked desks failed: %w", err)
	}
	defer rows.Close()

	var desks []desk.Desk
	for rows.Next() {
		d, err := desk.ScanDesk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booked desk failed: %w", err)
		}
		desks = append(desks, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list booked desks failed: %w", err)
	}
	return desks, nil
}

type pgxTx struct {
	tx pgx.Tx
}

// LockDesk takes the row lock in its own statement so that the occupancy read
// afterwards sees bookings committed by whoever held the lock before us.
func (t *pgxTx) LockDesk(ctx context.Context, key desk.Key) (*desk.Desk, error) {
	const lockQuery = `
		SELECT d.id
		FROM public.desks d
		JOIN public.locations l ON l.id = d.location_id
		WHERE l.name = $1 AND d.name = $2
		FOR UPDATE OF d
	`

	var id string
	if err := t.tx.QueryRow(ctx, lockQuery, key.Location, key.Desk).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeskNotFound
		}
		return nil, fmt.Errorf("lock desk failed: %w", err)
	}

	query, args, err := desk.SelectDesks().Where(squirrel.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load desk query failed: %w", err)
	}

	d, err := desk.ScanDesk(t.tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("load desk failed: %w", err)
	}
	return d, nil
}

func (t *pgxTx) FindUser(ctx context.Context, username string) (*Holder, error) {
	var h Holder
	err := t.tx.QueryRow(ctx, `SELECT id, username FROM public.users WHERE username = $1`, username).
		Scan(&h.ID, &h.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user failed: %w", err)
	}
	return &h, nil
}

func (t *pgxTx) FindActiveBookingForUser(ctx context.Context, userID string) (*desk.Desk, error) {
	query, args, err := desk.SelectDesks().Where(squirrel.Eq{"b.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find active booking query failed: %w", err)
	}

	d, err := desk.ScanDesk(t.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active booking failed: %w", err)
	}
	return d, nil
}

func (t *pgxTx) InsertBooking(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("desk_id", "user_id", "start_time", "end_time").
		Values(b.DeskID, b.UserID, b.StartTime, b.EndTime).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&b.ID); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			switch e.ConstraintName {
			case constraintDeskUnique:
				return ErrDeskBooked
			case constraintUserUnique:
				return ErrUserHasBooking
			}
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (t *pgxTx) DeleteBooking(ctx context.Context, d *desk.Desk, reason ReleaseReason, at time.Time) error {
	if d.Booking == nil {
		return ErrNothingToUnbook
	}

	const query = `
		WITH released AS (
			DELETE FROM public.bookings
			WHERE id = $1
			RETURNING id, desk_id, user_id, start_time, end_time
		)
		INSERT INTO public.booking_history
			(id, desk_id, user_id, start_time, end_time, released_at, release_reason)
		SELECT id, desk_id, user_id, start_time, end_time, $2::timestamptz, $3::text
		FROM released
	`

	ct, err := t.tx.Exec(ctx, query, d.Booking.ID, at, string(reason))
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNothingToUnbook
	}
	return nil
}

func (t *pgxTx) UpdateDeskEnabled(ctx context.Context, deskID string, enabled bool) error {
	ct, err := t.tx.Exec(ctx, `UPDATE public.desks SET enabled = $1 WHERE id = $2`, enabled, deskID)
	if err != nil {
		return fmt.Errorf("update desk enabled failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrDeskNotFound
	}
	return nil
}
