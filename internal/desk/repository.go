package desk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, d *Desk) error
	Get(ctx context.Context, key Key) (*Desk, error)
	List(ctx context.Context, filter Filter) ([]*Desk, int, error)
	Delete(ctx context.Context, key Key) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// SelectDesks is the base query for desks with their location name and, when
// booked, the active booking and holder username.
func SelectDesks() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"d.id", "d.location_id", "l.name", "d.name", "d.enabled", "d.created_at",
		"b.id", "b.user_id", "u.username", "b.start_time", "b.end_time",
	).
		From("public.desks d").
		Join("public.locations l ON l.id = d.location_id").
		LeftJoin("public.bookings b ON b.desk_id = d.id").
		LeftJoin("public.users u ON u.id = b.user_id")
}

// ScanDesk scans a row produced by SelectDesks, plus any extra destinations.
func ScanDesk(row pgx.Row, extra ...any) (*Desk, error) {
	var (
		d                  Desk
		bookingID, userID  *string
		username           *string
		startTime, endTime *time.Time
	)
	dest := append([]any{
		&d.ID, &d.LocationID, &d.LocationName, &d.Name, &d.Enabled, &d.CreatedAt,
		&bookingID, &userID, &username, &startTime, &endTime,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if bookingID != nil {
		d.Booking = &Occupancy{
			ID:        *bookingID,
			UserID:    *userID,
			Username:  *username,
			StartTime: *startTime,
			EndTime:   *endTime,
		}
	}
	return &d, nil
}

func (r *pgxRepository) Create(ctx context.Context, d *Desk) error {
	const query = `
		INSERT INTO public.desks (location_id, name, enabled)
		SELECT id, $2::text, $3::boolean FROM public.locations WHERE name = $1
		RETURNING id, location_id, created_at
	`

	err := r.pool.QueryRow(ctx, query, d.LocationName, d.Name, d.Enabled).
		Scan(&d.ID, &d.LocationID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLocationNotFound
		}
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("create desk failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Get(ctx context.Context, key Key) (*Desk, error) {
	query, args, err := SelectDesks().
		Where(squirrel.Eq{"l.name": key.Location, "d.name": key.Desk}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get desk query failed: %w", err)
	}

	d, err := ScanDesk(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get desk failed: %w", err)
	}
	return d, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Desk, int, error) {
	query := SelectDesks().
		Column("count(*) OVER() AS total_count").
		Where(squirrel.Eq{"l.name": filter.Location})

	if filter.Enabled != nil {
		query = query.Where(squirrel.Eq{"d.enabled": *filter.Enabled})
	}
	if filter.Booked != nil {
		if *filter.Booked {
			query = query.Where("b.id IS NOT NULL")
		} else {
			query = query.Where("b.id IS NULL")
		}
	}

	orderBy := "d.name"
	if filter.SortBy != "" {
		// Whitelisted by the handler binding.
		orderBy = "d." + filter.SortBy
	}
	orderDir := "ASC"
	if strings.EqualFold(filter.SortOrder, "DESC") {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list desks query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list desks failed: %w", err)
	}
	defer rows.Close()

	var desks []*Desk
	var total int
	for rows.Next() {
		d, err := ScanDesk(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan desk failed: %w", err)
		}
		desks = append(desks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list desks failed: %w", err)
	}

	return desks, total, nil
}

// Delete removes a free desk. bookings.desk_id is ON DELETE RESTRICT, so a
// desk with an active booking fails with ErrBooked.
func (r *pgxRepository) Delete(ctx context.Context, key Key) error {
	const query = `
		DELETE FROM public.desks d
		USING public.locations l
		WHERE d.location_id = l.id AND l.name = $1 AND d.name = $2
	`

	ct, err := r.pool.Exec(ctx, query, key.Location, key.Desk)
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrBooked
		}
		return fmt.Errorf("delete desk failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
