package location

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for locations.
type Repository interface {
	Create(ctx context.Context, loc *Location) error
	GetByName(ctx context.Context, name string) (*Location, error)
	List(ctx context.Context, filter LocationFilter) ([]*Location, int, error)
	Rename(ctx context.Context, oldName, newName string) error
	Delete(ctx context.Context, name string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// mapWriteError translates constraint violations raised by writes on locations.
func mapWriteError(err error) error {
	var e *pgconn.PgError
	if errors.As(err, &e) {
		switch e.Code {
		case pgerrcode.UniqueViolation:
			return ErrNameTaken
		case pgerrcode.ForeignKeyViolation:
			return ErrNotEmpty
		}
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, loc *Location) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.locations").
		Columns("name").
		Values(loc.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create location query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&loc.ID, &loc.CreatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create location failed: %w", err)
	}
	return nil
}

func selectLocations() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(
		"l.id", "l.name", "l.created_at",
		"(SELECT count(*) FROM public.desks d WHERE d.location_id = l.id) AS desk_count",
	).From("public.locations l")
}

func (r *pgxRepository) GetByName(ctx context.Context, name string) (*Location, error) {
	query, args, err := selectLocations().Where(squirrel.Eq{"l.name": name}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get location query failed: %w", err)
	}

	var l Location
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.DeskCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get location failed: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) List(ctx context.Context, filter LocationFilter) ([]*Location, int, error) {
	query := selectLocations().Column("count(*) OVER() AS total_count")

	if filter.Keyword != "" {
		query = query.Where(squirrel.ILike{"l.name": "%" + filter.Keyword + "%"})
	}

	orderBy := "l.name"
	if filter.SortBy != "" {
		// Safe to prepend l. as we only allow specific fields in the handler validation
		orderBy = "l." + filter.SortBy
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
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list locations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations failed: %w", err)
	}
	defer rows.Close()

	var locations []*Location
	var total int

	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.DeskCount, &total); err != nil {
			return nil, 0, fmt.Errorf("scan location failed: %w", err)
		}
		locations = append(locations, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list locations failed: %w", err)
	}

	return locations, total, nil
}

func (r *pgxRepository) Rename(ctx context.Context, oldName, newName string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.locations").
		Set("name", newName).
		Where(squirrel.Eq{"name": oldName}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rename location query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("rename location failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an empty location. desks.location_id is ON DELETE RESTRICT,
// so a location that still owns desks fails with ErrNotEmpty.
func (r *pgxRepository) Delete(ctx context.Context, name string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.locations").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete location query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("delete location failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
