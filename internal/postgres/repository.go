package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

const assignmentColumns = `id, housekeeper_id, room_id, hotel_id, task, status,
	start_time, end_time, total_minutes, created_at, version`

// Repository is the PostgreSQL entity store. Assignment transitions are
// written with a single conditional UPDATE so concurrent writers cannot
// overwrite each other.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps a pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NewPool creates a pgxpool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Ping reports whether the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

var kindTables = map[domain.EntityKind]string{
	domain.KindHotel:       "hotels",
	domain.KindRoom:        "rooms",
	domain.KindHousekeeper: "housekeepers",
	domain.KindAssignment:  "assignments",
}

func (r *Repository) FindByID(ctx context.Context, kind domain.EntityKind, id string) error {
	table, ok := kindTables[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	if _, err := uuid.Parse(id); err != nil {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return storeErr("find "+string(kind), err)
	}
	if !exists {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// CreateAssignment inserts a and sets its Version to 1 when unset.
func (r *Repository) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	if a.Version == 0 {
		a.Version = 1
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assignments
			(id, housekeeper_id, room_id, hotel_id, task, status,
			 start_time, end_time, total_minutes, created_at, version)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		a.ID, a.HousekeeperID, a.RoomID, a.HotelID, a.Task, string(a.Status),
		a.StartTime, a.EndTime, a.TotalMinutes, a.CreatedAt, a.Version,
	)
	if err != nil {
		return storeErr("create assignment "+a.ID, err)
	}
	return nil
}

func (r *Repository) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Kind: domain.KindAssignment, ID: id}
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE id = $1
	`, id)

	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindAssignment, ID: id}
	}
	if err != nil {
		return nil, storeErr("get assignment "+id, err)
	}
	return a, nil
}

// ConditionalUpdateAssignment applies p only when the row still has status
// expected at the given version. When no row is updated a second query
// distinguishes a missing assignment from a concurrent modification.
func (r *Repository) ConditionalUpdateAssignment(ctx context.Context, id string, expected domain.Status, version int64, p domain.Patch) (*domain.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Kind: domain.KindAssignment, ID: id}
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE assignments
		SET status = $4, start_time = $5, end_time = $6, total_minutes = $7,
		    version = version + 1
		WHERE id = $1 AND status = $2 AND version = $3
		RETURNING `+assignmentColumns,
		id, string(expected), version, string(p.Status), p.StartTime, p.EndTime, p.TotalMinutes,
	)

	a, err := scanAssignment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeErr("update assignment "+id, err)
	}

	if err := r.FindByID(ctx, domain.KindAssignment, id); err != nil {
		return nil, err
	}
	return nil, &domain.ConflictError{AssignmentID: id, Expected: expected, Version: version}
}

// QueryAssignments pushes the filter down to SQL and returns rows newest first.
func (r *Repository) QueryAssignments(ctx context.Context, f domain.AssignmentFilter) ([]*domain.Assignment, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.HousekeeperID != "" {
		if _, err := uuid.Parse(f.HousekeeperID); err != nil {
			return nil, nil
		}
		where = append(where, "housekeeper_id = "+arg(f.HousekeeperID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if f.StartFrom != nil {
		where = append(where, "start_time >= "+arg(*f.StartFrom))
	}
	if f.StartTo != nil {
		where = append(where, "start_time <= "+arg(*f.StartTo))
	}

	var q strings.Builder
	q.WriteString("SELECT " + assignmentColumns + " FROM assignments")
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY created_at DESC, id")
	if f.Limit > 0 {
		q.WriteString(" LIMIT " + arg(f.Limit))
	}

	rows, err := r.pool.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, storeErr("query assignments", err)
	}
	defer rows.Close()

	var out []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, storeErr("scan assignment", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query assignments", err)
	}
	return out, nil
}

// scanAssignment reads an assignment row from any pgx row type.
func scanAssignment(row interface {
	Scan(...any) error
}) (*domain.Assignment, error) {
	var a domain.Assignment
	var status string
	err := row.Scan(
		&a.ID, &a.HousekeeperID, &a.RoomID, &a.HotelID, &a.Task, &status,
		&a.StartTime, &a.EndTime, &a.TotalMinutes, &a.CreatedAt, &a.Version,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.Status(status)
	return &a, nil
}

// storeErr classifies err: SQL errors reported by the server and context
// cancellation are wrapped as-is, anything else means the database could
// not be reached.
func storeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case "23503":
			return &domain.InvalidInputError{Reason: "references a missing entity: " + pgErr.ConstraintName}
		case "23505":
			return &domain.InvalidInputError{Reason: "duplicate value violates " + pgErr.ConstraintName}
		}
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return &domain.UnavailableError{Op: op, Err: err}
	}
}
