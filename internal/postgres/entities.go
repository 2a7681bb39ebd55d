package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

func (r *Repository) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hotels (id, name, address, total_rooms, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, h.ID, h.Name, h.Address, h.TotalRooms, h.CreatedAt)
	if err != nil {
		return storeErr("create hotel "+h.ID, err)
	}
	return nil
}

func (r *Repository) GetHotel(ctx context.Context, id string) (*domain.Hotel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Kind: domain.KindHotel, ID: id}
	}
	var h domain.Hotel
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, address, total_rooms, created_at
		FROM hotels WHERE id = $1
	`, id).Scan(&h.ID, &h.Name, &h.Address, &h.TotalRooms, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindHotel, ID: id}
	}
	if err != nil {
		return nil, storeErr("get hotel "+id, err)
	}
	return &h, nil
}

func (r *Repository) CreateRoom(ctx context.Context, rm *domain.Room) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rooms (id, hotel_id, number, type, floor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rm.ID, rm.HotelID, rm.Number, rm.Type, rm.Floor, rm.CreatedAt)
	if err != nil {
		return storeErr("create room "+rm.ID, err)
	}
	return nil
}

func (r *Repository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Kind: domain.KindRoom, ID: id}
	}
	var rm domain.Room
	err := r.pool.QueryRow(ctx, `
		SELECT id, hotel_id, number, type, floor, created_at
		FROM rooms WHERE id = $1
	`, id).Scan(&rm.ID, &rm.HotelID, &rm.Number, &rm.Type, &rm.Floor, &rm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindRoom, ID: id}
	}
	if err != nil {
		return nil, storeErr("get room "+id, err)
	}
	return &rm, nil
}

func (r *Repository) ListRooms(ctx context.Context, hotelID string) ([]*domain.Room, error) {
	if _, err := uuid.Parse(hotelID); err != nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, hotel_id, number, type, floor, created_at
		FROM rooms WHERE hotel_id = $1
		ORDER BY number
	`, hotelID)
	if err != nil {
		return nil, storeErr("list rooms", err)
	}
	defer rows.Close()

	var out []*domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.HotelID, &rm.Number, &rm.Type, &rm.Floor, &rm.CreatedAt); err != nil {
			return nil, storeErr("scan room", err)
		}
		out = append(out, &rm)
	}
	return out, rows.Err()
}

func (r *Repository) CreateHousekeeper(ctx context.Context, h *domain.Housekeeper) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO housekeepers (id, hotel_id, name, email, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, h.ID, h.HotelID, h.Name, h.Email, h.IsActive, h.CreatedAt)
	if err != nil {
		return storeErr("create housekeeper "+h.ID, err)
	}
	return nil
}

func (r *Repository) GetHousekeeper(ctx context.Context, id string) (*domain.Housekeeper, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Kind: domain.KindHousekeeper, ID: id}
	}
	var h domain.Housekeeper
	err := r.pool.QueryRow(ctx, `
		SELECT id, hotel_id, name, email, is_active, created_at
		FROM housekeepers WHERE id = $1
	`, id).Scan(&h.ID, &h.HotelID, &h.Name, &h.Email, &h.IsActive, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: domain.KindHousekeeper, ID: id}
	}
	if err != nil {
		return nil, storeErr("get housekeeper "+id, err)
	}
	return &h, nil
}

// ListHousekeepers returns every housekeeper when hotelID is empty.
func (r *Repository) ListHousekeepers(ctx context.Context, hotelID string) ([]*domain.Housekeeper, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if hotelID == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT id, hotel_id, name, email, is_active, created_at
			FROM housekeepers ORDER BY name
		`)
	} else {
		if _, perr := uuid.Parse(hotelID); perr != nil {
			return nil, nil
		}
		rows, err = r.pool.Query(ctx, `
			SELECT id, hotel_id, name, email, is_active, created_at
			FROM housekeepers WHERE hotel_id = $1 ORDER BY name
		`, hotelID)
	}
	if err != nil {
		return nil, storeErr("list housekeepers", err)
	}
	defer rows.Close()

	var out []*domain.Housekeeper
	for rows.Next() {
		var h domain.Housekeeper
		if err := rows.Scan(&h.ID, &h.HotelID, &h.Name, &h.Email, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, storeErr("scan housekeeper", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}
