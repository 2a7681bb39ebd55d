package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// RecordEvent appends ev to the audit trail. Redelivered events with an ID
// already on record are ignored.
func (r *Repository) RecordEvent(ctx context.Context, ev *domain.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assignment_events
			(id, type, assignment_id, housekeeper_id, hotel_id, room_id,
			 status, total_minutes, occurred_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		ev.ID, string(ev.Type), ev.AssignmentID, ev.HousekeeperID, ev.HotelID, ev.RoomID,
		string(ev.Status), ev.TotalMinutes, ev.OccurredAt,
	)
	if err != nil {
		return storeErr("record event "+ev.ID, err)
	}
	return nil
}

// ListEvents returns the audit trail of one assignment, oldest first.
func (r *Repository) ListEvents(ctx context.Context, assignmentID string) ([]*domain.Event, error) {
	if _, err := uuid.Parse(assignmentID); err != nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, assignment_id, housekeeper_id, hotel_id, room_id,
		       status, total_minutes, occurred_at
		FROM assignment_events
		WHERE assignment_id = $1
		ORDER BY occurred_at ASC
	`, assignmentID)
	if err != nil {
		return nil, storeErr("list events "+assignmentID, err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var ev domain.Event
		var typ, status string
		if err := rows.Scan(
			&ev.ID, &typ, &ev.AssignmentID, &ev.HousekeeperID, &ev.HotelID, &ev.RoomID,
			&status, &ev.TotalMinutes, &ev.OccurredAt,
		); err != nil {
			return nil, storeErr("scan event", err)
		}
		ev.Type = domain.EventType(typ)
		ev.Status = domain.Status(status)
		out = append(out, &ev)
	}
	return out, rows.Err()
}
