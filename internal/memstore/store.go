// Package memstore is an in-process entity store used for local development
// and tests. It offers the same conditional-update guarantee as the
// PostgreSQL store: every write happens under one mutex and compares the
// stored status before applying a patch.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// Store holds every record in maps guarded by a single RWMutex.
type Store struct {
	mu           sync.RWMutex
	hotels       map[string]domain.Hotel
	rooms        map[string]domain.Room
	housekeepers map[string]domain.Housekeeper
	assignments  map[string]*domain.Assignment
	events       map[string]domain.Event
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		hotels:       make(map[string]domain.Hotel),
		rooms:        make(map[string]domain.Room),
		housekeepers: make(map[string]domain.Housekeeper),
		assignments:  make(map[string]*domain.Assignment),
		events:       make(map[string]domain.Event),
	}
}

func (s *Store) FindByID(ctx context.Context, kind domain.EntityKind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ok bool
	switch kind {
	case domain.KindHotel:
		_, ok = s.hotels[id]
	case domain.KindRoom:
		_, ok = s.rooms[id]
	case domain.KindHousekeeper:
		_, ok = s.housekeepers[id]
	case domain.KindAssignment:
		_, ok = s.assignments[id]
	}
	if !ok {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func (s *Store) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assignments[a.ID]; exists {
		return &domain.InvalidInputError{Field: "id", Reason: "already exists"}
	}
	if a.Version == 0 {
		a.Version = 1
	}
	s.assignments[a.ID] = a.Clone()
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindAssignment, ID: id}
	}
	return a.Clone(), nil
}

func (s *Store) ConditionalUpdateAssignment(ctx context.Context, id string, expected domain.Status, version int64, p domain.Patch) (*domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindAssignment, ID: id}
	}
	if a.Status != expected || a.Version != version {
		return nil, &domain.ConflictError{AssignmentID: id, Expected: expected, Version: version}
	}
	next := *a
	p.Apply(&next)
	next.Version++
	// Clone so the stored record never aliases the caller's patch timestamps.
	stored := next.Clone()
	s.assignments[id] = stored
	return stored.Clone(), nil
}

// QueryAssignments returns matches newest first.
func (s *Store) QueryAssignments(ctx context.Context, f domain.AssignmentFilter) ([]*domain.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []*domain.Assignment
	for _, a := range s.assignments {
		if f.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) CreateHotel(_ context.Context, h *domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels[h.ID] = *h
	return nil
}

func (s *Store) GetHotel(_ context.Context, id string) (*domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindHotel, ID: id}
	}
	return &h, nil
}

func (s *Store) CreateRoom(_ context.Context, r *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = *r
	return nil
}

func (s *Store) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindRoom, ID: id}
	}
	return &r, nil
}

func (s *Store) ListRooms(_ context.Context, hotelID string) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Room
	for _, r := range s.rooms {
		if r.HotelID == hotelID {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) CreateHousekeeper(_ context.Context, h *domain.Housekeeper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.housekeepers[h.ID] = *h
	return nil
}

func (s *Store) GetHousekeeper(_ context.Context, id string) (*domain.Housekeeper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.housekeepers[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindHousekeeper, ID: id}
	}
	return &h, nil
}

func (s *Store) ListHousekeepers(_ context.Context, hotelID string) ([]*domain.Housekeeper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Housekeeper
	for _, h := range s.housekeepers {
		if hotelID == "" || h.HotelID == hotelID {
			h := h
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RecordEvent keeps the first copy of every event ID.
func (s *Store) RecordEvent(ctx context.Context, ev *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.events[ev.ID]; !dup {
		s.events[ev.ID] = *ev
	}
	return nil
}

func (s *Store) ListEvents(_ context.Context, assignmentID string) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Event
	for _, ev := range s.events {
		if ev.AssignmentID == assignmentID {
			ev := ev
			out = append(out, &ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
