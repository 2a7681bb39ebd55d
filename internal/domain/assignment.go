package domain

import "time"

// Status is the lifecycle position of an assignment.
type Status string

const (
	StatusDirty      Status = "Dirty"
	StatusInProgress Status = "In Progress"
	StatusClean      Status = "Clean"
	StatusInspected  Status = "Inspected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDirty, StatusInProgress, StatusClean, StatusInspected:
		return true
	}
	return false
}

// IsCompleted returns true for statuses that count towards reports.
func (s Status) IsCompleted() bool {
	return s == StatusClean || s == StatusInspected
}

// Assignment is a single cleaning task linking one housekeeper, one room and one hotel.
type Assignment struct {
	ID            string     `json:"id"`
	HousekeeperID string     `json:"housekeeperId"`
	RoomID        string     `json:"roomId"`
	HotelID       string     `json:"hotelId"`
	Task          string     `json:"task"`
	Status        Status     `json:"status"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	TotalMinutes  int        `json:"totalMinutes"`
	CreatedAt     time.Time  `json:"createdAt"`
	// Version starts at 1 and increases with every stored transition.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so callers can mutate timestamps freely.
func (a *Assignment) Clone() *Assignment {
	c := *a
	if a.StartTime != nil {
		t := *a.StartTime
		c.StartTime = &t
	}
	if a.EndTime != nil {
		t := *a.EndTime
		c.EndTime = &t
	}
	return &c
}

// Patch is the mutable part of an assignment written by a transition.
// Nil timestamps clear the stored value.
type Patch struct {
	Status       Status
	StartTime    *time.Time
	EndTime      *time.Time
	TotalMinutes int
}

// Apply copies the patch onto a.
func (p Patch) Apply(a *Assignment) {
	a.Status = p.Status
	a.StartTime = p.StartTime
	a.EndTime = p.EndTime
	a.TotalMinutes = p.TotalMinutes
}

// AssignmentFilter selects assignments from the entity store.
// Zero values mean "no constraint". The time range applies to StartTime and is inclusive.
type AssignmentFilter struct {
	HousekeeperID string
	Statuses      []Status
	StartFrom     *time.Time
	StartTo       *time.Time
	Limit         int
}

// Matches reports whether a satisfies the filter. Stores that cannot push the
// filter down to a query use it directly.
func (f AssignmentFilter) Matches(a *Assignment) bool {
	if f.HousekeeperID != "" && a.HousekeeperID != f.HousekeeperID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.StartFrom != nil || f.StartTo != nil {
		if a.StartTime == nil {
			return false
		}
		if f.StartFrom != nil && a.StartTime.Before(*f.StartFrom) {
			return false
		}
		if f.StartTo != nil && a.StartTime.After(*f.StartTo) {
			return false
		}
	}
	return true
}

// EntityKind names a record type held by the entity store.
type EntityKind string

const (
	KindHotel       EntityKind = "hotel"
	KindRoom        EntityKind = "room"
	KindHousekeeper EntityKind = "housekeeper"
	KindAssignment  EntityKind = "assignment"
)

type Hotel struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	TotalRooms int       `json:"totalRooms"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Room struct {
	ID        string    `json:"id"`
	HotelID   string    `json:"hotelId"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Floor     int       `json:"floor"`
	CreatedAt time.Time `json:"createdAt"`
}

type Housekeeper struct {
	ID        string    `json:"id"`
	HotelID   string    `json:"hotelId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventType identifies a lifecycle event published after a successful write.
type EventType string

const (
	EventCreated   EventType = "assignment.created"
	EventStarted   EventType = "assignment.started"
	EventFinished  EventType = "assignment.finished"
	EventInspected EventType = "assignment.inspected"
	EventReopened  EventType = "assignment.reopened"
)

// Event records one assignment lifecycle change.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	AssignmentID  string    `json:"assignmentId"`
	HousekeeperID string    `json:"housekeeperId"`
	HotelID       string    `json:"hotelId"`
	RoomID        string    `json:"roomId"`
	Status        Status    `json:"status"`
	TotalMinutes  int       `json:"totalMinutes"`
	OccurredAt    time.Time `json:"occurredAt"`
}
