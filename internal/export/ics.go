package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// Schedule describes one housekeeper's calendar feed.
type Schedule struct {
	Housekeeper *domain.Housekeeper
	// Rooms maps room IDs to room numbers for event titles.
	Rooms       map[string]string
	Assignments []*domain.Assignment
	Now         time.Time
}

// ICS renders every started assignment as a VEVENT. Finished work spans
// startTime to endTime; work still in progress ends at Now.
func ICS(s Schedule) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//hotelrover//housekeeping schedule//EN")
	cal.SetName("Housekeeping: " + s.Housekeeper.Name)

	for _, a := range s.Assignments {
		if a.StartTime == nil {
			continue
		}
		end := s.Now
		if a.EndTime != nil {
			end = *a.EndTime
		}
		room := s.Rooms[a.RoomID]
		if room == "" {
			room = a.RoomID
		}

		ev := cal.AddEvent(a.ID + "@hotelrover")
		ev.SetDtStampTime(s.Now.UTC())
		ev.SetCreatedTime(a.CreatedAt.UTC())
		ev.SetStartAt(a.StartTime.UTC())
		ev.SetEndAt(end.UTC())
		ev.SetSummary(fmt.Sprintf("Room %s: %s", room, a.Task))
		ev.SetDescription(fmt.Sprintf("Status: %s. Minutes: %d.", a.Status, a.TotalMinutes))
		ev.SetStatus(eventStatus(a.Status))
	}
	return cal.Serialize()
}

func eventStatus(s domain.Status) ics.ObjectStatus {
	if s.IsCompleted() {
		return ics.ObjectStatusConfirmed
	}
	return ics.ObjectStatusTentative
}
