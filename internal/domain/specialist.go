package domain

import (
	"fmt"
	"slices"
	"time"
)

type Specialist struct {
	ID             int64   `json:"id"`
	UserID         *int64  `json:"user_id,omitempty"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization,omitempty"`
	Bio            string  `json:"bio,omitempty"`
	ServiceIDs     []int64 `json:"service_ids"`
	RatingAverage  float64 `json:"rating_average"`
	RatingCount    int     `json:"rating_count"`
}

func (s Specialist) Offers(serviceID int64) bool {
	return slices.Contains(s.ServiceIDs, serviceID)
}

// ScheduleEntry is one recurring weekly working window.
// DayOfWeek follows time.Weekday: 0 is Sunday.
type ScheduleEntry struct {
	ID           int64  `json:"id"`
	SpecialistID int64  `json:"specialist_id"`
	DayOfWeek    int    `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Available    bool   `json:"available"`
}

// Bounds returns the entry window as offsets from midnight.
func (e ScheduleEntry) Bounds() (start, end time.Duration, err error) {
	if start, err = ParseTimeOfDay(e.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimeOfDay(e.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// EndOfDay is the "24:00" schedule bound.
const EndOfDay = "24:00"

// ParseTimeOfDay parses "HH:MM" into an offset from midnight. "24:00" is
// accepted as the end of the day.
func ParseTimeOfDay(v string) (time.Duration, error) {
	if v == EndOfDay {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
