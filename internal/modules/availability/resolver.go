// Package availability decides whether a specialist can take a booking at
// a given time, from the weekly schedule and the committed bookings.
package availability

import (
	"context"
	"sort"
	"time"

	"skincare/internal/domain"
	"skincare/internal/pkg/clock"
)

type Source interface {
	ScheduleForDay(ctx context.Context, specialistID int64, dayOfWeek int) ([]domain.ScheduleEntry, error)
	HasOverlappingBooking(ctx context.Context, specialistID int64, start, end time.Time, excludeBookingID int64) (bool, error)
	ActiveBookings(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.Booking, error)
}

type Policy struct {
	MinAdvance time.Duration
	MaxAdvance time.Duration
	Buffer     time.Duration
	// Location is the business time zone schedule entries are written in.
	Location *time.Location
}

type Request struct {
	SpecialistID int64
	Start        time.Time
	Duration     time.Duration
	// ExcludeBookingID keeps a booking from colliding with itself when it
	// is re-validated.
	ExcludeBookingID int64
	// Revalidate skips the advance-notice and horizon rules. Used when an
	// existing booking is confirmed or reassigned.
	Revalidate bool
}

type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Resolver struct {
	src    Source
	clock  clock.Clock
	policy Policy
}

func NewResolver(src Source, clk clock.Clock, policy Policy) *Resolver {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Resolver{src: src, clock: clk, policy: policy}
}

// With returns a copy reading from src, typically a transaction-bound store.
func (r *Resolver) With(src Source) *Resolver {
	c := *r
	c.src = src
	return &c
}

// IsAvailable applies, in order: duration, horizon, working hours, overlap
// with occupying bookings (widened by the buffer).
func (r *Resolver) IsAvailable(ctx context.Context, req Request) (bool, Reason, error) {
	if req.Duration <= 0 {
		return false, ReasonNone, ErrInvalidDuration
	}

	start := req.Start
	end := start.Add(req.Duration)

	if reason := r.checkHorizon(start, req.Revalidate); reason != ReasonNone {
		return false, reason, nil
	}

	localStart := start.In(r.policy.Location)
	localEnd := end.In(r.policy.Location)

	windows, err := r.windowsFor(ctx, req.SpecialistID, localStart)
	if err != nil {
		return false, ReasonNone, err
	}
	if len(windows) == 0 {
		return false, ReasonNoSchedule, nil
	}
	// An end at exactly midnight still belongs to the start's day.
	if !sameDay(localStart, localEnd.Add(-time.Nanosecond)) {
		return false, ReasonSpansMidnight, nil
	}
	if !fitsAny(windows, start, end) {
		return false, ReasonOutsideSchedule, nil
	}

	overlap, err := r.src.HasOverlappingBooking(ctx, req.SpecialistID,
		start.Add(-r.policy.Buffer), end.Add(r.policy.Buffer), req.ExcludeBookingID)
	if err != nil {
		return false, ReasonNone, err
	}
	if overlap {
		return false, ReasonOverlapsBooking, nil
	}
	return true, ReasonNone, nil
}

// CheckHorizon applies only the past, advance-notice and horizon rules to a
// new booking's start. Used for bookings created without a specialist.
func (r *Resolver) CheckHorizon(start time.Time) Reason {
	return r.checkHorizon(start, false)
}

func (r *Resolver) checkHorizon(start time.Time, revalidate bool) Reason {
	now := r.clock.Now()
	if start.Before(now) {
		return ReasonInPast
	}
	if revalidate {
		return ReasonNone
	}
	if start.Before(now.Add(r.policy.MinAdvance)) {
		return ReasonTooSoon
	}
	if r.policy.MaxAdvance > 0 && start.After(now.Add(r.policy.MaxAdvance)) {
		return ReasonTooFar
	}
	return ReasonNone
}

// FreeWindows lists the bookable gaps on a calendar date ("2006-01-02" in
// the business time zone): merged working windows minus occupying bookings.
// Time already past is cut off.
func (r *Resolver) FreeWindows(ctx context.Context, specialistID int64, date string) ([]Window, error) {
	day, err := time.ParseInLocation("2006-01-02", date, r.policy.Location)
	if err != nil {
		return nil, ErrInvalidDate
	}

	windows, err := r.windowsFor(ctx, specialistID, day)
	if err != nil {
		return nil, err
	}
	out := make([]Window, 0)
	if len(windows) == 0 {
		return out, nil
	}

	bookings, err := r.src.ActiveBookings(ctx, specialistID,
		windows[0].Start.Add(-r.policy.Buffer), windows[len(windows)-1].End.Add(r.policy.Buffer))
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	for _, w := range windows {
		busy := make([]Window, 0, len(bookings))
		for _, b := range bookings {
			busy = append(busy, Window{
				Start: b.StartTime.Add(-r.policy.Buffer).In(r.policy.Location),
				End:   b.EndTime.Add(r.policy.Buffer).In(r.policy.Location),
			})
		}
		for _, free := range subtractBusy(w.Start, w.End, busy) {
			if !free.End.After(now) {
				continue
			}
			if free.Start.Before(now) {
				free.Start = now.In(r.policy.Location)
			}
			out = append(out, free)
		}
	}
	return out, nil
}

// windowsFor returns the merged available windows of the local calendar
// day containing day.
func (r *Resolver) windowsFor(ctx context.Context, specialistID int64, day time.Time) ([]Window, error) {
	entries, err := r.src.ScheduleForDay(ctx, specialistID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(entries))
	for _, e := range entries {
		if !e.Available {
			continue
		}
		from, to, err := e.Bounds()
		if err != nil {
			return nil, err
		}
		if to <= from {
			continue
		}
		windows = append(windows, Window{Start: atOffset(day, from), End: atOffset(day, to)})
	}
	return mergeWindows(windows), nil
}

func atOffset(day time.Time, off time.Duration) time.Time {
	h := int(off / time.Hour)
	m := int(off % time.Hour / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// mergeWindows joins overlapping and touching windows.
func mergeWindows(ws []Window) []Window {
	sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })

	merged := make([]Window, 0, len(ws))
	for _, w := range ws {
		if n := len(merged); n > 0 && !w.Start.After(merged[n-1].End) {
			if w.End.After(merged[n-1].End) {
				merged[n-1].End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

func fitsAny(windows []Window, start, end time.Time) bool {
	for _, w := range windows {
		if !start.Before(w.Start) && !end.After(w.End) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func subtractBusy(open, close time.Time, busy []Window) []Window {
	if len(busy) == 0 {
		return []Window{{Start: open, End: close}}
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	merged := make([]Window, 0, len(busy))
	for _, s := range busy {
		if s.End.Before(open) || !s.Start.Before(close) {
			continue
		}
		if s.Start.Before(open) {
			s.Start = open
		}
		if s.End.After(close) {
			s.End = close
		}
		if !s.End.After(s.Start) {
			continue
		}

		if n := len(merged); n > 0 && !s.Start.After(merged[n-1].End) {
			if s.End.After(merged[n-1].End) {
				merged[n-1].End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}

	cur := open
	out := make([]Window, 0)
	for _, b := range merged {
		if b.Start.After(cur) {
			out = append(out, Window{Start: cur, End: b.Start})
		}
		if b.End.After(cur) {
			cur = b.End
		}
		if !cur.Before(close) {
			break
		}
	}
	if cur.Before(close) {
		out = append(out, Window{Start: cur, End: close})
	}
	return out
}
