package engine

import (
	"fmt"
	"time"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

// dayAnchor truncates t to UTC midnight. The reference behaviour keys the whole
// computation to the UTC calendar day, even for schools in other timezones.
func dayAnchor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// parseClock combines an "HH:MM" time of day with the given UTC day anchor.
func parseClock(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return day.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute), nil
}

// OpenWindows derives the disjoint, sorted open intervals a driver can be
// scheduled in on the given date.
//
// Precedence: working_hours overrides for the date replace the generic
// WorkDayStart/End entirely; override_open ranges union into the base;
// override_closed ranges are subtracted last and win over every open source.
func OpenWindows(date time.Time, sched domain.DriverDaySchedule, overrides []domain.AvailabilityOverride) ([]Interval, error) {
	day := dayAnchor(date)
	nextDay := day.Add(24 * time.Hour)

	var working, extra, closed []Interval
	for _, ov := range overrides {
		start := ov.Start.UTC()
		if start.Before(day) || !start.Before(nextDay) {
			continue
		}
		iv := Interval{Start: start, End: ov.End.UTC()}
		switch ov.Type {
		case domain.OverrideWorkingHours:
			working = append(working, iv)
		case domain.OverrideOpen:
			extra = append(extra, iv)
		case domain.OverrideClosed:
			closed = append(closed, iv)
		}
	}

	base := working
	if len(base) == 0 && sched.WorkDayStart != "" && sched.WorkDayEnd != "" {
		start, err := parseClock(day, sched.WorkDayStart)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(day, sched.WorkDayEnd)
		if err != nil {
			return nil, err
		}
		base = []Interval{{Start: start, End: end}}
	}

	open := Union(append(base, extra...))
	return Subtract(open, closed), nil
}
