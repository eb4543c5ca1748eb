package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/engine"
)

func override(kind domain.OverrideType, startHour, startMin, endHour, endMin int) domain.AvailabilityOverride {
	span := iv(startHour, startMin, endHour, endMin)
	return domain.AvailabilityOverride{Type: kind, Start: span.Start, End: span.End}
}

func TestOpenWindowsGenericHours(t *testing.T) {
	sched := domain.DriverDaySchedule{WorkDayStart: "09:00", WorkDayEnd: "17:00"}
	windows, err := engine.OpenWindows(intervalDay, sched, nil)
	require.NoError(t, err)
	require.Equal(t, []engine.Interval{iv(9, 0, 17, 0)}, windows)
}

func TestOpenWindowsWorkingHoursOverrideReplacesGeneric(t *testing.T) {
	sched := domain.DriverDaySchedule{WorkDayStart: "09:00", WorkDayEnd: "17:00"}
	overrides := []domain.AvailabilityOverride{
		override(domain.OverrideWorkingHours, 12, 0, 15, 0),
	}
	windows, err := engine.OpenWindows(intervalDay, sched, overrides)
	require.NoError(t, err)
	require.Equal(t, []engine.Interval{iv(12, 0, 15, 0)}, windows)
}

func TestOpenWindowsExtraOpenMergesIntoBase(t *testing.T) {
	sched := domain.DriverDaySchedule{WorkDayStart: "09:00", WorkDayEnd: "12:00"}
	overrides := []domain.AvailabilityOverride{
		override(domain.OverrideOpen, 11, 0, 14, 0),
		override(domain.OverrideOpen, 18, 0, 20, 0),
	}
	windows, err := engine.OpenWindows(intervalDay, sched, overrides)
	require.NoError(t, err)
	require.Equal(t, []engine.Interval{iv(9, 0, 14, 0), iv(18, 0, 20, 0)}, windows)
}

func TestOpenWindowsClosedAlwaysWins(t *testing.T) {
	sched := domain.DriverDaySchedule{WorkDayStart: "09:00", WorkDayEnd: "17:00"}
	overrides := []domain.AvailabilityOverride{
		override(domain.OverrideOpen, 8, 0, 18, 0),
		override(domain.OverrideClosed, 12, 0, 13, 0),
	}
	windows, err := engine.OpenWindows(intervalDay, sched, overrides)
	require.NoError(t, err)
	require.Equal(t, []engine.Interval{iv(8, 0, 12, 0), iv(13, 0, 18, 0)}, windows)
}

func TestOpenWindowsNoHoursNoOverrides(t *testing.T) {
	windows, err := engine.OpenWindows(intervalDay, domain.DriverDaySchedule{}, nil)
	require.NoError(t, err)
	require.Empty(t, windows)
}

func TestOpenWindowsIgnoresOtherDates(t *testing.T) {
	sched := domain.DriverDaySchedule{}
	other := override(domain.OverrideOpen, 9, 0, 12, 0)
	other.Start = other.Start.AddDate(0, 0, 1)
	other.End = other.End.AddDate(0, 0, 1)
	windows, err := engine.OpenWindows(intervalDay, sched, []domain.AvailabilityOverride{other})
	require.NoError(t, err)
	require.Empty(t, windows)
}

func TestOpenWindowsBadClockRejected(t *testing.T) {
	sched := domain.DriverDaySchedule{WorkDayStart: "9am", WorkDayEnd: "17:00"}
	_, err := engine.OpenWindows(intervalDay, sched, nil)
	require.Error(t, err)
}
