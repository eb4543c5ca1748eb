package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates a missing or tenant-mismatched entity.
var ErrNotFound = errors.New("not found")

// ErrUnresolvedLocation indicates a booking reached the engine without resolved
// pickup/dropoff coordinates. Silently skipping such a booking could double-book
// the driver, so this is a hard data-integrity error.
var ErrUnresolvedLocation = errors.New("booking has unresolved location")

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TravelEstimate is a driving-time estimate for one leg.
type TravelEstimate struct {
	Minutes    float64 `json:"minutes"`
	DistanceKM float64 `json:"distance_km"`
}

// Duration converts the estimate to a time.Duration.
func (e TravelEstimate) Duration() time.Duration {
	return time.Duration(e.Minutes * float64(time.Minute))
}

// TravelCalculator estimates travel cost between coordinates. DistanceKM is a
// pure great-circle distance used for radius checks. Travel may consult a remote
// traffic-aware source; implementations must degrade to a local estimate rather
// than fail, so slot computation is never aborted by an estimation error.
type TravelCalculator interface {
	DistanceKM(from, to Location) float64
	Travel(ctx context.Context, from, to Location, departAt time.Time) (TravelEstimate, error)
}

// OverrideType discriminates availability override records.
type OverrideType string

const (
	OverrideWorkingHours OverrideType = "working_hours"
	OverrideOpen         OverrideType = "override_open"
	OverrideClosed       OverrideType = "override_closed"
)

// AvailabilityOverride is one date-specific exception to a driver's recurring
// working hours. Closed ranges are authoritative over every open source.
type AvailabilityOverride struct {
	ID       uuid.UUID
	DriverID uuid.UUID
	Type     OverrideType
	Start    time.Time
	End      time.Time
}

// BookingStatus tracks a lesson booking's lifecycle.
type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a committed lesson occupying [Start, End) with resolved pickup and
// dropoff coordinates. Resolving address ids to coordinates happens before a
// booking reaches this package.
type Booking struct {
	ID        uuid.UUID
	DriverID  uuid.UUID
	StudentID uuid.UUID
	Start     time.Time
	End       time.Time
	Pickup    *Location
	Dropoff   *Location
	Status    BookingStatus
}

// DriverDaySchedule is the resolved working set for one driver on one date,
// assembled by the service layer from the driver profile and school settings.
// Nil pointer fields mean "unset": no radius restriction, no travel cap.
type DriverDaySchedule struct {
	ServiceCenter *Location

	// WorkDayStart/End are "HH:MM" times of day defining the default recurring
	// window when no working_hours override applies. Empty means no default.
	WorkDayStart string
	WorkDayEnd   string

	LessonMinutes int
	BufferMinutes int

	ServiceRadiusKM   *float64
	MaxSegmentMinutes *float64
	MaxSegmentKM      *float64
	DailyMaxMinutes   *float64
	DailyMaxKM        *float64
}

// EventType labels availability events.
type EventType string

const (
	EventSlotsComputed EventType = "availability.computed"
	EventSlotHeld      EventType = "availability.slot_held"
	EventSlotReleased  EventType = "availability.slot_released"
)

// Event is published when availability is computed or a slot hold changes.
type Event struct {
	ID        int64          `json:"id,omitempty"`
	SchoolID  uuid.UUID      `json:"school_id"`
	DriverID  uuid.UUID      `json:"driver_id"`
	Type      EventType      `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventPublisher pushes availability events to interested subsystems
// (notifications, audit). Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
