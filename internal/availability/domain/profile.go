package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DriverProfile is the driver row as stored. The source datastore keeps the
// optional numeric fields as text; they are coerced into typed optionals at the
// service boundary, not here.
type DriverProfile struct {
	ID       uuid.UUID
	SchoolID uuid.UUID

	ServiceCenter *Location
	WorkDayStart  string
	WorkDayEnd    string

	LessonDurationMinutes      string
	BufferMinutes              string
	ServiceRadiusKM            string
	MaxSegmentTravelTimeMin    string
	MaxSegmentTravelDistanceKM string
	DailyMaxTravelTimeMin      string
	DailyMaxTravelDistanceKM   string
}

// SchoolSettings carries the school-wide defaults a driver profile falls back
// to. Same text-typed optionals as DriverProfile.
type SchoolSettings struct {
	SchoolID uuid.UUID

	LessonDurationMinutes      string
	BufferMinutes              string
	ServiceRadiusKM            string
	MaxSegmentTravelTimeMin    string
	MaxSegmentTravelDistanceKM string
	DailyMaxTravelTimeMin      string
	DailyMaxTravelDistanceKM   string
}

// Repository exposes the tenant-scoped reads the availability service needs.
// Day queries use the UTC calendar day of the given timestamp.
type Repository interface {
	DriverProfile(ctx context.Context, schoolID, driverID uuid.UUID) (DriverProfile, error)
	SchoolSettings(ctx context.Context, schoolID uuid.UUID) (SchoolSettings, error)
	BookingsForDay(ctx context.Context, driverID uuid.UUID, day time.Time) ([]Booking, error)
	OverridesForDay(ctx context.Context, driverID uuid.UUID, day time.Time) ([]AvailabilityOverride, error)
}
