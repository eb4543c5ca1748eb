package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

// MemoryRepository is an in-memory domain.Repository suitable for tests and
// local demos. Lookups are tenant-scoped: a driver queried under the wrong
// school behaves as missing.
type MemoryRepository struct {
	mu        sync.RWMutex
	profiles  map[uuid.UUID]domain.DriverProfile
	settings  map[uuid.UUID]domain.SchoolSettings
	bookings  map[uuid.UUID][]domain.Booking
	overrides map[uuid.UUID][]domain.AvailabilityOverride
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles:  make(map[uuid.UUID]domain.DriverProfile),
		settings:  make(map[uuid.UUID]domain.SchoolSettings),
		bookings:  make(map[uuid.UUID][]domain.Booking),
		overrides: make(map[uuid.UUID][]domain.AvailabilityOverride),
	}
}

// PutDriverProfile stores or replaces a driver profile.
func (m *MemoryRepository) PutDriverProfile(profile domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
}

// PutSchoolSettings stores or replaces a school's defaults.
func (m *MemoryRepository) PutSchoolSettings(settings domain.SchoolSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.SchoolID] = settings
}

// AddBooking appends a booking for its driver.
func (m *MemoryRepository) AddBooking(booking domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.DriverID] = append(m.bookings[booking.DriverID], booking)
}

// AddOverride appends an availability override for its driver.
func (m *MemoryRepository) AddOverride(ov domain.AvailabilityOverride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[ov.DriverID] = append(m.overrides[ov.DriverID], ov)
}

// DriverProfile returns the profile when it belongs to the given school.
func (m *MemoryRepository) DriverProfile(_ context.Context, schoolID, driverID uuid.UUID) (domain.DriverProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[driverID]
	if !ok || profile.SchoolID != schoolID {
		return domain.DriverProfile{}, domain.ErrNotFound
	}
	return profile, nil
}

// SchoolSettings returns the school defaults, or zero settings when none exist.
func (m *MemoryRepository) SchoolSettings(_ context.Context, schoolID uuid.UUID) (domain.SchoolSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[schoolID], nil
}

// BookingsForDay returns the driver's scheduled bookings starting on the UTC
// day of the given timestamp.
func (m *MemoryRepository) BookingsForDay(_ context.Context, driverID uuid.UUID, day time.Time) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Booking
	for _, b := range m.bookings[driverID] {
		if b.Status == domain.BookingScheduled && sameUTCDay(b.Start, day) {
			out = append(out, b)
		}
	}
	return out, nil
}

// OverridesForDay returns the driver's overrides starting on the UTC day of the
// given timestamp.
func (m *MemoryRepository) OverridesForDay(_ context.Context, driverID uuid.UUID, day time.Time) ([]domain.AvailabilityOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.AvailabilityOverride
	for _, ov := range m.overrides[driverID] {
		if sameUTCDay(ov.Start, day) {
			out = append(out, ov)
		}
	}
	return out, nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
