package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/engine"
)

// stubTravel returns fixed travel costs and counts Travel invocations.
type stubTravel struct {
	minutes     float64
	km          float64
	distKM      float64
	travelCalls int
}

func (s *stubTravel) DistanceKM(_, _ domain.Location) float64 { return s.distKM }

func (s *stubTravel) Travel(_ context.Context, _, _ domain.Location, _ time.Time) (domain.TravelEstimate, error) {
	s.travelCalls++
	return domain.TravelEstimate{Minutes: s.minutes, DistanceKM: s.km}, nil
}

var (
	center  = domain.Location{Lat: 52.3702, Lng: 4.8952}
	pickup  = domain.Location{Lat: 52.3600, Lng: 4.9000}
	dropoff = domain.Location{Lat: 52.3500, Lng: 4.9100}
)

func at(hour, minute int) time.Time {
	return intervalDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func nineToFive() domain.DriverDaySchedule {
	return domain.DriverDaySchedule{
		ServiceCenter: &center,
		WorkDayStart:  "09:00",
		WorkDayEnd:    "17:00",
		LessonMinutes: 60,
	}
}

func booking(startHour, startMin, endHour, endMin int) domain.Booking {
	return domain.Booking{
		ID:      uuid.New(),
		Start:   at(startHour, startMin),
		End:     at(endHour, endMin),
		Pickup:  &pickup,
		Dropoff: &dropoff,
		Status:  domain.BookingScheduled,
	}
}

func request(sched domain.DriverDaySchedule) engine.Request {
	return engine.Request{
		Date:     intervalDay,
		Schedule: sched,
		Pickup:   pickup,
		Dropoff:  dropoff,
	}
}

func fptr(v float64) *float64 { return &v }

func TestEmptyDayYieldsFullGrid(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	slots, err := eng.AvailableSlots(context.Background(), request(nineToFive()))
	require.NoError(t, err)

	require.Len(t, slots, 29)
	require.Equal(t, at(9, 0), slots[0])
	require.Equal(t, at(16, 0), slots[len(slots)-1])
	for i, slot := range slots {
		require.Equal(t, at(9, 0).Add(time.Duration(i)*15*time.Minute), slot)
	}
}

func TestExistingBookingExcludesOverlap(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	req := request(nineToFive())
	req.Bookings = []domain.Booking{booking(10, 0, 11, 0)}

	slots, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)

	require.Contains(t, slots, at(9, 0))
	require.Contains(t, slots, at(11, 0))
	require.NotContains(t, slots, at(10, 0))
	require.NotContains(t, slots, at(9, 15))
}

func TestBookingOrderDoesNotMatter(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	req := request(nineToFive())
	req.Bookings = []domain.Booking{booking(14, 0, 15, 0), booking(10, 0, 11, 0)}

	slots, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.NotContains(t, slots, at(10, 0))
	require.NotContains(t, slots, at(14, 0))
	require.Contains(t, slots, at(11, 0))
}

func TestClosedOverrideBeatsWorkingHours(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)

	working := override(domain.OverrideWorkingHours, 9, 0, 17, 0)
	closed := override(domain.OverrideClosed, 9, 0, 17, 0)

	for _, overrides := range [][]domain.AvailabilityOverride{
		{working, closed},
		{closed, working},
	} {
		req := request(nineToFive())
		req.Overrides = overrides
		slots, err := eng.AvailableSlots(context.Background(), req)
		require.NoError(t, err)
		require.Empty(t, slots)
	}
}

func TestSegmentCapRejectsEverything(t *testing.T) {
	eng := engine.New(&stubTravel{minutes: 30, km: 12}, nil)
	sched := nineToFive()
	sched.MaxSegmentMinutes = fptr(10)
	req := request(sched)
	req.Bookings = []domain.Booking{booking(12, 0, 13, 0)}

	slots, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestWindowEdgeLegsExemptFromTravel(t *testing.T) {
	// Two hours of travel on every leg. An empty day keeps its full grid
	// because both edges of the single gap are window boundaries.
	eng := engine.New(&stubTravel{minutes: 120, km: 80}, nil)
	slots, err := eng.AvailableSlots(context.Background(), request(nineToFive()))
	require.NoError(t, err)
	require.Len(t, slots, 29)
	require.Contains(t, slots, at(9, 0))

	// The same travel cost next to a real booking pushes candidates out.
	req := request(nineToFive())
	req.Bookings = []domain.Booking{booking(12, 0, 13, 0)}
	slots, err = eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.NotContains(t, slots, at(13, 0))
	require.Contains(t, slots, at(15, 0))
}

func TestRadiusShortCircuitSkipsTravelLookups(t *testing.T) {
	calc := &stubTravel{distKM: 30}
	eng := engine.New(calc, nil)
	sched := nineToFive()
	sched.ServiceRadiusKM = fptr(5)

	slots, err := eng.AvailableSlots(context.Background(), request(sched))
	require.NoError(t, err)
	require.Empty(t, slots)
	require.Zero(t, calc.travelCalls)
}

func TestDailyTravelCap(t *testing.T) {
	// Bookings at 11:00 and 14:00 leave a middle gap whose baseline leg is
	// 20 minutes; inserting there swaps it for two 20-minute legs (total 40).
	newReq := func(cap float64) engine.Request {
		sched := nineToFive()
		sched.DailyMaxMinutes = fptr(cap)
		req := request(sched)
		req.Bookings = []domain.Booking{booking(11, 0, 12, 0), booking(14, 0, 15, 0)}
		return req
	}

	eng := engine.New(&stubTravel{minutes: 20, km: 5}, nil)

	slots, err := eng.AvailableSlots(context.Background(), newReq(45))
	require.NoError(t, err)
	require.Contains(t, slots, at(12, 30))

	slots, err = eng.AvailableSlots(context.Background(), newReq(30))
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestBufferShrinksGapUsage(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	sched := nineToFive()
	sched.BufferMinutes = 15
	req := request(sched)
	req.Bookings = []domain.Booking{booking(10, 0, 11, 0)}

	slots, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.NotContains(t, slots, at(11, 0))
	require.Contains(t, slots, at(11, 15))
}

func TestNoServiceCenterMeansNoSlots(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	sched := nineToFive()
	sched.ServiceCenter = nil

	slots, err := eng.AvailableSlots(context.Background(), request(sched))
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestCancelledBookingsIgnored(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	req := request(nineToFive())
	cancelled := booking(10, 0, 11, 0)
	cancelled.Status = domain.BookingCancelled
	req.Bookings = []domain.Booking{cancelled}

	slots, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, slots, at(10, 0))
}

func TestUnresolvedBookingLocationIsHardError(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	req := request(nineToFive())
	broken := booking(10, 0, 11, 0)
	broken.Pickup = nil
	req.Bookings = []domain.Booking{broken}

	_, err := eng.AvailableSlots(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrUnresolvedLocation)
}

func TestDeterministicOutput(t *testing.T) {
	eng := engine.New(&stubTravel{minutes: 7, km: 3}, nil)
	req := request(nineToFive())
	req.Bookings = []domain.Booking{booking(10, 0, 11, 0), booking(13, 30, 14, 30)}

	first, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	second, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestOutputSortedAndUnique(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	req := request(nineToFive())
	req.Overrides = []domain.AvailabilityOverride{
		override(domain.OverrideOpen, 7, 0, 8, 30),
	}
	req.Bookings = []domain.Booking{booking(11, 0, 12, 0)}

	slots, err := eng.AvailableSlots(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for i := 1; i < len(slots); i++ {
		require.True(t, slots[i-1].Before(slots[i]), "slots must be strictly ascending")
	}
}

func TestGridAlignsToQuarterHours(t *testing.T) {
	eng := engine.New(&stubTravel{}, nil)
	sched := nineToFive()
	sched.WorkDayStart = "09:10"
	slots, err := eng.AvailableSlots(context.Background(), request(sched))
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	require.Equal(t, at(9, 15), slots[0])
	for _, slot := range slots {
		require.Zero(t, slot.Minute()%15)
		require.Zero(t, slot.Second())
	}
}
