package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

// Gap is the idle interval between two consecutive commitments inside one open
// window. From/To are the end location of the earlier commitment and the start
// location of the later one. Baseline travel is the cost of driving directly
// between them with nothing booked in the gap; it seeds the day-total cap math.
type Gap struct {
	Interval
	From domain.Location
	To   domain.Location

	BaselineMinutes float64
	BaselineKM      float64

	// FirstInWindow/LastInWindow mark gaps adjoining a window edge. The commute
	// between the service center and the window edge is the driver's own time
	// and is exempt from segment and daily travel accounting on that side.
	FirstInWindow bool
	LastInWindow  bool
}

// dayPlan is the gap sequence for one day plus the travel totals the driver
// already incurs without any new booking.
type dayPlan struct {
	Gaps            []Gap
	BaselineMinutes float64
	BaselineKM      float64
}

// commitment is a booking or a synthetic window-edge marker.
type commitment struct {
	start, end time.Time
	startLoc   domain.Location
	endLoc     domain.Location
	edge       bool
}

// buildDayPlan interleaves each window's bookings between synthetic
// service-center commitments at the window edges and derives the gap sequence.
// Bookings are accepted in any order; they are sorted here.
func buildDayPlan(ctx context.Context, windows []Interval, center domain.Location, bookings []domain.Booking, travel domain.TravelCalculator) (dayPlan, error) {
	sorted := make([]domain.Booking, len(bookings))
	copy(sorted, bookings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var plan dayPlan
	for _, w := range windows {
		events := []commitment{{start: w.Start, end: w.Start, startLoc: center, endLoc: center, edge: true}}
		for _, b := range sorted {
			if b.Start.Before(w.Start) || b.End.After(w.End) {
				continue
			}
			if b.Pickup == nil || b.Dropoff == nil {
				return dayPlan{}, fmt.Errorf("booking %s: %w", b.ID, domain.ErrUnresolvedLocation)
			}
			events = append(events, commitment{start: b.Start, end: b.End, startLoc: *b.Pickup, endLoc: *b.Dropoff})
		}
		events = append(events, commitment{start: w.End, end: w.End, startLoc: center, endLoc: center, edge: true})

		for i := 1; i < len(events); i++ {
			prev, next := events[i-1], events[i]
			gap := Gap{
				Interval:      Interval{Start: prev.end, End: next.start},
				From:          prev.endLoc,
				To:            next.startLoc,
				FirstInWindow: prev.edge,
				LastInWindow:  next.edge,
			}
			if gap.Empty() {
				continue
			}
			// Edge gaps carry a single commute leg which is exempt from travel
			// accounting, so their baseline stays zero and no estimate is fetched.
			if !gap.FirstInWindow && !gap.LastInWindow {
				est, err := travel.Travel(ctx, gap.From, gap.To, gap.Start)
				if err != nil {
					return dayPlan{}, fmt.Errorf("baseline travel: %w", err)
				}
				gap.BaselineMinutes = est.Minutes
				gap.BaselineKM = est.DistanceKM
				plan.BaselineMinutes += est.Minutes
				plan.BaselineKM += est.DistanceKM
			}
			plan.Gaps = append(plan.Gaps, gap)
		}
	}
	return plan, nil
}
