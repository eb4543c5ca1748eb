// Package engine computes the feasible lesson start times for one driver on one
// day: open windows from recurring hours and overrides, gaps around existing
// bookings, then a 15-minute grid scan constrained by buffers, travel times and
// per-segment/per-day travel caps.
package engine

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

const gridStep = 15 * time.Minute

// Request bundles everything needed to compute one driver's feasible slots.
// Bookings and Overrides are expected to be pre-filtered to the driver; the
// engine tolerates entries outside the target date or with non-scheduled status.
type Request struct {
	Date      time.Time
	Schedule  domain.DriverDaySchedule
	Bookings  []domain.Booking
	Overrides []domain.AvailabilityOverride
	Pickup    domain.Location
	Dropoff   domain.Location
}

// Engine is a stateless slot computer. Every call takes an immutable snapshot of
// its inputs; there is no shared state across invocations.
type Engine struct {
	travel domain.TravelCalculator
	logger *zap.Logger
	tracer trace.Tracer
}

// New constructs an Engine around the injected travel calculator.
func New(travel domain.TravelCalculator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		travel: travel,
		logger: logger,
		tracer: otel.Tracer("availability.engine"),
	}
}

// AvailableSlots returns the sorted, deduplicated lesson start times that are
// geometrically and temporally feasible for the request. "No availability" is an
// empty result, never an error: a missing service center or an out-of-radius
// pickup/dropoff short-circuits to zero slots.
func (e *Engine) AvailableSlots(ctx context.Context, req Request) ([]time.Time, error) {
	ctx, span := e.tracer.Start(ctx, "availability.compute")
	defer span.End()
	started := time.Now()

	slots, err := e.compute(ctx, req)
	switch {
	case err != nil:
		computeDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
	case len(slots) == 0:
		computeDuration.WithLabelValues("empty").Observe(time.Since(started).Seconds())
	default:
		computeDuration.WithLabelValues("ok").Observe(time.Since(started).Seconds())
	}
	return slots, err
}

func (e *Engine) compute(ctx context.Context, req Request) ([]time.Time, error) {
	sched := req.Schedule
	if sched.ServiceCenter == nil {
		e.logger.Debug("driver has no service center, no feasible slots")
		return nil, nil
	}
	center := *sched.ServiceCenter

	if radius := sched.ServiceRadiusKM; radius != nil {
		if e.travel.DistanceKM(center, req.Pickup) > *radius || e.travel.DistanceKM(center, req.Dropoff) > *radius {
			return nil, nil
		}
	}

	windows, err := OpenWindows(req.Date, sched, req.Overrides)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, nil
	}

	scheduled := req.Bookings[:0:0]
	for _, b := range req.Bookings {
		if b.Status == domain.BookingScheduled {
			scheduled = append(scheduled, b)
		}
	}

	plan, err := buildDayPlan(ctx, windows, center, scheduled, e.travel)
	if err != nil {
		return nil, err
	}

	var candidates []time.Time
	for _, gap := range plan.Gaps {
		found, err := e.scanGap(ctx, gap, plan, req)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}
	return dedupSorted(candidates), nil
}

// scanGap walks the 15-minute grid inside one gap and collects every start time
// passing the timing, segment-cap and day-cap checks.
func (e *Engine) scanGap(ctx context.Context, gap Gap, plan dayPlan, req Request) ([]time.Time, error) {
	sched := req.Schedule
	lesson := time.Duration(sched.LessonMinutes) * time.Minute
	buffer := time.Duration(sched.BufferMinutes) * time.Minute

	var feasible []time.Time
	for cand := roundUpToGrid(gap.Start.Add(buffer)); !cand.Add(lesson + buffer).After(gap.End); cand = cand.Add(gridStep) {
		// Both legs are always computed so the real values are on hand when a
		// boundary exemption does not apply.
		in, err := e.travel.Travel(ctx, gap.From, req.Pickup, cand)
		if err != nil {
			return nil, err
		}
		out, err := e.travel.Travel(ctx, req.Dropoff, gap.To, cand.Add(lesson))
		if err != nil {
			return nil, err
		}

		effIn, effOut := in, out
		if gap.FirstInWindow {
			effIn = domain.TravelEstimate{}
		}
		if gap.LastInWindow {
			effOut = domain.TravelEstimate{}
		}

		if !e.fits(gap, cand, lesson, buffer, in, out, effIn, effOut, plan, sched) {
			candidatesTotal.WithLabelValues("rejected").Inc()
			continue
		}
		candidatesTotal.WithLabelValues("feasible").Inc()
		feasible = append(feasible, cand)
	}
	return feasible, nil
}

func (e *Engine) fits(gap Gap, cand time.Time, lesson, buffer time.Duration, in, out, effIn, effOut domain.TravelEstimate, plan dayPlan, sched domain.DriverDaySchedule) bool {
	if cand.Before(gap.Start.Add(buffer + effIn.Duration())) {
		return false
	}
	if cand.Add(lesson + buffer + effOut.Duration()).After(gap.End) {
		return false
	}

	if !gap.FirstInWindow && exceedsSegment(in, sched) {
		return false
	}
	if !gap.LastInWindow && exceedsSegment(out, sched) {
		return false
	}

	dayMinutes := plan.BaselineMinutes - gap.BaselineMinutes + effIn.Minutes + effOut.Minutes
	dayKM := plan.BaselineKM - gap.BaselineKM + effIn.DistanceKM + effOut.DistanceKM
	if sched.DailyMaxMinutes != nil && dayMinutes > *sched.DailyMaxMinutes {
		return false
	}
	if sched.DailyMaxKM != nil && dayKM > *sched.DailyMaxKM {
		return false
	}
	return true
}

func exceedsSegment(leg domain.TravelEstimate, sched domain.DriverDaySchedule) bool {
	if sched.MaxSegmentMinutes != nil && leg.Minutes > *sched.MaxSegmentMinutes {
		return true
	}
	if sched.MaxSegmentKM != nil && leg.DistanceKM > *sched.MaxSegmentKM {
		return true
	}
	return false
}

// roundUpToGrid clears sub-minute precision and rounds up to the next grid
// boundary (:00/:15/:30/:45). A timestamp already on the grid is unchanged.
func roundUpToGrid(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	aligned := t.Truncate(gridStep)
	if aligned.Before(t) {
		aligned = aligned.Add(gridStep)
	}
	return aligned
}

func dedupSorted(slots []time.Time) []time.Time {
	if len(slots) == 0 {
		return nil
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	out := slots[:1]
	for _, s := range slots[1:] {
		if !s.Equal(out[len(out)-1]) {
			out = append(out, s)
		}
	}
	return out
}
