// Package service orchestrates availability requests: it resolves the driver's
// working set from storage, runs the slot engine and manages slot holds.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/engine"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/hold"
	"github.com/AliEdi10/artinbooking-sub001/pkg/coerce"
)

// DefaultLessonMinutes applies when neither the driver profile nor the school
// settings define a lesson duration.
const DefaultLessonMinutes = 60

// ErrSlotTaken indicates another student already holds the requested slot.
var ErrSlotTaken = errors.New("slot already held")

// ErrSlotInfeasible indicates the requested slot is not in the feasible set
// (it was never offered, or the day changed since it was).
var ErrSlotInfeasible = errors.New("slot not feasible")

// Service wires the engine to its collaborators.
type Service struct {
	repo    domain.Repository
	engine  *engine.Engine
	holds   hold.Store
	events  domain.EventPublisher
	clock   domain.Clock
	logger  *zap.Logger
	holdTTL time.Duration
}

// New constructs a Service. holds and events may be nil, disabling those paths.
func New(repo domain.Repository, eng *engine.Engine, holds hold.Store, events domain.EventPublisher, clock domain.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, engine: eng, holds: holds, events: events, clock: clock, logger: logger, holdTTL: 5 * time.Minute}
}

// SlotsQuery identifies one availability request.
type SlotsQuery struct {
	SchoolID uuid.UUID
	DriverID uuid.UUID
	Date     time.Time
	Pickup   domain.Location
	Dropoff  domain.Location
}

// AvailableSlots loads the driver's day from storage and returns the feasible
// lesson start times, sorted ascending.
func (s *Service) AvailableSlots(ctx context.Context, q SlotsQuery) ([]time.Time, error) {
	req, err := s.assemble(ctx, q)
	if err != nil {
		return nil, err
	}

	slots, err := s.engine.AvailableSlots(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("compute slots: %w", err)
	}

	s.publish(ctx, q, domain.EventSlotsComputed, map[string]any{"slot_count": len(slots)})
	return slots, nil
}

// HoldSlot re-validates the requested start time against a fresh computation and
// acquires a TTL'd hold on it for the student.
func (s *Service) HoldSlot(ctx context.Context, q SlotsQuery, slot time.Time, studentID uuid.UUID) error {
	slots, err := s.AvailableSlots(ctx, q)
	if err != nil {
		return err
	}
	feasible := false
	for _, candidate := range slots {
		if candidate.Equal(slot) {
			feasible = true
			break
		}
	}
	if !feasible {
		return ErrSlotInfeasible
	}

	if s.holds != nil {
		held, err := s.holds.TryHold(ctx, q.DriverID, slot, studentID, s.holdTTL)
		if err != nil {
			return fmt.Errorf("hold slot: %w", err)
		}
		if !held {
			return ErrSlotTaken
		}
	}

	s.publish(ctx, q, domain.EventSlotHeld, map[string]any{
		"slot":       slot.UTC().Format(time.RFC3339),
		"student_id": studentID.String(),
	})
	return nil
}

// ReleaseSlot frees a previously acquired hold.
func (s *Service) ReleaseSlot(ctx context.Context, q SlotsQuery, slot time.Time) error {
	if s.holds == nil {
		return nil
	}
	if err := s.holds.Release(ctx, q.DriverID, slot); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	s.publish(ctx, q, domain.EventSlotReleased, map[string]any{"slot": slot.UTC().Format(time.RFC3339)})
	return nil
}

func (s *Service) assemble(ctx context.Context, q SlotsQuery) (engine.Request, error) {
	profile, err := s.repo.DriverProfile(ctx, q.SchoolID, q.DriverID)
	if err != nil {
		return engine.Request{}, fmt.Errorf("load driver profile: %w", err)
	}
	settings, err := s.repo.SchoolSettings(ctx, q.SchoolID)
	if err != nil {
		return engine.Request{}, fmt.Errorf("load school settings: %w", err)
	}
	bookings, err := s.repo.BookingsForDay(ctx, q.DriverID, q.Date)
	if err != nil {
		return engine.Request{}, fmt.Errorf("load bookings: %w", err)
	}
	overrides, err := s.repo.OverridesForDay(ctx, q.DriverID, q.Date)
	if err != nil {
		return engine.Request{}, fmt.Errorf("load overrides: %w", err)
	}

	return engine.Request{
		Date:      q.Date,
		Schedule:  ResolveSchedule(profile, settings),
		Bookings:  bookings,
		Overrides: overrides,
		Pickup:    q.Pickup,
		Dropoff:   q.Dropoff,
	}, nil
}

// ResolveSchedule coerces the text-typed storage fields once, at this boundary,
// with precedence driver profile, then school settings, then unlimited.
func ResolveSchedule(profile domain.DriverProfile, settings domain.SchoolSettings) domain.DriverDaySchedule {
	return domain.DriverDaySchedule{
		ServiceCenter: profile.ServiceCenter,
		WorkDayStart:  profile.WorkDayStart,
		WorkDayEnd:    profile.WorkDayEnd,
		LessonMinutes: coerce.FirstMinutes(DefaultLessonMinutes,
			coerce.Minutes(profile.LessonDurationMinutes), coerce.Minutes(settings.LessonDurationMinutes)),
		BufferMinutes: coerce.FirstMinutes(0,
			coerce.Minutes(profile.BufferMinutes), coerce.Minutes(settings.BufferMinutes)),
		ServiceRadiusKM: coerce.FirstFloat(
			coerce.Float(profile.ServiceRadiusKM), coerce.Float(settings.ServiceRadiusKM)),
		MaxSegmentMinutes: coerce.FirstFloat(
			coerce.Float(profile.MaxSegmentTravelTimeMin), coerce.Float(settings.MaxSegmentTravelTimeMin)),
		MaxSegmentKM: coerce.FirstFloat(
			coerce.Float(profile.MaxSegmentTravelDistanceKM), coerce.Float(settings.MaxSegmentTravelDistanceKM)),
		DailyMaxMinutes: coerce.FirstFloat(
			coerce.Float(profile.DailyMaxTravelTimeMin), coerce.Float(settings.DailyMaxTravelTimeMin)),
		DailyMaxKM: coerce.FirstFloat(
			coerce.Float(profile.DailyMaxTravelDistanceKM), coerce.Float(settings.DailyMaxTravelDistanceKM)),
	}
}

func (s *Service) publish(ctx context.Context, q SlotsQuery, eventType domain.EventType, payload map[string]any) {
	if s.events == nil {
		return
	}
	event := domain.Event{
		SchoolID:  q.SchoolID,
		DriverID:  q.DriverID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}
