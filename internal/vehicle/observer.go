// Package vehicle tracks live instructor-vehicle positions and answers pickup
// ETA queries from the latest snapshots.
package vehicle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

// Snapshot is the latest reported position of one instructor vehicle.
type Snapshot struct {
	DriverID uuid.UUID
	Point    domain.Location
	SpeedKPH float64
	Accuracy float64
	Updated  time.Time
}

// Observer stores the latest snapshot per vehicle.
type Observer struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]Snapshot
}

// NewObserver constructs an empty Observer.
func NewObserver() *Observer {
	return &Observer{snapshots: make(map[uuid.UUID]Snapshot)}
}

// Update stores snapshot data.
func (o *Observer) Update(_ context.Context, driverID uuid.UUID, point domain.Location, speedKPH, accuracy float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots[driverID] = Snapshot{
		DriverID: driverID,
		Point:    point,
		SpeedKPH: speedKPH,
		Accuracy: accuracy,
		Updated:  time.Now().UTC(),
	}
}

// Snapshot returns the stored snapshot for one vehicle.
func (o *Observer) Snapshot(_ context.Context, driverID uuid.UUID) (Snapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	snap, ok := o.snapshots[driverID]
	return snap, ok
}

// All returns all snapshots.
func (o *Observer) All() []Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	res := make([]Snapshot, 0, len(o.snapshots))
	for _, snap := range o.snapshots {
		res = append(res, snap)
	}
	return res
}
