package vehicle

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/travel"
)

// HTTP exposes the pickup ETA endpoint: how soon can the nearest instructor
// vehicle reach a student's pickup point.
type HTTP struct {
	observer  *Observer
	estimator *travel.Estimator
}

// NewHTTP creates the handler.
func NewHTTP(observer *Observer, estimator *travel.Estimator) *HTTP {
	return &HTTP{observer: observer, estimator: estimator}
}

// Router builds the chi router.
func (h *HTTP) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/pickup-eta", h.pickupETA)
	return r
}

func (h *HTTP) pickupETA(w http.ResponseWriter, r *http.Request) {
	pickup := domain.Location{Lat: parseQueryFloat(r, "lat"), Lng: parseQueryFloat(r, "lng")}

	var best *Snapshot
	var bestMinutes float64
	for _, snap := range h.observer.All() {
		est, err := h.estimator.Travel(r.Context(), snap.Point, pickup, time.Now())
		if err != nil {
			continue
		}
		if best == nil || est.Minutes < bestMinutes {
			s := snap
			best = &s
			bestMinutes = est.Minutes
		}
	}

	if best == nil {
		http.Error(w, "no vehicles reporting", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"driver_id":   best.DriverID.String(),
		"eta_minutes": bestMinutes,
		"reported_at": best.Updated.Format(time.RFC3339),
	})
}

func parseQueryFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
