package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/AliEdi10/artinbooking-sub001/internal/auth"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
	"github.com/AliEdi10/artinbooking-sub001/internal/availability/service"
)

// HTTP exposes availability endpoints. The tenant comes from JWT claims, never
// from the request body.
type HTTP struct {
	svc       *service.Service
	jwtSecret string
}

// NewHTTP constructs the handler.
func NewHTTP(svc *service.Service, jwtSecret string) *HTTP {
	return &HTTP{svc: svc, jwtSecret: jwtSecret}
}

// Router builds the chi router with all endpoints and middlewares.
func (h *HTTP) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.jwtSecret, auth.RoleStudent, auth.RoleSchoolAdmin))
		r.Get("/v1/drivers/{id}/slots", h.listSlots)
		r.Post("/v1/drivers/{id}/holds", h.holdSlot)
		r.Post("/v1/drivers/{id}/holds/release", h.releaseSlot)
	})
	return r
}

type slotsResponse struct {
	DriverID string   `json:"driver_id"`
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
}

func (h *HTTP) listSlots(w http.ResponseWriter, r *http.Request) {
	q, ok := h.queryFromRequest(w, r)
	if !ok {
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := slotsResponse{
		DriverID: q.DriverID.String(),
		Date:     q.Date.UTC().Format("2006-01-02"),
		Slots:    make([]string, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, s.UTC().Format(time.RFC3339))
	}
	writeJSON(w, http.StatusOK, resp)
}

type holdRequest struct {
	Date    string          `json:"date"`
	Slot    string          `json:"slot"`
	Pickup  domain.Location `json:"pickup"`
	Dropoff domain.Location `json:"dropoff"`
}

func (h *HTTP) holdSlot(w http.ResponseWriter, r *http.Request) {
	q, slot, studentID, ok := h.holdFromRequest(w, r)
	if !ok {
		return
	}

	err := h.svc.HoldSlot(r.Context(), q, slot, studentID)
	switch {
	case errors.Is(err, service.ErrSlotTaken):
		http.Error(w, "slot already held", http.StatusConflict)
	case errors.Is(err, service.ErrSlotInfeasible):
		http.Error(w, "slot not available", http.StatusUnprocessableEntity)
	case err != nil:
		writeServiceError(w, err)
	default:
		writeJSON(w, http.StatusCreated, map[string]string{
			"driver_id": q.DriverID.String(),
			"slot":      slot.UTC().Format(time.RFC3339),
		})
	}
}

func (h *HTTP) releaseSlot(w http.ResponseWriter, r *http.Request) {
	q, slot, _, ok := h.holdFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.ReleaseSlot(r.Context(), q, slot); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) queryFromRequest(w http.ResponseWriter, r *http.Request) (service.SlotsQuery, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing claims", http.StatusUnauthorized)
		return service.SlotsQuery{}, false
	}
	schoolID, err := claims.School()
	if err != nil {
		http.Error(w, "invalid tenant", http.StatusUnauthorized)
		return service.SlotsQuery{}, false
	}
	driverID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid driver id", http.StatusBadRequest)
		return service.SlotsQuery{}, false
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return service.SlotsQuery{}, false
	}
	return service.SlotsQuery{
		SchoolID: schoolID,
		DriverID: driverID,
		Date:     date,
		Pickup:   domain.Location{Lat: parseQueryFloat(r, "pickup_lat"), Lng: parseQueryFloat(r, "pickup_lng")},
		Dropoff:  domain.Location{Lat: parseQueryFloat(r, "dropoff_lat"), Lng: parseQueryFloat(r, "dropoff_lng")},
	}, true
}

func (h *HTTP) holdFromRequest(w http.ResponseWriter, r *http.Request) (service.SlotsQuery, time.Time, uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing claims", http.StatusUnauthorized)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}
	schoolID, err := claims.School()
	if err != nil {
		http.Error(w, "invalid tenant", http.StatusUnauthorized)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}
	studentID, err := claims.SubjectID()
	if err != nil {
		http.Error(w, "invalid subject", http.StatusUnauthorized)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}
	driverID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid driver id", http.StatusBadRequest)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}

	var payload holdRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}
	slot, err := time.Parse(time.RFC3339, payload.Slot)
	if err != nil {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return service.SlotsQuery{}, time.Time{}, uuid.Nil, false
	}

	q := service.SlotsQuery{
		SchoolID: schoolID,
		DriverID: driverID,
		Date:     date,
		Pickup:   payload.Pickup,
		Dropoff:  payload.Dropoff,
	}
	return q, slot, studentID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "driver not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
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
