// Package handler contains the chi HTTP layer that translates requests
// and responses to and from the core services. It is the "external
// caller" of the core: self-service temporal rules (future masses only)
// live here, never in the services themselves.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/service"
	"github.com/rbarroso/acolyte-scheduler/internal/store"
)

// Handler holds all HTTP handlers for the scheduler API.
type Handler struct {
	directory *service.Directory
	catalog   *service.Catalog
	ledger    *service.Ledger
	scoring   *service.Scoring
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

// New constructs a Handler.
func New(
	directory *service.Directory,
	catalog *service.Catalog,
	ledger *service.Ledger,
	scoring *service.Scoring,
	log *zap.Logger,
) *Handler {
	return &Handler{
		directory: directory,
		catalog:   catalog,
		ledger:    ledger,
		scoring:   scoring,
		validate:  validator.New(),
		log:       log,
		now:       time.Now,
	}
}

// Router builds the full route tree. adminGuard wraps every destructive
// admin operation.
func (h *Handler) Router(adminGuard func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog(h.log))
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	r.Get("/volunteers", h.ListVolunteers)
	r.Get("/masses", h.ListMasses)
	r.Get("/masses/upcoming", h.ListUpcomingMasses)
	r.Get("/masses/{id}", h.GetMass)
	r.Get("/masses/{id}/enrollments", h.ListEnrollments)
	r.Get("/masses/{id}/enrollments/{name}", h.IsEnrolled)
	r.Post("/masses/{id}/enrollments", h.Enroll)
	r.Delete("/masses/{id}/enrollments/{name}", h.Withdraw)
	r.Get("/leaderboard", h.Leaderboard)

	r.Group(func(r chi.Router) {
		r.Use(adminGuard)
		r.Post("/volunteers", h.RegisterVolunteer)
		r.Delete("/volunteers/{name}", h.RemoveVolunteer)
		r.Post("/masses", h.CreateMass)
		r.Delete("/masses/{id}", h.DeleteMass)
		r.Post("/admin/masses/{id}/enrollments", h.AdminEnroll)
		r.Delete("/admin/masses/{id}/enrollments/{name}", h.AdminRemoveEnrollment)
	})

	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathParam returns a decoded URL parameter; volunteer names may carry
// spaces and accents.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// ─── Directory ────────────────────────────────────────────────────────────────

// RegisterVolunteer handles POST /volunteers (admin).
func (h *Handler) RegisterVolunteer(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterVolunteerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.directory.Register(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "volunteer name already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// RemoveVolunteer handles DELETE /volunteers/{name} (admin).
func (h *Handler) RemoveVolunteer(w http.ResponseWriter, r *http.Request) {
	removed, err := h.directory.Remove(r.Context(), pathParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove volunteer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ListVolunteers handles GET /volunteers.
func (h *Handler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	volunteers, err := h.directory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list volunteers")
		return
	}
	if volunteers == nil {
		volunteers = []model.Volunteer{}
	}
	writeJSON(w, http.StatusOK, volunteers)
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

// CreateMass handles POST /masses (admin). Admin flows may create masses
// in the past for correction purposes, so no temporal check happens here.
func (h *Handler) CreateMass(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCapacity) || errors.Is(err, service.ErrInvalidSchedule) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create mass")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMass handles GET /masses/{id}.
func (h *Handler) GetMass(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mass not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get mass")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMass handles DELETE /masses/{id} (admin). The deletion cascades
// to every enrollment of the mass in one transaction.
func (h *Handler) DeleteMass(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mass not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete mass")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListMasses handles GET /masses: every mass, newest first, annotated.
func (h *Handler) ListMasses(w http.ResponseWriter, r *http.Request) {
	masses, err := h.catalog.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list masses")
		return
	}
	if masses == nil {
		masses = []model.MassSummary{}
	}
	writeJSON(w, http.StatusOK, masses)
}

// ListUpcomingMasses handles GET /masses/upcoming: masses dated today or
// later in the reference zone, soonest first, annotated.
func (h *Handler) ListUpcomingMasses(w http.ResponseWriter, r *http.Request) {
	masses, err := h.catalog.ListUpcoming(r.Context(), h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list upcoming masses")
		return
	}
	if masses == nil {
		masses = []model.MassSummary{}
	}
	writeJSON(w, http.StatusOK, masses)
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

// Enroll handles POST /masses/{id}/enrollments, the self-service flow.
// Self-service may only touch masses dated today or later; the core
// imposes no such rule, so the check lives in this layer.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	massID := chi.URLParam(r, "id")

	var req model.EnrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.catalog.Get(r.Context(), massID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mass not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to enroll")
		return
	}
	if h.catalog.IsPast(m.Date, h.now()) {
		writeError(w, http.StatusConflict, "cannot enroll in a past mass")
		return
	}

	h.enroll(w, r, massID, req.VolunteerName)
}

// AdminEnroll handles POST /admin/masses/{id}/enrollments (admin): the
// correction flow, with no temporal restriction. Capacity and
// uniqueness still apply; correcting a past mass is bounded by its
// original capacity unless the operator frees a seat first.
func (h *Handler) AdminEnroll(w http.ResponseWriter, r *http.Request) {
	var req model.EnrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.enroll(w, r, chi.URLParam(r, "id"), req.VolunteerName)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request, massID, name string) {
	err := h.ledger.Enroll(r.Context(), massID, name)
	if err != nil {
		if errors.Is(err, service.ErrEnrollmentDenied) {
			// Deliberately ambiguous: full, duplicate, and unknown mass
			// all read the same from outside.
			writeError(w, http.StatusConflict, service.ErrEnrollmentDenied.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to enroll")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "enrolled"})
}

// Withdraw handles DELETE /masses/{id}/enrollments/{name}, the
// self-service flow; past masses are off limits here.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	massID := chi.URLParam(r, "id")

	m, err := h.catalog.Get(r.Context(), massID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mass not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to withdraw")
		return
	}
	if h.catalog.IsPast(m.Date, h.now()) {
		writeError(w, http.StatusConflict, "cannot withdraw from a past mass")
		return
	}

	removed, err := h.ledger.Withdraw(r.Context(), massID, pathParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to withdraw")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// AdminRemoveEnrollment handles DELETE /admin/masses/{id}/enrollments/{name}
// (admin): frees a seat on any mass, past or future, for corrections.
func (h *Handler) AdminRemoveEnrollment(w http.ResponseWriter, r *http.Request) {
	removed, err := h.ledger.AdminRemove(r.Context(), chi.URLParam(r, "id"), pathParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove enrollment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// IsEnrolled handles GET /masses/{id}/enrollments/{name}.
func (h *Handler) IsEnrolled(w http.ResponseWriter, r *http.Request) {
	enrolled, err := h.ledger.IsEnrolled(r.Context(), chi.URLParam(r, "id"), pathParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check enrollment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enrolled": enrolled})
}

// ListEnrollments handles GET /masses/{id}/enrollments. A deleted mass
// consistently yields an empty list, never 404.
func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	names, err := h.ledger.ListEnrolled(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list enrollments")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// ─── Scoring ──────────────────────────────────────────────────────────────────

// Leaderboard handles GET /leaderboard.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.scoring.Leaderboard(r.Context(), h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute leaderboard")
		return
	}
	if board == nil {
		board = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, board)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
