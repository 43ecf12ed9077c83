package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rbarroso/acolyte-scheduler/internal/auth"
	"github.com/rbarroso/acolyte-scheduler/internal/model"
	"github.com/rbarroso/acolyte-scheduler/internal/service"
	"github.com/rbarroso/acolyte-scheduler/internal/store/memory"
)

const adminPassword = "coordenador123"

type fixture struct {
	router http.Handler
	mem    *memory.Store
}

// newFixture wires the full stack over the in-memory store with a frozen
// clock: 2025-03-01 12:00 in the reference zone.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	zone, err := time.LoadLocation(service.DefaultTimezone)
	require.NoError(t, err)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, zone)

	mem := memory.New()
	log := zap.NewNop()

	h := New(
		service.NewDirectory(mem),
		service.NewCatalog(mem, zone),
		service.NewLedger(mem, log),
		service.NewScoring(mem, zone),
		log,
	)
	h.now = func() time.Time { return now }

	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)

	return &fixture{
		router: h.Router(AdminGuard(hash, log)),
		mem:    mem,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.SetBasicAuth("admin", adminPassword)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createMass(t *testing.T, date, clock string, capacity int) model.Mass {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/masses", model.CreateMassRequest{
		Date: date, Time: clock, Description: "Missa", Capacity: capacity,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var m model.Mass
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/masses", model.CreateMassRequest{
		Date: "2025-03-10", Time: "10:00", Capacity: 4,
	}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	// Wrong password is rejected too.
	req := httptest.NewRequest(http.MethodPost, "/volunteers", bytes.NewReader([]byte(`{"name":"Ana"}`)))
	req.SetBasicAuth("admin", "wrong")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestEnrollFlow(t *testing.T) {
	f := newFixture(t)
	m := f.createMass(t, "2025-03-10", "10:00", 1)
	path := fmt.Sprintf("/masses/%s/enrollments", m.ID)

	rec := f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Ana"}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Second seat claim — duplicate volunteer — is denied with the
	// generic message.
	rec = f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Ana"}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not enroll")

	// Full mass reads exactly the same from outside.
	rec = f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Beto"}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not enroll")

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/masses/%s/enrollments/Ana", m.ID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enrolled":true}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, path, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Ana"]`, rec.Body.String())
}

func TestEnrollUnknownMassReturns404(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/masses/3f6f9f2e-0000-0000-0000-000000000000/enrollments",
		model.EnrollRequest{VolunteerName: "Ana"}, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelfServiceRejectsPastMasses(t *testing.T) {
	f := newFixture(t)
	past := f.createMass(t, "2025-02-01", "10:00", 4)
	path := fmt.Sprintf("/masses/%s/enrollments", past.ID)

	rec := f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Ana"}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "past mass")

	// The admin correction surface has no temporal rule.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/admin/masses/%s/enrollments", past.ID),
		model.EnrollRequest{VolunteerName: "Ana"}, true)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, path+"/Ana", nil, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/admin/masses/%s/enrollments/Ana", past.ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":true}`, rec.Body.String())
}

func TestWithdrawFreesSeat(t *testing.T) {
	f := newFixture(t)
	m := f.createMass(t, "2025-03-10", "10:00", 1)
	path := fmt.Sprintf("/masses/%s/enrollments", m.ID)

	rec := f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Ana"}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodDelete, path+"/Ana", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":true}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Beto"}, false)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDeleteMassCascades(t *testing.T) {
	f := newFixture(t)
	m := f.createMass(t, "2025-03-10", "10:00", 2)
	path := fmt.Sprintf("/masses/%s/enrollments", m.ID)

	rec := f.do(t, http.MethodPost, path, model.EnrollRequest{VolunteerName: "Ana"}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodDelete, "/masses/"+m.ID, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, path, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateMassValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/masses", model.CreateMassRequest{
		Date: "2025-03-10", Time: "10:00", Capacity: 0,
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "capacity")

	rec = f.do(t, http.MethodPost, "/masses", model.CreateMassRequest{
		Date: "10/03/2025", Time: "10:00", Capacity: 2,
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVolunteerLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/volunteers", model.RegisterVolunteerRequest{Name: "Beto"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/volunteers", model.RegisterVolunteerRequest{Name: "Ana"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/volunteers", model.RegisterVolunteerRequest{Name: "Ana"}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/volunteers", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Ana"},{"name":"Beto"}]`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/volunteers/Ana", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":true}`, rec.Body.String())
}

func TestLeaderboardEndpoint(t *testing.T) {
	f := newFixture(t)
	e1 := f.createMass(t, "2025-01-01", "10:00", 2)
	e2 := f.createMass(t, "2025-01-02", "10:00", 2)

	adminEnroll := func(massID, name string) {
		rec := f.do(t, http.MethodPost, fmt.Sprintf("/admin/masses/%s/enrollments", massID),
			model.EnrollRequest{VolunteerName: name}, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	adminEnroll(e1.ID, "Ana")
	adminEnroll(e1.ID, "Beto")
	adminEnroll(e2.ID, "Ana")

	rec := f.do(t, http.MethodGet, "/leaderboard", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Ana","points":2},{"name":"Beto","points":1}]`, rec.Body.String())
}

func TestAdminGuardDisabledWithEmptyHash(t *testing.T) {
	zone, err := time.LoadLocation(service.DefaultTimezone)
	require.NoError(t, err)

	mem := memory.New()
	log := zap.NewNop()
	h := New(
		service.NewDirectory(mem),
		service.NewCatalog(mem, zone),
		service.NewLedger(mem, log),
		service.NewScoring(mem, zone),
		log,
	)
	router := h.Router(AdminGuard("", log))

	req := httptest.NewRequest(http.MethodPost, "/volunteers", bytes.NewReader([]byte(`{"name":"Ana"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
