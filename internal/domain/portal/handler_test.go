package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/internal/domain/patient"
	"github.com/praxishealth/praxis/internal/domain/report"
	"github.com/praxishealth/praxis/internal/platform/auth"
	"github.com/praxishealth/praxis/internal/platform/httperr"
)

type stubPatients struct {
	byUser      map[string]*patient.Patient
	activateErr error
	activated   *patient.Patient
}

func (s *stubPatients) ByPortalUser(_ context.Context, portalUserID string) (*patient.Patient, error) {
	p, ok := s.byUser[portalUserID]
	if !ok {
		return nil, httperr.ErrNotFound
	}
	return p, nil
}

func (s *stubPatients) Activate(_ context.Context, _ uuid.UUID, _, _ string) (*patient.Patient, error) {
	if s.activateErr != nil {
		return nil, s.activateErr
	}
	return s.activated, nil
}

type stubAppts struct{ items []*appointment.Appointment }

func (s *stubAppts) ListByPatient(context.Context, uuid.UUID) ([]*appointment.Appointment, error) {
	return s.items, nil
}

type stubReports struct{ items []*report.Report }

func (s *stubReports) ListByPatient(context.Context, uuid.UUID) ([]*report.Report, error) {
	return s.items, nil
}

func patientCtx(t *testing.T, method, target, body, subject string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if subject != "" {
		ctx := auth.WithIdentity(req.Context(), auth.Identity{SubjectID: subject, Role: auth.RolePatient})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestProfile(t *testing.T) {
	p := &patient.Patient{ID: uuid.New(), FirstName: "Jane", LastName: "Roe"}
	h := NewHandler(&stubPatients{byUser: map[string]*patient.Patient{"user-1": p}}, &stubAppts{}, &stubReports{})

	c, rec := patientCtx(t, http.MethodGet, "/portal/profile", "", "user-1")
	if err := h.Profile(c); err != nil {
		t.Fatalf("profile: %v", err)
	}
	var got patient.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FirstName != "Jane" {
		t.Errorf("body = %+v", got)
	}
}

func TestProfileUnknownUser(t *testing.T) {
	h := NewHandler(&stubPatients{byUser: map[string]*patient.Patient{}}, &stubAppts{}, &stubReports{})
	c, _ := patientCtx(t, http.MethodGet, "/portal/profile", "", "ghost")
	if err := h.Profile(c); !errors.Is(err, httperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestAppointmentsEmptyIsArray(t *testing.T) {
	p := &patient.Patient{ID: uuid.New()}
	h := NewHandler(&stubPatients{byUser: map[string]*patient.Patient{"user-1": p}}, &stubAppts{}, &stubReports{})

	c, rec := patientCtx(t, http.MethodGet, "/portal/appointments", "", "user-1")
	if err := h.Appointments(c); err != nil {
		t.Fatalf("appointments: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestActivateValidation(t *testing.T) {
	h := NewHandler(&stubPatients{}, &stubAppts{}, &stubReports{})
	c, _ := patientCtx(t, http.MethodPost, "/portal/activate",
		`{"patientId":"nope","token":"","password":"short"}`, "")

	err := h.Activate(c)
	var ve *httperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(ve.Messages) != 3 {
		t.Errorf("messages = %v, want 3", ve.Messages)
	}
}

func TestActivate(t *testing.T) {
	p := &patient.Patient{ID: uuid.New(), FirstName: "Jane"}
	h := NewHandler(&stubPatients{activated: p}, &stubAppts{}, &stubReports{})

	body := `{"patientId":"` + p.ID.String() + `","token":"tok","password":"long-enough-pw"}`
	c, rec := patientCtx(t, http.MethodPost, "/portal/activate", body, "")
	if err := h.Activate(c); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
}

func TestActivatePropagatesConflict(t *testing.T) {
	h := NewHandler(&stubPatients{activateErr: httperr.ErrConflict}, &stubAppts{}, &stubReports{})
	body := `{"patientId":"` + uuid.NewString() + `","token":"tok","password":"long-enough-pw"}`
	c, _ := patientCtx(t, http.MethodPost, "/portal/activate", body, "")
	if err := h.Activate(c); !errors.Is(err, httperr.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}
