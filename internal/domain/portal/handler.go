// Package portal serves the patient-facing surface: a read-mostly view of
// the patient's own record plus the public account activation endpoint.
package portal

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/internal/domain/patient"
	"github.com/praxishealth/praxis/internal/domain/report"
	"github.com/praxishealth/praxis/internal/platform/auth"
	"github.com/praxishealth/praxis/internal/platform/httperr"
)

// PatientSource is the slice of the patient service the portal needs.
type PatientSource interface {
	ByPortalUser(ctx context.Context, portalUserID string) (*patient.Patient, error)
	Activate(ctx context.Context, patientID uuid.UUID, token, password string) (*patient.Patient, error)
}

// AppointmentSource lists a patient's appointments.
type AppointmentSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
}

// ReportSource lists a patient's reports.
type ReportSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*report.Report, error)
}

type Handler struct {
	patients PatientSource
	appts    AppointmentSource
	reports  ReportSource
}

func NewHandler(patients PatientSource, appts AppointmentSource, reports ReportSource) *Handler {
	return &Handler{patients: patients, appts: appts, reports: reports}
}

// RegisterRoutes wires the authenticated patient endpoints onto api and the
// activation endpoint onto public, which carries no auth middleware.
func (h *Handler) RegisterRoutes(api *echo.Group, public *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RolePatient))
	g.GET("/portal/profile", h.Profile)
	g.GET("/portal/appointments", h.Appointments)
	g.GET("/portal/reports", h.Reports)

	public.POST("/portal/activate", h.Activate)
}

func (h *Handler) self(c echo.Context) (*patient.Patient, error) {
	ident := auth.IdentityFromContext(c.Request().Context())
	return h.patients.ByPortalUser(c.Request().Context(), ident.SubjectID)
}

func (h *Handler) Profile(c echo.Context) error {
	p, err := h.self(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Appointments(c echo.Context) error {
	p, err := h.self(c)
	if err != nil {
		return err
	}
	items, err := h.appts.ListByPatient(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*appointment.Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Reports(c echo.Context) error {
	p, err := h.self(c)
	if err != nil {
		return err
	}
	items, err := h.reports.ListByPatient(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*report.Report{}
	}
	return c.JSON(http.StatusOK, items)
}

type activateRequest struct {
	PatientID string `json:"patientId"`
	Token     string `json:"token"`
	Password  string `json:"password"`
}

func (h *Handler) Activate(c echo.Context) error {
	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var msgs []string
	id, err := uuid.Parse(req.PatientID)
	if err != nil {
		msgs = append(msgs, "patientId must be a valid id")
	}
	if req.Token == "" {
		msgs = append(msgs, "token is required")
	}
	if len(req.Password) < 8 {
		msgs = append(msgs, "password must be at least 8 characters")
	}
	if len(msgs) > 0 {
		return httperr.Validation(msgs...)
	}

	p, err := h.patients.Activate(c.Request().Context(), id, req.Token, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
