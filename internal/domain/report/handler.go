package report

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/praxishealth/praxis/internal/platform/auth"
	"github.com/praxishealth/praxis/internal/platform/httperr"
	"github.com/praxishealth/praxis/pkg/pagination"
)

// PatientBinding ties a portal login to its patient record.
type PatientBinding struct {
	PatientID   uuid.UUID
	ClinicianID string
}

// PatientResolver maps a portal user id to its patient binding, so
// patient-role uploads land under the right clinician partition.
type PatientResolver interface {
	BindingForPortalUser(ctx context.Context, portalUserID string) (PatientBinding, error)
}

type Handler struct {
	svc      *Service
	resolver PatientResolver
}

func NewHandler(svc *Service, resolver PatientResolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Upload and single-report read are open to both roles; a patient only
	// ever sees their own records. Everything else is clinician-only.
	both := auth.RequireRole(auth.RoleClinician, auth.RolePatient)
	api.POST("/reports", h.Create, both)
	api.GET("/reports/:id", h.Get, both)

	g := api.Group("", auth.RequireClinician())
	g.GET("/reports", h.List)
	g.PUT("/reports/:id", h.Update)
	g.DELETE("/reports/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var r Report
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ident := auth.IdentityFromContext(c.Request().Context())
	clinicianID := ident.SubjectID
	if ident.Role == auth.RolePatient {
		binding, err := h.resolver.BindingForPortalUser(c.Request().Context(), ident.SubjectID)
		if err != nil {
			return err
		}
		clinicianID = binding.ClinicianID
		r.PatientID = &binding.PatientID
	}

	if err := h.svc.Create(c.Request().Context(), clinicianID, &r); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	clinicianID := ident.SubjectID
	var own *uuid.UUID
	if ident.Role == auth.RolePatient {
		binding, err := h.resolver.BindingForPortalUser(c.Request().Context(), ident.SubjectID)
		if err != nil {
			return err
		}
		clinicianID = binding.ClinicianID
		own = &binding.PatientID
	}
	r, err := h.svc.Get(c.Request().Context(), clinicianID, id)
	if err != nil {
		return err
	}
	if own != nil && (r.PatientID == nil || *r.PatientID != *own) {
		return httperr.ErrNotFound
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		Type:      c.QueryParam("type"),
		Status:    c.QueryParam("status"),
		PatientID: c.QueryParam("patient_id"),
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), ident.SubjectID, f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var params UpdateParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	r, err := h.svc.Update(c.Request().Context(), ident.SubjectID, id, &params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), ident.SubjectID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
