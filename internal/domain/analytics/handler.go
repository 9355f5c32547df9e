package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/praxishealth/praxis/internal/domain/appointment"
	"github.com/praxishealth/praxis/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireClinician())
	g.GET("/analytics/appointments", h.Appointments)
	g.GET("/analytics/dashboard", h.Dashboard)
}

func (h *Handler) Appointments(c echo.Context) error {
	f := appointment.Filter{
		From:   c.QueryParam("from"),
		To:     c.QueryParam("to"),
		Type:   c.QueryParam("type"),
		Status: c.QueryParam("status"),
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	result, err := h.svc.Appointments(c.Request().Context(), ident.SubjectID, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Dashboard(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	d, err := h.svc.DashboardFor(c.Request().Context(), ident.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}
