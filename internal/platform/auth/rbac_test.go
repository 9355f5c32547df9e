package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(t *testing.T, mw echo.MiddlewareFunc, identity Identity) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRequireClinicianAllowsClinician(t *testing.T) {
	code := requestWithRole(t, RequireClinician(), Identity{SubjectID: "c-1", Role: RoleClinician})
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestRequireClinicianRejectsPatient(t *testing.T) {
	code := requestWithRole(t, RequireClinician(), Identity{SubjectID: "p-1", Role: RolePatient})
	if code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
}

func TestRequireRoleRejectsMissingIdentity(t *testing.T) {
	code := requestWithRole(t, RequireRole(RoleClinician, RolePatient), Identity{})
	if code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
}

func TestRequireRoleEitherRole(t *testing.T) {
	mw := RequireRole(RoleClinician, RolePatient)
	if code := requestWithRole(t, mw, Identity{SubjectID: "p-1", Role: RolePatient}); code != http.StatusOK {
		t.Errorf("patient status = %d, want 200", code)
	}
	if code := requestWithRole(t, mw, Identity{SubjectID: "c-1", Role: RoleClinician}); code != http.StatusOK {
		t.Errorf("clinician status = %d, want 200", code)
	}
}
