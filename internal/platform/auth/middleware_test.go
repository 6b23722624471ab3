package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, testSecret, staffClaims(RoleFrontDesk, "", time.Hour))

	rec := doRequest(t, JWTMiddleware(v), "Bearer "+tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestJWTMiddlewareSetsContextIdentity(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	tok := signTestToken(t, testSecret, staffClaims(RoleDoctor, "doc-3", time.Hour))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRole, gotDoctor string
	handler := JWTMiddleware(v)(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		gotDoctor = DoctorIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotRole != RoleDoctor {
		t.Errorf("role in context = %q, want %q", gotRole, RoleDoctor)
	}
	if gotDoctor != "doc-3" {
		t.Errorf("doctor_id in context = %q, want doc-3", gotDoctor)
	}
}

func TestJWTMiddlewareRejections(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})
	expired := signTestToken(t, testSecret, staffClaims(RoleAdmin, "", -time.Minute))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, JWTMiddleware(v), tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestDevAuthMiddlewareGrantsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRole string
	handler := DevAuthMiddleware()(func(c echo.Context) error {
		gotRole = RoleFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if gotRole != RoleAdmin {
		t.Errorf("role = %q, want %q", gotRole, RoleAdmin)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		wantCode int
	}{
		{"matching role", RoleFrontDesk, []string{RoleFrontDesk}, http.StatusOK},
		{"one of several", RoleDoctor, []string{RoleFrontDesk, RoleDoctor}, http.StatusOK},
		{"admin passes any check", RoleAdmin, []string{RoleFrontDesk}, http.StatusOK},
		{"wrong role", RoleDoctor, []string{RoleFrontDesk}, http.StatusForbidden},
		{"no role", "", []string{RoleFrontDesk}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				claims := staffClaims(tt.role, "doc-1", time.Hour)
				req = req.WithContext(WithClaims(req.Context(), claims))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(tt.required...)(okHandler)(c)
			if err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
