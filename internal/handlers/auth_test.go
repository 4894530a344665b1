package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/inkpress/internal/admins"
	"github.com/inkpress/inkpress/internal/resettoken"
)

func newAuthTestContext(t *testing.T, method, path, body string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	h := NewAuthHandler(nil, admins.NewService(nil, nil), nil, nil, "secret", "http://client", time.Hour)
	for _, body := range []string{
		`{"email":"","password":""}`,
		`{"email":"admin@example.com","password":""}`,
		`{"email":"  ","password":"pass"}`,
	} {
		c := newAuthTestContext(t, http.MethodPost, "/api/auth/login", body)
		if got := httpStatus(t, h.Login(c)); got != http.StatusBadRequest {
			t.Errorf("Login(%s): status = %d, want 400", body, got)
		}
	}
}

func TestLoginWithoutServiceFails(t *testing.T) {
	h := NewAuthHandler(nil, nil, nil, nil, "secret", "http://client", time.Hour)
	c := newAuthTestContext(t, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`)
	if got := httpStatus(t, h.Login(c)); got != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", got)
	}
}

func TestResetPasswordMismatchFailsFirst(t *testing.T) {
	// No services wired at all: the confirmation check must reject before
	// the token is ever looked at.
	h := NewAuthHandler(nil, nil, nil, nil, "secret", "http://client", time.Hour)
	c := newAuthTestContext(t, http.MethodPost, "/api/auth/reset-password/tok",
		`{"password":"NewPass1","confirmPassword":"Different"}`)
	if got := httpStatus(t, h.ResetPassword(c)); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}

func TestResetPasswordRejectsEmptyPassword(t *testing.T) {
	h := NewAuthHandler(nil, nil, nil, nil, "secret", "http://client", time.Hour)
	c := newAuthTestContext(t, http.MethodPost, "/api/auth/reset-password/tok",
		`{"password":"","confirmPassword":""}`)
	if got := httpStatus(t, h.ResetPassword(c)); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}

func TestForgotPasswordRequiresEmail(t *testing.T) {
	h := NewAuthHandler(nil, admins.NewService(nil, nil), resettoken.NewService(nil, nil), stubMailer{}, "secret", "http://client", time.Hour)
	c := newAuthTestContext(t, http.MethodPost, "/api/auth/forgot-password", `{"email":" "}`)
	if got := httpStatus(t, h.ForgotPassword(c)); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}

type stubMailer struct{}

func (stubMailer) SendPasswordReset(context.Context, string, string) error { return nil }
