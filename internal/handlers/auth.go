// Package handlers provides the HTTP API handlers for the blog server.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/inkpress/inkpress/internal/admins"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/mailer"
	"github.com/inkpress/inkpress/internal/resettoken"
)

// Auth endpoints share a modest per-IP rate limit.
const authRateLimit = rate.Limit(10)

// ResetMailer delivers the password reset link; substituted in tests.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// AuthHandler serves login, forgot-password, and reset-password.
type AuthHandler struct {
	adminService *admins.Service
	resetService *resettoken.Service
	mailer       ResetMailer
	jwtSecret    string
	expiresIn    time.Duration
	clientURL    string
	logger       *slog.Logger
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the login success body (token plus public profile).
type LoginResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	Admin   admins.Profile `json:"admin"`
}

// ForgotPasswordRequest is the body for POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body for POST /api/auth/reset-password/:token.
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// NewAuthHandler creates the auth handler with its collaborating services.
func NewAuthHandler(log *slog.Logger, adminService *admins.Service, resetService *resettoken.Service, resetMailer ResetMailer, jwtSecret, clientURL string, expiresIn time.Duration) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		adminService: adminService,
		resetService: resetService,
		mailer:       resetMailer,
		jwtSecret:    jwtSecret,
		expiresIn:    expiresIn,
		clientURL:    clientURL,
		logger:       log.With(slog.String("handler", "auth")),
	}
}

// Register mounts the auth routes on the Echo instance.
func (h *AuthHandler) Register(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(authRateLimit)))
	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password/:token", h.ResetPassword)
}

// Login godoc
// @Summary Admin login
// @Description Validate admin credentials and issue a session JWT
// @Tags auth
// @Param payload body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/auth/login [post].
func (h *AuthHandler) Login(c echo.Context) error {
	if h.adminService == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "admin service not configured")
	}
	if strings.TrimSpace(h.jwtSecret) == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "jwt secret not configured")
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	admin, err := h.adminService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, admins.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Access Denied! You're Not Admin")
		}
		if errors.Is(err, admins.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}

	token, _, err := auth.GenerateToken(admin.ID, h.jwtSecret, h.expiresIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		Admin:   admin.Profile(),
	})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Issue a single-use reset token and email the reset link
// @Tags auth
// @Param payload body ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/forgot-password [post].
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	if h.adminService == nil || h.resetService == nil || h.mailer == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "auth services not configured")
	}

	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	ctx := c.Request().Context()
	admin, err := h.adminService.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, admins.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Admin not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}

	plain, _, err := h.resetService.Issue(ctx, admin.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}

	resetURL := mailer.ResetURL(h.clientURL, plain)
	if err := h.mailer.SendPasswordReset(ctx, admin.Email, resetURL); err != nil {
		h.logger.Error("reset email dispatch failed", slog.String("email", admin.Email), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Email could not be sent")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset email sent"})
}

// ResetPassword godoc
// @Summary Reset the password
// @Description Consume a reset token and set the new password
// @Tags auth
// @Param token path string true "Plaintext reset token"
// @Param payload body ResetPasswordRequest true "Reset password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/reset-password/{token} [post].
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Confirmation mismatch fails before any store access.
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "Passwords do not match")
	}
	if strings.TrimSpace(req.Password) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	if h.resetService == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "auth services not configured")
	}

	_, err := h.resetService.Consume(c.Request().Context(), c.Param("token"), req.Password)
	if err != nil {
		if errors.Is(err, resettoken.ErrInvalidOrExpired) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server Error")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful. Please login again."})
}
