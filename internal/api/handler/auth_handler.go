package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authstack/identity-service/internal/api/metrics"
	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// LoginLimiter caps login attempts per identifier and source address.
// A nil limiter disables throttling.
type LoginLimiter interface {
	Allow(ctx context.Context, identifier, ip string) (bool, error)
	Reset(ctx context.Context, identifier, ip string) error
}

// AuthHandler exposes the authentication flows over HTTP.
type AuthHandler struct {
	authService ports.AuthService
	limiter     LoginLimiter
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, limiter LoginLimiter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter, log: log}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	// Username doubles as the identifier field: it accepts either a
	// username or an email, matching the login contract.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, requestOrigin(c))
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user":    user,
	})
}

// Login handles POST /auth/login. Attempts are rate limited per
// identifier and source IP before the password is even checked.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	ip := c.RealIP()

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, req.Username, ip)
		if err != nil {
			// Fail open; throttling is best effort.
			h.log.Warn().Err(err).Msg("login rate limiter unavailable")
		}
		if !allowed {
			metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
			metrics.RateLimitedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
	}

	result, err := h.authService.Login(ctx, req.Username, req.Password, requestOrigin(c))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, req.Username, ip); err != nil {
			h.log.Warn().Err(err).Msg("login rate limiter reset failed")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, result)
}

// Refresh handles POST /auth/refresh. Only a new access token is
// issued; the refresh token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	issued, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": issued})
}

// Logout handles POST /auth/logout. Stateless: the event is recorded
// but already-issued tokens remain valid until expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), userID, requestOrigin(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

// ChangePassword handles PUT /users/password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword, requestOrigin(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed successfully"})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDeleted), errors.Is(err, domain.ErrAccountDeactivated):
		return "forbidden"
	default:
		return "error"
	}
}

func registerResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUsernameTaken):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidUsername):
		return "invalid"
	default:
		return "error"
	}
}
