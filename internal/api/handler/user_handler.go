package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authstack/identity-service/internal/core/authz"
	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// UserHandler exposes self-service profile operations plus the
// activity listing with an ownership check.
type UserHandler struct {
	userService ports.UserService
	activities  ports.ActivityService
	engine      *authz.Engine
}

func NewUserHandler(userService ports.UserService, activities ports.ActivityService, engine *authz.Engine) *UserHandler {
	return &UserHandler{userService: userService, activities: activities, engine: engine}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// Profile handles GET /users/profile.
func (h *UserHandler) Profile(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /users/profile. Only username and email are
// updatable through this path.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, req.Username, req.Email, requestOrigin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated successfully",
		"user":    user,
	})
}

// OwnActivities handles GET /users/activities — the caller's own trail.
func (h *UserHandler) OwnActivities(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	page, perPage := pageParams(c)

	activities, err := h.activities.ListByUser(c.Request().Context(), userID, page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"activities": activities,
		"page":       page,
		"per_page":   perPage,
	})
}

// UserActivities handles GET /users/:id/activities. The owner may always
// read their own trail; anyone else needs activity:read_any.
func (h *UserHandler) UserActivities(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	ownerID, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if !h.engine.CanAccess(ctx, userID, ownerID, authz.PermActivityReadAny) {
		return domain.ErrPermissionDenied
	}

	page, perPage := pageParams(c)
	activities, err := h.activities.ListByUser(ctx, ownerID, page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"activities": activities,
		"user_id":    ownerID,
		"page":       page,
		"per_page":   perPage,
	})
}
