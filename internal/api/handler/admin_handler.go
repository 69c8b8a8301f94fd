package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// AdminHandler exposes account administration. Routes are mounted
// behind the admin guard; the remaining checks here are the self-action
// guards: an admin cannot deactivate, delete, or demote themselves.
type AdminHandler struct {
	userService ports.UserService
	activities  ports.ActivityService
}

func NewAdminHandler(userService ports.UserService, activities ports.ActivityService) *AdminHandler {
	return &AdminHandler{userService: userService, activities: activities}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=user admin"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"is_active"`
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, perPage := pageParams(c)
	users, err := h.userService.List(c.Request().Context(), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":    users,
		"page":     page,
		"per_page": perPage,
	})
}

// GetUser handles GET /admin/users/:id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /admin/users.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}, requestOrigin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user created successfully",
		"user":    user,
	})
}

// UpdateUser handles PUT /admin/users/:id.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	adminID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == nil && req.Email == nil && req.Password == nil && req.Role == nil && req.IsActive == nil {
		return domain.ErrMissingFields
	}

	// Self-demotion guard: an admin cannot strip their own privileges.
	if adminID == id && req.Role != nil && domain.Role(*req.Role) != domain.RoleAdmin {
		return domain.ErrSelfAction
	}

	in := ports.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.userService.Update(c.Request().Context(), id, in, requestOrigin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user updated successfully",
		"user":    user,
	})
}

// ActivateUser handles PUT /admin/users/:id/activate.
func (h *AdminHandler) ActivateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.SetActive(c.Request().Context(), id, true, requestOrigin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user updated successfully",
		"user":    user,
	})
}

// DeactivateUser handles PUT /admin/users/:id/deactivate.
func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	adminID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if adminID == id {
		return domain.ErrSelfAction
	}

	user, err := h.userService.SetActive(c.Request().Context(), id, false, requestOrigin(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user updated successfully",
		"user":    user,
	})
}

// DeleteUser handles DELETE /admin/users/:id — always a soft delete.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	adminID, _, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if adminID == id {
		return domain.ErrSelfAction
	}

	if err := h.userService.Delete(c.Request().Context(), id, requestOrigin(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted successfully"})
}

// ListActivities handles GET /admin/activities.
func (h *AdminHandler) ListActivities(c echo.Context) error {
	page, perPage := pageParams(c)
	activities, err := h.activities.ListAll(c.Request().Context(), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"activities": activities,
		"page":       page,
		"per_page":   perPage,
	})
}
