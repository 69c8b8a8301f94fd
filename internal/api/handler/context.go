package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/authstack/identity-service/internal/core/domain"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// currentUser extracts the authenticated identity injected by the auth
// middleware and fast-fails with 401 when it is absent, which means the
// route was wired without the middleware.
func currentUser(c echo.Context) (int64, domain.Role, error) {
	userID, ok := c.Get(CtxUserID).(int64)
	if !ok || userID == 0 {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get(CtxRole).(domain.Role)
	return userID, role, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

// pageParams reads ?page and ?per_page with the usual defaults.
func pageParams(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 20
	}
	return page, perPage
}

// requestOrigin captures the caller's address and agent for audit records.
func requestOrigin(c echo.Context) domain.Origin {
	return domain.Origin{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
