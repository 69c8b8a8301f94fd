package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/authstack/identity-service/internal/api/handler"
	"github.com/authstack/identity-service/internal/core/authz"
	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(context.Context, *domain.User) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) Update(context.Context, int64, ports.UserPatch) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) List(context.Context, int, int) ([]domain.User, error) { panic("not used") }
func (r *stubUserRepo) Delete(context.Context, int64) error                   { panic("not used") }

func ctxWith(t *testing.T, userID int64, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set(handler.CtxUserID, userID)
	}
	if role != "" {
		c.Set(handler.CtxRole, role)
	}
	return c, rec
}

func TestRequireRole_Allows(t *testing.T) {
	c, _ := ctxWith(t, 1, domain.RoleAdmin)

	called := false
	h := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	c, _ := ctxWith(t, 1, domain.RoleUser)

	h := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequirePermission(t *testing.T) {
	engine := authz.NewEngine(&stubUserRepo{users: map[int64]*domain.User{
		1: {ID: 1, Role: domain.RoleUser},
		2: {ID: 2, Role: domain.RoleAdmin},
	}})

	cases := []struct {
		name     string
		userID   int64
		wantCode int
	}{
		{"admin allowed", 2, http.StatusOK},
		{"user forbidden", 1, http.StatusForbidden},
		{"missing identity unauthorized", 0, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := ctxWith(t, tc.userID, "")

			h := RequirePermission(engine, authz.PermActivityReadAny)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			err := h(c)
			if tc.wantCode == http.StatusOK {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				return
			}
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != tc.wantCode {
				t.Fatalf("expected %d, got %v", tc.wantCode, err)
			}
		})
	}
}
