package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/authstack/identity-service/internal/api/handler"
	"github.com/authstack/identity-service/internal/api/middleware"
	"github.com/authstack/identity-service/internal/core/authz"
	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// Deps carries everything the router needs. The caller owns the
// lifecycle of the services and connections.
type Deps struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Activities ports.ActivityService
	Tokens     ports.TokenService
	Engine     *authz.Engine
	Limiter    handler.LoginLimiter

	Mongo *mongo.Database
	Redis *redis.Client
	Log   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	authHandler := handler.NewAuthHandler(d.Auth, d.Limiter, d.Log)
	userHandler := handler.NewUserHandler(d.Users, d.Activities, d.Engine)
	adminHandler := handler.NewAdminHandler(d.Users, d.Activities)

	authn := middleware.Auth(d.Tokens)

	// --- Authentication (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout, authn)

	// --- Account self-service ---
	users := e.Group("/users", authn)
	users.GET("/profile", userHandler.Profile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.PUT("/password", authHandler.ChangePassword)
	users.GET("/activities", userHandler.OwnActivities)
	users.GET("/:id/activities", userHandler.UserActivities)

	// --- Administration ---
	admin := e.Group("/admin", authn, middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.PUT("/users/:id/activate", adminHandler.ActivateUser)
	admin.PUT("/users/:id/deactivate", adminHandler.DeactivateUser)

	// The audit trail is guarded by permission rather than role so a
	// demoted admin loses access before their token expires.
	e.GET("/admin/activities", adminHandler.ListActivities,
		authn, middleware.RequirePermission(d.Engine, authz.PermActivityReadAny))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
