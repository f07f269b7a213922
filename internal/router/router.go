package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing

	"github.com/poslane/pos-admin/internal/handler"    // handlers implementing the endpoints
	"github.com/poslane/pos-admin/internal/middleware" // authorization gate and rate limiting
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Companies *handler.CompanyHandler
	Stores    *handler.StoreHandler
	Users     *handler.UserHandler
}

// RegisterRoutes registers all routes on the provided Echo instance.
// The authorization gate runs on every request and consults the policy
// table above, so public and protected routes are declared in one
// place rather than spread across per-group middleware.  The rate
// limiter guards only the /auth group, where credential guessing and
// token grinding would land.
func RegisterRoutes(e *echo.Echo, h Handlers, gate *middleware.Gate, authLimiter echo.MiddlewareFunc) {
	e.Use(gate.Middleware())

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Authentication endpoints.  All public per the policy table; the
	// verified/role requirements for login are enforced inside the
	// handlers, not by the gate.
	a := e.Group("/auth")
	if authLimiter != nil {
		a.Use(authLimiter)
	}
	a.POST("/login", h.Auth.Login)
	a.POST("/register", h.Auth.Register)
	a.GET("/verify-email", h.Auth.VerifyEmail)
	a.POST("/refresh-token", h.Auth.RefreshToken)
	a.POST("/logout", h.Auth.Logout)

	// Company administration.  Reads are open to any verified user,
	// writes are ADMIN-only (policy table).
	e.GET("/companies", h.Companies.List)
	e.GET("/companies/:id", h.Companies.Get)
	e.POST("/companies", h.Companies.Create)
	e.PATCH("/companies/:id", h.Companies.Update)
	e.DELETE("/companies/:id", h.Companies.Delete)

	// Store administration.
	e.GET("/stores", h.Stores.List)
	e.GET("/stores/:id", h.Stores.Get)
	e.POST("/stores", h.Stores.Create)
	e.PATCH("/stores/:id", h.Stores.Update)
	e.DELETE("/stores/:id", h.Stores.Delete)

	// User administration, ADMIN-only.
	e.GET("/users", h.Users.List)
	e.GET("/users/:id", h.Users.Get)
	e.DELETE("/users/:id", h.Users.Delete)
}
