package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/ayaznasser/vehicle-registry/internal/handler"    // handlers implementing the endpoints
	"github.com/ayaznasser/vehicle-registry/internal/middleware" // JWT authentication and role enforcement
)

// Registry bundles the handlers the route table needs.
type Registry struct {
	Auth       *handler.AuthHandler
	Profiles   *handler.ProfileHandler
	Vehicles   *handler.VehicleHandler
	Requests   *handler.BuyRequestHandler
	Inspection *handler.InspectionReportHandler
	Conformity *handler.ConformityReportHandler
	Wallet     *handler.WalletHandler
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh_token body or a bearer token; it
	// deliberately sits outside the JWT middleware so an expired access
	// token does not block session termination.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterRegistry registers the vehicle registry surface. All routes
// require a valid access token; the government-only operations
// (vehicle registration, profile verification) additionally require
// the GOVERNMENT role claim, and every handler re-checks authorization
// against the database before mutating anything. cacheGet, when
// non-nil, is applied to the read-only vehicle lookups that return the
// same payload for every caller.
func RegisterRegistry(e *echo.Echo, r Registry, jwtSecret string, cacheGet echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.ClaimRoleUser, handler.ClaimRoleGovernment))

	gov := e.Group("/v1")
	gov.Use(middleware.JWTAuth(jwtSecret))
	gov.Use(middleware.RequireRole(handler.ClaimRoleGovernment))

	// Identity profiles.
	auth.POST("/profiles", r.Profiles.Create)
	auth.GET("/profiles", r.Profiles.List)
	auth.GET("/profiles/:id", r.Profiles.Get)
	gov.POST("/profiles/:id/verify", r.Profiles.Verify)

	// Vehicles. The single-vehicle lookup is a public read: registry
	// records are public data and the response is identical for every
	// caller, which is what makes it safe to cache.
	gov.POST("/vehicles", r.Vehicles.Register)
	auth.GET("/vehicles", r.Vehicles.ListMine)
	if cacheGet != nil {
		e.GET("/v1/vehicles/:vin", r.Vehicles.Get, cacheGet)
	} else {
		e.GET("/v1/vehicles/:vin", r.Vehicles.Get)
	}
	auth.POST("/vehicles/:vin/sale", r.Vehicles.ListForSale)
	auth.DELETE("/vehicles/:vin/sale", r.Vehicles.CancelSale)
	auth.POST("/vehicles/:vin/transfer", r.Vehicles.Transfer)

	// Escrowed buy requests.
	auth.POST("/vehicles/:vin/buy-requests", r.Requests.Create)
	auth.POST("/vehicles/:vin/buy-requests/:buyer/accept", r.Requests.Accept)
	auth.POST("/vehicles/:vin/buy-requests/:buyer/reject", r.Requests.Reject)
	auth.GET("/buy-requests", r.Requests.List)

	// Inspection reports.
	auth.POST("/vehicles/:vin/inspection-reports", r.Inspection.Issue)
	auth.GET("/vehicles/:vin/inspection-reports", r.Inspection.ListByVehicle)
	auth.POST("/vehicles/:vin/inspection-reports/:id/approve", r.Inspection.Approve)

	// Conformity reports.
	auth.POST("/vehicles/:vin/conformity-reports", r.Conformity.Issue)
	auth.GET("/vehicles/:vin/conformity-reports", r.Conformity.ListByVehicle)
	auth.POST("/vehicles/:vin/conformity-reports/:id/accept", r.Conformity.Accept)

	// Wallet.
	auth.GET("/wallet", r.Wallet.Get)
}
