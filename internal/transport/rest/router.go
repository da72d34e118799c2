package rest

import (
	"database/sql"
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal/aircraft"
	"github.com/fbo-launchpad/fuel-ops/internal/auth"
	"github.com/fbo-launchpad/fuel-ops/internal/customer"
	"github.com/fbo-launchpad/fuel-ops/internal/fuelorder"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"github.com/fbo-launchpad/fuel-ops/internal/transport/middleware"
	"github.com/fbo-launchpad/fuel-ops/internal/truck"
	"github.com/fbo-launchpad/fuel-ops/internal/user"

	"github.com/go-chi/chi"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	FuelOrder *fuelorder.Handler
	RBAC      *rbac.Handler
	Truck     *truck.Handler
	Aircraft  *aircraft.Handler
	Customer  *customer.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. Every protected route runs
// behind the auth middleware, which seeds the request-scoped permission
// cache; admin route groups add a permission guard on top, and services
// re-check against the same cache.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, resolver *rbac.Resolver, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.TraceID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)

			pr.Route("/fuel-orders", func(fr chi.Router) {
				fr.Post("/", h.FuelOrder.CreateOrder)
				fr.Get("/", h.FuelOrder.ListOrders)
				fr.Get("/export", h.FuelOrder.ExportCSV)
				fr.Get("/stats/status-counts", h.FuelOrder.StatusCounts)
				fr.Get("/{id}", h.FuelOrder.GetOrder)
				fr.Patch("/{id}/status", h.FuelOrder.UpdateStatus)
				fr.Put("/{id}/submit-data", h.FuelOrder.SubmitData)
				fr.Patch("/{id}/review", h.FuelOrder.Review)
				fr.Patch("/{id}/cancel", h.FuelOrder.Cancel)
			})

			pr.Route("/admin", func(ar chi.Router) {
				ar.Group(func(ur chi.Router) {
					ur.Use(middleware.RequirePermission(resolver, rbac.PermViewUsers))
					ur.Get("/users", h.User.ListUsers)
					ur.Get("/users/{id}", h.User.GetUser)
				})
				ar.Group(func(ur chi.Router) {
					ur.Use(middleware.RequirePermission(resolver, rbac.PermManageUsers))
					ur.Post("/users", h.User.CreateUser)
					ur.Patch("/users/{id}", h.User.UpdateUser)
				})

				ar.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePermission(resolver, rbac.PermViewPermissions))
					rr.Get("/permissions", h.RBAC.ListPermissions)
				})
				ar.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePermission(resolver, rbac.PermManageRoles))
					rr.Get("/roles", h.RBAC.ListRoles)
					rr.Post("/roles", h.RBAC.CreateRole)
					rr.Get("/roles/{id}", h.RBAC.GetRole)
					rr.Patch("/roles/{id}", h.RBAC.UpdateRole)
					rr.Delete("/roles/{id}", h.RBAC.DeleteRole)
					rr.Post("/roles/{id}/permissions/{permissionID}", h.RBAC.GrantPermission)
					rr.Delete("/roles/{id}/permissions/{permissionID}", h.RBAC.RevokePermission)
				})
			})

			pr.Group(func(tr chi.Router) {
				tr.Use(middleware.RequirePermission(resolver, rbac.PermViewTrucks))
				tr.Get("/fuel-trucks", h.Truck.ListTrucks)
				tr.Get("/fuel-trucks/{id}", h.Truck.GetTruck)
			})
			pr.Group(func(tr chi.Router) {
				tr.Use(middleware.RequirePermission(resolver, rbac.PermManageTrucks))
				tr.Post("/fuel-trucks", h.Truck.CreateTruck)
				tr.Patch("/fuel-trucks/{id}", h.Truck.UpdateTruck)
			})

			pr.Group(func(acr chi.Router) {
				acr.Use(middleware.RequirePermission(resolver, rbac.PermViewAircraft))
				acr.Get("/aircraft", h.Aircraft.ListAircraft)
				acr.Get("/aircraft/{tailNumber}", h.Aircraft.GetAircraft)
			})
			pr.Group(func(acr chi.Router) {
				acr.Use(middleware.RequirePermission(resolver, rbac.PermManageAircraft))
				acr.Post("/aircraft", h.Aircraft.CreateAircraft)
				acr.Patch("/aircraft/{tailNumber}", h.Aircraft.UpdateAircraft)
			})

			pr.Group(func(cr chi.Router) {
				cr.Use(middleware.RequirePermission(resolver, rbac.PermViewCustomers))
				cr.Get("/customers", h.Customer.ListCustomers)
				cr.Get("/customers/{id}", h.Customer.GetCustomer)
			})
			pr.Group(func(cr chi.Router) {
				cr.Use(middleware.RequirePermission(resolver, rbac.PermManageCustomers))
				cr.Post("/customers", h.Customer.CreateCustomer)
				cr.Patch("/customers/{id}", h.Customer.UpdateCustomer)
			})
		})
	})
}
