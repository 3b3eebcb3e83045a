package router // router defines how HTTP routes are registered for the API

import (
	"github.com/emran-niftyitsolution/tms-sub000/internal/handler"    // admin handlers
	"github.com/emran-niftyitsolution/tms-sub000/internal/middleware" // JWT + role middlewares
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers OWNER-scoped endpoints under /v1.
// All routes require a valid JWT and OWNER role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Companies ----
	g.POST("/companies", a.CreateCompany)
	// NOTE: Listing companies is handled by the public browse API.  The
	// owner-scoped company list lives under /my-companies to avoid route
	// conflicts with the public /v1/companies handler.
	g.GET("/my-companies", a.ListCompanies)
	g.PUT("/companies/:id", a.UpdateCompany)
	g.PATCH("/companies/:id", a.UpdateCompany) // allow partial/semantic updates via PATCH as well
	g.DELETE("/companies/:id", a.DeleteCompany)

	// ---- Seat plans ----
	g.POST("/companies/:id/seat-plans", a.CreateSeatPlan)
	g.GET("/companies/:id/seat-plans", a.ListSeatPlans)
	g.GET("/seat-plans/:id", a.GetSeatPlan)
	g.PUT("/seat-plans/:id", a.UpdateSeatPlan)
	g.PATCH("/seat-plans/:id", a.UpdateSeatPlan)
	g.DELETE("/seat-plans/:id", a.DeleteSeatPlan)

	// ---- Seat plan layout editing ----
	g.PUT("/seat-plans/:id/layout/dimensions", a.SetLayoutDimensions)
	g.POST("/seat-plans/:id/layout/aisles", a.ToggleLayoutAisle)
	g.POST("/seat-plans/:id/layout/rows", a.AppendLayoutRow)
	g.PUT("/seat-plans/:id/layout/cells", a.EditLayoutCell)
	g.PUT("/seat-plans/:id/layout/cells/bulk", a.BulkEditLayoutCells)
	g.POST("/seat-plans/:id/layout/commit", a.CommitLayout)

	// ---- Buses ----
	g.POST("/companies/:id/buses", a.CreateBus)
	g.GET("/companies/:id/buses", a.ListBuses)
	g.GET("/buses/:id", a.GetBus)
	g.PUT("/buses/:id", a.UpdateBus)
	g.PATCH("/buses/:id", a.UpdateBus)
	g.POST("/buses/:id/apply-plan", a.ApplyPlan)
	g.DELETE("/buses/:id", a.DeleteBus)

	// ---- Routes ----
	g.POST("/companies/:id/routes", a.CreateRoute)
	// NOTE: GET /v1/companies/:id/routes belongs to the public browse API, so
	// the owner-scoped listing (with timestamps) lives under /my-companies.
	g.GET("/my-companies/:id/routes", a.ListRoutes)
	g.GET("/routes/:id", a.GetRoute)
	g.PUT("/routes/:id", a.UpdateRoute)
	g.PATCH("/routes/:id", a.UpdateRoute)
	g.DELETE("/routes/:id", a.DeleteRoute)

	// ---- Schedules ----
	g.POST("/schedules", a.CreateSchedule)
	g.GET("/buses/:bus_id/schedules", a.ListSchedulesForBus)
	// allow full/partial updates to journey window, fare and status
	g.PUT("/schedules/:id", a.UpdateSchedule)
	g.PATCH("/schedules/:id", a.UpdateSchedule)
	// NOTE: Schedule details are handled by the public API at /v1/schedules/:id.
	g.DELETE("/schedules/:id", a.DeleteSchedule)
}
