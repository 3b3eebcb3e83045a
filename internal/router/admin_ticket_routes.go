package router

// This file registers owner-specific routes for managing sold tickets.  The
// routes defined here allow operators to list, view, verify and void tickets
// on schedules run by their fleet.  They are separate from the generic admin
// routes to keep concerns isolated.

import (
	"github.com/emran-niftyitsolution/tms-sub000/internal/handler"
	"github.com/emran-niftyitsolution/tms-sub000/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterAdminTickets registers routes that allow operators to manage
// tickets.  All routes are mounted under /v1 and require a JWT token as well
// as the OWNER role.  The provided handler supplies the business logic for
// listing, retrieving, verifying and cancelling tickets.
func RegisterAdminTickets(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)
	// List all tickets sold for a specific schedule
	g.GET("/schedules/:id/tickets", a.ListScheduleTickets)
	// Retrieve a single ticket (operator perspective)
	g.GET("/admin/tickets/:id", a.GetOwnerTicket)
	// Verify a ticket by serial at boarding
	g.GET("/admin/tickets/verify/:serial", a.VerifyTicket)
	// Void a ticket before departure (operator override)
	g.DELETE("/admin/tickets/:id", a.CancelOwnerTicket)
}
