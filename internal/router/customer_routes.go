package router

import (
	"github.com/emran-niftyitsolution/tms-sub000/internal/handler"
	"github.com/emran-niftyitsolution/tms-sub000/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterCustomer registers passenger-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Passengers can lock
// seats on a schedule, release their locks, purchase tickets and view their
// own tickets.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	// Note: GET /v1/schedules/:id/seat-map is registered on the public router
	// so that guests can view seat availability.  Customer-specific endpoints
	// begin here.
	g.POST("/schedules/:id/locks", h.LockSeats)
	g.DELETE("/schedules/:id/locks", h.ReleaseLocks)
	g.POST("/schedules/:id/purchase", h.Purchase)
	g.GET("/my-tickets", h.ListTickets)

	// Ticket detail and cancellation endpoints for passengers.  These allow a
	// passenger to view or cancel a ticket belonging to themselves.  They are
	// protected by the CUSTOMER role and validated within the handler.
	g.GET("/tickets/:id", h.GetTicket)
	g.DELETE("/tickets/:id", h.CancelTicket)
}
