// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to browse companies, routes and schedules without
// requiring authentication. Sensitive fields (owner IDs, timestamps, etc.)
// are filtered from responses.

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/labstack/echo/v4"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	CompanyRepo  *repository.CompanyRepo  // provides access to company data
	RouteRepo    *repository.RouteRepo    // provides access to route data
	BusRepo      *repository.BusRepo      // provides access to bus data
	ScheduleRepo *repository.ScheduleRepo // provides access to schedule data
}

// PublicCompany represents an operator exposed via the public API. It
// contains only safe fields.
type PublicCompany struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Mode string `json:"mode"`
}

// PublicRoute represents a route exposed via the public API.
type PublicRoute struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Stoppages   []string `json:"stoppages"`
}

// PublicSchedule represents a departure in list responses. Times are parsed
// into time.Time for better client handling. Zero values indicate an invalid
// parse.
type PublicSchedule struct {
	ID            uint64    `json:"id"`
	DepartsAt     time.Time `json:"departs_at"`
	ArrivesAt     time.Time `json:"arrives_at"`
	BaseFareCents uint32    `json:"base_fare_cents"`
	TotalSeats    uint32    `json:"total_seats"`
	Status        string    `json:"status"`
}

// PublicScheduleDetail represents a detailed schedule response with route and
// company names attached.
type PublicScheduleDetail struct {
	ID            uint64         `json:"id"`
	DepartsAt     time.Time      `json:"departs_at"`
	ArrivesAt     time.Time      `json:"arrives_at"`
	BaseFareCents uint32         `json:"base_fare_cents"`
	TotalSeats    uint32         `json:"total_seats"`
	Status        string         `json:"status"`
	Route         *PublicRoute   `json:"route,omitempty"`
	Company       *PublicCompany `json:"company,omitempty"`
	Bus           *struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"bus,omitempty"`
}

// GetPublicCompanies returns a list of all operators accessible to
// unauthenticated users. Response JSON contains an "items" array of
// PublicCompany.
func (h *PublicHandler) GetPublicCompanies(c echo.Context) error {
	ctx := c.Request().Context()
	companies, err := h.CompanyRepo.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicCompany, 0, len(companies))
	for _, co := range companies {
		out = append(out, PublicCompany{ID: co.ID, Name: co.Name, Mode: co.Mode})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicRoutesByCompany lists routes of an operator for unauthenticated
// users. It validates the company exists, then returns only non-sensitive
// fields.
func (h *PublicHandler) GetPublicRoutesByCompany(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	// ensure company exists
	if _, err := h.CompanyRepo.GetByID(ctx, id); err != nil {
		if err == repository.ErrCompanyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	routes, err := h.RouteRepo.ListByCompany(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRoute, 0, len(routes))
	for _, rt := range routes {
		out = append(out, PublicRoute{
			ID:          rt.ID,
			Name:        rt.Name,
			Origin:      rt.Origin,
			Destination: rt.Destination,
			Stoppages:   rt.Stoppages,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicSchedulesByRoute lists departures on a route for unauthenticated
// users. It ensures the route exists, then returns each schedule's journey
// window, fare and capacity.
func (h *PublicHandler) GetPublicSchedulesByRoute(c echo.Context) error {
	ctx := c.Request().Context()
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	// ensure route exists
	if _, err := h.RouteRepo.GetByID(ctx, routeID); err != nil {
		if err == repository.ErrRouteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	schedules, err := h.ScheduleRepo.ListByRoute(ctx, routeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicSchedule, 0, len(schedules))
	for _, s := range schedules {
		// parse DB time strings; if a parse fails, zero time is used
		departs, parseErr := time.Parse("2006-01-02 15:04:05", s.DepartsAt)
		if parseErr != nil {
			departs = time.Time{}
		}
		arrives, parseErr := time.Parse("2006-01-02 15:04:05", s.ArrivesAt)
		if parseErr != nil {
			arrives = time.Time{}
		}
		out = append(out, PublicSchedule{
			ID:            s.ID,
			DepartsAt:     departs,
			ArrivesAt:     arrives,
			BaseFareCents: s.BaseFareCents,
			TotalSeats:    s.TotalSeats,
			Status:        s.Status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicSchedule returns details of a single departure for unauthenticated
// users. It joins route and company names by following foreign keys. Only
// non-sensitive fields are included.
func (h *PublicHandler) GetPublicSchedule(c echo.Context) error {
	ctx := c.Request().Context()
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.ScheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	departs, _ := time.Parse("2006-01-02 15:04:05", s.DepartsAt)
	arrives, _ := time.Parse("2006-01-02 15:04:05", s.ArrivesAt)
	resp := PublicScheduleDetail{
		ID:            s.ID,
		DepartsAt:     departs,
		ArrivesAt:     arrives,
		BaseFareCents: s.BaseFareCents,
		TotalSeats:    s.TotalSeats,
		Status:        s.Status,
	}
	if rt, err := h.RouteRepo.GetByID(ctx, s.RouteID); err == nil {
		resp.Route = &PublicRoute{
			ID:          rt.ID,
			Name:        rt.Name,
			Origin:      rt.Origin,
			Destination: rt.Destination,
			Stoppages:   rt.Stoppages,
		}
		if co, err2 := h.CompanyRepo.GetByID(ctx, rt.CompanyID); err2 == nil {
			resp.Company = &PublicCompany{ID: co.ID, Name: co.Name, Mode: co.Mode}
		}
	}
	if bus, err := h.BusRepo.GetByID(ctx, s.BusID); err == nil {
		resp.Bus = &struct {
			ID   uint64 `json:"id"`
			Name string `json:"name"`
		}{ID: bus.ID, Name: bus.Name}
	}
	return c.JSON(http.StatusOK, resp)
}
