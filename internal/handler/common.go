package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository" // repository holds data access layer
	"github.com/labstack/echo/v4"                                     // echo defines request context types
)

// AdminHandler bundles repositories for operators to manage companies,
// seat plans, buses, routes, schedules and sold tickets.
type AdminHandler struct {
	CompanyRepo  *repository.CompanyRepo  // CompanyRepo provides company persistence
	SeatPlanRepo *repository.SeatPlanRepo // SeatPlanRepo provides seat plan persistence
	BusRepo      *repository.BusRepo      // BusRepo provides bus persistence
	RouteRepo    *repository.RouteRepo    // RouteRepo provides route persistence
	ScheduleRepo *repository.ScheduleRepo // ScheduleRepo provides schedule persistence
	TicketRepo   *repository.TicketRepo   // TicketRepo provides ticket persistence
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil
func NewAdminHandler(companyRepo *repository.CompanyRepo, seatPlanRepo *repository.SeatPlanRepo, busRepo *repository.BusRepo, routeRepo *repository.RouteRepo, scheduleRepo *repository.ScheduleRepo, ticketRepo *repository.TicketRepo) *AdminHandler {
	if companyRepo == nil || seatPlanRepo == nil || busRepo == nil || routeRepo == nil || scheduleRepo == nil || ticketRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{
		CompanyRepo:  companyRepo,
		SeatPlanRepo: seatPlanRepo,
		BusRepo:      busRepo,
		RouteRepo:    routeRepo,
		ScheduleRepo: scheduleRepo,
		TicketRepo:   ticketRepo,
	}
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) { // perform type switch on the value
	case uint64: // when already uint64
		return t, nil // return directly
	case int: // when stored as int
		return uint64(t), nil // convert to uint64
	case int64: // when stored as int64
		return uint64(t), nil // convert to uint64
	case float64: // when stored as float64
		return uint64(t), nil // convert to uint64
	case string: // when stored as string
		if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
			return n, nil // return parsed number
		}
	} // end type switch
	return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}
