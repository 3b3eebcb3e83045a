package handler // handler package contains admin-side schedule handlers

import (
	"database/sql" // sql is needed for sentinel errors during schedule updates
	"net/http"     // http defines status codes
	"strconv"      // strconv converts path params to integers
	"strings"      // strings helps with trimming whitespace
	"time"         // time is used for parsing and formatting timestamps

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
	"github.com/labstack/echo/v4"
)

// dbTimeLayout is the timestamp format stored in the schedules table.
const dbTimeLayout = "2006-01-02 15:04:05"

// CreateSchedule handles POST /v1/schedules and creates a departure of a bus
// on a route. The bus's current layout is snapshotted onto the schedule so
// later layout changes do not affect seats already on sale.
func (h *AdminHandler) CreateSchedule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BusID         uint64  `json:"bus_id"`          // bus running the departure
		RouteID       uint64  `json:"route_id"`        // route being served
		DepartsAt     string  `json:"departs_at"`      // ISO departure time
		ArrivesAt     string  `json:"arrives_at"`      // ISO arrival time
		BaseFareCents *uint32 `json:"base_fare_cents"` // optional default fare
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BusID == 0 || body.RouteID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bus_id and route_id are required"})
	}
	departsAt := strings.TrimSpace(body.DepartsAt)
	arrivesAt := strings.TrimSpace(body.ArrivesAt)
	if departsAt == "" || arrivesAt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departs_at and arrives_at are required"})
	}
	bus, err := h.BusRepo.GetByIDAndOwner(c.Request().Context(), body.BusID, ownerID)
	if err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify bus"})
	}
	route, err := h.RouteRepo.GetByIDAndOwner(c.Request().Context(), body.RouteID, ownerID)
	if err != nil {
		if err == repository.ErrRouteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify route"})
	}
	if route.CompanyID != bus.CompanyID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "route belongs to a different company"})
	}
	departTime, err := time.Parse(time.RFC3339, departsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departs_at format"})
	}
	arriveTime, err := time.Parse(time.RFC3339, arrivesAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrives_at format"})
	}
	if !arriveTime.After(departTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrives_at must be after departs_at"})
	}
	// A schedule needs seats to sell, so the bus must carry a layout.
	g, err := seatgrid.LoadJSON(bus.LayoutJSON)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored layout is corrupt"})
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bus has no seat layout applied"})
	}
	var fare uint32
	if body.BaseFareCents != nil {
		fare = *body.BaseFareCents
	}
	departStr := departTime.UTC().Format(dbTimeLayout)
	arriveStr := arriveTime.UTC().Format(dbTimeLayout)
	// The same bus cannot run two departures at once.
	overlaps, err := h.ScheduleRepo.FindOverlapping(c.Request().Context(), body.BusID, departStr, arriveStr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing schedules"})
	}
	if len(overlaps) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "schedule overlaps with an existing departure of this bus",
			"overlaps": overlaps,
		})
	}
	raw, totalSeats, err := g.SaveJSON()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not encode layout"})
	}
	sched := &repository.Schedule{
		BusID:         body.BusID,
		RouteID:       body.RouteID,
		DepartsAt:     departStr,
		ArrivesAt:     arriveStr,
		BaseFareCents: fare,
		LayoutJSON:    raw,
		TotalSeats:    uint32(totalSeats),
	}
	if err := h.ScheduleRepo.Create(c.Request().Context(), sched); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create schedule"})
	}
	return c.JSON(http.StatusCreated, sched)
}

// ListSchedulesForBus handles GET /v1/buses/:bus_id/schedules and returns all
// departures of a bus owned by the caller.
func (h *AdminHandler) ListSchedulesForBus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	busID, err := strconv.ParseUint(c.Param("bus_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus_id"})
	}
	if _, err := h.BusRepo.GetByIDAndOwner(c.Request().Context(), busID, ownerID); err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.ScheduleRepo.ListByBusAndOwner(c.Request().Context(), busID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedules"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateSchedule handles PUT/PATCH /v1/schedules/:id. The journey window,
// base fare and status can change; the layout snapshot is immutable once the
// schedule exists.
func (h *AdminHandler) UpdateSchedule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	existing, err := h.ScheduleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		DepartsAt     *string `json:"departs_at"`
		ArrivesAt     *string `json:"arrives_at"`
		BaseFareCents *uint32 `json:"base_fare_cents"`
		Status        *string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	departStr := existing.DepartsAt
	arriveStr := existing.ArrivesAt
	if body.DepartsAt != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.DepartsAt))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departs_at format"})
		}
		departStr = t.UTC().Format(dbTimeLayout)
	}
	if body.ArrivesAt != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.ArrivesAt))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrives_at format"})
		}
		arriveStr = t.UTC().Format(dbTimeLayout)
	}
	if arriveStr <= departStr {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrives_at must be after departs_at"})
	}
	fare := existing.BaseFareCents
	if body.BaseFareCents != nil {
		fare = *body.BaseFareCents
	}
	status := existing.Status
	if body.Status != nil {
		status = strings.ToUpper(strings.TrimSpace(*body.Status))
		switch status {
		case "SCHEDULED", "CANCELLED", "DEPARTED":
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}
	overlaps, err := h.ScheduleRepo.FindOverlappingExcluding(c.Request().Context(), existing.BusID, id, departStr, arriveStr)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing schedules"})
	}
	if len(overlaps) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "schedule overlaps with an existing departure of this bus",
			"overlaps": overlaps,
		})
	}
	sched := &repository.Schedule{
		ID:            id,
		DepartsAt:     departStr,
		ArrivesAt:     arriveStr,
		BaseFareCents: fare,
		Status:        status,
	}
	if err := h.ScheduleRepo.UpdateByIDAndOwner(c.Request().Context(), sched, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		if err == repository.ErrNoChange {
			return c.JSON(http.StatusOK, existing)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.ScheduleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteSchedule handles DELETE /v1/schedules/:id. It removes a schedule and
// its seat locks if it belongs to a bus owned by the authenticated user. If
// tickets have been issued for the schedule, the deletion is aborted with a
// 409 Conflict. A 404 is returned when the schedule does not exist and a 403
// when it belongs to another owner.
func (h *AdminHandler) DeleteSchedule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.ScheduleRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		switch err {
		case repository.ErrScheduleNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete schedule with sold tickets"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
