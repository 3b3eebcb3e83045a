package handler // handler package contains admin-side bus handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
	"github.com/labstack/echo/v4"
)

// CreateBus handles POST /v1/companies/:id/buses and registers a new vehicle
// under the company. When seat_plan_id is supplied the plan's committed layout
// is copied onto the bus immediately; otherwise the bus starts without a
// layout and ApplyPlan copies one in later.
func (h *AdminHandler) CreateBus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name           string `json:"name"`            // display name of the vehicle
		RegistrationNo string `json:"registration_no"` // unique plate number
		SeatPlanID     uint64 `json:"seat_plan_id"`    // optional plan to clone at creation
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	regNo := strings.ToUpper(strings.TrimSpace(body.RegistrationNo))
	if name == "" || regNo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and registration_no are required"})
	}
	if _, err := h.CompanyRepo.GetByIDAndOwner(c.Request().Context(), companyID, ownerID); err != nil {
		if err == repository.ErrCompanyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	bus := &repository.Bus{CompanyID: companyID, Name: name, RegistrationNo: regNo}
	if body.SeatPlanID != 0 {
		plan, err := h.SeatPlanRepo.GetByIDAndOwner(c.Request().Context(), body.SeatPlanID, ownerID)
		if err != nil {
			if err == repository.ErrSeatPlanNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		if plan.CompanyID != companyID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat plan belongs to a different company"})
		}
		g, err := seatgrid.LoadJSON(plan.LayoutJSON)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored layout is corrupt"})
		}
		if g == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat plan has no committed layout"})
		}
		raw, totalSeats, err := g.SaveJSON()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not encode layout"})
		}
		planID := plan.ID
		bus.SeatPlanID = &planID
		bus.LayoutJSON = raw
		bus.TotalSeats = uint32(totalSeats)
	}
	if err := h.BusRepo.Create(c.Request().Context(), bus); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "registration number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create bus"})
	}
	return c.JSON(http.StatusCreated, bus)
}

// ListBuses handles GET /v1/companies/:id/buses and returns all buses of a
// company owned by the caller.
func (h *AdminHandler) ListBuses(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.CompanyRepo.GetByIDAndOwner(c.Request().Context(), companyID, ownerID); err != nil {
		if err == repository.ErrCompanyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.BusRepo.ListByCompanyAndOwner(c.Request().Context(), companyID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBus handles GET /v1/buses/:id and returns a single bus with its layout
// document decoded for display.
func (h *AdminHandler) GetBus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	bus, err := h.BusRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	g, err := seatgrid.LoadJSON(bus.LayoutJSON)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored layout is corrupt"})
	}
	resp := echo.Map{
		"id":              bus.ID,
		"company_id":      bus.CompanyID,
		"name":            bus.Name,
		"registration_no": bus.RegistrationNo,
		"seat_plan_id":    bus.SeatPlanID,
		"total_seats":     bus.TotalSeats,
		"created_at":      bus.CreatedAt,
		"updated_at":      bus.UpdatedAt,
	}
	if g != nil {
		resp["layout"] = g.Document()
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateBus handles PUT/PATCH /v1/buses/:id and updates the bus name and
// registration number.
func (h *AdminHandler) UpdateBus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name           string `json:"name"`
		RegistrationNo string `json:"registration_no"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	regNo := strings.ToUpper(strings.TrimSpace(body.RegistrationNo))
	if name == "" || regNo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and registration_no are required"})
	}
	if err := h.BusRepo.Update(c.Request().Context(), id, ownerID, name, regNo); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "registration number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, _ := h.BusRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	return c.JSON(http.StatusOK, updated)
}

// ApplyPlan handles POST /v1/buses/:id/apply-plan. It copies the committed
// layout of a seat plan onto the bus. The copy is independent: later edits
// to the plan do not affect the bus, and schedules snapshot the bus layout
// again when they are created.
func (h *AdminHandler) ApplyPlan(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	busID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		SeatPlanID uint64 `json:"seat_plan_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatPlanID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_plan_id is required"})
	}
	bus, err := h.BusRepo.GetByIDAndOwner(c.Request().Context(), busID, ownerID)
	if err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	plan, err := h.SeatPlanRepo.GetByIDAndOwner(c.Request().Context(), body.SeatPlanID, ownerID)
	if err != nil {
		if err == repository.ErrSeatPlanNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if plan.CompanyID != bus.CompanyID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat plan belongs to a different company"})
	}
	g, err := seatgrid.LoadJSON(plan.LayoutJSON)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored layout is corrupt"})
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat plan has no committed layout"})
	}
	// Re-run the save normalization so the bus always carries a committed
	// document even if the plan was saved by an older editor state.
	raw, totalSeats, err := g.SaveJSON()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not encode layout"})
	}
	if err := h.BusRepo.ApplyPlan(c.Request().Context(), busID, ownerID, plan.ID, raw, uint32(totalSeats)); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not apply plan"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bus_id":       busID,
		"seat_plan_id": plan.ID,
		"total_seats":  totalSeats,
	})
}

// DeleteBus handles DELETE /v1/buses/:id. It removes a bus and its
// schedules and seat locks for the authenticated owner. Returns 204 on
// success, 404 if not found, 403 if the bus belongs to another owner and
// 409 when tickets have been issued for any of its schedules.
func (h *AdminHandler) DeleteBus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.BusRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete bus with sold tickets"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
