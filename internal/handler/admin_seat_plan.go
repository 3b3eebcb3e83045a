package handler

// This file defines HTTP handlers for managing seat plans. A seat plan is a
// reusable deck layout owned by a company; its grid is edited through the
// layout endpoints in admin_layout.go and stored as a JSON document. Buses
// adopt a plan by copying its layout, so plans can be edited freely without
// touching vehicles that already applied them.

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
	"github.com/labstack/echo/v4"
)

// seatPlanResp is the JSON shape returned for a single seat plan. The grid
// document is included verbatim; clients that only need metadata can ignore it.
type seatPlanResp struct {
	ID          uint64                 `json:"id"`
	CompanyID   uint64                 `json:"company_id"`
	Name        string                 `json:"name"`
	VehicleType string                 `json:"vehicle_type,omitempty"`
	TotalSeats  uint32                 `json:"total_seats"`
	Layout      *seatgrid.GridDocument `json:"layout,omitempty"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// planToResp converts a repository seat plan into its response shape,
// decoding the stored layout document when one exists.
func planToResp(p *repository.SeatPlan, includeLayout bool) (*seatPlanResp, error) {
	resp := &seatPlanResp{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Name:        p.Name,
		VehicleType: p.VehicleType,
		TotalSeats:  p.TotalSeats,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if includeLayout {
		g, err := seatgrid.LoadJSON(p.LayoutJSON)
		if err != nil {
			return nil, err
		}
		if g != nil {
			doc := g.Document()
			resp.Layout = &doc
		}
	}
	return resp, nil
}

// CreateSeatPlan handles POST /v1/companies/:id/seat-plans. It creates a
// named plan under the company, optionally initializing an empty grid with
// the given dimensions. The company must belong to the authenticated owner.
func (h *AdminHandler) CreateSeatPlan(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name        string `json:"name"`         // display name of the plan
		VehicleType string `json:"vehicle_type"` // optional vehicle type label
		RowCount    int    `json:"rows"`         // optional initial row count
		ColCount    int    `json:"columns"`      // optional initial column count
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if _, err := h.CompanyRepo.GetByIDAndOwner(c.Request().Context(), companyID, ownerID); err != nil {
		if err == repository.ErrCompanyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	plan := &repository.SeatPlan{CompanyID: companyID, Name: name, VehicleType: strings.TrimSpace(body.VehicleType)}
	// When dimensions are supplied, start the plan with an empty grid of
	// that size so layout editing can begin immediately.
	if body.RowCount > 0 || body.ColCount > 0 {
		g, err := seatgrid.New(body.RowCount, body.ColCount)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dimensions"})
		}
		raw, err := g.MarshalJSON()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not encode layout"})
		}
		plan.LayoutJSON = raw
	}
	if err := h.SeatPlanRepo.Create(c.Request().Context(), plan); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat plan name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create seat plan"})
	}
	resp, err := planToResp(plan, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not decode layout"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListSeatPlans handles GET /v1/companies/:id/seat-plans and returns all
// plans of a company owned by the caller. Layout documents are omitted.
func (h *AdminHandler) ListSeatPlans(c echo.Context) error {
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
	items, err := h.SeatPlanRepo.ListByCompanyAndOwner(c.Request().Context(), companyID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]seatPlanResp, 0, len(items))
	for i := range items {
		r, err := planToResp(&items[i], false)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not decode layout"})
		}
		out = append(out, *r)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetSeatPlan handles GET /v1/seat-plans/:id and returns a single plan with
// its full layout document for the editor.
func (h *AdminHandler) GetSeatPlan(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	plan, err := h.SeatPlanRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == repository.ErrSeatPlanNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	resp, err := planToResp(plan, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not decode layout"})
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateSeatPlan handles PUT/PATCH /v1/seat-plans/:id and changes a plan's
// name and vehicle type. Omitting vehicle_type keeps the current value.
func (h *AdminHandler) UpdateSeatPlan(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name        string  `json:"name"`
		VehicleType *string `json:"vehicle_type"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	existing, err := h.SeatPlanRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == repository.ErrSeatPlanNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	vehicleType := existing.VehicleType
	if body.VehicleType != nil {
		vehicleType = strings.TrimSpace(*body.VehicleType)
	}
	if err := h.SeatPlanRepo.UpdateMeta(c.Request().Context(), id, ownerID, name, vehicleType); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		}
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat plan name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.SeatPlanRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	resp, err := planToResp(updated, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not decode layout"})
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteSeatPlan handles DELETE /v1/seat-plans/:id. Buses that applied the
// plan keep their layout copy; only the plan itself is removed. Returns 204
// on success, 404 if not found and 403 if the plan belongs to another owner.
func (h *AdminHandler) DeleteSeatPlan(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.SeatPlanRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
