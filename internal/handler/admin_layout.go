package handler

// This file implements the layout editing endpoints for seat plans. Each
// request loads the plan's stored grid document, applies one editing
// operation through the seatgrid package and writes the document back.
// Working grids keep sparse cells and raw seat numbers; the commit endpoint
// expands implicit empties, renumbers the seats and records the sellable
// capacity, producing the document that apply-plan copies onto buses.

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
	"github.com/labstack/echo/v4"
)

// loadPlanGrid fetches the plan with ownership enforced and decodes its grid.
// A plan without a layout yields a nil grid; callers decide whether that is
// acceptable for their operation. On failure the response has already been
// written and false is returned.
func (h *AdminHandler) loadPlanGrid(c echo.Context, ownerID uint64) (*repository.SeatPlan, *seatgrid.Grid, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return nil, nil, false
	}
	plan, err := h.SeatPlanRepo.GetByIDAndOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if err == repository.ErrSeatPlanNotFound {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return nil, nil, false
	}
	g, err := seatgrid.LoadJSON(plan.LayoutJSON)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored layout is corrupt"})
		return nil, nil, false
	}
	return plan, g, true
}

// storePlanGrid serializes the working grid back into the plan row, leaving
// the committed seat total untouched.
func (h *AdminHandler) storePlanGrid(c echo.Context, plan *repository.SeatPlan, ownerID uint64, g *seatgrid.Grid) error {
	raw, err := g.MarshalJSON()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not encode layout"})
	}
	if err := h.SeatPlanRepo.UpdateLayout(c.Request().Context(), plan.ID, ownerID, raw, plan.TotalSeats); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save layout"})
	}
	doc := g.Document()
	return c.JSON(http.StatusOK, echo.Map{"layout": doc})
}

// layoutErrorStatus maps seatgrid editing errors to HTTP status codes.
// Structural and addressing mistakes are client errors; anything else is
// treated as internal.
func layoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, seatgrid.ErrOutOfRange),
		errors.Is(err, seatgrid.ErrBadDimension),
		errors.Is(err, seatgrid.ErrNotEditable),
		errors.Is(err, seatgrid.ErrAisleColumn):
		return http.StatusBadRequest
	case errors.Is(err, seatgrid.ErrModeActive), errors.Is(err, seatgrid.ErrNotEditing):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SetLayoutDimensions handles PUT /v1/seat-plans/:id/layout/dimensions. It
// resizes the working grid; shrinking discards cells outside the new bounds
// and aisle columns beyond the new width.
func (h *AdminHandler) SetLayoutDimensions(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	plan, g, ok := h.loadPlanGrid(c, ownerID)
	if !ok {
		return nil
	}
	if g == nil {
		// First dimension call on a plan created without a layout.
		g, err = seatgrid.New(body.Rows, body.Columns)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dimensions"})
		}
		return h.storePlanGrid(c, plan, ownerID, g)
	}
	ed := seatgrid.NewEditor(g)
	if err := ed.SetRowCount(body.Rows); err != nil {
		return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
	}
	if err := ed.SetColumnCount(body.Columns); err != nil {
		return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
	}
	return h.storePlanGrid(c, plan, ownerID, g)
}

// ToggleLayoutAisle handles POST /v1/seat-plans/:id/layout/aisles. It
// toggles aisle membership for one column; turning a column into an aisle
// replaces any seats in it with aisle markers.
func (h *AdminHandler) ToggleLayoutAisle(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Column int `json:"column"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	plan, g, ok := h.loadPlanGrid(c, ownerID)
	if !ok {
		return nil
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan has no layout"})
	}
	ed := seatgrid.NewEditor(g)
	if err := ed.ToggleAisleColumn(body.Column); err != nil {
		return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
	}
	return h.storePlanGrid(c, plan, ownerID, g)
}

// AppendLayoutRow handles POST /v1/seat-plans/:id/layout/rows. It appends a
// row to the bottom of the grid and fills it from the supplied per-column
// values using the editor's token rules: empty text skips the column, "xx"
// places a broken seat, "xy" places an aisle cell and any other text becomes
// a labelled seat. Aisle columns are filled automatically and must not be
// supplied.
func (h *AdminHandler) AppendLayoutRow(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Values []struct {
			Column int    `json:"column"`
			Text   string `json:"text"`
		} `json:"values"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	plan, g, ok := h.loadPlanGrid(c, ownerID)
	if !ok {
		return nil
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan has no layout"})
	}
	ed := seatgrid.NewEditor(g)
	if _, err := ed.BeginAppendRow(); err != nil {
		return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
	}
	for _, v := range body.Values {
		if err := ed.SetAppendValue(v.Column, v.Text); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	}
	if err := ed.ConfirmAppendRow(); err != nil {
		return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
	}
	return h.storePlanGrid(c, plan, ownerID, g)
}

// EditLayoutCell handles PUT /v1/seat-plans/:id/layout/cells. The action
// field selects the operation: "set" (default) rewrites the cell from text,
// "toggle_broken" flips a seat between usable and broken, "make_aisle" turns
// the cell's whole column into an aisle and "remove" empties the cell.
func (h *AdminHandler) EditLayoutCell(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Row    int    `json:"row"`
		Column int    `json:"column"`
		Action string `json:"action"`
		Text   string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	plan, g, ok := h.loadPlanGrid(c, ownerID)
	if !ok {
		return nil
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan has no layout"})
	}
	ed := seatgrid.NewEditor(g)
	switch strings.ToLower(strings.TrimSpace(body.Action)) {
	case "", "set":
		if _, err := ed.BeginCellEdit(body.Row, body.Column); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
		if err := ed.ConfirmCellEdit(body.Text); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	case "toggle_broken":
		if err := ed.ToggleBroken(body.Row, body.Column); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	case "make_aisle":
		if err := ed.MakeAisle(body.Row, body.Column); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	case "remove":
		if err := ed.RemoveCell(body.Row, body.Column); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}
	return h.storePlanGrid(c, plan, ownerID, g)
}

// BulkEditLayoutCells handles PUT /v1/seat-plans/:id/layout/cells/bulk. When
// a row is supplied only that row is editable; otherwise the whole grid is.
// Entries replace cell text using the same token rules as single-cell edits;
// positions in aisle columns or outside the scope are rejected.
func (h *AdminHandler) BulkEditLayoutCells(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Row     *int `json:"row"` // nil means whole-grid scope
		Entries []struct {
			Row    int    `json:"row"`
			Column int    `json:"column"`
			Text   string `json:"text"`
		} `json:"entries"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	plan, g, ok := h.loadPlanGrid(c, ownerID)
	if !ok {
		return nil
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan has no layout"})
	}
	ed := seatgrid.NewEditor(g)
	if body.Row != nil {
		if err := ed.BeginRowEdit(*body.Row); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	} else {
		if err := ed.BeginGridEdit(); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	}
	for _, e := range body.Entries {
		if err := ed.SetBufferText(e.Row, e.Column, e.Text); err != nil {
			return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
		}
	}
	if err := ed.ConfirmBulk(); err != nil {
		return c.JSON(layoutErrorStatus(err), echo.Map{"error": err.Error()})
	}
	return h.storePlanGrid(c, plan, ownerID, g)
}

// CommitLayout handles POST /v1/seat-plans/:id/layout/commit. It finalizes
// the working grid: implicit empties become numbered seat placeholders, seat
// numbers are rewritten in row-major order skipping aisles, and the sellable
// seat count is recorded on the plan. The committed document is what
// apply-plan later copies onto a bus.
func (h *AdminHandler) CommitLayout(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	plan, g, ok := h.loadPlanGrid(c, ownerID)
	if !ok {
		return nil
	}
	if g == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan has no layout"})
	}
	raw, totalSeats, err := g.SaveJSON()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not encode layout"})
	}
	if err := h.SeatPlanRepo.UpdateLayout(c.Request().Context(), plan.ID, ownerID, raw, uint32(totalSeats)); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save layout"})
	}
	payload := g.Save()
	return c.JSON(http.StatusOK, echo.Map{
		"layout":      payload.GridDocument,
		"total_seats": totalSeats,
	})
}
