package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/emran-niftyitsolution/tms-sub000/internal/repository"
	"github.com/labstack/echo/v4"
)

// ListScheduleTickets handles GET /v1/schedules/:id/tickets. It returns every
// ticket sold for a schedule run by the authenticated operator's fleet,
// including seats and passenger IDs.
func (h *AdminHandler) ListScheduleTickets(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	sched, err := h.ScheduleRepo.GetByID(c.Request().Context(), scheduleID)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if _, err := h.BusRepo.GetByIDAndOwner(c.Request().Context(), sched.BusID, ownerID); err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.TicketRepo.ListByScheduleForOwner(c.Request().Context(), scheduleID, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetOwnerTicket handles GET /v1/admin/tickets/:id. It looks up a single
// ticket sold on one of the operator's schedules.
func (h *AdminHandler) GetOwnerTicket(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	detail, err := h.TicketRepo.GetByIDForOwner(c.Request().Context(), ticketID, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}
	return c.JSON(http.StatusOK, detail)
}

// VerifyTicket handles GET /v1/admin/tickets/verify/:serial. Conductors scan
// or type a ticket serial and get the full ticket back when it belongs to the
// operator's fleet. Cancelled tickets report their status so the conductor
// can refuse boarding.
func (h *AdminHandler) VerifyTicket(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	serial := strings.TrimSpace(c.Param("serial"))
	if serial == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "serial is required"})
	}
	detail, err := h.TicketRepo.GetBySerial(c.Request().Context(), serial)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	sched, err := h.ScheduleRepo.GetByID(c.Request().Context(), detail.ScheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if _, err := h.BusRepo.GetByIDAndOwner(c.Request().Context(), sched.BusID, ownerID); err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "ticket belongs to another operator"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":  detail.Status == "CONFIRMED",
		"ticket": detail,
	})
}

// CancelOwnerTicket handles DELETE /v1/admin/tickets/:id. Operators can void
// a ticket they sold, which frees its seats for resale. The ticket row is kept
// with a CANCELLED status for the sales record.
func (h *AdminHandler) CancelOwnerTicket(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx := c.Request().Context()
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	_, _, err = h.TicketRepo.GetInfoForOwnerTx(ctx, tx, ticketID, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}
	if err := h.TicketRepo.CancelTx(ctx, tx, ticketID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}
