package handler

import (
	"context"       // detached context for fire-and-forget event publishing
	"database/sql"  // for sentinel errors returned from repository
	"errors"        // for errors.Is comparisons
	"net/http"      // HTTP status codes
	"strconv"       // parsing path parameters
	"strings"       // trimming request fields
	"time"          // working with timestamps

	"github.com/google/uuid" // ticket serial generation

	"github.com/emran-niftyitsolution/tms-sub000/internal/queue"      // event payloads
	"github.com/emran-niftyitsolution/tms-sub000/internal/repository" // repository layer
	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"   // grid model and booking overlay
	service "github.com/emran-niftyitsolution/tms-sub000/internal/service"
	"github.com/labstack/echo/v4" // Echo web framework
)

// lockDuration is how long a seat lock protects a position before it expires
// and the seat returns to sale.
const lockDuration = 5 * time.Minute

// CustomerHandler groups repositories required to perform seat locking,
// ticket purchase and ticket listing on behalf of passengers.  All methods
// assume that JWT authentication and role validation has already been
// performed by middleware.  Methods may return 401 Unauthorized if the user
// ID cannot be extracted from the context.  Each method runs critical DB
// operations inside a transaction to guarantee atomicity.
type CustomerHandler struct {
	ScheduleRepo *repository.ScheduleRepo // access to schedules and their layout snapshots
	SeatLockRepo *repository.SeatLockRepo // access to seat_locks for creating and deleting locks
	TicketRepo   *repository.TicketRepo   // access to tickets and ticket_seats
}

// NewCustomerHandler constructs a new CustomerHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewCustomerHandler(scheduleRepo *repository.ScheduleRepo, seatLockRepo *repository.SeatLockRepo, ticketRepo *repository.TicketRepo) *CustomerHandler {
	if scheduleRepo == nil || seatLockRepo == nil || ticketRepo == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		ScheduleRepo: scheduleRepo,
		SeatLockRepo: seatLockRepo,
		TicketRepo:   ticketRepo,
	}
}

// scheduleGrid loads a schedule and decodes its layout snapshot. The snapshot
// is written at schedule creation and never empty afterwards.
func (h *CustomerHandler) scheduleGrid(ctx context.Context, scheduleID uint64) (*repository.Schedule, *seatgrid.Grid, error) {
	sched, err := h.ScheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, err
	}
	g, err := seatgrid.LoadJSON(sched.LayoutJSON)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, repository.ErrScheduleNotFound
	}
	return sched, g, nil
}

// fareFor resolves the fare for one cell: the per-seat override when set,
// otherwise the schedule's flat fare.
func fareFor(sched *repository.Schedule) seatgrid.FareFunc {
	return func(cell seatgrid.Cell) uint32 {
		if cell.FareCents > 0 {
			return cell.FareCents
		}
		return sched.BaseFareCents
	}
}

// GetSeatMap handles GET /v1/schedules/:id/seat-map. It renders the
// schedule's layout snapshot with per-position statuses so a client can draw
// the booking view. Positions covered by sold tickets or unexpired locks
// render as BOOKED; the rest of the seats are AVAILABLE.
func (h *CustomerHandler) GetSeatMap(c echo.Context) error {
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()
	sched, g, err := h.scheduleGrid(ctx, scheduleID)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	booked, err := h.TicketRepo.BookedPositions(ctx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sold seats"})
	}
	locked, err := h.SeatLockRepo.ActivePositions(ctx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat locks"})
	}
	overlay := seatgrid.NewOverlay(g, append(booked, locked...), fareFor(sched))
	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id":     sched.ID,
		"status":          sched.Status,
		"departs_at":      sched.DepartsAt,
		"arrives_at":      sched.ArrivesAt,
		"base_fare_cents": sched.BaseFareCents,
		"total_seats":     sched.TotalSeats,
		"rows":            g.RowCount(),
		"columns":         g.ColumnCount(),
		"seat_map":        overlay.View(),
	})
}

// LockSeats handles POST /v1/schedules/:id/locks.  It allows a passenger to
// temporarily lock one or more seat positions for five minutes.  The request
// body must contain a JSON object with a "seats" array of {row, column}
// objects.  It returns a 201 Created response with the expiration timestamp
// when successful.  If any requested position is not a sellable seat, or is
// already sold or locked by another user, it returns 400 with an error
// message and the list of unavailable positions.
func (h *CustomerHandler) LockSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()
	sched, g, err := h.scheduleGrid(ctx, scheduleID)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if sched.Status != "SCHEDULED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule is not open for booking"})
	}
	var body struct {
		Seats []seatgrid.Position `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	// deduplicate positions to avoid duplicate locks
	unique := make([]seatgrid.Position, 0, len(body.Seats))
	seen := make(map[seatgrid.Position]struct{})
	for _, p := range body.Seats {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			unique = append(unique, p)
		}
	}
	// every requested position must be a sellable seat in the snapshot
	for _, p := range unique {
		cell, err := g.CellAt(p.Row, p.Column)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "position out of range", "position": p})
		}
		if cell.Kind != seatgrid.KindSeat {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "position is not a seat", "position": p})
		}
	}
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// drop expired locks before checking availability
	if _, err := h.SeatLockRepo.ExpireLocksTx(ctx, tx, scheduleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cleanup expired locks"})
	}
	booked, err := h.TicketRepo.BookedPositionsTx(ctx, tx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check seat availability"})
	}
	locked, err := h.SeatLockRepo.ActivePositionsTx(ctx, tx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check seat availability"})
	}
	taken := make(map[seatgrid.Position]struct{}, len(booked)+len(locked))
	for _, p := range booked {
		taken[p] = struct{}{}
	}
	for _, p := range locked {
		taken[p] = struct{}{}
	}
	unavailable := make([]seatgrid.Position, 0)
	for _, p := range unique {
		if _, ok := taken[p]; ok {
			unavailable = append(unavailable, p)
		}
	}
	if len(unavailable) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable,
		})
	}
	expiresAt := time.Now().UTC().Add(lockDuration)
	locks, err := repository.GenerateLockRecords(userID, scheduleID, unique, expiresAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate lock tokens"})
	}
	if err := h.SeatLockRepo.CreateMultipleTx(ctx, tx, locks); err != nil {
		// the unique index catches a concurrent lock on the same position
		if repository.IsDuplicateLock(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat was locked by another user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create locks"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"expires_at": expiresAt.Format(time.RFC3339),
		"seats":      unique,
	})
}

// ReleaseLocks handles DELETE /v1/schedules/:id/locks.  It releases all locks
// held by the current user on the specified schedule.  Returns 200 OK with
// the number of positions released.
func (h *CustomerHandler) ReleaseLocks(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	released, err := h.SeatLockRepo.DeleteByUserAndScheduleTx(ctx, tx, userID, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release locks"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{
		"released": len(released),
	})
}

// Purchase handles POST /v1/schedules/:id/purchase.  It finalises the
// caller's active locks on a schedule and issues a ticket.  The handler
// verifies that unexpired locks exist, prices each position from the layout
// snapshot, creates the ticket and its seats, and removes the locks.
// Returns 201 Created with the ticket ID, serial and total fare.
func (h *CustomerHandler) Purchase(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var body struct {
		PaymentRef string `json:"payment_ref"` // optional external payment reference
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	sched, g, err := h.scheduleGrid(ctx, scheduleID)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if sched.Status != "SCHEDULED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule is not open for booking"})
	}
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// expire stale locks first so a lapsed hold cannot be purchased
	if _, err := h.SeatLockRepo.ExpireLocksTx(ctx, tx, scheduleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cleanup expired locks"})
	}
	locks, err := h.SeatLockRepo.ActiveLocksByUserAndScheduleTx(ctx, tx, userID, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load locks"})
	}
	if len(locks) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active seat locks for this schedule"})
	}
	fare := fareFor(sched)
	seats := make([]repository.TicketSeatRecord, 0, len(locks))
	labels := make([]string, 0, len(locks))
	total := uint32(0)
	for _, l := range locks {
		cell, err := g.CellAt(l.Row, l.Column)
		if err != nil || cell.Kind != seatgrid.KindSeat {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "locked position is not a seat"})
		}
		f := fare(cell)
		total += f
		label := cell.DisplayText()
		labels = append(labels, label)
		seats = append(seats, repository.TicketSeatRecord{
			ScheduleID: scheduleID,
			Row:        l.Row,
			Column:     l.Column,
			SeatLabel:  label,
			FareCents:  f,
		})
	}
	rec := &repository.TicketRecord{
		Serial:         uuid.NewString(),
		UserID:         userID,
		ScheduleID:     scheduleID,
		Status:         "CONFIRMED",
		TotalFareCents: total,
	}
	if ref := strings.TrimSpace(body.PaymentRef); ref != "" {
		rec.PaymentRef = &ref
	}
	if err := h.TicketRepo.CreateTx(ctx, tx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket"})
	}
	for i := range seats {
		seats[i].TicketID = rec.ID
	}
	if err := h.TicketRepo.CreateSeatsBulkTx(ctx, tx, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create ticket seats"})
	}
	// release the locks that the ticket now supersedes
	if _, err := h.SeatLockRepo.DeleteByUserAndScheduleTx(ctx, tx, userID, scheduleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete locks"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	h.publishTicketIssued(rec, sched, labels)
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_id":        rec.ID,
		"serial":           rec.Serial,
		"total_fare_cents": total,
		"seats":            labels,
	})
}

// publishTicketIssued emits a ticket.issued event in the background. Event
// delivery is best effort and never affects the purchase response.
func (h *CustomerHandler) publishTicketIssued(rec *repository.TicketRecord, sched *repository.Schedule, labels []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		detail, err := h.TicketRepo.GetByIDForUser(ctx, rec.ID, rec.UserID)
		if err != nil {
			return
		}
		evt := queue.TicketIssuedEvent{
			TicketID:       rec.ID,
			Serial:         rec.Serial,
			UserID:         rec.UserID,
			ScheduleID:     sched.ID,
			BusID:          detail.BusID,
			BusName:        detail.BusName,
			Origin:         detail.Origin,
			Destination:    detail.Destination,
			SeatLabels:     labels,
			TotalFareCents: rec.TotalFareCents,
			IssuedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		if detail.CompanyName != nil {
			evt.CompanyName = *detail.CompanyName
		}
		if detail.DepartsAt != nil {
			evt.DepartsAt = *detail.DepartsAt
		}
		if detail.ArrivesAt != nil {
			evt.ArrivesAt = *detail.ArrivesAt
		}
		_ = service.PublishTicketIssued(ctx, evt)
	}()
}

// ListTickets handles GET /v1/my-tickets.  It returns all tickets purchased
// by the current user along with schedule, route, bus, company and seat
// details.  When no tickets exist, it returns an empty array.
func (h *CustomerHandler) ListTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	details, err := h.TicketRepo.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": details,
	})
}

// GetTicket handles GET /v1/tickets/:id.  It returns the details of a single
// ticket for the authenticated user.  When the ticket does not exist, it
// responds with 404.  Ownership is enforced in the repository query, so a
// ticket belonging to another user also reports 404.
func (h *CustomerHandler) GetTicket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || ticketID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx := c.Request().Context()
	detail, err := h.TicketRepo.GetByIDForUser(ctx, ticketID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item": detail,
	})
}

// CancelTicket handles DELETE /v1/tickets/:id.  It cancels a ticket belonging
// to the current user if the bus has not yet departed.  The ticket row is
// kept with a CANCELLED status and its seats return to sale.  It returns 204
// on success, 404 when the ticket does not exist, 403 when it belongs to
// another user, and 409 when the bus has already departed or the ticket was
// cancelled before.
func (h *CustomerHandler) CancelTicket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || ticketID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx := c.Request().Context()
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	_, departsAt, _, err := h.TicketRepo.GetInfoForUserTx(ctx, tx, ticketID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load ticket info"})
	}
	if !departsAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "bus already departed"})
	}
	if err := h.TicketRepo.CancelTx(ctx, tx, ticketID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel ticket"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}
