// Package repository contains data access logic for schedule operations. This
// file defines the Schedule model and repository methods. A Schedule is a
// departure of a specific bus along a route. At creation it snapshots the
// bus's deck layout into its own layout_json column, so later edits to the
// bus or its plan never change what was sold for this departure.
// Sensitive fields such as BaseFareCents, Status, CreatedAt and UpdatedAt
// should not be exposed via public API responses.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
)

// Schedule represents a single departure of a bus on a route. DepartsAt and
// ArrivesAt define the journey window; BaseFareCents is the default fare for
// seats without a per-seat override in the layout.
// NOTE: Time strings are stored in DB format "2006-01-02 15:04:05" (UTC).
type Schedule struct {
	ID            uint64 // ID is the primary key of the schedule
	BusID         uint64 // BusID references the bus running this departure
	RouteID       uint64 // RouteID references the route being served
	DepartsAt     string // DepartsAt is the DB timestamp of departure ("YYYY-MM-DD HH:MM:SS" UTC)
	ArrivesAt     string // ArrivesAt is the DB timestamp of arrival   ("YYYY-MM-DD HH:MM:SS" UTC)
	BaseFareCents uint32 // BaseFareCents is the default fare for a seat in cents
	Status        string // Status is the state of the schedule (SCHEDULED, CANCELLED, DEPARTED)
	LayoutJSON    []byte // LayoutJSON is the layout snapshot taken from the bus at creation
	TotalSeats    uint32 // TotalSeats is the sellable capacity of the snapshot
	CreatedAt     string // CreatedAt records row creation time
	UpdatedAt     string // UpdatedAt records last update time
}

// ErrScheduleNotFound indicates that a schedule was not located in the DB.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrNoChange indicates the UPDATE attempted to set fields equal to current values.
var ErrNoChange = errors.New("no change")

// ScheduleRepo manages persistence for schedules.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories. Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *ScheduleRepo) DB() *sql.DB {
	return r.db
}

// Create inserts a new schedule into the database and assigns the generated
// ID back to the struct. The caller supplies bus_id, route_id, the journey
// window, the base fare and the layout snapshot copied from the bus. Status
// is implicitly SCHEDULED by the DB.
func (r *ScheduleRepo) Create(ctx context.Context, s *Schedule) error {
	const q = `INSERT INTO schedules (bus_id, route_id, departs_at, arrives_at, base_fare_cents, layout_json, total_seats)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.BusID, s.RouteID, s.DepartsAt, s.ArrivesAt, s.BaseFareCents, string(s.LayoutJSON), s.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Fetch the freshly inserted row to populate default fields (status, created_at, updated_at)
	const sel = `SELECT status, created_at, updated_at FROM schedules WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a schedule by its ID. It returns ErrScheduleNotFound if
// there is no matching row. The layout snapshot is included.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*Schedule, error) {
	const q = `SELECT id, bus_id, route_id, departs_at, arrives_at, base_fare_cents, status, layout_json, total_seats, created_at, updated_at
	           FROM schedules WHERE id = ?`
	var s Schedule
	var layout sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.BusID, &s.RouteID, &s.DepartsAt, &s.ArrivesAt, &s.BaseFareCents, &s.Status, &layout, &s.TotalSeats, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if layout.Valid {
		s.LayoutJSON = []byte(layout.String)
	}
	return &s, nil
}

// ListByBusAndOwner returns all schedules for a given bus that belong to the
// specified owner. The owner constraint is enforced via the buses and
// companies tables. Results are ordered by departure time ascending; the
// layout snapshots are omitted from list results.
func (r *ScheduleRepo) ListByBusAndOwner(ctx context.Context, busID, ownerID uint64) ([]Schedule, error) {
	const q = `SELECT s.id, s.bus_id, s.route_id, s.departs_at, s.arrives_at, s.base_fare_cents, s.status, s.total_seats, s.created_at, s.updated_at
	           FROM schedules s
	           JOIN buses b ON b.id = s.bus_id
	           JOIN companies c ON c.id = b.company_id
	           WHERE s.bus_id = ? AND c.owner_id = ?
	           ORDER BY s.departs_at ASC`
	return r.list(ctx, q, busID, ownerID)
}

// ListByRoute returns all schedules serving a route regardless of owner. It
// is used by public browse endpoints. Schedules are ordered by departure
// time ascending.
func (r *ScheduleRepo) ListByRoute(ctx context.Context, routeID uint64) ([]Schedule, error) {
	const q = `SELECT s.id, s.bus_id, s.route_id, s.departs_at, s.arrives_at, s.base_fare_cents, s.status, s.total_seats, s.created_at, s.updated_at
	           FROM schedules s
	           WHERE s.route_id = ?
	           ORDER BY s.departs_at ASC`
	return r.list(ctx, q, routeID)
}

func (r *ScheduleRepo) list(ctx context.Context, q string, args ...interface{}) ([]Schedule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Schedule
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(
			&s.ID, &s.BusID, &s.RouteID, &s.DepartsAt, &s.ArrivesAt, &s.BaseFareCents, &s.Status, &s.TotalSeats, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindOverlapping finds all schedules for the specified bus whose journey
// window overlaps the provided interval [start, end). A schedule overlaps
// when it departs before the proposed end and arrives after the proposed
// start. Time strings must use the same format as stored in the database
// ("2006-01-02 15:04:05"). It returns an empty slice when no overlaps exist.
func (r *ScheduleRepo) FindOverlapping(ctx context.Context, busID uint64, start, end string) ([]Schedule, error) {
	const q = `SELECT id, bus_id, route_id, departs_at, arrives_at, base_fare_cents, status, total_seats, created_at, updated_at
	           FROM schedules
	           WHERE bus_id = ? AND NOT (arrives_at <= ? OR departs_at >= ?)`
	return r.list(ctx, q, busID, start, end)
}

// FindOverlappingExcluding is similar to FindOverlapping but excludes the
// schedule with the given ID from the overlap check. This is used during
// updates to allow a schedule to overlap with itself.
func (r *ScheduleRepo) FindOverlappingExcluding(ctx context.Context, busID, excludeID uint64, start, end string) ([]Schedule, error) {
	const q = `SELECT id, bus_id, route_id, departs_at, arrives_at, base_fare_cents, status, total_seats, created_at, updated_at
	           FROM schedules
	           WHERE bus_id = ? AND id <> ? AND NOT (arrives_at <= ? OR departs_at >= ?)`
	return r.list(ctx, q, busID, excludeID, start, end)
}

// UpdateByIDAndOwner updates a schedule's attributes if it belongs to a bus
// owned by the given owner. It only performs the UPDATE when there is at
// least one differing field; otherwise it returns ErrNoChange. When the
// row/ownership doesn't match, it returns sql.ErrNoRows. The layout snapshot
// is deliberately untouched here.
func (r *ScheduleRepo) UpdateByIDAndOwner(ctx context.Context, s *Schedule, ownerID uint64) error {
	const q = `UPDATE schedules sc
	           JOIN buses b ON b.id = sc.bus_id
	           JOIN companies c ON c.id = b.company_id
	           SET sc.departs_at = ?, sc.arrives_at = ?, sc.base_fare_cents = ?, sc.status = ?, sc.updated_at = CURRENT_TIMESTAMP
	           WHERE sc.id = ? AND c.owner_id = ?
	             AND (sc.departs_at <> ? OR sc.arrives_at <> ? OR sc.base_fare_cents <> ? OR sc.status <> ?)`

	res, err := r.db.ExecContext(ctx, q,
		s.DepartsAt, s.ArrivesAt, s.BaseFareCents, s.Status, // SET
		s.ID, ownerID, // WHERE (record + owner)
		s.DepartsAt, s.ArrivesAt, s.BaseFareCents, s.Status, // only if at least one field differs
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Determine if it's "not found/ownership" or simply "no change".
	const qExists = `SELECT 1
	                 FROM schedules sc
	                 JOIN buses b ON b.id = sc.bus_id
	                 JOIN companies c ON c.id = b.company_id
	                 WHERE sc.id = ? AND c.owner_id = ?
	                 LIMIT 1`
	var one int
	if err := r.db.QueryRowContext(ctx, qExists, s.ID, ownerID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows // record doesn't exist or belongs to another owner
		}
		return err
	}
	return ErrNoChange // row exists but values are identical
}

// DeleteByIDAndOwner removes a schedule and its seat locks provided it
// belongs to a bus owned by the given owner. The deletion occurs within a
// transaction. If the schedule does not exist, ErrScheduleNotFound is
// returned. If it is owned by another user, ErrForbidden is returned. If any
// tickets have been issued for the schedule, the deletion is aborted with
// ErrConflict.
func (r *ScheduleRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	// Verify schedule exists and belongs to the specified owner
	var dbOwnerID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT c.owner_id
		 FROM schedules sc
		 JOIN buses b ON b.id = sc.bus_id
		 JOIN companies c ON c.id = b.company_id
		 WHERE sc.id = ?`, id,
	).Scan(&dbOwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrScheduleNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	// Issued tickets block deletion
	var ticketCount int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE schedule_id = ?`, id).Scan(&ticketCount); err != nil {
		return err
	}
	if ticketCount > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_locks WHERE schedule_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
