// Package repository contains data access logic for bus operations. A Bus is a
// vehicle registered under a company. It carries its own copy of a deck layout
// in layout_json, taken from a seat plan at apply time; the seat_plan_id column
// only records provenance and schedules snapshot the bus layout again when they
// are created.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Bus represents a registered vehicle. RegistrationNo is unique across the
// whole system. SeatPlanID is nil until a plan has been applied.
type Bus struct {
	ID             uint64  // ID is the primary key of the bus
	CompanyID      uint64  // CompanyID references the owning company
	Name           string  // Name is the display name of the vehicle
	RegistrationNo string  // RegistrationNo is the unique plate / registration number
	SeatPlanID     *uint64 // SeatPlanID records which plan the layout was copied from, if any
	LayoutJSON     []byte  // LayoutJSON is the bus's own copy of the deck layout
	TotalSeats     uint32  // TotalSeats is the sellable capacity of the copied layout
	CreatedAt      string  // CreatedAt records row creation time
	UpdatedAt      string  // UpdatedAt records last update time
}

// ErrBusNotFound indicates that a bus was not located in the DB.
var ErrBusNotFound = errors.New("bus not found")

// BusRepo manages persistence for buses.
type BusRepo struct {
	db *sql.DB
}

// NewBusRepo constructs a BusRepo with the given DB handle.
func NewBusRepo(db *sql.DB) *BusRepo {
	return &BusRepo{db: db}
}

// Create inserts a new bus and assigns the generated ID back to the struct.
// The layout columns may be pre-populated when the caller clones a seat plan
// at creation time; otherwise they start empty and ApplyPlan copies a layout
// in later.
func (r *BusRepo) Create(ctx context.Context, b *Bus) error {
	const q = `INSERT INTO buses (company_id, name, registration_no, seat_plan_id, layout_json, total_seats) VALUES (?, ?, ?, ?, ?, ?)`
	var planID interface{}
	if b.SeatPlanID != nil {
		planID = *b.SeatPlanID
	}
	var layout interface{}
	if len(b.LayoutJSON) > 0 {
		layout = string(b.LayoutJSON)
	}
	res, err := r.db.ExecContext(ctx, q, b.CompanyID, b.Name, b.RegistrationNo, planID, layout, b.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT company_id, name, registration_no, created_at, updated_at FROM buses WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.CompanyID, &b.Name, &b.RegistrationNo, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID retrieves a bus by its ID regardless of owner. It returns
// ErrBusNotFound when no row matches.
func (r *BusRepo) GetByID(ctx context.Context, id uint64) (*Bus, error) {
	const q = `SELECT id, company_id, name, registration_no, seat_plan_id, layout_json, total_seats, created_at, updated_at
	           FROM buses WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDAndOwner retrieves a bus by id when its company is owned by the given
// user. ErrBusNotFound is returned when the bus does not exist or belongs to
// another owner.
func (r *BusRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Bus, error) {
	const q = `SELECT b.id, b.company_id, b.name, b.registration_no, b.seat_plan_id, b.layout_json, b.total_seats, b.created_at, b.updated_at
	           FROM buses b
	           JOIN companies c ON c.id = b.company_id
	           WHERE b.id = ? AND c.owner_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, ownerID))
}

func (r *BusRepo) scanOne(row *sql.Row) (*Bus, error) {
	var b Bus
	var planID sql.NullInt64
	var layout sql.NullString
	err := row.Scan(&b.ID, &b.CompanyID, &b.Name, &b.RegistrationNo, &planID, &layout, &b.TotalSeats, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	if planID.Valid {
		v := uint64(planID.Int64)
		b.SeatPlanID = &v
	}
	if layout.Valid {
		b.LayoutJSON = []byte(layout.String)
	}
	return &b, nil
}

// ListByCompanyAndOwner returns all buses for a company owned by the given
// user, ordered by id. Layout documents are omitted from list results.
func (r *BusRepo) ListByCompanyAndOwner(ctx context.Context, companyID, ownerID uint64) ([]Bus, error) {
	const q = `SELECT b.id, b.company_id, b.name, b.registration_no, b.seat_plan_id, b.total_seats, b.created_at, b.updated_at
	           FROM buses b
	           JOIN companies c ON c.id = b.company_id
	           WHERE b.company_id = ? AND c.owner_id = ?
	           ORDER BY b.id`
	rows, err := r.db.QueryContext(ctx, q, companyID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bus
	for rows.Next() {
		var b Bus
		var planID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name, &b.RegistrationNo, &planID, &b.TotalSeats, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if planID.Valid {
			v := uint64(planID.Int64)
			b.SeatPlanID = &v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the bus name and registration number when the bus belongs to
// the given owner. sql.ErrNoRows is returned when no row is affected.
func (r *BusRepo) Update(ctx context.Context, id, ownerID uint64, name, registrationNo string) error {
	const q = `UPDATE buses b
	           JOIN companies c ON c.id = b.company_id
	           SET b.name = ?, b.registration_no = ?, b.updated_at = CURRENT_TIMESTAMP
	           WHERE b.id = ? AND c.owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, name, registrationNo, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ApplyPlan copies a layout document onto the bus and records which plan it
// came from. The caller is responsible for loading the plan, committing its
// grid and serializing the copy; this method only persists the result.
// sql.ErrNoRows is returned when the bus is missing or not owned.
func (r *BusRepo) ApplyPlan(ctx context.Context, busID, ownerID, planID uint64, layoutJSON []byte, totalSeats uint32) error {
	const q = `UPDATE buses b
	           JOIN companies c ON c.id = b.company_id
	           SET b.seat_plan_id = ?, b.layout_json = ?, b.total_seats = ?, b.updated_at = CURRENT_TIMESTAMP
	           WHERE b.id = ? AND c.owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, planID, string(layoutJSON), totalSeats, busID, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndOwner removes a bus together with its schedules, seat locks,
// tickets and ticket seats, provided its company belongs to the given owner.
// The deletion runs inside a transaction. sql.ErrNoRows is returned when the
// bus does not exist, ErrForbidden when it is owned by another user and
// ErrConflict when any of its schedules still has issued tickets.
func (r *BusRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
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
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT c.owner_id FROM buses b JOIN companies c ON c.id = b.company_id WHERE b.id = ?`, id,
	).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	var ticketCount int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets t JOIN schedules sc ON sc.id = t.schedule_id WHERE sc.bus_id = ?`, id,
	).Scan(&ticketCount); err != nil {
		return err
	}
	if ticketCount > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE sl FROM seat_locks sl JOIN schedules sc ON sc.id = sl.schedule_id WHERE sc.bus_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedules WHERE bus_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM buses WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
