// Package repository contains data access logic for seat plan operations. This
// file defines the SeatPlan model and repository methods. A SeatPlan is a
// reusable deck layout owned by a company; the grid itself is stored as a JSON
// document in the layout_json column and is interpreted by the seatgrid
// package. Buses receive an independent copy of the layout when a plan is
// applied, so editing a plan never mutates vehicles that already adopted it.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions
)

// SeatPlan represents a named deck layout owned by a company. LayoutJSON holds
// the serialized grid document; TotalSeats is the sellable seat count computed
// at the last commit and is denormalized here for cheap listing.
type SeatPlan struct {
	ID          uint64 // ID is the primary key of the seat plan
	CompanyID   uint64 // CompanyID references the owning company
	Name        string // Name is the human-friendly plan name
	VehicleType string // VehicleType is a free-form label such as "AC Sleeper" or "Double Decker"
	LayoutJSON  []byte // LayoutJSON is the serialized grid document (may be empty for a fresh plan)
	TotalSeats  uint32 // TotalSeats is the sellable capacity recorded at last commit
	CreatedAt   string // CreatedAt records row creation time
	UpdatedAt   string // UpdatedAt records last update time
}

// ErrSeatPlanNotFound indicates that a seat plan was not located in the DB.
var ErrSeatPlanNotFound = errors.New("seat plan not found")

// SeatPlanRepo manages persistence for seat plans.
type SeatPlanRepo struct {
	db *sql.DB
}

// NewSeatPlanRepo constructs a SeatPlanRepo with the given DB handle.
func NewSeatPlanRepo(db *sql.DB) *SeatPlanRepo {
	return &SeatPlanRepo{db: db}
}

// Create inserts a new seat plan and assigns the generated ID back to the
// struct. LayoutJSON may be nil for a plan created without a layout; the
// column stores NULL in that case and LoadJSON treats it as an absent grid.
func (r *SeatPlanRepo) Create(ctx context.Context, p *SeatPlan) error {
	const q = `INSERT INTO seat_plans (company_id, name, vehicle_type, layout_json, total_seats) VALUES (?, ?, ?, ?, ?)`
	var layout interface{}
	if len(p.LayoutJSON) > 0 {
		layout = string(p.LayoutJSON)
	}
	res, err := r.db.ExecContext(ctx, q, p.CompanyID, p.Name, p.VehicleType, layout, p.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT company_id, name, vehicle_type, created_at, updated_at FROM seat_plans WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CompanyID, &p.Name, &p.VehicleType, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID retrieves a seat plan by its ID regardless of owner. It returns
// ErrSeatPlanNotFound when no row matches.
func (r *SeatPlanRepo) GetByID(ctx context.Context, id uint64) (*SeatPlan, error) {
	const q = `SELECT id, company_id, name, vehicle_type, layout_json, total_seats, created_at, updated_at
	           FROM seat_plans WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDAndOwner retrieves a seat plan by id but only when its company is
// owned by the given user. Ownership is enforced by joining through the
// companies table. ErrSeatPlanNotFound is returned when the plan does not
// exist or belongs to another owner.
func (r *SeatPlanRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*SeatPlan, error) {
	const q = `SELECT p.id, p.company_id, p.name, p.vehicle_type, p.layout_json, p.total_seats, p.created_at, p.updated_at
	           FROM seat_plans p
	           JOIN companies c ON c.id = p.company_id
	           WHERE p.id = ? AND c.owner_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// scanOne scans a single seat plan row, translating sql.ErrNoRows into the
// package sentinel and NULL layout into an empty byte slice.
func (r *SeatPlanRepo) scanOne(row *sql.Row) (*SeatPlan, error) {
	var p SeatPlan
	var layout sql.NullString
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.VehicleType, &layout, &p.TotalSeats, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatPlanNotFound
		}
		return nil, err
	}
	if layout.Valid {
		p.LayoutJSON = []byte(layout.String)
	}
	return &p, nil
}

// ListByCompanyAndOwner returns all seat plans for a company owned by the
// given user, ordered by id. The layout document is omitted from list
// results; callers fetch a single plan when they need the grid.
func (r *SeatPlanRepo) ListByCompanyAndOwner(ctx context.Context, companyID, ownerID uint64) ([]SeatPlan, error) {
	const q = `SELECT p.id, p.company_id, p.name, p.vehicle_type, p.total_seats, p.created_at, p.updated_at
	           FROM seat_plans p
	           JOIN companies c ON c.id = p.company_id
	           WHERE p.company_id = ? AND c.owner_id = ?
	           ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q, companyID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SeatPlan
	for rows.Next() {
		var p SeatPlan
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.VehicleType, &p.TotalSeats, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMeta changes the name and vehicle type of a seat plan when its company
// belongs to the given owner. It returns sql.ErrNoRows when no row is affected.
func (r *SeatPlanRepo) UpdateMeta(ctx context.Context, id, ownerID uint64, name, vehicleType string) error {
	const q = `UPDATE seat_plans p
	           JOIN companies c ON c.id = p.company_id
	           SET p.name = ?, p.vehicle_type = ?, p.updated_at = CURRENT_TIMESTAMP
	           WHERE p.id = ? AND c.owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, name, vehicleType, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateLayout stores a new layout document and seat total for a plan owned by
// the given user. It is called both by the incremental layout operations and
// by commit. sql.ErrNoRows is reported when the plan is missing or not owned.
func (r *SeatPlanRepo) UpdateLayout(ctx context.Context, id, ownerID uint64, layoutJSON []byte, totalSeats uint32) error {
	const q = `UPDATE seat_plans p
	           JOIN companies c ON c.id = p.company_id
	           SET p.layout_json = ?, p.total_seats = ?, p.updated_at = CURRENT_TIMESTAMP
	           WHERE p.id = ? AND c.owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, string(layoutJSON), totalSeats, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndOwner removes a seat plan owned by the given user. Buses that
// already applied the plan keep their own layout copy, so only the plan row
// has to go; bus rows referencing it are detached first. sql.ErrNoRows is
// returned when the plan does not exist and ErrForbidden when it belongs to a
// different owner.
func (r *SeatPlanRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
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
		`SELECT c.owner_id FROM seat_plans p JOIN companies c ON c.id = p.company_id WHERE p.id = ?`, id,
	).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	if _, err = tx.ExecContext(ctx, `UPDATE buses SET seat_plan_id = NULL WHERE seat_plan_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_plans WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
