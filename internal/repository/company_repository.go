// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Company model and repository methods for CRUD and lookup
// operations. A Company represents a transport operator that owns buses, seat
// plans, routes and schedules. Only minimal fields (ID and Name) should be
// exposed in public API responses.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values
)

// Company represents a transport operator persisted in the database. Each company
// belongs to a single owner account and groups the operator's buses, seat plans,
// routes and schedules. The ID field is the primary key and is auto-incremented
// by the DB.
// Note: OwnerID, CreatedAt and UpdatedAt should not be exposed via public API responses.
type Company struct {
	ID        uint64 // ID is the unique identifier of the company
	OwnerID   uint64 // OwnerID references the users.id of the company owner
	Name      string // Name is the human-friendly name of the operator
	Mode      string // Mode is the transport mode tag: BUS, TRAIN, AIR or SHIP
	CreatedAt string // CreatedAt stores when the row was created (timestamp in DB timezone)
	UpdatedAt string // UpdatedAt stores when the row was last updated
}

// ErrCompanyNotFound is returned when a company cannot be found in the DB.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepo encapsulates all database queries related to companies. It
// depends on a sql.DB connection which should be configured elsewhere.
type CompanyRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCompanyRepo constructs a CompanyRepo with the provided DB handle. This
// function allows dependency injection of the database in tests and at
// startup. There is no initialization logic beyond assigning the field.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Create inserts a new company into the database. On success the company's
// ID field will be populated with the auto-generated value. After the
// insert, a SELECT is executed to populate the CreatedAt and UpdatedAt
// fields so that callers receive a fully populated record.
func (r *CompanyRepo) Create(ctx context.Context, co *Company) error {
	const qInsert = "INSERT INTO companies (owner_id, name, mode) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, co.OwnerID, co.Name, co.Mode)
	if err != nil {
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	co.ID = uint64(id)

	// Perform a follow-up SELECT to populate default timestamp fields (created_at, updated_at).
	const qSelect = "SELECT owner_id, name, mode, created_at, updated_at FROM companies WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, co.ID).Scan(&co.OwnerID, &co.Name, &co.Mode, &co.CreatedAt, &co.UpdatedAt); err != nil {
		return err
	}
	return nil
}

// GetByID fetches a company by its ID regardless of owner. It returns
// ErrCompanyNotFound if no row is found. Callers can use this method
// when they don't need to enforce ownership in the repository layer.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (*Company, error) {
	const q = "SELECT id, owner_id, name, mode, created_at, updated_at FROM companies WHERE id = ?"
	var co Company
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&co.ID, &co.OwnerID, &co.Name, &co.Mode, &co.CreatedAt, &co.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &co, nil
}

// GetByIDAndOwner fetches a company by id but only if it belongs to the
// specified owner. If the company doesn't exist or is owned by someone
// else, ErrCompanyNotFound is returned.
func (r *CompanyRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Company, error) {
	const q = "SELECT id, owner_id, name, mode, created_at, updated_at FROM companies WHERE id = ? AND owner_id = ?"
	var co Company
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&co.ID, &co.OwnerID, &co.Name, &co.Mode, &co.CreatedAt, &co.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &co, nil
}

// ListByOwner returns all companies for a specific owner ordered by id.
func (r *CompanyRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Company, error) {
	const q = `SELECT id, owner_id, name, mode, created_at, updated_at
	           FROM companies WHERE owner_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Company
	for rows.Next() {
		co := new(Company)
		if err := rows.Scan(&co.ID, &co.OwnerID, &co.Name, &co.Mode, &co.CreatedAt, &co.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the company name and mode if it belongs to the provided
// owner. It returns sql.ErrNoRows when no row is affected (not found / not owned).
func (r *CompanyRepo) Update(ctx context.Context, id, ownerID uint64, name, mode string) error {
	const q = `UPDATE companies
	           SET name = ?, mode = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, name, mode, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll returns all companies regardless of owner. It is used for public
// browsing endpoints to present available operators to unauthenticated users.
// Only ID and Name fields are selected to avoid exposing sensitive owner or
// timestamp fields.
func (r *CompanyRepo) ListAll(ctx context.Context) ([]*Company, error) {
	const q = `SELECT id, name, mode FROM companies ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Company
	for rows.Next() {
		co := &Company{}
		if err := rows.Scan(&co.ID, &co.Name, &co.Mode); err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndOwner removes a company and all dependent records (seat plans,
// buses, routes, stoppages, schedules, seat locks, tickets and ticket seats)
// provided it belongs to the specified owner. If the company does not exist,
// sql.ErrNoRows is returned. If the company exists but is owned by a different
// user, ErrForbidden is returned. The deletion occurs within a transaction to
// maintain integrity.
func (r *CompanyRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
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
	// Verify company exists and ownership
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, `SELECT owner_id FROM companies WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	// Cascade delete: remove ticket_seats for schedules run by this company's buses
	if _, err = tx.ExecContext(ctx,
		`DELETE ts FROM ticket_seats ts
         JOIN schedules sc ON sc.id = ts.schedule_id
         JOIN buses b ON b.id = sc.bus_id
         WHERE b.company_id = ?`, id); err != nil {
		return err
	}
	// Delete tickets for schedules on this company's buses
	if _, err = tx.ExecContext(ctx,
		`DELETE t FROM tickets t
         JOIN schedules sc ON sc.id = t.schedule_id
         JOIN buses b ON b.id = sc.bus_id
         WHERE b.company_id = ?`, id); err != nil {
		return err
	}
	// Delete seat locks held against this company's schedules
	if _, err = tx.ExecContext(ctx,
		`DELETE sl FROM seat_locks sl
         JOIN schedules sc ON sc.id = sl.schedule_id
         JOIN buses b ON b.id = sc.bus_id
         WHERE b.company_id = ?`, id); err != nil {
		return err
	}
	// Delete schedules for buses in this company
	if _, err = tx.ExecContext(ctx,
		`DELETE sc FROM schedules sc
         JOIN buses b ON b.id = sc.bus_id
         WHERE b.company_id = ?`, id); err != nil {
		return err
	}
	// Delete stoppages for routes in this company
	if _, err = tx.ExecContext(ctx,
		`DELETE st FROM stoppages st
         JOIN routes rt ON rt.id = st.route_id
         WHERE rt.company_id = ?`, id); err != nil {
		return err
	}
	// Delete routes, buses and seat plans belonging to the company
	if _, err = tx.ExecContext(ctx, `DELETE FROM routes WHERE company_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM buses WHERE company_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_plans WHERE company_id = ?`, id); err != nil {
		return err
	}
	// Finally delete the company
	if _, err = tx.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
