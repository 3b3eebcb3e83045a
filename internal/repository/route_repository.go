// Package repository contains data access logic for route operations. A Route
// describes a service corridor between an origin and a destination and carries
// an ordered list of stoppages stored in a child table. Stoppages are replaced
// wholesale on update; they have no identity of their own outside the route.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Route represents a service corridor owned by a company.
type Route struct {
	ID          uint64   // ID is the primary key of the route
	CompanyID   uint64   // CompanyID references the owning company
	Name        string   // Name is the display name of the route
	Origin      string   // Origin is the departure city or terminal
	Destination string   // Destination is the arrival city or terminal
	Stoppages   []string // Stoppages are intermediate stops in travel order
	CreatedAt   string   // CreatedAt records row creation time
	UpdatedAt   string   // UpdatedAt records last update time
}

// ErrRouteNotFound indicates that a route was not located in the DB.
var ErrRouteNotFound = errors.New("route not found")

// RouteRepo manages persistence for routes and their stoppages.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo constructs a RouteRepo with the given DB handle.
func NewRouteRepo(db *sql.DB) *RouteRepo {
	return &RouteRepo{db: db}
}

// Create inserts a route and its stoppages inside a transaction and assigns
// the generated ID back to the struct.
func (r *RouteRepo) Create(ctx context.Context, rt *Route) error {
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
	const q = `INSERT INTO routes (company_id, name, origin, destination) VALUES (?, ?, ?, ?)`
	var res sql.Result
	res, err = tx.ExecContext(ctx, q, rt.CompanyID, rt.Name, rt.Origin, rt.Destination)
	if err != nil {
		return err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	if err = insertStoppagesTx(ctx, tx, rt.ID, rt.Stoppages); err != nil {
		return err
	}
	const sel = `SELECT company_id, name, origin, destination, created_at, updated_at FROM routes WHERE id = ?`
	err = tx.QueryRowContext(ctx, sel, rt.ID).Scan(&rt.CompanyID, &rt.Name, &rt.Origin, &rt.Destination, &rt.CreatedAt, &rt.UpdatedAt)
	return err
}

// insertStoppagesTx bulk-inserts the stoppage rows for a route in travel
// order. Passing an empty slice has no effect and returns nil.
func insertStoppagesTx(ctx context.Context, tx *sql.Tx, routeID uint64, stoppages []string) error {
	if len(stoppages) == 0 {
		return nil
	}
	query := `INSERT INTO stoppages (route_id, position, name) VALUES `
	args := make([]interface{}, 0, len(stoppages)*3)
	for i, name := range stoppages {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, routeID, i, name)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// loadStoppages populates the Stoppages slice for a single route.
func (r *RouteRepo) loadStoppages(ctx context.Context, rt *Route) error {
	const q = `SELECT name FROM stoppages WHERE route_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, rt.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		rt.Stoppages = append(rt.Stoppages, name)
	}
	return rows.Err()
}

// GetByID retrieves a route with its stoppages regardless of owner. It
// returns ErrRouteNotFound when no row matches.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*Route, error) {
	const q = `SELECT id, company_id, name, origin, destination, created_at, updated_at FROM routes WHERE id = ?`
	var rt Route
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.CompanyID, &rt.Name, &rt.Origin, &rt.Destination, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	if err := r.loadStoppages(ctx, &rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// GetByIDAndOwner retrieves a route by id when its company belongs to the
// given owner. ErrRouteNotFound is returned when the route does not exist or
// is owned by someone else.
func (r *RouteRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Route, error) {
	const q = `SELECT rt.id, rt.company_id, rt.name, rt.origin, rt.destination, rt.created_at, rt.updated_at
	           FROM routes rt
	           JOIN companies c ON c.id = rt.company_id
	           WHERE rt.id = ? AND c.owner_id = ?`
	var rt Route
	err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&rt.ID, &rt.CompanyID, &rt.Name, &rt.Origin, &rt.Destination, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	if err := r.loadStoppages(ctx, &rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListByCompanyAndOwner returns all routes for a company owned by the given
// user, ordered by id, each with its stoppages populated.
func (r *RouteRepo) ListByCompanyAndOwner(ctx context.Context, companyID, ownerID uint64) ([]*Route, error) {
	const q = `SELECT rt.id, rt.company_id, rt.name, rt.origin, rt.destination, rt.created_at, rt.updated_at
	           FROM routes rt
	           JOIN companies c ON c.id = rt.company_id
	           WHERE rt.company_id = ? AND c.owner_id = ?
	           ORDER BY rt.id`
	rows, err := r.db.QueryContext(ctx, q, companyID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Route
	for rows.Next() {
		rt := new(Route)
		if err := rows.Scan(&rt.ID, &rt.CompanyID, &rt.Name, &rt.Origin, &rt.Destination, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rt := range out {
		if err := r.loadStoppages(ctx, rt); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListByCompany returns all routes of a company regardless of owner, ordered
// by id, each with its stoppages populated. Used by the public browsing API.
func (r *RouteRepo) ListByCompany(ctx context.Context, companyID uint64) ([]*Route, error) {
	const q = `SELECT id, company_id, name, origin, destination, created_at, updated_at
	           FROM routes WHERE company_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Route
	for rows.Next() {
		rt := new(Route)
		if err := rows.Scan(&rt.ID, &rt.CompanyID, &rt.Name, &rt.Origin, &rt.Destination, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rt := range out {
		if err := r.loadStoppages(ctx, rt); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update replaces the route attributes and its full stoppage list when the
// route belongs to the given owner. sql.ErrNoRows is returned when the route
// is missing or not owned.
func (r *RouteRepo) Update(ctx context.Context, ownerID uint64, rt *Route) error {
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
	const q = `UPDATE routes rt
	           JOIN companies c ON c.id = rt.company_id
	           SET rt.name = ?, rt.origin = ?, rt.destination = ?, rt.updated_at = CURRENT_TIMESTAMP
	           WHERE rt.id = ? AND c.owner_id = ?`
	var res sql.Result
	res, err = tx.ExecContext(ctx, q, rt.Name, rt.Origin, rt.Destination, rt.ID, ownerID)
	if err != nil {
		return err
	}
	// RowsAffected is zero both when the route is absent and when nothing
	// changed, so verify existence separately before reporting not-found.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err = tx.QueryRowContext(ctx,
			`SELECT 1 FROM routes rt JOIN companies c ON c.id = rt.company_id WHERE rt.id = ? AND c.owner_id = ? LIMIT 1`,
			rt.ID, ownerID,
		).Scan(&one)
		if err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM stoppages WHERE route_id = ?`, rt.ID); err != nil {
		return err
	}
	err = insertStoppagesTx(ctx, tx, rt.ID, rt.Stoppages)
	return err
}

// DeleteByIDAndOwner removes a route and its stoppages when the route's
// company belongs to the given owner. Schedules referencing the route block
// the deletion with ErrConflict. sql.ErrNoRows is returned when the route
// does not exist and ErrForbidden when it is owned by another user.
func (r *RouteRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
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
		`SELECT c.owner_id FROM routes rt JOIN companies c ON c.id = rt.company_id WHERE rt.id = ?`, id,
	).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	var schedCount int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules WHERE route_id = ?`, id).Scan(&schedCount); err != nil {
		return err
	}
	if schedCount > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM stoppages WHERE route_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
