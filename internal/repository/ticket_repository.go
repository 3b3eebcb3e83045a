package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
)

// TicketRepo provides CRUD operations for tickets and their seats. A ticket
// groups together one or more seats of a schedule purchased by a user. Seats
// sold under a ticket are stored in the ticket_seats table keyed by grid
// position. All timestamp fields are assumed to be stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// TicketRecord mirrors the schema of the tickets table. Serial is a UUID
// printed on the ticket and used for conductor-side verification.
type TicketRecord struct {
	ID             uint64
	Serial         string
	UserID         uint64
	ScheduleID     uint64
	Status         string
	TotalFareCents uint32
	PaymentRef     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketSeatRecord mirrors the ticket_seats table. It maps a ticket to a
// specific layout position with the label and fare captured at sale time; the
// label is denormalized so tickets stay readable even if the layout snapshot
// format evolves.
type TicketSeatRecord struct {
	TicketID   uint64
	ScheduleID uint64
	Row        int
	Column     int
	SeatLabel  string
	FareCents  uint32
}

// CreateTx inserts a new ticket within the scope of an existing transaction.
// It populates the generated ID on the provided record and returns any error
// from the database. The caller must commit or roll back the transaction.
// Status should be a valid enumeration ('PENDING','CONFIRMED','CANCELLED').
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *TicketRecord) error {
	const q = `INSERT INTO tickets (serial, user_id, schedule_id, status, total_fare_cents) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, t.Serial, t.UserID, t.ScheduleID, t.Status, t.TotalFareCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT id, serial, user_id, schedule_id, status, total_fare_cents, payment_ref, created_at, updated_at FROM tickets WHERE id = ?`
	var paymentRef sql.NullString
	err = tx.QueryRowContext(ctx, sel, t.ID).Scan(
		&t.ID, &t.Serial, &t.UserID, &t.ScheduleID, &t.Status, &t.TotalFareCents,
		&paymentRef, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if paymentRef.Valid {
		pr := paymentRef.String
		t.PaymentRef = &pr
	}
	return nil
}

// CreateSeatsBulkTx inserts multiple ticket_seats rows in a single statement.
// It associates each seat with the same ticket. The caller must supply the
// ticket ID in each record. The insertion occurs within the provided
// transaction. Passing an empty slice has no effect and returns nil.
func (r *TicketRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []TicketSeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO ticket_seats (ticket_id, schedule_id, seat_row, seat_col, seat_label, fare_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.TicketID, s.ScheduleID, s.Row, s.Column, s.SeatLabel, s.FareCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// BookedPositionsTx returns the grid positions of every seat sold for the
// schedule. Availability checks run this inside the locking transaction so a
// concurrent purchase cannot slip between check and insert.
func (r *TicketRepo) BookedPositionsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) ([]seatgrid.Position, error) {
	const q = `SELECT ts.seat_row, ts.seat_col
	           FROM ticket_seats ts
	           JOIN tickets t ON t.id = ts.ticket_id
	           WHERE ts.schedule_id = ? AND t.status <> 'CANCELLED'`
	rows, err := tx.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []seatgrid.Position
	for rows.Next() {
		var p seatgrid.Position
		if err := rows.Scan(&p.Row, &p.Column); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BookedPositions is the non-transactional variant of BookedPositionsTx used
// by read-only seat map requests.
func (r *TicketRepo) BookedPositions(ctx context.Context, scheduleID uint64) ([]seatgrid.Position, error) {
	const q = `SELECT ts.seat_row, ts.seat_col
	           FROM ticket_seats ts
	           JOIN tickets t ON t.id = ts.ticket_id
	           WHERE ts.schedule_id = ? AND t.status <> 'CANCELLED'`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []seatgrid.Position
	for rows.Next() {
		var p seatgrid.Position
		if err := rows.Scan(&p.Row, &p.Column); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TicketSeatInfo describes one sold seat in API responses.
type TicketSeatInfo struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	SeatLabel string `json:"seat_label"`
	FareCents uint32 `json:"fare_cents"`
}

// TicketDetail encapsulates a ticket along with related schedule, bus, route
// and company information and the seats sold. It is returned by ListByUser
// and GetByIDForUser for display to passengers.
type TicketDetail struct {
	ID             uint64           `json:"id"`
	Serial         string           `json:"serial"`
	ScheduleID     uint64           `json:"schedule_id"`
	Status         string           `json:"status"`
	TotalFareCents uint32           `json:"total_fare_cents"`
	Origin         string           `json:"origin"`
	Destination    string           `json:"destination"`
	DepartsAt      *string          `json:"departs_at"`
	ArrivesAt      *string          `json:"arrives_at"`
	BusID          uint64           `json:"bus_id"`
	BusName        string           `json:"bus_name"`
	CompanyID      *uint64          `json:"company_id,omitempty"`
	CompanyName    *string          `json:"company_name,omitempty"`
	Seats          []TicketSeatInfo `json:"seats"`
}

// OwnerTicketDetail extends TicketDetail for operator views. It additionally
// exposes the purchasing user's ID and the optional payment reference.
type OwnerTicketDetail struct {
	ID             uint64           `json:"id"`
	Serial         string           `json:"serial"`
	UserID         uint64           `json:"user_id"`
	ScheduleID     uint64           `json:"schedule_id"`
	Status         string           `json:"status"`
	TotalFareCents uint32           `json:"total_fare_cents"`
	PaymentRef     *string          `json:"payment_ref,omitempty"`
	Origin         string           `json:"origin"`
	Destination    string           `json:"destination"`
	DepartsAt      *string          `json:"departs_at"`
	ArrivesAt      *string          `json:"arrives_at"`
	BusID          uint64           `json:"bus_id"`
	BusName        string           `json:"bus_name"`
	CompanyID      *uint64          `json:"company_id,omitempty"`
	CompanyName    *string          `json:"company_name,omitempty"`
	Seats          []TicketSeatInfo `json:"seats"`
}

// dbTimeToISO converts a DB timestamp string ("YYYY-MM-DD HH:MM:SS") to an
// RFC3339 string pointer, skipping empty and zero values.
func dbTimeToISO(v sql.NullString) *string {
	if !v.Valid || strings.TrimSpace(v.String) == "" || v.String == "0001-01-01 00:00:00" {
		return nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", v.String)
	if err != nil {
		return nil
	}
	iso := t.UTC().Format(time.RFC3339)
	return &iso
}

// seatsForTickets fetches the sold seats for the given ticket IDs in one
// query and appends them to the matching details via the supplied callback.
func (r *TicketRepo) seatsForTickets(ctx context.Context, ids []interface{}, add func(ticketID uint64, s TicketSeatInfo)) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	q := `SELECT ts.ticket_id, ts.seat_row, ts.seat_col, ts.seat_label, ts.fare_cents
	      FROM ticket_seats ts
	      WHERE ts.ticket_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY ts.ticket_id, ts.seat_row, ts.seat_col`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var tid uint64
		var s TicketSeatInfo
		if err := rows.Scan(&tid, &s.Row, &s.Column, &s.SeatLabel, &s.FareCents); err != nil {
			return err
		}
		add(tid, s)
	}
	return rows.Err()
}

// GetByIDForUser returns a single ticket for the given user. It loads the
// ticket's schedule, route, bus and company details and populates the list of
// seats sold under the ticket. When no ticket with the specified ID exists
// for the user, sql.ErrNoRows is returned.
func (r *TicketRepo) GetByIDForUser(ctx context.Context, ticketID, userID uint64) (*TicketDetail, error) {
	const q = `SELECT t.id, t.serial, t.schedule_id, t.status, t.total_fare_cents,
	                  rt.origin, rt.destination, s.departs_at, s.arrives_at,
	                  b.id, b.name, c.id, c.name
	           FROM tickets t
	           JOIN schedules s ON s.id = t.schedule_id
	           JOIN routes rt ON rt.id = s.route_id
	           JOIN buses b ON b.id = s.bus_id
	           LEFT JOIN companies c ON c.id = b.company_id
	           WHERE t.id = ? AND t.user_id = ?`
	var det TicketDetail
	var companyID sql.NullInt64
	var companyName sql.NullString
	var departStr, arriveStr sql.NullString
	err := r.db.QueryRowContext(ctx, q, ticketID, userID).Scan(
		&det.ID, &det.Serial, &det.ScheduleID, &det.Status, &det.TotalFareCents,
		&det.Origin, &det.Destination, &departStr, &arriveStr,
		&det.BusID, &det.BusName, &companyID, &companyName,
	)
	if err != nil {
		return nil, err
	}
	det.DepartsAt = dbTimeToISO(departStr)
	det.ArrivesAt = dbTimeToISO(arriveStr)
	if companyID.Valid {
		cid := uint64(companyID.Int64)
		det.CompanyID = &cid
	}
	if companyName.Valid {
		cn := companyName.String
		det.CompanyName = &cn
	}
	det.Seats = []TicketSeatInfo{}
	err = r.seatsForTickets(ctx, []interface{}{det.ID}, func(_ uint64, s TicketSeatInfo) {
		det.Seats = append(det.Seats, s)
	})
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// GetBySerial returns a ticket looked up by its printed serial together with
// seat details. It is used for conductor-side verification. sql.ErrNoRows is
// returned when the serial is unknown.
func (r *TicketRepo) GetBySerial(ctx context.Context, serial string) (*OwnerTicketDetail, error) {
	const bySerial = `SELECT t.id, t.serial, t.user_id, t.schedule_id, t.status, t.total_fare_cents, t.payment_ref,
	                         rt.origin, rt.destination, s.departs_at, s.arrives_at,
	                         b.id, b.name, c.id, c.name
	                  FROM tickets t
	                  JOIN schedules s ON s.id = t.schedule_id
	                  JOIN routes rt ON rt.id = s.route_id
	                  JOIN buses b ON b.id = s.bus_id
	                  LEFT JOIN companies c ON c.id = b.company_id
	                  WHERE t.serial = ?`
	return r.scanOwnerDetail(ctx, bySerial, serial)
}

// GetByIDForOwner returns a ticket and its details when accessed by the bus
// operator. It verifies that the ticket exists and that the owner owns the
// company running the ticket's schedule. It returns ErrForbidden when the
// owner does not own the underlying company and sql.ErrNoRows when the
// ticket does not exist.
func (r *TicketRepo) GetByIDForOwner(ctx context.Context, ticketID, ownerID uint64) (*OwnerTicketDetail, error) {
	// First check existence and ownership. Join through schedules, buses and
	// companies to obtain the owner_id.
	const checkQ = `SELECT c.owner_id
	                FROM tickets t
	                JOIN schedules s ON s.id = t.schedule_id
	                JOIN buses b ON b.id = s.bus_id
	                JOIN companies c ON c.id = b.company_id
	                WHERE t.id = ?`
	var actualOwnerID uint64
	if err := r.db.QueryRowContext(ctx, checkQ, ticketID).Scan(&actualOwnerID); err != nil {
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	const q = `SELECT t.id, t.serial, t.user_id, t.schedule_id, t.status, t.total_fare_cents, t.payment_ref,
	                  rt.origin, rt.destination, s.departs_at, s.arrives_at,
	                  b.id, b.name, c.id, c.name
	           FROM tickets t
	           JOIN schedules s ON s.id = t.schedule_id
	           JOIN routes rt ON rt.id = s.route_id
	           JOIN buses b ON b.id = s.bus_id
	           LEFT JOIN companies c ON c.id = b.company_id
	           WHERE t.id = ?`
	return r.scanOwnerDetail(ctx, q, ticketID)
}

func (r *TicketRepo) scanOwnerDetail(ctx context.Context, q string, arg interface{}) (*OwnerTicketDetail, error) {
	var det OwnerTicketDetail
	var payRef sql.NullString
	var companyID sql.NullInt64
	var companyName sql.NullString
	var departStr, arriveStr sql.NullString
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&det.ID, &det.Serial, &det.UserID, &det.ScheduleID, &det.Status, &det.TotalFareCents, &payRef,
		&det.Origin, &det.Destination, &departStr, &arriveStr,
		&det.BusID, &det.BusName, &companyID, &companyName,
	); err != nil {
		return nil, err
	}
	if payRef.Valid {
		ref := payRef.String
		det.PaymentRef = &ref
	}
	det.DepartsAt = dbTimeToISO(departStr)
	det.ArrivesAt = dbTimeToISO(arriveStr)
	if companyID.Valid {
		cid := uint64(companyID.Int64)
		det.CompanyID = &cid
	}
	if companyName.Valid {
		cn := companyName.String
		det.CompanyName = &cn
	}
	det.Seats = []TicketSeatInfo{}
	err := r.seatsForTickets(ctx, []interface{}{det.ID}, func(_ uint64, s TicketSeatInfo) {
		det.Seats = append(det.Seats, s)
	})
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByScheduleForOwner returns all tickets for a given schedule when
// accessed by its operator. It verifies that the schedule belongs to the
// owner before returning the list; otherwise ErrForbidden is returned.
// Tickets are ordered by creation time descending.
func (r *TicketRepo) ListByScheduleForOwner(ctx context.Context, scheduleID, ownerID uint64) ([]OwnerTicketDetail, error) {
	const checkQ = `SELECT c.owner_id
	                FROM schedules s
	                JOIN buses b ON b.id = s.bus_id
	                JOIN companies c ON c.id = b.company_id
	                WHERE s.id = ?`
	var actualOwnerID uint64
	if err := r.db.QueryRowContext(ctx, checkQ, scheduleID).Scan(&actualOwnerID); err != nil {
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	const q = `SELECT t.id, t.serial, t.user_id, t.schedule_id, t.status, t.total_fare_cents, t.payment_ref,
	                  rt.origin, rt.destination, s.departs_at, s.arrives_at,
	                  b.id, b.name, c.id, c.name
	           FROM tickets t
	           JOIN schedules s ON s.id = t.schedule_id
	           JOIN routes rt ON rt.id = s.route_id
	           JOIN buses b ON b.id = s.bus_id
	           LEFT JOIN companies c ON c.id = b.company_id
	           WHERE t.schedule_id = ?
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]OwnerTicketDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d OwnerTicketDetail
		var payRef sql.NullString
		var companyID sql.NullInt64
		var companyName sql.NullString
		var departStr, arriveStr sql.NullString
		if err := rows.Scan(
			&d.ID, &d.Serial, &d.UserID, &d.ScheduleID, &d.Status, &d.TotalFareCents, &payRef,
			&d.Origin, &d.Destination, &departStr, &arriveStr,
			&d.BusID, &d.BusName, &companyID, &companyName,
		); err != nil {
			return nil, err
		}
		if payRef.Valid {
			ref := payRef.String
			d.PaymentRef = &ref
		}
		d.DepartsAt = dbTimeToISO(departStr)
		d.ArrivesAt = dbTimeToISO(arriveStr)
		if companyID.Valid {
			cid := uint64(companyID.Int64)
			d.CompanyID = &cid
		}
		if companyName.Valid {
			cn := companyName.String
			d.CompanyName = &cn
		}
		d.Seats = []TicketSeatInfo{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	ids := make([]interface{}, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	err = r.seatsForTickets(ctx, ids, func(tid uint64, s TicketSeatInfo) {
		if idx, ok := index[tid]; ok {
			details[idx].Seats = append(details[idx].Seats, s)
		}
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// GetInfoForUserTx returns the schedule ID, departure time and seat positions
// for a ticket within a transaction, validating that the ticket belongs to
// the specified user. It returns sql.ErrNoRows when the ticket does not
// exist and ErrForbidden when the ticket belongs to a different user. The
// returned time is in UTC.
func (r *TicketRepo) GetInfoForUserTx(ctx context.Context, tx *sql.Tx, ticketID, userID uint64) (uint64, time.Time, []seatgrid.Position, error) {
	const q = `SELECT t.schedule_id, s.departs_at, t.user_id
	           FROM tickets t
	           JOIN schedules s ON s.id = t.schedule_id
	           WHERE t.id = ?`
	var scheduleID uint64
	var departStr string
	var actualUserID uint64
	err := tx.QueryRowContext(ctx, q, ticketID).Scan(&scheduleID, &departStr, &actualUserID)
	if err != nil {
		return 0, time.Time{}, nil, err
	}
	if actualUserID != userID {
		return 0, time.Time{}, nil, ErrForbidden
	}
	t, err := time.Parse("2006-01-02 15:04:05", departStr)
	if err != nil {
		return 0, time.Time{}, nil, err
	}
	const seatQ = `SELECT seat_row, seat_col FROM ticket_seats WHERE ticket_id = ?`
	rows, err := tx.QueryContext(ctx, seatQ, ticketID)
	if err != nil {
		return 0, time.Time{}, nil, err
	}
	defer rows.Close()
	var positions []seatgrid.Position
	for rows.Next() {
		var p seatgrid.Position
		if err := rows.Scan(&p.Row, &p.Column); err != nil {
			return 0, time.Time{}, nil, err
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return 0, time.Time{}, nil, err
	}
	return scheduleID, t.UTC(), positions, nil
}

// GetInfoForOwnerTx returns the schedule ID and departure time for a ticket
// within a transaction, validating that the ticket belongs to a schedule of a
// bus owned by the given owner. It returns sql.ErrNoRows when the ticket does
// not exist and ErrForbidden when it belongs to another owner's fleet.
func (r *TicketRepo) GetInfoForOwnerTx(ctx context.Context, tx *sql.Tx, ticketID, ownerID uint64) (uint64, time.Time, error) {
	const q = `SELECT t.schedule_id, s.departs_at, c.owner_id
	           FROM tickets t
	           JOIN schedules s ON s.id = t.schedule_id
	           JOIN buses b ON b.id = s.bus_id
	           JOIN companies c ON c.id = b.company_id
	           WHERE t.id = ?`
	var scheduleID uint64
	var departStr string
	var actualOwnerID uint64
	err := tx.QueryRowContext(ctx, q, ticketID).Scan(&scheduleID, &departStr, &actualOwnerID)
	if err != nil {
		return 0, time.Time{}, err
	}
	if actualOwnerID != ownerID {
		return 0, time.Time{}, ErrForbidden
	}
	t, err := time.Parse("2006-01-02 15:04:05", departStr)
	if err != nil {
		return 0, time.Time{}, err
	}
	return scheduleID, t.UTC(), nil
}

// CancelTx marks a ticket as cancelled within a transaction. Its seat rows
// stay in ticket_seats for the record, but the cancelled status removes them
// from the booked set. It returns sql.ErrNoRows when the ticket is already
// cancelled or does not exist.
func (r *TicketRepo) CancelTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = 'CANCELLED' WHERE id = ? AND status <> 'CANCELLED'`,
		ticketID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByUser returns all tickets for the given user along with schedule,
// route, bus, company and seat details. Tickets are ordered by creation time
// descending (newest first). When no tickets exist, an empty slice is
// returned.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
	const q = `SELECT t.id, t.serial, t.schedule_id, t.status, t.total_fare_cents,
	                  rt.origin, rt.destination, s.departs_at, s.arrives_at,
	                  b.id, b.name, c.id, c.name
	           FROM tickets t
	           JOIN schedules s ON s.id = t.schedule_id
	           JOIN routes rt ON rt.id = s.route_id
	           JOIN buses b ON b.id = s.bus_id
	           LEFT JOIN companies c ON c.id = b.company_id
	           WHERE t.user_id = ?
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]TicketDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d TicketDetail
		var companyID sql.NullInt64
		var companyName sql.NullString
		var departStr, arriveStr sql.NullString
		if err := rows.Scan(
			&d.ID, &d.Serial, &d.ScheduleID, &d.Status, &d.TotalFareCents,
			&d.Origin, &d.Destination, &departStr, &arriveStr,
			&d.BusID, &d.BusName, &companyID, &companyName,
		); err != nil {
			return nil, err
		}
		d.DepartsAt = dbTimeToISO(departStr)
		d.ArrivesAt = dbTimeToISO(arriveStr)
		if companyID.Valid {
			cid := uint64(companyID.Int64)
			d.CompanyID = &cid
		}
		if companyName.Valid {
			cn := companyName.String
			d.CompanyName = &cn
		}
		d.Seats = []TicketSeatInfo{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	ids := make([]interface{}, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	err = r.seatsForTickets(ctx, ids, func(tid uint64, s TicketSeatInfo) {
		if idx, ok := index[tid]; ok {
			details[idx].Seats = append(details[idx].Seats, s)
		}
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
