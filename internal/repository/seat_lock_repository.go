package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/emran-niftyitsolution/tms-sub000/internal/seatgrid"
)

// SeatLockRecord represents the persistence model for a seat lock. A lock
// reserves one grid position of a schedule's layout for a user while they
// complete a purchase. Positions are (row, column) coordinates in the
// schedule's layout snapshot; seats have no row identity of their own.
type SeatLockRecord struct {
	ID         uint64    // primary key of the seat_locks row
	UserID     uint64    // user who holds the lock; must be non-zero for authenticated locks
	ScheduleID uint64    // schedule whose layout position is locked
	Row        int       // row coordinate in the layout grid
	Column     int       // column coordinate in the layout grid
	LockToken  string    // opaque token returned to the client for correlation
	ExpiresAt  time.Time // expiration timestamp
	CreatedAt  time.Time // creation timestamp
}

// Position returns the grid coordinate of the locked seat.
func (l SeatLockRecord) Position() seatgrid.Position {
	return seatgrid.Position{Row: l.Row, Column: l.Column}
}

// SeatLockRepo provides data access to the seat_locks table. It is
// responsible for creating, listing and deleting seat locks. All methods
// behave with respect to UTC timestamps; callers must ensure that
// expiration comparisons are performed in UTC.
type SeatLockRepo struct {
	db *sql.DB
}

// NewSeatLockRepo returns a new SeatLockRepo bound to the provided database.
func NewSeatLockRepo(db *sql.DB) *SeatLockRepo { return &SeatLockRepo{db: db} }

// ExpireLocksTx removes all seat locks for a given schedule that have expired
// and returns the positions whose locks were removed. A lock is considered
// expired when its expires_at timestamp is less than or equal to the current
// UTC time. The caller must supply an existing transaction and is
// responsible for committing or rolling back.
//
// When there are no expired locks, it returns an empty slice and nil error.
func (r *SeatLockRepo) ExpireLocksTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) ([]seatgrid.Position, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_row, seat_col FROM seat_locks WHERE schedule_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	var expired []seatgrid.Position
	for rows.Next() {
		var p seatgrid.Position
		if scanErr := rows.Scan(&p.Row, &p.Column); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		expired = append(expired, p)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return []seatgrid.Position{}, nil
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM seat_locks WHERE schedule_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// randomToken generates a random hexadecimal string of n bytes (2n hex
// characters). It is used to populate the lock_token column. The underlying
// call to crypto/rand ensures cryptographically secure random bytes.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateMultipleTx inserts multiple seat_locks within the provided
// transaction. Each lock must specify ScheduleID, Row, Column, UserID,
// LockToken and ExpiresAt. The CreatedAt column is set by the database.
// The caller is responsible for committing or rolling back the transaction.
// Passing an empty slice has no effect and returns nil. A unique index on
// (schedule_id, seat_row, seat_col) makes concurrent lock attempts on the
// same position fail with a duplicate key error.
func (r *SeatLockRepo) CreateMultipleTx(ctx context.Context, tx *sql.Tx, locks []SeatLockRecord) error {
	if len(locks) == 0 {
		return nil
	}
	query := `INSERT INTO seat_locks (user_id, schedule_id, seat_row, seat_col, lock_token, expires_at) VALUES `
	args := make([]interface{}, 0, len(locks)*6)
	for i, l := range locks {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, l.UserID, l.ScheduleID, l.Row, l.Column, l.LockToken, l.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// IsDuplicateLock reports whether the error from CreateMultipleTx was caused
// by the unique position index, i.e. another user already locked one of the
// requested positions.
func IsDuplicateLock(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// DeleteByUserAndScheduleTx removes all seat_locks for the specified user and
// schedule. It returns the positions that were released so that callers may
// report them. The deletion occurs within the provided transaction; the
// caller must commit or roll back accordingly.
func (r *SeatLockRepo) DeleteByUserAndScheduleTx(ctx context.Context, tx *sql.Tx, userID, scheduleID uint64) ([]seatgrid.Position, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_row, seat_col FROM seat_locks WHERE user_id = ? AND schedule_id = ?`, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	var released []seatgrid.Position
	for rows.Next() {
		var p seatgrid.Position
		if scanErr := rows.Scan(&p.Row, &p.Column); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		released = append(released, p)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_locks WHERE user_id = ? AND schedule_id = ?`, userID, scheduleID); err != nil {
		return nil, err
	}
	return released, nil
}

// ActiveLocksByUserAndScheduleTx retrieves all non-expired seat locks for a
// particular user and schedule. Use this when issuing a ticket to ensure the
// positions are still locked and have not expired. The query is executed
// within the provided transaction.
func (r *SeatLockRepo) ActiveLocksByUserAndScheduleTx(ctx context.Context, tx *sql.Tx, userID, scheduleID uint64) ([]SeatLockRecord, error) {
	const q = `SELECT id, user_id, schedule_id, seat_row, seat_col, lock_token, expires_at, created_at
	           FROM seat_locks
	           WHERE user_id = ? AND schedule_id = ? AND expires_at > UTC_TIMESTAMP()`
	rows, err := tx.QueryContext(ctx, q, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []SeatLockRecord
	for rows.Next() {
		var l SeatLockRecord
		if err := rows.Scan(&l.ID, &l.UserID, &l.ScheduleID, &l.Row, &l.Column, &l.LockToken, &l.ExpiresAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locks, nil
}

// ActivePositionsTx returns the positions of every non-expired lock on the
// schedule regardless of holder. Seat map rendering treats these positions
// as unavailable alongside sold seats.
func (r *SeatLockRepo) ActivePositionsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) ([]seatgrid.Position, error) {
	const q = `SELECT seat_row, seat_col FROM seat_locks WHERE schedule_id = ? AND expires_at > UTC_TIMESTAMP()`
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

// ActivePositions is the non-transactional variant of ActivePositionsTx used
// by read-only seat map requests.
func (r *SeatLockRepo) ActivePositions(ctx context.Context, scheduleID uint64) ([]seatgrid.Position, error) {
	const q = `SELECT seat_row, seat_col FROM seat_locks WHERE schedule_id = ? AND expires_at > UTC_TIMESTAMP()`
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

// GenerateLockRecords builds seat lock records for the given user, schedule
// and positions. A new random token is generated for each position. The
// expiration is set to the provided timestamp. This helper is used by
// handlers prior to calling CreateMultipleTx.
func GenerateLockRecords(userID, scheduleID uint64, positions []seatgrid.Position, expiresAt time.Time) ([]SeatLockRecord, error) {
	locks := make([]SeatLockRecord, 0, len(positions))
	for _, p := range positions {
		token, err := randomToken(32)
		if err != nil {
			return nil, err
		}
		locks = append(locks, SeatLockRecord{
			UserID:     userID,
			ScheduleID: scheduleID,
			Row:        p.Row,
			Column:     p.Column,
			LockToken:  token,
			ExpiresAt:  expiresAt,
		})
	}
	return locks, nil
}
