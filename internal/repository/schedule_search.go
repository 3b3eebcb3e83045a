package repository

import (
	"context"
	"strings"
)

// ScheduleSearchQuery defines filters & pagination for searching departures.
type ScheduleSearchQuery struct {
	Origin      string
	Destination string
	Company     string
	TimeFilter  string
	Page        int
	PageSize    int
}

type PublicScheduleRow struct {
	ID         uint64  `json:"id"`
	RouteID    uint64  `json:"route_id"`
	RouteName  string  `json:"route_name"`
	Origin     string  `json:"origin"`
	Destination string `json:"destination"`
	CompanyID  uint64  `json:"company_id"`
	Company    string  `json:"company"`
	BusName    string  `json:"bus_name"`
	DepartsAt  string  `json:"departs_at"`
	ArrivesAt  string  `json:"arrives_at"`
	FareCents  uint64  `json:"fare_cents"`
	Fare       float64 `json:"fare"`
	TotalSeats uint32  `json:"total_seats"`
}

func (r *ScheduleRepo) SearchUpcoming(ctx context.Context, q ScheduleSearchQuery) ([]PublicScheduleRow, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "active":
		where = append(where, "s.arrives_at >= NOW()")
	default:
		where = append(where, "s.departs_at >= NOW()")
	}

	if q.Origin != "" {
		where = append(where, "LOWER(rt.origin) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Origin)+"%")
	}
	if q.Destination != "" {
		where = append(where, "LOWER(rt.destination) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Destination)+"%")
	}
	if q.Company != "" {
		where = append(where, "LOWER(c.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Company)+"%")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM schedules s
		JOIN buses b   ON b.id = s.bus_id
		JOIN routes rt ON rt.id = s.route_id
		JOIN companies c ON c.id = b.company_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			s.id,
			rt.id   AS route_id,
			rt.name AS route_name,
			rt.origin,
			rt.destination,
			c.id    AS company_id,
			c.name  AS company_name,
			b.name  AS bus_name,
			DATE_FORMAT(s.departs_at, '%Y-%m-%d %T') AS departs_at,
			DATE_FORMAT(s.arrives_at, '%Y-%m-%d %T') AS arrives_at,
			COALESCE(s.base_fare_cents, 0) AS fare_cents,
			s.total_seats
		FROM schedules s
		JOIN buses b   ON b.id = s.bus_id
		JOIN routes rt ON rt.id = s.route_id
		JOIN companies c ON c.id = b.company_id
		WHERE ` + cond + `
		ORDER BY s.departs_at ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicScheduleRow, 0, limit)
	for rows.Next() {
		var d PublicScheduleRow
		if err := rows.Scan(
			&d.ID,
			&d.RouteID,
			&d.RouteName,
			&d.Origin,
			&d.Destination,
			&d.CompanyID,
			&d.Company,
			&d.BusName,
			&d.DepartsAt,
			&d.ArrivesAt,
			&d.FareCents,
			&d.TotalSeats,
		); err != nil {
			return nil, 0, err
		}
		d.Fare = float64(d.FareCents) / 100.0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
