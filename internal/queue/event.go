// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published when a ticket purchase is committed.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type TicketIssuedEvent struct {
	TicketID       uint64   `json:"ticket_id"`
	Serial         string   `json:"serial"`
	UserID         uint64   `json:"user_id"`
	ScheduleID     uint64   `json:"schedule_id"`
	BusID          uint64   `json:"bus_id"`
	BusName        string   `json:"bus_name"`
	CompanyName    string   `json:"company_name"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DepartsAt      string   `json:"departs_at"`
	ArrivesAt      string   `json:"arrives_at"`
	SeatLabels     []string `json:"seats"`
	TotalFareCents uint32   `json:"total_fare_cents"`
	IssuedAt       string   `json:"issued_at"`
}
