package seatgrid

// SeatStatus is the rendered state of one position in the booking view.
type SeatStatus string

const (
	StatusEmpty     SeatStatus = "EMPTY"     // no seat placed here
	StatusAisle     SeatStatus = "AISLE"     // walkway, always inert
	StatusBroken    SeatStatus = "BROKEN"    // seat withdrawn from sale
	StatusBooked    SeatStatus = "BOOKED"    // sold for this schedule
	StatusAvailable SeatStatus = "AVAILABLE" // selectable
	StatusSelected  SeatStatus = "SELECTED"  // chosen in this session
)

// FareFunc resolves the fare forwarded for a selected cell.  Fare
// resolution (per-seat override versus the schedule's flat price) is the
// booking layer's concern; the overlay only passes the value through.
type FareFunc func(Cell) uint32

// SelectedSeat is one entry of the selection handed to ticket creation.
type SelectedSeat struct {
	Row        int    `json:"row"`
	Column     int    `json:"column"`
	SeatNumber int    `json:"seat_number"`
	SeatLabel  string `json:"seat_label,omitempty"`
	FareCents  uint32 `json:"fare_cents"`
}

// SeatView pairs a cell with its overlay status for rendering.
type SeatView struct {
	Cell   Cell       `json:"cell"`
	Status SeatStatus `json:"status"`
}

// Overlay renders a grid read-only with booked and selected state layered
// on top.  The underlying grid and the booked set are never mutated; the
// only state the overlay owns is the ordered selection.
type Overlay struct {
	grid     *Grid
	booked   map[Position]struct{}
	fare     FareFunc
	selected map[Position]struct{}
	order    []Position
}

// NewOverlay builds a booking view over g.  The booked positions come from
// the availability collaborator and are treated as authoritative; a nil or
// empty list simply means no constraint.  fare may be nil when no pricing
// is attached to the view.
func NewOverlay(g *Grid, booked []Position, fare FareFunc) *Overlay {
	o := &Overlay{
		grid:     g,
		booked:   make(map[Position]struct{}, len(booked)),
		fare:     fare,
		selected: make(map[Position]struct{}),
	}
	for _, p := range booked {
		o.booked[p] = struct{}{}
	}
	return o
}

// StatusAt reports the rendered state of a position.
func (o *Overlay) StatusAt(row, column int) (SeatStatus, error) {
	cell, err := o.grid.CellAt(row, column)
	if err != nil {
		return "", err
	}
	return o.status(cell), nil
}

func (o *Overlay) status(cell Cell) SeatStatus {
	switch cell.Kind {
	case KindEmpty:
		return StatusEmpty
	case KindAisle:
		return StatusAisle
	case KindBroken:
		return StatusBroken
	}
	p := cell.Pos()
	if _, ok := o.booked[p]; ok {
		return StatusBooked
	}
	if _, ok := o.selected[p]; ok {
		return StatusSelected
	}
	return StatusAvailable
}

// Toggle activates a position and returns its resulting status.  Available
// seats become selected, selected seats revert to available, and booked,
// broken, aisle and empty positions are inert: activating them any number
// of times changes nothing.  Only out-of-bounds input is an error.
func (o *Overlay) Toggle(row, column int) (SeatStatus, error) {
	cell, err := o.grid.CellAt(row, column)
	if err != nil {
		return "", err
	}
	switch o.status(cell) {
	case StatusAvailable:
		p := cell.Pos()
		o.selected[p] = struct{}{}
		o.order = append(o.order, p)
		return StatusSelected, nil
	case StatusSelected:
		o.deselect(cell.Pos())
		return StatusAvailable, nil
	default:
		return o.status(cell), nil
	}
}

func (o *Overlay) deselect(p Position) {
	delete(o.selected, p)
	for i, q := range o.order {
		if q == p {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}

// Clear empties the selection, as on submit or navigation away.
func (o *Overlay) Clear() {
	o.selected = make(map[Position]struct{})
	o.order = nil
}

// Selected returns the current selection in the order the seats were
// chosen, with seat numbers, labels and the externally resolved fares.
func (o *Overlay) Selected() []SelectedSeat {
	out := make([]SelectedSeat, 0, len(o.order))
	for _, p := range o.order {
		cell, err := o.grid.CellAt(p.Row, p.Column)
		if err != nil {
			continue
		}
		s := SelectedSeat{
			Row:        cell.Row,
			Column:     cell.Column,
			SeatNumber: cell.SeatNumber,
			SeatLabel:  cell.SeatLabel,
		}
		if o.fare != nil {
			s.FareCents = o.fare(cell)
		}
		out = append(out, s)
	}
	return out
}

// Subtotal sums the fares of the current selection.  It is informational
// for the ticket collaborator's own total computation, not authoritative.
func (o *Overlay) Subtotal() uint32 {
	var total uint32
	for _, s := range o.Selected() {
		total += s.FareCents
	}
	return total
}

// View renders the whole grid as a dense matrix of seat views, the shape
// every seat-map response is built from.
func (o *Overlay) View() [][]SeatView {
	matrix := o.grid.Matrix()
	out := make([][]SeatView, len(matrix))
	for r, row := range matrix {
		out[r] = make([]SeatView, len(row))
		for c, cell := range row {
			out[r][c] = SeatView{Cell: cell, Status: o.status(cell)}
		}
	}
	return out
}
