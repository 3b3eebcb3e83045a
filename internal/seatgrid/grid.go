// Package seatgrid implements the seat-plan grid model used by seat plans,
// buses and schedules.  A grid is a rectangular rows × columns layout backed
// by a flat list of positioned cells; positions absent from the list are
// implicitly empty.  The package is pure in-memory state: persistence and
// HTTP handling live in the repository and handler layers.
package seatgrid

import (
	"errors"
	"sort"
	"strconv"
)

// CellKind identifies what occupies a grid position.  KindEmpty is the
// sentinel occupancy for positions that hold no cell at all; it never
// appears inside a grid's cell list.
type CellKind string

const (
	KindEmpty  CellKind = ""       // no cell at this position
	KindSeat   CellKind = "SEAT"   // sellable seat
	KindBroken CellKind = "BROKEN" // seat excluded from capacity and sale
	KindAisle  CellKind = "AISLE"  // walkway; never numbered, never selectable
)

// Position addresses a single grid cell by zero-based row and column.
// Row 0 is the front of the vehicle.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Cell is the atomic unit of a grid.  SeatNumber is assigned by Renumber
// for non-aisle cells only; aisle cells never consume a number.  SeatLabel
// is an optional human-facing override ("A1"); when empty the cell is
// displayed by its number.  FareCents is an optional per-seat fare override
// forwarded untouched to the booking layer; zero means "use the schedule's
// flat fare".
type Cell struct {
	Row        int      `json:"row"`
	Column     int      `json:"column"`
	Kind       CellKind `json:"kind"`
	SeatNumber int      `json:"seat_number,omitempty"`
	SeatLabel  string   `json:"seat_label,omitempty"`
	FareCents  uint32   `json:"fare_cents,omitempty"`
}

// Pos returns the cell's position.
func (c Cell) Pos() Position { return Position{Row: c.Row, Column: c.Column} }

// DisplayText is the text shown for the cell in editors: the label when
// present, otherwise the seat number, otherwise nothing.
func (c Cell) DisplayText() string {
	if c.SeatLabel != "" {
		return c.SeatLabel
	}
	if c.Kind != KindAisle && c.SeatNumber > 0 {
		return strconv.Itoa(c.SeatNumber)
	}
	return ""
}

// Errors reported by grid and editor operations.  Expected-empty conditions
// (missing document on load, empty booked list) are never errors.
var (
	ErrOutOfRange    = errors.New("position out of range")
	ErrBadDimension  = errors.New("dimension must be at least 1")
	ErrNotEditable   = errors.New("cell is not editable")
	ErrAisleColumn   = errors.New("column is reserved for an aisle")
	ErrModeActive    = errors.New("another edit mode is active")
	ErrNotEditing    = errors.New("no edit mode is active")
	ErrNotSelectable = errors.New("position is not selectable")
)

// Grid is the aggregate: dimensions, the aisle-column membership set and the
// flat cell list, plus a position index rebuilt on every structural change.
// The cell list is the source of truth; the index only accelerates CellAt.
type Grid struct {
	rowCount     int
	columnCount  int
	aisleColumns map[int]struct{}
	cells        []Cell
	index        map[Position]int // position -> index into cells
}

// New returns an empty grid with the given dimensions and no cells.
func New(rowCount, columnCount int) (*Grid, error) {
	if rowCount < 1 || columnCount < 1 {
		return nil, ErrBadDimension
	}
	g := &Grid{
		rowCount:     rowCount,
		columnCount:  columnCount,
		aisleColumns: make(map[int]struct{}),
		index:        make(map[Position]int),
	}
	return g, nil
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return g.rowCount }

// ColumnCount returns the number of columns.
func (g *Grid) ColumnCount() int { return g.columnCount }

// AisleColumns returns the aisle column indices in ascending order.
func (g *Grid) AisleColumns() []int {
	out := make([]int, 0, len(g.aisleColumns))
	for c := range g.aisleColumns {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// IsAisleColumn reports whether column c is flagged as an aisle column.
func (g *Grid) IsAisleColumn(c int) bool {
	_, ok := g.aisleColumns[c]
	return ok
}

// Cells returns a copy of the cell list in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	sortRowMajor(out)
	return out
}

// CellCount returns the number of explicit cells in the grid.
func (g *Grid) CellCount() int { return len(g.cells) }

// inBounds reports whether (row, column) lies inside the grid rectangle.
func (g *Grid) inBounds(row, column int) bool {
	return row >= 0 && row < g.rowCount && column >= 0 && column < g.columnCount
}

// CellAt answers "what occupies position (row, column)?".  It returns a cell
// with KindEmpty when the position holds nothing.  Out-of-bounds positions
// are a caller error and yield ErrOutOfRange with no further information.
func (g *Grid) CellAt(row, column int) (Cell, error) {
	if !g.inBounds(row, column) {
		return Cell{}, ErrOutOfRange
	}
	if i, ok := g.index[Position{Row: row, Column: column}]; ok {
		return g.cells[i], nil
	}
	return Cell{Row: row, Column: column, Kind: KindEmpty}, nil
}

// put inserts or replaces the cell at its position.  Last write wins on a
// duplicate position so the list can never hold two cells for one spot.
func (g *Grid) put(c Cell) {
	p := c.Pos()
	if i, ok := g.index[p]; ok {
		g.cells[i] = c
		return
	}
	g.index[p] = len(g.cells)
	g.cells = append(g.cells, c)
}

// remove deletes the cell at p if present.
func (g *Grid) remove(p Position) {
	i, ok := g.index[p]
	if !ok {
		return
	}
	g.cells = append(g.cells[:i], g.cells[i+1:]...)
	g.rebuildIndex()
}

// removeWhere deletes every cell for which drop returns true.
func (g *Grid) removeWhere(drop func(Cell) bool) {
	kept := g.cells[:0]
	for _, c := range g.cells {
		if !drop(c) {
			kept = append(kept, c)
		}
	}
	g.cells = kept
	g.rebuildIndex()
}

func (g *Grid) rebuildIndex() {
	g.index = make(map[Position]int, len(g.cells))
	for i, c := range g.cells {
		g.index[c.Pos()] = i
	}
}

// SetRowCount resizes the grid to n rows, discarding any cell whose row now
// falls outside the rectangle.  Columns and aisle membership are untouched.
func (g *Grid) SetRowCount(n int) error {
	if n < 1 {
		return ErrBadDimension
	}
	g.rowCount = n
	g.removeWhere(func(c Cell) bool { return c.Row >= n })
	return nil
}

// SetColumnCount resizes the grid to n columns.  Cells and aisle-column
// entries at or beyond the new count are discarded so the membership set
// never references a column outside the rectangle.
func (g *Grid) SetColumnCount(n int) error {
	if n < 1 {
		return ErrBadDimension
	}
	g.columnCount = n
	g.removeWhere(func(c Cell) bool { return c.Column >= n })
	for c := range g.aisleColumns {
		if c >= n {
			delete(g.aisleColumns, c)
		}
	}
	return nil
}

// ToggleAisleColumn flips column c in or out of the aisle set.  Either
// branch fully replaces the column's cells: toggling on deletes any seat
// cells in the column and inserts an aisle cell for every row; toggling off
// deletes the aisle cells and leaves the positions empty rather than
// re-seating them.
func (g *Grid) ToggleAisleColumn(column int) error {
	if column < 0 || column >= g.columnCount {
		return ErrOutOfRange
	}
	if _, ok := g.aisleColumns[column]; ok {
		delete(g.aisleColumns, column)
		g.removeWhere(func(c Cell) bool { return c.Column == column })
		return nil
	}
	g.aisleColumns[column] = struct{}{}
	g.removeWhere(func(c Cell) bool { return c.Column == column })
	for r := 0; r < g.rowCount; r++ {
		g.put(Cell{Row: r, Column: column, Kind: KindAisle})
	}
	return nil
}

// nextSeatNumber returns max existing seat number across the whole grid
// plus one.  Used when a single cell is created between full renumbers.
func (g *Grid) nextSeatNumber() int {
	max := 0
	for _, c := range g.cells {
		if c.Kind != KindAisle && c.SeatNumber > max {
			max = c.SeatNumber
		}
	}
	return max + 1
}

// Matrix builds the dense row-major 2D view used by every renderer.  It is
// a pure derivation: empty positions appear as KindEmpty cells and the grid
// itself is never modified.
func Matrix(cells []Cell, rowCount, columnCount int) [][]Cell {
	view := make([][]Cell, rowCount)
	byPos := make(map[Position]Cell, len(cells))
	for _, c := range cells {
		byPos[c.Pos()] = c // last write wins on duplicates
	}
	for r := 0; r < rowCount; r++ {
		view[r] = make([]Cell, columnCount)
		for c := 0; c < columnCount; c++ {
			if cell, ok := byPos[Position{Row: r, Column: c}]; ok {
				view[r][c] = cell
			} else {
				view[r][c] = Cell{Row: r, Column: c, Kind: KindEmpty}
			}
		}
	}
	return view
}

// Matrix returns the dense 2D view of this grid.
func (g *Grid) Matrix() [][]Cell {
	return Matrix(g.cells, g.rowCount, g.columnCount)
}

// Renumber deterministically reassigns seat numbers to every non-aisle cell
// in the slice, scanning row-major from 1.  Aisle cells keep SeatNumber 0.
// Running it twice with no structural change in between yields identical
// assignments.
func Renumber(cells []Cell) {
	sortRowMajor(cells)
	n := 0
	for i := range cells {
		if cells[i].Kind == KindAisle {
			cells[i].SeatNumber = 0
			continue
		}
		n++
		cells[i].SeatNumber = n
	}
}

// Renumber renumbers the grid's cells in place.
func (g *Grid) Renumber() {
	Renumber(g.cells)
	g.rebuildIndex()
}

// Expand fills every implicitly-empty position with an explicit cell: an
// aisle cell when the column is in the aisle set, otherwise a plain seat
// placeholder.  Save always expands before renumbering so that "capacity"
// downstream means the full rectangle, not just the authored cells.
func (g *Grid) Expand() {
	for r := 0; r < g.rowCount; r++ {
		for c := 0; c < g.columnCount; c++ {
			if _, ok := g.index[Position{Row: r, Column: c}]; ok {
				continue
			}
			kind := KindSeat
			if g.IsAisleColumn(c) {
				kind = KindAisle
			}
			g.put(Cell{Row: r, Column: c, Kind: kind})
		}
	}
}

// TotalSeats counts cells with kind SEAT.  Broken seats and aisles are
// excluded from capacity.
func (g *Grid) TotalSeats() int {
	n := 0
	for _, c := range g.cells {
		if c.Kind == KindSeat {
			n++
		}
	}
	return n
}

// Clone returns a deep, independent copy of the grid.  Buses and schedules
// copy grids rather than referencing them: later edits to the source never
// propagate to the clone.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		rowCount:     g.rowCount,
		columnCount:  g.columnCount,
		aisleColumns: make(map[int]struct{}, len(g.aisleColumns)),
		cells:        make([]Cell, len(g.cells)),
	}
	for c := range g.aisleColumns {
		out.aisleColumns[c] = struct{}{}
	}
	copy(out.cells, g.cells)
	out.rebuildIndex()
	return out
}

// Equal reports whether two grids hold identical dimensions, aisle sets and
// cell lists.  Cell order is normalized before comparison.
func (g *Grid) Equal(o *Grid) bool {
	if g.rowCount != o.rowCount || g.columnCount != o.columnCount {
		return false
	}
	if len(g.aisleColumns) != len(o.aisleColumns) || len(g.cells) != len(o.cells) {
		return false
	}
	for c := range g.aisleColumns {
		if _, ok := o.aisleColumns[c]; !ok {
			return false
		}
	}
	a, b := g.Cells(), o.Cells()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortRowMajor orders cells front-to-back, left-to-right.
func sortRowMajor(cells []Cell) {
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Column < cells[j].Column
	})
}
