package seatgrid

import "strings"

// Mode is the editor's current editing state.  All entry points into a
// non-idle mode reject when another mode is already active; a mode is left
// only through Confirm* or Cancel.
type Mode int

const (
	ModeIdle Mode = iota
	ModeEditingCell
	ModeEditingRow
	ModeEditingAll
	ModeAddingRow
)

// String returns the mode name for logs and error payloads.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeEditingCell:
		return "EDITING_CELL"
	case ModeEditingRow:
		return "EDITING_ROW"
	case ModeEditingAll:
		return "EDITING_ALL"
	case ModeAddingRow:
		return "ADDING_ROW"
	}
	return "UNKNOWN"
}

// Token values of the row-entry mini-language.  Tokens are matched
// case-insensitively after trimming.
const (
	tokenBroken = "XX" // create a broken seat at this position
	tokenAisle  = "XY" // place an aisle cell at this position
)

// Editor wraps a grid with the buffered edit modes: inline single-cell
// editing, bulk re-authoring of a row or the whole grid, and the guided
// append-row step.  Structural operations (resizes, aisle toggles, context
// actions) apply immediately and are only permitted while idle, so a
// buffered mode can always be cancelled back to the exact pre-entry state.
type Editor struct {
	grid *Grid
	mode Mode

	editPos Position // ModeEditingCell target

	bulkRow    int                 // ModeEditingRow scope
	buffer     map[Position]string // bulk working buffer
	bufferKeys []Position          // buffer iteration order (row-major)

	rowValues map[int]string // ModeAddingRow entries keyed by column
}

// NewEditor returns an idle editor over g.
func NewEditor(g *Grid) *Editor {
	return &Editor{grid: g, mode: ModeIdle}
}

// Grid exposes the underlying grid for rendering and saving.
func (e *Editor) Grid() *Grid { return e.grid }

// Mode returns the editor's current mode.
func (e *Editor) Mode() Mode { return e.mode }

// Cancel abandons whatever mode is active and discards its working buffer.
// The grid is untouched: no partial writes ever happen before Confirm.
func (e *Editor) Cancel() error {
	if e.mode == ModeIdle {
		return ErrNotEditing
	}
	e.reset()
	return nil
}

func (e *Editor) reset() {
	e.mode = ModeIdle
	e.buffer = nil
	e.bufferKeys = nil
	e.rowValues = nil
}

// ---- structural operations (immediate, idle only) ----

// SetRowCount resizes the grid's rows.  See Grid.SetRowCount.
func (e *Editor) SetRowCount(n int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	return e.grid.SetRowCount(n)
}

// SetColumnCount resizes the grid's columns.  See Grid.SetColumnCount.
func (e *Editor) SetColumnCount(n int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	return e.grid.SetColumnCount(n)
}

// ToggleAisleColumn flips a column's aisle membership.  See
// Grid.ToggleAisleColumn.
func (e *Editor) ToggleAisleColumn(column int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	return e.grid.ToggleAisleColumn(column)
}

// ---- context actions (immediate, idle only) ----

// ToggleBroken flips a seat between SEAT and BROKEN, preserving its
// position, number and label.  Empty and aisle positions are not toggleable.
func (e *Editor) ToggleBroken(row, column int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	cell, err := e.grid.CellAt(row, column)
	if err != nil {
		return err
	}
	switch cell.Kind {
	case KindSeat:
		cell.Kind = KindBroken
	case KindBroken:
		cell.Kind = KindSeat
	default:
		return ErrNotEditable
	}
	e.grid.put(cell)
	return nil
}

// MakeAisle converts the cell's column into a full aisle column.  The
// single-cell action propagates to the whole column so the aisle membership
// set can never disagree with the cells beneath it; converting a cell in a
// column that is already an aisle is a no-op.
func (e *Editor) MakeAisle(row, column int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	if !e.grid.inBounds(row, column) {
		return ErrOutOfRange
	}
	if e.grid.IsAisleColumn(column) {
		return nil
	}
	return e.grid.ToggleAisleColumn(column)
}

// RemoveCell deletes the cell at the position, returning it to empty.
// Aisle cells belong to their column and are removed through
// ToggleAisleColumn instead.
func (e *Editor) RemoveCell(row, column int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	cell, err := e.grid.CellAt(row, column)
	if err != nil {
		return err
	}
	if cell.Kind == KindAisle {
		return ErrAisleColumn
	}
	if cell.Kind == KindEmpty {
		return nil
	}
	e.grid.remove(cell.Pos())
	return nil
}

// ---- single-cell inline editing ----

// BeginCellEdit opens inline text entry at the position and returns the
// prefill text: the current label, the seat number when no label exists, or
// an empty string for an empty position.  Aisle cells are not editable.
func (e *Editor) BeginCellEdit(row, column int) (string, error) {
	if e.mode != ModeIdle {
		return "", ErrModeActive
	}
	cell, err := e.grid.CellAt(row, column)
	if err != nil {
		return "", err
	}
	if cell.Kind == KindAisle {
		return "", ErrNotEditable
	}
	e.mode = ModeEditingCell
	e.editPos = Position{Row: row, Column: column}
	return cell.DisplayText(), nil
}

// ConfirmCellEdit applies the entered text to the cell under edit.
// Non-empty text on an empty position creates a seat labelled with the text
// and numbered max+1 across the whole grid.  Non-empty text on an existing
// seat replaces its label.  Empty text on an existing seat clears the
// custom label but keeps the cell and its number; empty text on an empty
// position creates nothing.
func (e *Editor) ConfirmCellEdit(text string) error {
	if e.mode != ModeEditingCell {
		return ErrNotEditing
	}
	pos := e.editPos
	e.reset()

	text = strings.TrimSpace(text)
	cell, err := e.grid.CellAt(pos.Row, pos.Column)
	if err != nil {
		return err
	}
	if cell.Kind == KindEmpty {
		if text == "" {
			return nil
		}
		e.grid.put(Cell{
			Row:        pos.Row,
			Column:     pos.Column,
			Kind:       KindSeat,
			SeatNumber: e.grid.nextSeatNumber(),
			SeatLabel:  text,
		})
		return nil
	}
	cell.SeatLabel = text
	e.grid.put(cell)
	return nil
}

// ---- bulk editing ----

// BeginRowEdit enters bulk mode over a single row: every editable position
// in the row is snapshotted into the working buffer by its display text.
func (e *Editor) BeginRowEdit(row int) error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	if row < 0 || row >= e.grid.rowCount {
		return ErrOutOfRange
	}
	e.mode = ModeEditingRow
	e.bulkRow = row
	e.snapshot(row, row)
	return nil
}

// BeginGridEdit enters bulk mode over the whole grid.  Only one bulk scope
// may be active at a time; the row and grid scopes are mutually exclusive.
func (e *Editor) BeginGridEdit() error {
	if e.mode != ModeIdle {
		return ErrModeActive
	}
	e.mode = ModeEditingAll
	e.snapshot(0, e.grid.rowCount-1)
	return nil
}

// snapshot fills the buffer with the display text of every editable
// (non-aisle) position between firstRow and lastRow inclusive, empty string
// for positions that hold no cell.  Keys are recorded in row-major order so
// confirm walks and numbers them deterministically.
func (e *Editor) snapshot(firstRow, lastRow int) {
	e.buffer = make(map[Position]string)
	e.bufferKeys = nil
	for r := firstRow; r <= lastRow; r++ {
		for c := 0; c < e.grid.columnCount; c++ {
			cell, _ := e.grid.CellAt(r, c)
			if cell.Kind == KindAisle {
				continue
			}
			p := Position{Row: r, Column: c}
			e.buffer[p] = cell.DisplayText()
			e.bufferKeys = append(e.bufferKeys, p)
		}
	}
}

// SetBufferText updates one entry of the active bulk buffer.  Positions
// outside the edited scope are rejected.
func (e *Editor) SetBufferText(row, column int, text string) error {
	if e.mode != ModeEditingRow && e.mode != ModeEditingAll {
		return ErrNotEditing
	}
	p := Position{Row: row, Column: column}
	if _, ok := e.buffer[p]; !ok {
		return ErrOutOfRange
	}
	e.buffer[p] = text
	return nil
}

// BufferText reads one entry of the active bulk buffer.
func (e *Editor) BufferText(row, column int) (string, error) {
	if e.mode != ModeEditingRow && e.mode != ModeEditingAll {
		return "", ErrNotEditing
	}
	v, ok := e.buffer[Position{Row: row, Column: column}]
	if !ok {
		return "", ErrOutOfRange
	}
	return v, nil
}

// ConfirmBulk applies the buffered texts and leaves bulk mode.  Existing
// cells get their label updated or cleared; positions that gained text get
// a new seat numbered sequentially in buffer order; positions that stayed
// empty stay empty.  Numbering here is incremental; a full normalization
// only happens at save time via Renumber.
func (e *Editor) ConfirmBulk() error {
	if e.mode != ModeEditingRow && e.mode != ModeEditingAll {
		return ErrNotEditing
	}
	buffer, keys := e.buffer, e.bufferKeys
	e.reset()

	for _, p := range keys {
		text := strings.TrimSpace(buffer[p])
		cell, err := e.grid.CellAt(p.Row, p.Column)
		if err != nil {
			return err
		}
		switch {
		case cell.Kind == KindEmpty && text == "":
			// still empty, nothing to create
		case cell.Kind == KindEmpty:
			e.grid.put(Cell{
				Row:        p.Row,
				Column:     p.Column,
				Kind:       KindSeat,
				SeatNumber: e.grid.nextSeatNumber(),
				SeatLabel:  text,
			})
		default:
			cell.SeatLabel = text
			e.grid.put(cell)
		}
	}
	return nil
}

// ---- guided row append ----

// BeginAppendRow opens the guided entry step for a new row and returns the
// columns that will be prompted: every column of the current width that is
// not an aisle.  Aisle columns are not prompted; their cells in the new row
// are created automatically on confirm.
func (e *Editor) BeginAppendRow() ([]int, error) {
	if e.mode != ModeIdle {
		return nil, ErrModeActive
	}
	e.mode = ModeAddingRow
	e.rowValues = make(map[int]string)
	cols := make([]int, 0, e.grid.columnCount)
	for c := 0; c < e.grid.columnCount; c++ {
		if !e.grid.IsAisleColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

// SetAppendValue records the entered text for one prompted column of the
// pending row.  Aisle columns and columns outside the grid are rejected.
func (e *Editor) SetAppendValue(column int, text string) error {
	if e.mode != ModeAddingRow {
		return ErrNotEditing
	}
	if column < 0 || column >= e.grid.columnCount {
		return ErrOutOfRange
	}
	if e.grid.IsAisleColumn(column) {
		return ErrAisleColumn
	}
	e.rowValues[column] = text
	return nil
}

// ConfirmAppendRow parses the entered values with the mini-language,
// appends the resulting cells at row = RowCount and then grows the grid by
// one row.  Empty entries produce no cell.  "XX" produces a broken seat and
// "XY" converts the whole column into an aisle column, like MakeAisle; any
// other text becomes a seat labelled with it.  Columns already flagged as
// aisles receive an aisle cell in the new row so the column invariant
// survives the append.
func (e *Editor) ConfirmAppendRow() error {
	if e.mode != ModeAddingRow {
		return ErrNotEditing
	}
	values := e.rowValues
	e.reset()

	newRow := e.grid.rowCount
	g := e.grid
	g.rowCount++
	for c := 0; c < g.columnCount; c++ {
		if g.IsAisleColumn(c) {
			g.put(Cell{Row: newRow, Column: c, Kind: KindAisle})
			continue
		}
		text := strings.TrimSpace(values[c])
		if text == "" {
			continue
		}
		switch strings.ToUpper(text) {
		case tokenBroken:
			g.put(Cell{
				Row:        newRow,
				Column:     c,
				Kind:       KindBroken,
				SeatNumber: g.nextSeatNumber(),
			})
		case tokenAisle:
			// The token propagates column-wide.  A lone aisle cell would
			// leave the membership set disagreeing with the cells beneath
			// it and save-time expansion would seat the rest of the column.
			if !g.IsAisleColumn(c) {
				if err := g.ToggleAisleColumn(c); err != nil {
					return err
				}
			}
		default:
			g.put(Cell{
				Row:        newRow,
				Column:     c,
				Kind:       KindSeat,
				SeatNumber: g.nextSeatNumber(),
				SeatLabel:  text,
			})
		}
	}
	return nil
}
