package seatgrid

import "testing"

func newEditor(t *testing.T, rows, cols int) *Editor {
	t.Helper()
	return NewEditor(mustGrid(t, rows, cols))
}

// Scenario 2: double-activating an empty position and confirming "A1"
// creates a labelled seat numbered 1 and leaves the aisle untouched.
func TestCellEditCreateSeat(t *testing.T) {
	e := newEditor(t, 2, 3)
	e.Grid().ToggleAisleColumn(1)

	prefill, err := e.BeginCellEdit(0, 0)
	if err != nil {
		t.Fatalf("BeginCellEdit: %v", err)
	}
	if prefill != "" {
		t.Errorf("prefill for empty position = %q, want empty", prefill)
	}
	if err := e.ConfirmCellEdit("A1"); err != nil {
		t.Fatalf("ConfirmCellEdit: %v", err)
	}

	cell, _ := e.Grid().CellAt(0, 0)
	if cell.Kind != KindSeat || cell.SeatLabel != "A1" || cell.SeatNumber != 1 {
		t.Errorf("created cell = %+v", cell)
	}
	aisle, _ := e.Grid().CellAt(1, 1)
	if aisle.Kind != KindAisle {
		t.Errorf("(1,1) = %q, want untouched aisle", aisle.Kind)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("mode = %v after confirm, want idle", e.Mode())
	}
}

func TestCellEditEmptyTextIsNoOp(t *testing.T) {
	e := newEditor(t, 1, 1)
	e.BeginCellEdit(0, 0)
	if err := e.ConfirmCellEdit("  "); err != nil {
		t.Fatalf("ConfirmCellEdit: %v", err)
	}
	if e.Grid().CellCount() != 0 {
		t.Error("confirming empty text on an empty position must create nothing")
	}
}

func TestCellEditUpdatesAndClearsLabel(t *testing.T) {
	e := newEditor(t, 1, 2)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 3, SeatLabel: "A1"})

	prefill, err := e.BeginCellEdit(0, 0)
	if err != nil {
		t.Fatalf("BeginCellEdit: %v", err)
	}
	if prefill != "A1" {
		t.Errorf("prefill = %q, want A1", prefill)
	}
	if err := e.ConfirmCellEdit("B2"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	cell, _ := e.Grid().CellAt(0, 0)
	if cell.SeatLabel != "B2" || cell.SeatNumber != 3 {
		t.Errorf("label update broke the cell: %+v", cell)
	}

	// empty text clears the custom name, never deletes the seat
	e.BeginCellEdit(0, 0)
	if err := e.ConfirmCellEdit(""); err != nil {
		t.Fatalf("confirm clear: %v", err)
	}
	cell, _ = e.Grid().CellAt(0, 0)
	if cell.Kind != KindSeat || cell.SeatLabel != "" || cell.SeatNumber != 3 {
		t.Errorf("clear label removed too much: %+v", cell)
	}
}

func TestCellEditPrefillFallsBackToNumber(t *testing.T) {
	e := newEditor(t, 1, 1)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 7})
	prefill, err := e.BeginCellEdit(0, 0)
	if err != nil {
		t.Fatalf("BeginCellEdit: %v", err)
	}
	if prefill != "7" {
		t.Errorf("prefill = %q, want 7", prefill)
	}
	e.Cancel()
}

func TestCellEditNextNumberScansWholeGrid(t *testing.T) {
	e := newEditor(t, 2, 2)
	e.Grid().put(Cell{Row: 1, Column: 1, Kind: KindSeat, SeatNumber: 9})
	e.BeginCellEdit(0, 0)
	e.ConfirmCellEdit("X")
	cell, _ := e.Grid().CellAt(0, 0)
	if cell.SeatNumber != 10 {
		t.Errorf("new seat numbered %d, want max+1 = 10", cell.SeatNumber)
	}
}

func TestCellEditRejectsAisle(t *testing.T) {
	e := newEditor(t, 1, 2)
	e.Grid().ToggleAisleColumn(1)
	if _, err := e.BeginCellEdit(0, 1); err != ErrNotEditable {
		t.Errorf("editing an aisle cell: want ErrNotEditable, got %v", err)
	}
}

func TestToggleBroken(t *testing.T) {
	e := newEditor(t, 1, 2)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 2, SeatLabel: "A2"})

	if err := e.ToggleBroken(0, 0); err != nil {
		t.Fatalf("ToggleBroken: %v", err)
	}
	cell, _ := e.Grid().CellAt(0, 0)
	if cell.Kind != KindBroken || cell.SeatNumber != 2 || cell.SeatLabel != "A2" {
		t.Errorf("toggle must preserve position/number/label: %+v", cell)
	}
	if err := e.ToggleBroken(0, 0); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	cell, _ = e.Grid().CellAt(0, 0)
	if cell.Kind != KindSeat {
		t.Errorf("second toggle should restore SEAT, got %q", cell.Kind)
	}

	if err := e.ToggleBroken(0, 1); err != ErrNotEditable {
		t.Errorf("toggling an empty position: want ErrNotEditable, got %v", err)
	}
}

// Converting one cell to an aisle propagates to the whole column, keeping
// the aisle membership set consistent with every row.
func TestMakeAislePropagatesToColumn(t *testing.T) {
	e := newEditor(t, 3, 2)
	e.Grid().put(Cell{Row: 0, Column: 1, Kind: KindSeat, SeatNumber: 1})
	e.Grid().put(Cell{Row: 2, Column: 1, Kind: KindBroken, SeatNumber: 2})

	if err := e.MakeAisle(1, 1); err != nil {
		t.Fatalf("MakeAisle: %v", err)
	}
	if !e.Grid().IsAisleColumn(1) {
		t.Fatal("column 1 should join the aisle set")
	}
	for r := 0; r < 3; r++ {
		cell, _ := e.Grid().CellAt(r, 1)
		if cell.Kind != KindAisle {
			t.Errorf("(%d,1) = %q, want aisle across the column", r, cell.Kind)
		}
	}
	// already-aisle column is a no-op, not a toggle-off
	if err := e.MakeAisle(0, 1); err != nil {
		t.Fatalf("MakeAisle on aisle column: %v", err)
	}
	if !e.Grid().IsAisleColumn(1) {
		t.Error("repeat MakeAisle must not toggle the column back off")
	}
}

func TestRemoveCell(t *testing.T) {
	e := newEditor(t, 1, 3)
	e.Grid().ToggleAisleColumn(2)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1})

	if err := e.RemoveCell(0, 0); err != nil {
		t.Fatalf("RemoveCell: %v", err)
	}
	cell, _ := e.Grid().CellAt(0, 0)
	if cell.Kind != KindEmpty {
		t.Errorf("(0,0) = %q after remove, want empty", cell.Kind)
	}
	if err := e.RemoveCell(0, 2); err != ErrAisleColumn {
		t.Errorf("removing an aisle cell directly: want ErrAisleColumn, got %v", err)
	}
	if err := e.RemoveCell(0, 1); err != nil {
		t.Errorf("removing an empty position should be a no-op, got %v", err)
	}
}

func TestBulkEditRowScope(t *testing.T) {
	e := newEditor(t, 2, 3)
	e.Grid().ToggleAisleColumn(1)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1"})

	if err := e.BeginRowEdit(0); err != nil {
		t.Fatalf("BeginRowEdit: %v", err)
	}
	// snapshot: existing label, empty string for the empty non-aisle slot,
	// nothing at all for the aisle column
	if v, _ := e.BufferText(0, 0); v != "A1" {
		t.Errorf("buffer(0,0) = %q, want A1", v)
	}
	if v, _ := e.BufferText(0, 2); v != "" {
		t.Errorf("buffer(0,2) = %q, want empty", v)
	}
	if _, err := e.BufferText(0, 1); err != ErrOutOfRange {
		t.Errorf("aisle position must not be buffered, got err %v", err)
	}
	if _, err := e.BufferText(1, 0); err != ErrOutOfRange {
		t.Errorf("row 1 is outside the row-0 scope, got err %v", err)
	}

	e.SetBufferText(0, 0, "Z9")
	e.SetBufferText(0, 2, "B1")
	if err := e.ConfirmBulk(); err != nil {
		t.Fatalf("ConfirmBulk: %v", err)
	}
	cell, _ := e.Grid().CellAt(0, 0)
	if cell.SeatLabel != "Z9" || cell.SeatNumber != 1 {
		t.Errorf("existing cell after bulk: %+v", cell)
	}
	created, _ := e.Grid().CellAt(0, 2)
	if created.Kind != KindSeat || created.SeatLabel != "B1" || created.SeatNumber != 2 {
		t.Errorf("created cell after bulk: %+v", created)
	}
}

func TestBulkEditClearAndNoOp(t *testing.T) {
	e := newEditor(t, 1, 2)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 4, SeatLabel: "D4"})

	e.BeginGridEdit()
	e.SetBufferText(0, 0, "")
	if err := e.ConfirmBulk(); err != nil {
		t.Fatalf("ConfirmBulk: %v", err)
	}
	cell, _ := e.Grid().CellAt(0, 0)
	if cell.Kind != KindSeat || cell.SeatLabel != "" || cell.SeatNumber != 4 {
		t.Errorf("empty buffered text should clear the label only: %+v", cell)
	}
	other, _ := e.Grid().CellAt(0, 1)
	if other.Kind != KindEmpty {
		t.Error("untouched empty buffer entries must not create cells")
	}
}

func TestSecondBulkModeRejected(t *testing.T) {
	e := newEditor(t, 2, 2)
	if err := e.BeginRowEdit(0); err != nil {
		t.Fatalf("BeginRowEdit: %v", err)
	}
	if err := e.BeginGridEdit(); err != ErrModeActive {
		t.Errorf("second bulk scope: want ErrModeActive, got %v", err)
	}
	if err := e.BeginRowEdit(1); err != ErrModeActive {
		t.Errorf("second row scope: want ErrModeActive, got %v", err)
	}
	// the first scope's buffer survives the rejected entries
	if _, err := e.BufferText(0, 0); err != nil {
		t.Errorf("first buffer corrupted: %v", err)
	}
	// structural and context actions are unavailable while a mode is active
	if err := e.SetRowCount(5); err != ErrModeActive {
		t.Errorf("SetRowCount during bulk: want ErrModeActive, got %v", err)
	}
	if err := e.ToggleBroken(0, 0); err != ErrModeActive {
		t.Errorf("ToggleBroken during bulk: want ErrModeActive, got %v", err)
	}
}

// P4: entering then abandoning any edit mode leaves the grid bit-for-bit
// equal to its pre-entry state.
func TestCancelLosesNothing(t *testing.T) {
	e := newEditor(t, 2, 3)
	e.Grid().ToggleAisleColumn(1)
	e.Grid().put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1"})
	before := e.Grid().Clone()

	enter := []struct {
		name  string
		begin func() error
		dirty func()
	}{
		{"cell", func() error { _, err := e.BeginCellEdit(0, 2); return err }, func() {}},
		{"row", func() error { return e.BeginRowEdit(0) }, func() { e.SetBufferText(0, 0, "junk") }},
		{"all", func() error { return e.BeginGridEdit() }, func() { e.SetBufferText(1, 0, "junk") }},
		{"append", func() error { _, err := e.BeginAppendRow(); return err }, func() { e.SetAppendValue(0, "junk") }},
	}
	for _, tc := range enter {
		if err := tc.begin(); err != nil {
			t.Fatalf("%s: begin: %v", tc.name, err)
		}
		tc.dirty()
		if err := e.Cancel(); err != nil {
			t.Fatalf("%s: cancel: %v", tc.name, err)
		}
		if !e.Grid().Equal(before) {
			t.Errorf("%s: grid changed by an abandoned edit", tc.name)
		}
		if e.Mode() != ModeIdle {
			t.Errorf("%s: mode = %v after cancel", tc.name, e.Mode())
		}
	}
	if err := e.Cancel(); err != ErrNotEditing {
		t.Errorf("Cancel while idle: want ErrNotEditing, got %v", err)
	}
}

// Scenario 4: append-row over two non-aisle columns with ["B1","XX"]
// appends a labelled seat and a broken seat and grows the grid by one row.
func TestAppendRowScenario(t *testing.T) {
	e := newEditor(t, 1, 2)
	cols, err := e.BeginAppendRow()
	if err != nil {
		t.Fatalf("BeginAppendRow: %v", err)
	}
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 1 {
		t.Fatalf("prompted columns = %v, want [0 1]", cols)
	}
	e.SetAppendValue(0, "B1")
	e.SetAppendValue(1, "xx") // tokens are case-insensitive
	if err := e.ConfirmAppendRow(); err != nil {
		t.Fatalf("ConfirmAppendRow: %v", err)
	}

	if e.Grid().RowCount() != 2 {
		t.Fatalf("rowCount = %d, want 2", e.Grid().RowCount())
	}
	seat, _ := e.Grid().CellAt(1, 0)
	if seat.Kind != KindSeat || seat.SeatLabel != "B1" {
		t.Errorf("(1,0) = %+v, want seat B1", seat)
	}
	broken, _ := e.Grid().CellAt(1, 1)
	if broken.Kind != KindBroken {
		t.Errorf("(1,1) = %+v, want broken seat", broken)
	}
}

func TestAppendRowSkipsAndAisleToken(t *testing.T) {
	e := newEditor(t, 1, 3)
	e.BeginAppendRow()
	// column 0 left empty: skip.  Column 1 uses the aisle marker.
	e.SetAppendValue(1, "XY")
	e.SetAppendValue(2, "C3")
	if err := e.ConfirmAppendRow(); err != nil {
		t.Fatalf("ConfirmAppendRow: %v", err)
	}

	skipped, _ := e.Grid().CellAt(1, 0)
	if skipped.Kind != KindEmpty {
		t.Errorf("empty entry should leave the position empty, got %q", skipped.Kind)
	}
	// XY converts the whole column, like MakeAisle does.
	if !e.Grid().IsAisleColumn(1) {
		t.Errorf("XY did not register column 1 as an aisle column: %v", e.Grid().AisleColumns())
	}
	for r := 0; r < e.Grid().RowCount(); r++ {
		cell, _ := e.Grid().CellAt(r, 1)
		if cell.Kind != KindAisle {
			t.Errorf("(%d,1) = %q, want aisle", r, cell.Kind)
		}
	}
	seat, _ := e.Grid().CellAt(1, 2)
	if seat.Kind != KindSeat || seat.SeatLabel != "C3" {
		t.Errorf("(1,2) = %+v", seat)
	}
}

// The aisle token must behave exactly like MakeAisle: a seat already sitting
// in the column is replaced, the column joins the membership set, and the
// save-time expansion then fills the column with aisle cells, not seats.
func TestAppendRowAisleTokenConvertsOccupiedColumn(t *testing.T) {
	e := newEditor(t, 2, 3)
	e.Grid().put(Cell{Row: 0, Column: 1, Kind: KindSeat, SeatNumber: 1, SeatLabel: "B1"})

	e.BeginAppendRow()
	e.SetAppendValue(0, "A1")
	e.SetAppendValue(1, "XY")
	if err := e.ConfirmAppendRow(); err != nil {
		t.Fatalf("ConfirmAppendRow: %v", err)
	}

	if !e.Grid().IsAisleColumn(1) {
		t.Fatalf("column 1 not in aisle set after XY token: %v", e.Grid().AisleColumns())
	}
	displaced, _ := e.Grid().CellAt(0, 1)
	if displaced.Kind != KindAisle {
		t.Errorf("(0,1) = %q, want the existing seat replaced by an aisle cell", displaced.Kind)
	}

	// The saved document expands the rectangle; column 1 must come out all
	// aisle rather than seats filled in around a lone aisle cell.
	raw, _, err := e.Grid().SaveJSON()
	if err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	saved, err := LoadJSON(raw)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	for r := 0; r < saved.RowCount(); r++ {
		cell, _ := saved.CellAt(r, 1)
		if cell.Kind != KindAisle {
			t.Errorf("saved document (%d,1) = %q, want aisle", r, cell.Kind)
		}
	}
}

// Aisle columns are excluded from the prompt and filled automatically so
// the column invariant holds on the freshly appended row.
func TestAppendRowFillsAisleColumns(t *testing.T) {
	e := newEditor(t, 2, 3)
	e.Grid().ToggleAisleColumn(1)

	cols, err := e.BeginAppendRow()
	if err != nil {
		t.Fatalf("BeginAppendRow: %v", err)
	}
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 2 {
		t.Fatalf("prompted columns = %v, want [0 2]", cols)
	}
	if err := e.SetAppendValue(1, "A"); err != ErrAisleColumn {
		t.Errorf("entering a value for an aisle column: want ErrAisleColumn, got %v", err)
	}
	e.SetAppendValue(0, "D1")
	if err := e.ConfirmAppendRow(); err != nil {
		t.Fatalf("ConfirmAppendRow: %v", err)
	}

	if e.Grid().RowCount() != 3 {
		t.Fatalf("rowCount = %d, want 3", e.Grid().RowCount())
	}
	aisle, _ := e.Grid().CellAt(2, 1)
	if aisle.Kind != KindAisle {
		t.Errorf("new row's aisle column = %q, want aisle", aisle.Kind)
	}
}
