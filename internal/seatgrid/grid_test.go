package seatgrid

import (
	"encoding/json"
	"testing"
)

func mustGrid(t *testing.T, rows, cols int) *Grid {
	t.Helper()
	g, err := New(rows, cols)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", rows, cols, err)
	}
	return g
}

func assertInBounds(t *testing.T, g *Grid) {
	t.Helper()
	for _, c := range g.Cells() {
		if c.Row < 0 || c.Row >= g.RowCount() || c.Column < 0 || c.Column >= g.ColumnCount() {
			t.Errorf("cell at (%d,%d) outside %dx%d grid", c.Row, c.Column, g.RowCount(), g.ColumnCount())
		}
	}
}

func TestNewRejectsBadDimensions(t *testing.T) {
	for _, tc := range []struct{ rows, cols int }{{0, 3}, {3, 0}, {-1, 2}, {2, -1}} {
		if _, err := New(tc.rows, tc.cols); err != ErrBadDimension {
			t.Errorf("New(%d, %d): want ErrBadDimension, got %v", tc.rows, tc.cols, err)
		}
	}
}

func TestCellAtEmptyAndOutOfRange(t *testing.T) {
	g := mustGrid(t, 2, 3)
	cell, err := g.CellAt(1, 2)
	if err != nil {
		t.Fatalf("CellAt in bounds: %v", err)
	}
	if cell.Kind != KindEmpty {
		t.Errorf("expected empty sentinel, got %q", cell.Kind)
	}
	for _, p := range []Position{{-1, 0}, {0, -1}, {2, 0}, {0, 3}} {
		if _, err := g.CellAt(p.Row, p.Column); err != ErrOutOfRange {
			t.Errorf("CellAt(%d,%d): want ErrOutOfRange, got %v", p.Row, p.Column, err)
		}
	}
}

// Scenario 1: toggling column 1 into an aisle on an empty 2x3 grid creates
// exactly the two aisle cells and nothing else.
func TestToggleAisleColumnOn(t *testing.T) {
	g := mustGrid(t, 2, 3)
	if err := g.ToggleAisleColumn(1); err != nil {
		t.Fatalf("ToggleAisleColumn: %v", err)
	}
	if got := g.AisleColumns(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("AisleColumns = %v, want [1]", got)
	}
	cells := g.Cells()
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	for _, c := range cells {
		if c.Column != 1 || c.Kind != KindAisle {
			t.Errorf("unexpected cell %+v", c)
		}
	}
}

func TestToggleAisleColumnOffLeavesEmpty(t *testing.T) {
	g := mustGrid(t, 2, 3)
	g.ToggleAisleColumn(1)
	if err := g.ToggleAisleColumn(1); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if len(g.AisleColumns()) != 0 {
		t.Errorf("aisle set not cleared: %v", g.AisleColumns())
	}
	if n := g.CellCount(); n != 0 {
		t.Errorf("positions should be empty after toggle off, found %d cells", n)
	}
}

func TestToggleAisleColumnReplacesSeats(t *testing.T) {
	g := mustGrid(t, 2, 2)
	g.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1"})
	g.put(Cell{Row: 1, Column: 0, Kind: KindBroken, SeatNumber: 2})
	if err := g.ToggleAisleColumn(0); err != nil {
		t.Fatalf("ToggleAisleColumn: %v", err)
	}
	for r := 0; r < 2; r++ {
		cell, _ := g.CellAt(r, 0)
		if cell.Kind != KindAisle {
			t.Errorf("(%d,0) = %q, want aisle", r, cell.Kind)
		}
	}
}

// P1: shrinking either dimension never leaves an out-of-range cell behind.
func TestShrinkDiscardsOutOfRange(t *testing.T) {
	g := mustGrid(t, 3, 3)
	g.ToggleAisleColumn(2)
	g.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1})
	g.put(Cell{Row: 2, Column: 1, Kind: KindSeat, SeatNumber: 2})

	if err := g.SetRowCount(1); err != nil {
		t.Fatalf("SetRowCount: %v", err)
	}
	assertInBounds(t, g)
	if _, err := g.CellAt(0, 0); err != nil {
		t.Fatal("surviving cell lost")
	}

	if err := g.SetColumnCount(2); err != nil {
		t.Fatalf("SetColumnCount: %v", err)
	}
	assertInBounds(t, g)
	if len(g.AisleColumns()) != 0 {
		t.Errorf("aisle column 2 should be dropped on shrink, got %v", g.AisleColumns())
	}
}

// Scenario 3: shrinking columns to 1 keeps the seat at (0,0), discards the
// aisle cells at column 1 and clears the aisle set.
func TestShrinkColumnScenario(t *testing.T) {
	g := mustGrid(t, 2, 3)
	g.ToggleAisleColumn(1)
	g.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1"})

	if err := g.SetColumnCount(1); err != nil {
		t.Fatalf("SetColumnCount: %v", err)
	}
	cell, err := g.CellAt(0, 0)
	if err != nil || cell.SeatLabel != "A1" {
		t.Errorf("seat at (0,0) should survive, got %+v err %v", cell, err)
	}
	if g.CellCount() != 1 {
		t.Errorf("aisle cells should be discarded, have %d cells", g.CellCount())
	}
	if len(g.AisleColumns()) != 0 {
		t.Errorf("aisleColumns = %v, want empty", g.AisleColumns())
	}
}

// P3: renumbering is deterministic and assigns exactly 1..k over non-aisle
// cells in row-major order.
func TestRenumberDeterministic(t *testing.T) {
	g := mustGrid(t, 2, 3)
	g.ToggleAisleColumn(1)
	g.put(Cell{Row: 1, Column: 2, Kind: KindSeat, SeatNumber: 99, SeatLabel: "C"})
	g.put(Cell{Row: 0, Column: 0, Kind: KindBroken, SeatNumber: 42})
	g.put(Cell{Row: 0, Column: 2, Kind: KindSeat, SeatNumber: 7})

	g.Renumber()
	first := g.Cells()
	g.Renumber()
	second := g.Cells()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("renumber not idempotent: %+v vs %+v", first[i], second[i])
		}
	}

	wantNumbers := map[Position]int{
		{0, 0}: 1, // broken seats still consume numbers
		{0, 2}: 2,
		{1, 2}: 3,
	}
	for p, want := range wantNumbers {
		cell, _ := g.CellAt(p.Row, p.Column)
		if cell.SeatNumber != want {
			t.Errorf("(%d,%d) numbered %d, want %d", p.Row, p.Column, cell.SeatNumber, want)
		}
	}
	for _, c := range g.Cells() {
		if c.Kind == KindAisle && c.SeatNumber != 0 {
			t.Errorf("aisle cell at (%d,%d) consumed number %d", c.Row, c.Column, c.SeatNumber)
		}
	}
}

// Scenario 6: saving a 1x2 grid with one explicit seat expands the empty
// position into a seat, numbers both, and reports totalSeats = 2.
func TestSaveExpandsAndCounts(t *testing.T) {
	g := mustGrid(t, 1, 2)
	g.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1})

	p := g.Save()
	if len(p.Cells) != 2 {
		t.Fatalf("save should expand to 2 cells, got %d", len(p.Cells))
	}
	if p.Cells[0].SeatNumber != 1 || p.Cells[1].SeatNumber != 2 {
		t.Errorf("numbers = %d,%d, want 1,2", p.Cells[0].SeatNumber, p.Cells[1].SeatNumber)
	}
	if p.TotalSeats != 2 {
		t.Errorf("TotalSeats = %d, want 2", p.TotalSeats)
	}
	// save must not mutate the edited grid
	if g.CellCount() != 1 {
		t.Errorf("Save mutated the grid: %d cells", g.CellCount())
	}
}

func TestSaveExpandsAisleColumns(t *testing.T) {
	g := mustGrid(t, 2, 3)
	g.ToggleAisleColumn(1)
	p := g.Save()
	if len(p.Cells) != 6 {
		t.Fatalf("expanded cell count = %d, want 6", len(p.Cells))
	}
	if p.TotalSeats != 4 {
		t.Errorf("TotalSeats = %d, want 4 (aisle column excluded)", p.TotalSeats)
	}
	for _, c := range p.Cells {
		if c.Column == 1 && c.Kind != KindAisle {
			t.Errorf("aisle column expanded as %q at row %d", c.Kind, c.Row)
		}
	}
}

func TestBrokenSeatExcludedFromCapacity(t *testing.T) {
	g := mustGrid(t, 1, 3)
	g.put(Cell{Row: 0, Column: 0, Kind: KindBroken, SeatNumber: 1})
	p := g.Save()
	if p.TotalSeats != 2 {
		t.Errorf("TotalSeats = %d, want 2 (broken excluded)", p.TotalSeats)
	}
}

func TestFromDocumentTolerance(t *testing.T) {
	// missing cells and aisle columns load as a fully empty grid
	g, err := FromDocument(GridDocument{RowCount: 2, ColumnCount: 2})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if g.CellCount() != 0 || len(g.AisleColumns()) != 0 {
		t.Error("absent cells/aisles should load as empty")
	}

	// out-of-range entries are dropped, duplicates resolve last-write-wins
	g, err = FromDocument(GridDocument{
		RowCount:     2,
		ColumnCount:  2,
		AisleColumns: []int{5, -1},
		Cells: []Cell{
			{Row: 0, Column: 0, Kind: KindSeat, SeatLabel: "old"},
			{Row: 0, Column: 0, Kind: KindSeat, SeatLabel: "new"},
			{Row: 9, Column: 0, Kind: KindSeat},
		},
	})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if g.CellCount() != 1 {
		t.Fatalf("cell count = %d, want 1", g.CellCount())
	}
	cell, _ := g.CellAt(0, 0)
	if cell.SeatLabel != "new" {
		t.Errorf("duplicate position should be last-write-wins, got %q", cell.SeatLabel)
	}
	if len(g.AisleColumns()) != 0 {
		t.Errorf("out-of-range aisle entries kept: %v", g.AisleColumns())
	}
}

func TestLoadJSONAbsentGrid(t *testing.T) {
	g, err := LoadJSON(nil)
	if err != nil || g != nil {
		t.Errorf("LoadJSON(nil) = %v, %v; want nil, nil", g, err)
	}
	g, err = LoadJSON([]byte{})
	if err != nil || g != nil {
		t.Errorf("LoadJSON(empty) = %v, %v; want nil, nil", g, err)
	}
	if _, err := LoadJSON([]byte("{not json")); err == nil {
		t.Error("corrupt blob should fail to load")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g := mustGrid(t, 2, 3)
	g.ToggleAisleColumn(1)
	g.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1", FareCents: 2500})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := LoadJSON(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !g.Equal(back) {
		t.Error("round-tripped grid differs from original")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	plan := mustGrid(t, 2, 2)
	plan.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1"})

	bus := plan.Clone()
	if !plan.Equal(bus) {
		t.Fatal("clone should start equal to its source")
	}
	// editing the template never propagates to the copy
	plan.ToggleAisleColumn(1)
	plan.put(Cell{Row: 1, Column: 0, Kind: KindSeat, SeatNumber: 2})
	if bus.CellCount() != 1 || len(bus.AisleColumns()) != 0 {
		t.Error("edits to the source grid leaked into the clone")
	}
}

func TestMatrixShapeAndOrder(t *testing.T) {
	g := mustGrid(t, 2, 3)
	g.put(Cell{Row: 1, Column: 2, Kind: KindSeat, SeatNumber: 1})
	m := g.Matrix()
	if len(m) != 2 || len(m[0]) != 3 {
		t.Fatalf("matrix shape %dx%d, want 2x3", len(m), len(m[0]))
	}
	for r := range m {
		for c := range m[r] {
			if m[r][c].Row != r || m[r][c].Column != c {
				t.Errorf("matrix[%d][%d] holds (%d,%d)", r, c, m[r][c].Row, m[r][c].Column)
			}
		}
	}
	if m[1][2].Kind != KindSeat {
		t.Error("placed seat missing from matrix")
	}
	if m[0][0].Kind != KindEmpty {
		t.Error("empty position should render as the empty sentinel")
	}
}
