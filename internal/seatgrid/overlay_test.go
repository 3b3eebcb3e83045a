package seatgrid

import "testing"

// bookingGrid builds a 2x3 saved grid with an aisle at column 1 and a
// broken seat at (1,2), numbered the way save-time renumbering would.
func bookingGrid(t *testing.T) *Grid {
	t.Helper()
	g := mustGrid(t, 2, 3)
	g.ToggleAisleColumn(1)
	g.put(Cell{Row: 0, Column: 0, Kind: KindSeat, SeatNumber: 1, SeatLabel: "A1"})
	g.put(Cell{Row: 0, Column: 2, Kind: KindSeat, SeatNumber: 2})
	g.put(Cell{Row: 1, Column: 0, Kind: KindSeat, SeatNumber: 3})
	g.put(Cell{Row: 1, Column: 2, Kind: KindBroken, SeatNumber: 4})
	return g
}

// Scenario 5 plus P5/P6: booked positions are inert, free seats toggle on
// and off, and select-then-deselect is identity on membership.
func TestToggleSelectDeselect(t *testing.T) {
	o := NewOverlay(bookingGrid(t), []Position{{0, 0}}, nil)

	if st, err := o.Toggle(0, 0); err != nil || st != StatusBooked {
		t.Fatalf("Toggle booked = %v, %v; want BOOKED, nil", st, err)
	}
	if len(o.Selected()) != 0 {
		t.Fatal("activating a booked seat changed the selection")
	}

	if st, _ := o.Toggle(0, 2); st != StatusSelected {
		t.Fatalf("first activation = %v, want SELECTED", st)
	}
	sel := o.Selected()
	if len(sel) != 1 || sel[0].Row != 0 || sel[0].Column != 2 {
		t.Fatalf("selection = %+v", sel)
	}
	if st, _ := o.Toggle(0, 2); st != StatusAvailable {
		t.Fatalf("second activation = %v, want AVAILABLE", st)
	}
	if len(o.Selected()) != 0 {
		t.Error("select then deselect should leave the selection empty")
	}
}

func TestBookedStaysInertRepeatedly(t *testing.T) {
	o := NewOverlay(bookingGrid(t), []Position{{1, 0}}, nil)
	for i := 0; i < 5; i++ {
		st, err := o.Toggle(1, 0)
		if err != nil || st != StatusBooked {
			t.Fatalf("activation %d: %v, %v", i, st, err)
		}
	}
	if len(o.Selected()) != 0 {
		t.Error("booked seat leaked into the selection")
	}
}

func TestInertCells(t *testing.T) {
	o := NewOverlay(bookingGrid(t), nil, nil)
	cases := []struct {
		r, c int
		want SeatStatus
	}{
		{0, 1, StatusAisle},
		{1, 2, StatusBroken},
	}
	for _, tc := range cases {
		st, err := o.Toggle(tc.r, tc.c)
		if err != nil || st != tc.want {
			t.Errorf("Toggle(%d,%d) = %v, %v; want %v", tc.r, tc.c, st, err, tc.want)
		}
	}
	if len(o.Selected()) != 0 {
		t.Error("inert cells must never enter the selection")
	}
	if _, err := o.Toggle(5, 0); err != ErrOutOfRange {
		t.Errorf("out of range toggle: want ErrOutOfRange, got %v", err)
	}
}

func TestMultiSelectOrderAndFares(t *testing.T) {
	flat := uint32(1500)
	fare := func(c Cell) uint32 {
		if c.FareCents > 0 {
			return c.FareCents
		}
		return flat
	}
	g := bookingGrid(t)
	g.put(Cell{Row: 1, Column: 0, Kind: KindSeat, SeatNumber: 3, FareCents: 2000})

	o := NewOverlay(g, nil, fare)
	o.Toggle(1, 0)
	o.Toggle(0, 0)

	sel := o.Selected()
	if len(sel) != 2 {
		t.Fatalf("selection size = %d, want 2", len(sel))
	}
	if sel[0].Row != 1 || sel[1].Row != 0 {
		t.Errorf("selection order not preserved: %+v", sel)
	}
	if sel[0].FareCents != 2000 {
		t.Errorf("per-seat override not forwarded: %d", sel[0].FareCents)
	}
	if sel[1].FareCents != 1500 || sel[1].SeatLabel != "A1" {
		t.Errorf("flat fare entry = %+v", sel[1])
	}
	if got := o.Subtotal(); got != 3500 {
		t.Errorf("Subtotal = %d, want 3500", got)
	}

	o.Clear()
	if len(o.Selected()) != 0 || o.Subtotal() != 0 {
		t.Error("Clear should empty the selection")
	}
}

func TestOverlayNeverMutatesGrid(t *testing.T) {
	g := bookingGrid(t)
	before := g.Clone()
	o := NewOverlay(g, []Position{{0, 2}}, nil)
	o.Toggle(0, 0)
	o.Toggle(0, 2)
	o.Toggle(0, 1)
	o.Clear()
	if !g.Equal(before) {
		t.Error("overlay interaction mutated the underlying grid")
	}
}

func TestOverlayView(t *testing.T) {
	o := NewOverlay(bookingGrid(t), []Position{{0, 2}}, nil)
	o.Toggle(0, 0)

	view := o.View()
	if len(view) != 2 || len(view[0]) != 3 {
		t.Fatalf("view shape %dx%d", len(view), len(view[0]))
	}
	want := map[Position]SeatStatus{
		{0, 0}: StatusSelected,
		{0, 1}: StatusAisle,
		{0, 2}: StatusBooked,
		{1, 0}: StatusAvailable,
		{1, 2}: StatusBroken,
	}
	for p, status := range want {
		if got := view[p.Row][p.Column].Status; got != status {
			t.Errorf("view[%d][%d] = %v, want %v", p.Row, p.Column, got, status)
		}
	}
}
