package seatgrid

import "encoding/json"

// GridDocument is the persistence contract for a grid.  Seat plans, buses
// and schedules each store one of these as a JSON document; the repository
// layer treats it as an opaque blob.  Cells and AisleColumns may be absent
// in stored data: a document with dimensions but no cells loads as a fully
// empty grid.
type GridDocument struct {
	RowCount     int    `json:"row_count"`
	ColumnCount  int    `json:"column_count"`
	AisleColumns []int  `json:"aisle_columns,omitempty"`
	Cells        []Cell `json:"cells,omitempty"`
}

// SavePayload is what the editor hands to the persistence collaborator at
// save time: a fully expanded, freshly renumbered document plus the derived
// seat capacity for the collaborator's bookkeeping.
type SavePayload struct {
	GridDocument
	TotalSeats int `json:"total_seats"`
}

// FromDocument builds a grid from a stored document.  It is deliberately
// tolerant of the data it may receive back from persistence: missing cells
// and aisle columns load as empty, duplicate positions resolve last-write-
// wins, and cells or aisle entries outside the stated rectangle are dropped
// the same way a shrink would drop them.  Only unusable dimensions fail.
func FromDocument(doc GridDocument) (*Grid, error) {
	g, err := New(doc.RowCount, doc.ColumnCount)
	if err != nil {
		return nil, err
	}
	for _, c := range doc.AisleColumns {
		if c >= 0 && c < g.columnCount {
			g.aisleColumns[c] = struct{}{}
		}
	}
	for _, c := range doc.Cells {
		if !g.inBounds(c.Row, c.Column) {
			continue
		}
		g.put(c)
	}
	return g, nil
}

// LoadJSON decodes a stored layout blob into a grid.  A nil or empty blob
// is the "not yet available" case and yields a nil grid with no error; the
// caller renders nothing or falls back to an empty layout of its own
// choosing.
func LoadJSON(data []byte) (*Grid, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc GridDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Document snapshots the grid as a sparse document: only explicit cells are
// listed, in row-major order.
func (g *Grid) Document() GridDocument {
	return GridDocument{
		RowCount:     g.rowCount,
		ColumnCount:  g.columnCount,
		AisleColumns: g.AisleColumns(),
		Cells:        g.Cells(),
	}
}

// MarshalJSON encodes the grid as its sparse document form.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Document())
}

// Save produces the persistence payload: the grid is cloned, every implicit
// empty position is expanded into an explicit cell, seat numbers are
// reassigned by the row-major non-aisle scan, and the SEAT count is derived.
// The receiver itself is untouched, so a failed save loses no edit state.
func (g *Grid) Save() SavePayload {
	c := g.Clone()
	c.Expand()
	c.Renumber()
	return SavePayload{
		GridDocument: c.Document(),
		TotalSeats:   c.TotalSeats(),
	}
}

// SaveJSON encodes the save payload's document for storage and returns the
// derived seat count alongside it.
func (g *Grid) SaveJSON() ([]byte, int, error) {
	p := g.Save()
	data, err := json.Marshal(p.GridDocument)
	if err != nil {
		return nil, 0, err
	}
	return data, p.TotalSeats, nil
}
