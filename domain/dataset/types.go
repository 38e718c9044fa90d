package dataset

import (
	"fmt"
	"math"
	"strings"

	"gocompare/domain/core"
)

// Frame is a row-aligned numeric table loaded from a sample source.
// Missing or unparsable cells are stored as NaN so ratio metrics can pair columns row by row.
type Frame struct {
	Source  string      `json:"source"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// NewFrame creates an empty frame with the given column order
func NewFrame(source string, columns []string) *Frame {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{Source: source, Columns: cols}
}

// Append adds a row. The row must have one value per column.
func (f *Frame) Append(row []float64) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(row), len(f.Columns))
	}
	cp := make([]float64, len(row))
	copy(cp, row)
	f.Rows = append(f.Rows, cp)
	return nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Index returns the position of a column. Matching ignores case and surrounding spaces.
func (f *Frame) Index(column string) (int, error) {
	want := strings.TrimSpace(column)
	for i, c := range f.Columns {
		if c == want {
			return i, nil
		}
	}
	for i, c := range f.Columns {
		if strings.EqualFold(c, want) {
			return i, nil
		}
	}
	return -1, core.NewColumnNotFoundError(fmt.Sprintf("%q in %s", column, f.Source))
}

// Cell returns the value at row r of column c
func (f *Frame) Cell(r, c int) float64 {
	return f.Rows[r][c]
}

// Column returns the finite values of a column in row order plus the number of dropped cells
func (f *Frame) Column(column string) ([]float64, int, error) {
	idx, err := f.Index(column)
	if err != nil {
		return nil, 0, err
	}
	values := make([]float64, 0, len(f.Rows))
	dropped := 0
	for _, row := range f.Rows {
		v := row[idx]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			dropped++
			continue
		}
		values = append(values, v)
	}
	return values, dropped, nil
}
