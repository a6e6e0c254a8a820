package mapping

import (
	"fmt"

	"partmap/internal/util"
)

// SchemaError means the mapping sheet is wider than the canonical schema. It
// is fatal for the whole batch.
type SchemaError struct {
	Columns int
	Max     int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("mapping sheet has %d columns, at most %d are supported", e.Columns, e.Max)
}

// Table is the mapping sheet renamed to canonical fields. Cells are trimmed;
// columns past Width are absent.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t *Table) Width() int {
	return len(t.Headers)
}

// Has reports whether the sheet was wide enough to carry f.
func (t *Table) Has(f Field) bool {
	return int(f) < len(t.Headers)
}

// Value returns the trimmed cell of field f in row i.
func (t *Table) Value(i int, f Field) string {
	if i < 0 || i >= len(t.Rows) || !t.Has(f) {
		return ""
	}
	row := t.Rows[i]
	if int(f) >= len(row) {
		return ""
	}
	return row[f]
}

// Load builds the canonical table from raw sheet rows. rows[0] is the header
// and is discarded. Width is taken from the widest row, header included, so a
// stray value far to the right still counts against MaxColumns.
func Load(rows [][]string) (*Table, error) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width > MaxColumns {
		return nil, &SchemaError{Columns: width, Max: MaxColumns}
	}

	t := &Table{Headers: CanonicalHeaders(width)}
	if len(rows) <= 1 {
		return t, nil
	}

	t.Rows = make([][]string, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make([]string, width)
		for i := 0; i < width && i < len(raw); i++ {
			row[i] = util.NormalizeCell(raw[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
