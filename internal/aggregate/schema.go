package aggregate

import (
	"fmt"

	"partmap/internal"
	"partmap/internal/util"
)

type ColumnKind int

const (
	KindIdentifier ColumnKind = iota
	KindNumeric
	KindText
)

func (k ColumnKind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindNumeric:
		return "numeric"
	default:
		return "text"
	}
}

type Column struct {
	Name  string
	Index int
	Kind  ColumnKind
}

// Schema classifies every column of a sheet once. Column 0 is always the
// identifier.
type Schema struct {
	Columns []Column
}

func (s Schema) Identifier() Column {
	return s.Columns[0]
}

// Numeric returns the numeric columns in sheet order.
func (s Schema) Numeric() []Column {
	out := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// InferSchema classifies the sheet's columns. A non-identifier column is
// numeric when every non-blank cell parses as a number; a column with no
// values at all counts as numeric and sums to zero. parse decides what a
// number looks like for this sheet's source.
func InferSchema(sheet internal.Sheet, parse func(string) (float64, bool)) (Schema, error) {
	width := sheet.Width()
	if width == 0 {
		return Schema{}, fmt.Errorf("sheet %q has no columns", sheet.Name)
	}

	cols := make([]Column, width)
	for i := 0; i < width; i++ {
		cols[i] = Column{Name: columnName(sheet.Header, i), Index: i, Kind: KindNumeric}
	}
	cols[0].Kind = KindIdentifier

	for i := 1; i < width; i++ {
		for r := range sheet.Rows {
			cell := sheet.Cell(r, i)
			if util.IsBlank(cell) {
				continue
			}
			if _, ok := parse(cell); !ok {
				cols[i].Kind = KindText
				break
			}
		}
	}
	return Schema{Columns: cols}, nil
}

func columnName(header []string, i int) string {
	if i < len(header) {
		if name := util.NormalizeCell(header[i]); name != "" {
			return name
		}
	}
	return fmt.Sprintf("Unnamed: %d", i)
}
