package aggregate

import (
	"partmap/internal"
	"partmap/internal/util"
)

// Record is one typed data row. Numbers is aligned with Schema.Numeric();
// blank cells are zero. Text columns are not carried.
type Record struct {
	Identifier string
	Numbers    []float64
}

// Table is a sheet after schema inference.
type Table struct {
	Name    string
	Schema  Schema
	Records []Record
}

// NewTable infers the schema and types every row. Rows with no value in any
// cell are skipped.
func NewTable(sheet internal.Sheet, parse func(string) (float64, bool)) (*Table, error) {
	schema, err := InferSchema(sheet, parse)
	if err != nil {
		return nil, err
	}

	numeric := schema.Numeric()

	t := &Table{Name: sheet.Name, Schema: schema, Records: make([]Record, 0, len(sheet.Rows))}
	for r, row := range sheet.Rows {
		if rowIsBlank(row) {
			continue
		}
		rec := Record{
			Identifier: util.NormalizeCell(sheet.Cell(r, 0)),
			Numbers:    make([]float64, len(numeric)),
		}
		for i, c := range numeric {
			if v, ok := parse(sheet.Cell(r, c.Index)); ok {
				rec.Numbers[i] = v
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if util.NormalizeCell(cell) != "" {
			return false
		}
	}
	return true
}
