package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"partmap/internal/mapping"
)

func mkXLSX(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

// mkMapping builds a mapping workbook with the canonical 23-column header.
func mkMapping(t *testing.T, rows ...map[mapping.Field]string) InputFile {
	t.Helper()
	header := make([]interface{}, 0, mapping.MaxColumns)
	for _, h := range mapping.CanonicalHeaders(mapping.MaxColumns) {
		header = append(header, h)
	}
	all := [][]interface{}{header}
	for _, values := range rows {
		row := make([]interface{}, mapping.MaxColumns)
		for i := range row {
			row[i] = ""
		}
		for f, v := range values {
			row[f] = v
		}
		all = append(all, row)
	}
	return InputFile{Name: "mapping.xlsx", Content: mkXLSX(t, all)}
}

// exampleMapping: P100 is superseded by P200, and P200 is an alias of P300.
func exampleMapping(t *testing.T) InputFile {
	return mkMapping(t,
		map[mapping.Field]string{mapping.OldName: "P100", mapping.NewName: "P200"},
		map[mapping.Field]string{mapping.NewName: "P300", mapping.SubstName1: "P200"},
	)
}

func exampleRecords(t *testing.T, name string) InputFile {
	return InputFile{Name: name, Content: mkXLSX(t, [][]interface{}{
		{"品名", "数量", "备注"},
		{"P100", 5, "a"},
		{"P300", 3, "b"},
		{"P999", 2, "c"},
	})}
}
