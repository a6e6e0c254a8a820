package internal

type SheetSource string

const (
	SourceXLSX      SheetSource = "xlsx"
	SourceHTMLTable SheetSource = "html_table"
)

// Sheet is one uploaded sheet as read from disk: a trimmed header row and the
// data rows below it. Cells are raw strings; numeric cells carry their stored
// value, not the formatted one.
type Sheet struct {
	Name   string
	Source SheetSource
	Header []string
	Rows   [][]string
}

// Width is the number of columns spanned by the header or any data row.
func (s Sheet) Width() int {
	width := len(s.Header)
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the cell at (row, col) or "" when the row is short.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
