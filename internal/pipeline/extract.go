package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"partmap/internal"
	"partmap/internal/util"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// ReadSheet reads the first sheet of an uploaded record file. The first row
// is the header; everything below is data.
func ReadSheet(name string, content []byte) (internal.Sheet, error) {
	rows, source, err := readRows(name, content)
	if err != nil {
		return internal.Sheet{}, err
	}
	if len(rows) == 0 {
		return internal.Sheet{}, ErrEmptySheet
	}

	sheet := internal.Sheet{
		Name:   name,
		Source: source,
		Header: normalizeCells(rows[0]),
		Rows:   rows[1:],
	}
	if sheet.Width() == 0 {
		return internal.Sheet{}, ErrNoColumns
	}
	if !hasData(sheet.Rows) {
		return internal.Sheet{}, ErrEmptySheet
	}
	return sheet, nil
}

// ReadMappingRows reads the first sheet of a mapping file as raw rows,
// header included.
func ReadMappingRows(name string, content []byte) ([][]string, error) {
	rows, _, err := readRows(name, content)
	return rows, err
}

// NumberParser picks how numeric cells are recognized for a sheet. xlsx
// cells come back as raw stored values; HTML exports only carry display text.
func NumberParser(source internal.SheetSource) func(string) (float64, bool) {
	if source == internal.SourceHTMLTable {
		return util.ParseLooseNumber
	}
	return util.ParseNumber
}

func readRows(name string, content []byte) ([][]string, internal.SheetSource, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, "", ErrEmptySheet
	}

	switch {
	case bytes.HasPrefix(content, zipMagic):
		rows, err := parseXLSX(content)
		return rows, internal.SourceXLSX, err
	case looksLikeHTML(content):
		rows, err := parseHTMLTable(content)
		return rows, internal.SourceHTMLTable, err
	case bytes.HasPrefix(content, oleMagic):
		return nil, "", fmt.Errorf("%w: %s is a legacy binary workbook, save it as .xlsx", ErrUnsupportedFormat, filepath.Base(name))
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(name))
	}
}

func parseXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoColumns
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if err := replaceDateSerials(f, sheets[0], rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// replaceDateSerials rewrites date-formatted numeric cells, which the raw
// read returns as day serials, to ISO timestamps so they type as text.
func replaceDateSerials(f *excelize.File, sheet string, rows [][]string) error {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyle := map[int]bool{}
	for r, row := range rows {
		for c, v := range row {
			serial, ok := util.ParseNumber(v)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil || styleID == 0 {
				continue
			}
			isDate, seen := dateStyle[styleID]
			if !seen {
				isDate = styleIsDate(f, styleID)
				dateStyle[styleID] = isDate
			}
			if !isDate {
				continue
			}
			ts, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			row[c] = ts.Format("2006-01-02 15:04:05")
		}
	}
	return nil
}

func styleIsDate(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom number format code renders dates or
// times. Quoted literals, escaped characters and bracketed sections such as
// colors and locales are ignored.
func isDateFormat(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == 'y', r == 'd', r == 'h', r == 's':
			return true
		}
	}
	return false
}

func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 4096 {
		head = head[:4096]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<table")) || bytes.Contains(lower, []byte("<html"))
}

// parseHTMLTable reads the first <table> of an HTML export, the format many
// ERP systems hand out under an .xls name.
func parseHTMLTable(content []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoColumns
	}

	rows := [][]string{}
	// Cell text is kept as is apart from trimming: line breaks inside an
	// identifier must reach NormalizeKey, as they do for xlsx cells.
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := []string{}
		tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, util.NormalizeCell(cell.Text()))
		})
		rows = append(rows, trimTrailingBlank(cells))
	})
	return rows, nil
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.NormalizeCell(c))
	}
	return out
}

func trimTrailingBlank(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

func hasData(rows [][]string) bool {
	for _, row := range rows {
		for _, c := range row {
			if util.NormalizeCell(c) != "" {
				return true
			}
		}
	}
	return false
}
