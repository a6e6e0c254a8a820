package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"partmap/internal/config"
	"partmap/internal/resolve"
	"partmap/internal/util"
)

// MaxSheetNameLen is Excel's limit on sheet names.
const MaxSheetNameLen = 31

var sheetNameReplacer = strings.NewReplacer("[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_")

type ExportOptions struct {
	HighlightColor   string
	HighlightColumns int
	MaxColumnWidth   float64
}

func ExportOptionsFromConfig(cfg config.Config) ExportOptions {
	return ExportOptions{
		HighlightColor:   cfg.HighlightColor,
		HighlightColumns: cfg.HighlightColumns,
		MaxColumnWidth:   cfg.MaxColumnWidth,
	}
}

// ResultFileName names a result workbook: <prefix>_YYYYMMDD_HHMMSS.xlsx.
func ResultFileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("20060102_150405"))
}

// SheetName derives a valid, unused sheet name from an uploaded file name and
// marks it used.
func SheetName(fileName string, used map[string]struct{}) string {
	base := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(fileName)), "'")
	if base == "" {
		base = "Sheet"
	}

	name := util.Truncate(base, MaxSheetNameLen)
	for n := 2; ; n++ {
		if _, taken := used[strings.ToLower(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf("(%d)", n)
		name = util.Truncate(base, MaxSheetNameLen-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = struct{}{}
	return name
}

// BuildWorkbook renders one sheet per processed record file: identifier
// column first, then the summed numeric columns.
func BuildWorkbook(batch *BatchResult, opts ExportOptions) (*excelize.File, error) {
	if batch == nil || len(batch.Files) == 0 {
		return nil, ErrNoOutput
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	used := map[string]struct{}{}
	for _, file := range batch.Files {
		sheet := SheetName(file.Name, used)
		if err := writeResultSheet(f, sheet, file, headerStyle, opts.MaxColumnWidth); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write sheet %q: %w", sheet, err)
		}
		if batch.Changes.Len() > 0 && opts.HighlightColumns > 0 {
			if err := HighlightRows(f, sheet, 1, file.Result.Identifier, batch.Changes, opts.HighlightColor, opts.HighlightColumns); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}

	if _, taken := used[strings.ToLower(defaultSheet)]; !taken {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeResultSheet(f *excelize.File, sheet string, file FileResult, headerStyle int, maxWidth float64) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := file.Result.Headers()
	headerRow := make([]interface{}, 0, len(headers))
	widths := make([]int, len(headers))
	for i, h := range headers {
		headerRow = append(headerRow, h)
		widths[i] = displayWidth(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for r, rec := range file.Result.Records {
		row := make([]interface{}, 0, len(rec.Sums)+1)
		row = append(row, rec.Identifier)
		widths[0] = max(widths[0], displayWidth(rec.Identifier))
		for i, v := range rec.Sums {
			row = append(row, v)
			widths[i+1] = max(widths[i+1], displayWidth(util.FormatNumber(v)))
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w + 8)
		if maxWidth > 0 && width > maxWidth {
			width = maxWidth
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.AutoFilter(sheet, "A1:"+lastCol+"1", nil)
}

// HighlightRows fills the first ncols cells of every data row whose value in
// the named column is in ids. The column is located by header text on
// headerRow (1-based).
func HighlightRows(f *excelize.File, sheet string, headerRow int, column string, ids resolve.ChangeSet, color string, ncols int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if headerRow < 1 || headerRow > len(rows) {
		return &MissingColumnError{Sheet: sheet, Column: column}
	}

	header := rows[headerRow-1]
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &MissingColumnError{Sheet: sheet, Column: column}
	}

	fill, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return err
	}

	ncols = min(ncols, len(header))
	lastCol, _ := excelize.ColumnNumberToName(ncols)
	for r := headerRow; r < len(rows); r++ {
		row := rows[r]
		if idx >= len(row) || !ids.Contains(strings.TrimSpace(row[idx])) {
			continue
		}
		rowNum := r + 1
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("%s%d", lastCol, rowNum), fill); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatchXLSX renders the batch and streams the workbook to w.
func WriteBatchXLSX(batch *BatchResult, opts ExportOptions, w io.Writer) error {
	f, err := BuildWorkbook(batch, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// ExportBatchToXLSX renders the batch into outputPath, creating directories
// as needed.
func ExportBatchToXLSX(batch *BatchResult, opts ExportOptions, outputPath string) error {
	f, err := BuildWorkbook(batch, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// displayWidth counts East Asian wide runes twice.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r >= 0x1100 {
			w += 2
		} else {
			w++
		}
	}
	return w
}
