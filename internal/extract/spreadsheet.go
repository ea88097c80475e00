package extract

import (
	"bytes"
	"fmt"

	"eduparser/internal/scraper"
	"eduparser/lib/textutil"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet is the cell text of one worksheet, row major. rows may have
// different lengths.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the text at (row, col) or "" when the cell does not exist.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// SpreadsheetRow reads the count out of a workbook.
//
// With a label, the row whose label column best matches the label is
// selected (see MatchLabel) and the value column of that row is the count.
// Without a label the count is the number of non-empty rows after the header
// rows.
func SpreadsheetRow(body []byte, format scraper.Format, spec scraper.Spec) (int, error) {
	sheet, err := ReadSheet(body, format, spec.Sheet)
	if err != nil {
		return 0, err
	}

	if spec.Label == "" {
		return countRows(sheet, spec.HeaderRows)
	}
	if spec.ValueColumn == nil {
		return 0, &scraper.ConfigError{
			Kind:  scraper.ConfigMissingField,
			Field: "value_column",
		}
	}

	labels := make([]string, len(sheet.Rows))
	for i := range sheet.Rows {
		labels[i] = sheet.Cell(i, spec.LabelColumn)
	}
	row, _, err := MatchLabel(spec.Label, labels, spec.MinSimilarity)
	if err != nil {
		return 0, err
	}

	raw := sheet.Cell(row, *spec.ValueColumn)
	n, err := parseInteger(raw)
	if err != nil {
		return 0, scraper.Extraction(
			scraper.ExtractInvalidValue,
			"row %d (%q) column %d: %s",
			row+1, labels[row], *spec.ValueColumn, err.Error(),
		)
	}
	return checkNonNegative(n)
}

func countRows(sheet Sheet, headerRows int) (int, error) {
	count := 0
	for i, row := range sheet.Rows {
		if i < headerRows {
			continue
		}
		for _, cell := range row {
			if textutil.CollapseSpace(cell) != "" {
				count++
				break
			}
		}
	}
	return checkNonNegative(count)
}

// ReadSheet opens the workbook and returns the named sheet, or the first
// sheet when name is empty. Sheet names are compared exactly first and then
// after label normalization.
func ReadSheet(body []byte, format scraper.Format, name string) (Sheet, error) {
	switch format {
	case scraper.FormatXLSX:
		return readXLSX(body, name)
	case scraper.FormatXLS:
		return readXLS(body, name)
	}
	return Sheet{}, &scraper.ParseError{
		Format: format,
		Err:    fmt.Errorf("not a spreadsheet format"),
	}
}

func pickSheet(names []string, name string) (int, error) {
	if len(names) == 0 {
		return -1, scraper.Extraction(scraper.ExtractSheetNotFound, "workbook has no sheets")
	}
	if name == "" {
		return 0, nil
	}
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	normalized := textutil.NormalizeLabel(name)
	for i, n := range names {
		if textutil.NormalizeLabel(n) == normalized {
			return i, nil
		}
	}
	return -1, scraper.Extraction(scraper.ExtractSheetNotFound, "no sheet %q in %v", name, names)
}

func readXLSX(body []byte, name string) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return Sheet{}, &scraper.ParseError{Format: scraper.FormatXLSX, Err: err}
	}
	defer f.Close()

	names := f.GetSheetList()
	idx, err := pickSheet(names, name)
	if err != nil {
		return Sheet{}, err
	}

	rows, err := f.GetRows(names[idx])
	if err != nil {
		return Sheet{}, &scraper.ParseError{Format: scraper.FormatXLSX, Err: err}
	}
	return Sheet{Name: names[idx], Rows: rows}, nil
}

func readXLS(body []byte, name string) (sheet Sheet, err error) {
	// the BIFF reader panics on some malformed files instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			sheet = Sheet{}
			err = &scraper.ParseError{
				Format: scraper.FormatXLS,
				Err:    fmt.Errorf("malformed workbook: %v", r),
			}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(body), "utf-8")
	if err != nil {
		return Sheet{}, &scraper.ParseError{Format: scraper.FormatXLS, Err: err}
	}

	names := make([]string, wb.NumSheets())
	for i := range names {
		names[i] = wb.GetSheet(i).Name
	}
	idx, err := pickSheet(names, name)
	if err != nil {
		return Sheet{}, err
	}

	ws := wb.GetSheet(idx)
	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := xlsRow(ws, r)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// LastCol is one past the last cell, it is 0 when the file has no
		// ROW record for the row.
		width := row.LastCol()
		if width <= 0 {
			width = xlsMaxColumns
		}
		cells := make([]string, width)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, trimTrailingEmpty(cells))
	}
	return Sheet{Name: names[idx], Rows: rows}, nil
}

// xlsMaxColumns is the column limit of a BIFF8 sheet.
const xlsMaxColumns = 256

// xlsRow returns nil for rows without cells, the reader dereferences a
// missing row.
func xlsRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}
