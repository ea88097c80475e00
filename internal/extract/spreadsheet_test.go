package extract

import (
	"errors"
	"os"
	"testing"

	"eduparser/internal/scraper"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func intPtr(n int) *int {
	return &n
}

// buildWorkbook writes rows into a new sheet named sheet and returns the
// xlsx bytes. the default sheet is kept as the first one.
func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func reportWorkbook(t *testing.T) []byte {
	return buildWorkbook(t, "Магистратура", [][]any{
		{"Образовательная программа", "", "", "", "", "", "Заявлений"},
		{"ОНЛАЙН Аналитика больших данных", "", "", "", "", "", 120},
		{"ОНЛАЙН Маркетинг", "", "", "", "", "", "1 024"},
		{"ОНЛАЙН Дизайн", "", "", "", "", "", "много"},
		{"ОНЛАЙН Финансы", "", "", "", "", "", "7.0"},
	})
}

func TestSpreadsheetRow(t *testing.T) {
	body := reportWorkbook(t)

	cases := []struct {
		name   string
		spec   scraper.Spec
		expect int
		kind   scraper.ExtractionKind
	}{
		{
			name:   "fuzzy label",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "  онлайн аналитика   больших данных", ValueColumn: intPtr(6)},
			expect: 120,
		},
		{
			name:   "thousands separator",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Маркетинг", ValueColumn: intPtr(6)},
			expect: 1024,
		},
		{
			name:   "whole float",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Финансы", ValueColumn: intPtr(6)},
			expect: 7,
		},
		{
			name:   "normalized sheet name",
			spec:   scraper.Spec{Sheet: " магистратура ", Label: "ОНЛАЙН Маркетинг", ValueColumn: intPtr(6)},
			expect: 1024,
		},
		{
			name:   "row count after header",
			spec:   scraper.Spec{Sheet: "Магистратура", HeaderRows: 1},
			expect: 4,
		},
		{
			name: "unknown program",
			spec: scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Кибербезопасность", ValueColumn: intPtr(6)},
			kind: scraper.ExtractRowNotFound,
		},
		{
			name: "not a number",
			spec: scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Дизайн", ValueColumn: intPtr(6)},
			kind: scraper.ExtractInvalidValue,
		},
		{
			name: "empty value column",
			spec: scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Маркетинг", ValueColumn: intPtr(9)},
			kind: scraper.ExtractInvalidValue,
		},
		{
			name: "missing sheet",
			spec: scraper.Spec{Sheet: "Бакалавриат", Label: "ОНЛАЙН Маркетинг", ValueColumn: intPtr(6)},
			kind: scraper.ExtractSheetNotFound,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			test.spec.Strategy = scraper.StrategySpreadsheetRow
			count, err := Extract(scraper.Document{Format: scraper.FormatXLSX, Body: body}, test.spec)
			if test.kind != "" {
				requireKind(t, err, test.kind)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expect, count)
		})
	}
}

func TestSpreadsheetRowDefaultSheet(t *testing.T) {
	body := reportWorkbook(t)

	// the first sheet is the empty default one.
	count, err := SpreadsheetRow(body, scraper.FormatXLSX, scraper.Spec{})
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSpreadsheetRowMissingValueColumn(t *testing.T) {
	_, err := SpreadsheetRow(reportWorkbook(t), scraper.FormatXLSX, scraper.Spec{Label: "ОНЛАЙН Маркетинг"})
	require.True(t, errors.Is(err, &scraper.ConfigError{Kind: scraper.ConfigMissingField}))
}

func TestReadSheetMalformed(t *testing.T) {
	for _, format := range []scraper.Format{scraper.FormatXLSX, scraper.FormatXLS, scraper.FormatHTML} {
		t.Run(string(format), func(t *testing.T) {
			_, err := ReadSheet([]byte("<html>not a workbook</html>"), format, "")
			var parseErr *scraper.ParseError
			require.True(t, errors.As(err, &parseErr), "%v", err)
		})
	}
}

// admissions.xls is a BIFF8 workbook with a one row "Сводка" sheet followed by
// "Магистратура":
//
//	row 0  Образовательная программа | ... | Заявлений
//	row 1  ОНЛАЙН Аналитика больших данных | 120 (number)
//	row 2  ОНЛАЙН Маркетинг | 45 (rk)
//	row 3  ОНЛАЙН Финансы | 7.0 (number)
//	row 4  ОНЛАЙН Дизайн | 2.5 (number)
//	row 6  ОНЛАЙН Право | "1 024" (string)
//
// row 5 has no cells.
func legacyWorkbook(t *testing.T) []byte {
	t.Helper()
	body, err := os.ReadFile("testdata/admissions.xls")
	require.NoError(t, err)
	return body
}

func TestSpreadsheetRowLegacy(t *testing.T) {
	body := legacyWorkbook(t)

	cases := []struct {
		name   string
		spec   scraper.Spec
		expect int
		kind   scraper.ExtractionKind
	}{
		{
			name:   "number cell",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "онлайн аналитика больших данных", ValueColumn: intPtr(6)},
			expect: 120,
		},
		{
			name:   "rk cell",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Маркетинг", ValueColumn: intPtr(6)},
			expect: 45,
		},
		{
			name:   "whole float",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Финансы", ValueColumn: intPtr(6)},
			expect: 7,
		},
		{
			name:   "string cell after a gap",
			spec:   scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Право", ValueColumn: intPtr(6)},
			expect: 1024,
		},
		{
			name:   "row count after header",
			spec:   scraper.Spec{Sheet: "Магистратура", HeaderRows: 1},
			expect: 5,
		},
		{
			name:   "first sheet by default",
			spec:   scraper.Spec{},
			expect: 1,
		},
		{
			name: "fractional value",
			spec: scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Дизайн", ValueColumn: intPtr(6)},
			kind: scraper.ExtractInvalidValue,
		},
		{
			name: "unknown program",
			spec: scraper.Spec{Sheet: "Магистратура", Label: "ОНЛАЙН Кибербезопасность", ValueColumn: intPtr(6)},
			kind: scraper.ExtractRowNotFound,
		},
		{
			name: "missing sheet",
			spec: scraper.Spec{Sheet: "Бакалавриат"},
			kind: scraper.ExtractSheetNotFound,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			test.spec.Strategy = scraper.StrategySpreadsheetRow
			count, err := Extract(scraper.Document{Format: scraper.FormatXLS, Body: body}, test.spec)
			if test.kind != "" {
				requireKind(t, err, test.kind)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expect, count)
		})
	}
}

func TestReadSheetLegacy(t *testing.T) {
	sheet, err := ReadSheet(legacyWorkbook(t), scraper.FormatXLS, "Магистратура")
	require.NoError(t, err)
	require.Equal(t, "Магистратура", sheet.Name)
	require.Len(t, sheet.Rows, 7)
	require.Equal(t, "Заявлений", sheet.Cell(0, 6))
	require.Equal(t, "120", sheet.Cell(1, 6))
	require.Nil(t, sheet.Rows[5])
	require.Equal(t, "", sheet.Cell(5, 0))
}
