package extract

import (
	"strconv"
	"strings"

	"eduparser/internal/scraper"
	"eduparser/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// TableLastRow reads the count from the first cell of the last row of a
// table. The table is the first one whose class contains tableClass
// (case-insensitive), or the first table of the document if none does.
// Rankings list one applicant per row numbered from 1, so the last row number
// is the number of applicants.
func TableLastRow(doc *goquery.Document, tableClass string) (int, error) {
	tables := doc.Find("table")
	if tables.Length() == 0 {
		return 0, scraper.Extraction(scraper.ExtractNoTable, "document has no tables")
	}

	table := tables.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return tableClass != "" && htmlutil.ClassContains(s.Get(0), tableClass)
	}).First()
	if table.Length() == 0 {
		table = tables.First()
	}

	// rows of tables nested inside the target belong to those tables.
	rows := table.Find("tr").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest("table").IsSelection(table)
	})
	if rows.Length() == 0 {
		return 0, scraper.Extraction(scraper.ExtractNoRows, "table has no rows")
	}

	cell := rows.Last().ChildrenFiltered("td, th").First()
	text := htmlutil.CleanText(cell)
	digits := digitsRegex.FindString(text)
	if digits == "" {
		return 0, scraper.Extraction(scraper.ExtractNoDigits, "last row starts with %q", text)
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, scraper.Extraction(scraper.ExtractInvalidValue, "%q: %s", digits, err.Error())
	}
	return checkNonNegative(n)
}

// AttributeOffset reads an integer attribute from the last element whose
// class list contains marker and adds offset to it. Some sites number
// applicants from 0 in an attribute, so the rank of the last one plus one is
// the count.
func AttributeOffset(doc *goquery.Document, marker, attribute string, offset int) (int, error) {
	elements := htmlutil.WithClass(doc.Find("[class]"), marker)
	if elements.Length() == 0 {
		return 0, scraper.Extraction(scraper.ExtractNoElement, "no element with class %q", marker)
	}

	raw, ok := elements.Last().Attr(attribute)
	if !ok {
		return 0, scraper.Extraction(
			scraper.ExtractInvalidAttribute,
			"last %q element has no attribute %q",
			marker, attribute,
		)
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, scraper.Extraction(
			scraper.ExtractInvalidAttribute,
			"attribute %s=%q is not an integer",
			attribute, raw,
		)
	}
	return checkNonNegative(n + offset)
}

// NestedClass reads the count from the text of the first descendant with
// class inner of the last element with class outer.
func NestedClass(doc *goquery.Document, outer, inner string) (int, error) {
	outers := htmlutil.WithClass(doc.Find("[class]"), outer)
	if outers.Length() == 0 {
		return 0, scraper.Extraction(scraper.ExtractNoElement, "no element with class %q", outer)
	}

	target := htmlutil.WithClass(outers.Last().Find("[class]"), inner).First()
	if target.Length() == 0 {
		return 0, scraper.Extraction(
			scraper.ExtractNoElement,
			"last %q element has no %q descendant",
			outer, inner,
		)
	}

	text := htmlutil.CleanText(target)
	n, err := parseInteger(text)
	if err != nil {
		return 0, scraper.Extraction(scraper.ExtractInvalidValue, "%s", err.Error())
	}
	return checkNonNegative(n)
}
