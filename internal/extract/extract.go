// Package extract turns a fetched document into an applicant count.
//
// every function here is pure: the same document and spec always give the
// same count or the same kind of error. a count is only returned after it was
// parsed and validated, there are no partial results.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"eduparser/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

// Extract runs the strategy named by spec against doc.
func Extract(doc scraper.Document, spec scraper.Spec) (int, error) {
	var count int
	var err error

	switch spec.Strategy {
	case scraper.StrategyTableLastRow,
		scraper.StrategyAttributeOffset,
		scraper.StrategyNestedClass:
		if doc.Format != scraper.FormatHTML {
			return 0, &scraper.ParseError{
				Format: doc.Format,
				Err:    fmt.Errorf("strategy %s requires an html document", spec.Strategy),
			}
		}
		var html *goquery.Document
		html, err = ParseHTML(doc.Body)
		if err != nil {
			return 0, err
		}

		switch spec.Strategy {
		case scraper.StrategyTableLastRow:
			count, err = TableLastRow(html, spec.TableClass)
		case scraper.StrategyAttributeOffset:
			count, err = AttributeOffset(html, spec.Marker, spec.Attribute, spec.Offset)
		case scraper.StrategyNestedClass:
			count, err = NestedClass(html, spec.Marker, spec.InnerMarker)
		}
	case scraper.StrategySpreadsheetRow:
		if !doc.Format.IsSpreadsheet() {
			return 0, &scraper.ParseError{
				Format: doc.Format,
				Err:    fmt.Errorf("strategy %s requires a spreadsheet", spec.Strategy),
			}
		}
		count, err = SpreadsheetRow(doc.Body, doc.Format, spec)
	default:
		return 0, fmt.Errorf("unknown strategy %q", spec.Strategy)
	}

	if err != nil {
		return 0, err
	}
	return count, nil
}

// ParseHTML parses an UTF-8 html body.
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &scraper.ParseError{Format: scraper.FormatHTML, Err: err}
	}
	return doc, nil
}

var digitsRegex = regexp.MustCompile(`\d+`)

func checkNonNegative(n int) (int, error) {
	if n < 0 {
		return 0, scraper.Extraction(scraper.ExtractNegativeValue, "got %d", n)
	}
	return n, nil
}

var numberSpaces = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")

// parseInteger parses text that should hold a whole number. thousands may be
// separated by (non-breaking) spaces and spreadsheet cells may hold floats
// like "12.0" or "12,0" which are accepted if they have no fraction.
func parseInteger(text string) (int, error) {
	cleaned := numberSpaces.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, fmt.Errorf("empty value")
	}

	n, err := strconv.Atoi(cleaned)
	if err == nil {
		return n, nil
	}

	f, ferr := strconv.ParseFloat(strings.Replace(cleaned, ",", ".", 1), 64)
	if ferr != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not a whole number", text)
	}
	return int(f), nil
}
