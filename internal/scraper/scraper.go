// Package scraper holds the types shared by the registry, the runner and the
// extraction library.
//
// a task is one (document location, extraction rule) pair. the registry turns
// catalog definitions into descriptors, the runner turns each descriptor into
// exactly one TaskResult.
package scraper

import (
	"time"
)

// Strategy names one of the document extraction algorithms.
type Strategy string

const (
	StrategyTableLastRow    Strategy = "table-last-row"
	StrategyAttributeOffset Strategy = "attribute-offset"
	StrategyNestedClass     Strategy = "nested-class"
	StrategySpreadsheetRow  Strategy = "spreadsheet-row"
)

// Known reports whether the strategy is implemented by the extraction library.
func (s Strategy) Known() bool {
	switch s {
	case StrategyTableLastRow,
		StrategyAttributeOffset,
		StrategyNestedClass,
		StrategySpreadsheetRow:
		return true
	}
	return false
}

// Spec is the strategy tag together with its location hints. which hints are
// required depends on the strategy, see registry validation.
type Spec struct {
	Strategy Strategy `json:"strategy"`
	URL      string   `json:"url"`

	// table-last-row
	TableClass string `json:"table_class,omitempty"`

	// attribute-offset and nested-class
	Marker      string `json:"marker,omitempty"`
	Attribute   string `json:"attribute,omitempty"`
	Offset      int    `json:"offset,omitempty"`
	InnerMarker string `json:"inner_marker,omitempty"`

	// spreadsheet-row
	Sheet       string `json:"sheet,omitempty"`
	Label       string `json:"label,omitempty"`
	LabelColumn int    `json:"label_column,omitempty"`
	// ValueColumn is a pointer since column 0 is a valid column.
	ValueColumn   *int    `json:"value_column,omitempty"`
	HeaderRows    int     `json:"header_rows,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"`
}

// Definition is a single entry of the static catalog.
type Definition struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	University string `json:"university"`
	Spec       Spec   `json:"spec"`
}

// Descriptor is a validated definition annotated with its enablement. it is
// passed around by value and never mutated after discovery.
type Descriptor struct {
	Definition
	Enabled bool
}

// Mode selects which descriptors discovery returns.
type Mode string

const (
	// ModeEnabled returns only the descriptors enabled in storage.
	ModeEnabled Mode = "enabled"
	// ModeAll returns every catalog entry, used for diagnostics and dry runs.
	ModeAll Mode = "all"
)

// Format is the declared format of a fetched document.
type Format string

const (
	FormatHTML Format = "html"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// IsSpreadsheet reports whether the format is one of the workbook formats.
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS
}

// Document is the raw content of a fetched document. HTML bodies are already
// decoded to UTF-8 by the fetcher.
type Document struct {
	URL         string
	ContentType string
	Format      Format
	Body        []byte
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// TaskResult is the outcome of one task in one run.
type TaskResult struct {
	TaskID     string
	Name       string
	University string
	// Count is nil unless Status is StatusSuccess.
	Count     *int
	Status    Status
	Error     string
	Timestamp time.Time
	Duration  time.Duration
}

// Succeeded builds a successful result.
func Succeeded(desc Descriptor, count int, at time.Time, took time.Duration) TaskResult {
	return TaskResult{
		TaskID:     desc.ID,
		Name:       desc.Name,
		University: desc.University,
		Count:      &count,
		Status:     StatusSuccess,
		Timestamp:  at,
		Duration:   took,
	}
}

// Failed builds a failed result carrying the error message.
func Failed(desc Descriptor, err error, at time.Time, took time.Duration) TaskResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return TaskResult{
		TaskID:     desc.ID,
		Name:       desc.Name,
		University: desc.University,
		Status:     StatusError,
		Error:      msg,
		Timestamp:  at,
		Duration:   took,
	}
}
