package scraper

import (
	"errors"
	"fmt"
)

// ErrTimeout is recorded when a task exceeds its per-task timeout. its message
// is stored verbatim as the task's error message.
var ErrTimeout = errors.New("timeout")

type ConfigErrorKind string

const (
	ConfigDuplicateID  ConfigErrorKind = "duplicate_id"
	ConfigMissingField ConfigErrorKind = "missing_field"
)

// ConfigError is a catalog defect. it aborts a run before any task executes.
type ConfigError struct {
	Kind   ConfigErrorKind
	TaskID string
	Field  string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error (%s): task %q: %s", e.Kind, e.TaskID, e.Field)
	}
	return fmt.Sprintf("config error (%s): task %q", e.Kind, e.TaskID)
}

// FetchError covers network failures, non-2xx responses and fetch timeouts.
type FetchError struct {
	URL        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: failed", e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError means the document could not be read as the format the
// extraction strategy requires.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Format, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type ExtractionKind string

const (
	ExtractNoTable          ExtractionKind = "no_table"
	ExtractNoRows           ExtractionKind = "no_rows"
	ExtractNoDigits         ExtractionKind = "no_digits"
	ExtractNoElement        ExtractionKind = "no_element"
	ExtractInvalidAttribute ExtractionKind = "invalid_attribute"
	ExtractSheetNotFound    ExtractionKind = "sheet_not_found"
	ExtractRowNotFound      ExtractionKind = "row_not_found"
	ExtractInvalidValue     ExtractionKind = "invalid_value"
	ExtractNegativeValue    ExtractionKind = "negative_value"
)

// ExtractionError means the document parsed but the count could not be
// located or validated.
type ExtractionError struct {
	Kind   ExtractionKind
	Detail string
}

func (e *ExtractionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("extraction error (%s)", e.Kind)
	}
	return fmt.Sprintf("extraction error (%s): %s", e.Kind, e.Detail)
}

// Is matches any *ExtractionError of the same kind, so callers can write
// errors.Is(err, &ExtractionError{Kind: ExtractRowNotFound}).
func (e *ExtractionError) Is(target error) bool {
	t, ok := target.(*ExtractionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Extraction is a shorthand constructor with a formatted detail.
func Extraction(kind ExtractionKind, format string, args ...any) *ExtractionError {
	return &ExtractionError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Is for ConfigError compares kinds the same way ExtractionError does.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
