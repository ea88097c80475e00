// Package registry validates the catalog and decides which tasks a run
// executes.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"eduparser/internal/components/assert"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/scraper"
)

const (
	report_registry_unknown_enabled = "registry.unknown-enabled"
	report_registry_discover        = "registry.discover"
)

// EnabledSource is the storage view discovery needs.
type EnabledSource interface {
	// LoadEnabledIDs returns the ids of the tasks enabled in storage.
	LoadEnabledIDs(ctx context.Context) (map[string]struct{}, error)
}

// Registry is the validated catalog. it is immutable after New.
type Registry struct {
	defs []scraper.Definition
	tel  telemetry.API
}

// New validates defs and builds a Registry. every defect is reported, joined
// with errors.Join, each as a *scraper.ConfigError.
func New(defs []scraper.Definition, tel telemetry.API) (*Registry, error) {
	assert.NotNil(tel, "telemetry")

	var errs []error
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			errs = append(errs, &scraper.ConfigError{Kind: scraper.ConfigMissingField, Field: "id"})
			continue
		}
		if _, dup := seen[def.ID]; dup {
			errs = append(errs, &scraper.ConfigError{Kind: scraper.ConfigDuplicateID, TaskID: def.ID})
			continue
		}
		seen[def.ID] = struct{}{}

		for _, field := range missingFields(def.Spec) {
			errs = append(errs, &scraper.ConfigError{
				Kind:   scraper.ConfigMissingField,
				TaskID: def.ID,
				Field:  field,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Registry{
		defs: slices.Clone(defs),
		tel:  telemetry.NewScopedAPI("registry", tel),
	}, nil
}

// missingFields lists the location hints the spec's strategy needs but does
// not have.
func missingFields(spec scraper.Spec) []string {
	if !spec.Strategy.Known() {
		return []string{fmt.Sprintf("strategy (unknown %q)", spec.Strategy)}
	}

	var missing []string
	if spec.URL == "" {
		missing = append(missing, "url")
	}
	switch spec.Strategy {
	case scraper.StrategyTableLastRow:
		if spec.TableClass == "" {
			missing = append(missing, "table_class")
		}
	case scraper.StrategyAttributeOffset:
		if spec.Marker == "" {
			missing = append(missing, "marker")
		}
		if spec.Attribute == "" {
			missing = append(missing, "attribute")
		}
	case scraper.StrategyNestedClass:
		if spec.Marker == "" {
			missing = append(missing, "marker")
		}
		if spec.InnerMarker == "" {
			missing = append(missing, "inner_marker")
		}
	case scraper.StrategySpreadsheetRow:
		if spec.Label != "" && (spec.ValueColumn == nil || *spec.ValueColumn < 0) {
			missing = append(missing, "value_column")
		}
	}
	return missing
}

// Definitions returns the catalog in file order.
func (r *Registry) Definitions() []scraper.Definition {
	return slices.Clone(r.defs)
}

// Discover returns the descriptors a run executes, in catalog order.
//
// the enabled set is loaded once from source. with ModeEnabled only enabled
// tasks are returned, with ModeAll every task is. source may be nil with
// ModeAll, then no task is marked enabled.
func (r *Registry) Discover(ctx context.Context, source EnabledSource, mode scraper.Mode) ([]scraper.Descriptor, error) {
	if mode != scraper.ModeEnabled && mode != scraper.ModeAll {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	var enabled map[string]struct{}
	if source != nil {
		var err error
		enabled, err = source.LoadEnabledIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load enabled tasks: %w", err)
		}
	} else if mode == scraper.ModeEnabled {
		return nil, fmt.Errorf("mode %q needs an enabled task source", mode)
	}

	for _, id := range r.unknownIDs(enabled) {
		r.tel.ReportWarning(report_registry_unknown_enabled, id)
	}

	out := make([]scraper.Descriptor, 0, len(r.defs))
	for _, def := range r.defs {
		_, on := enabled[def.ID]
		if !on && mode != scraper.ModeAll {
			continue
		}
		out = append(out, scraper.Descriptor{Definition: def, Enabled: on})
	}

	r.tel.ReportDebug(report_registry_discover, mode, len(out), len(r.defs))
	return out, nil
}

// unknownIDs returns, sorted, the enabled ids no catalog entry has.
func (r *Registry) unknownIDs(enabled map[string]struct{}) []string {
	known := make(map[string]struct{}, len(r.defs))
	for _, def := range r.defs {
		known[def.ID] = struct{}{}
	}

	var unknown []string
	for id := range enabled {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	slices.Sort(unknown)
	return unknown
}

// Report compares the catalog with the enabled set in storage.
type Report struct {
	Catalog int
	Enabled int
	// Matched is the number of catalog tasks that are enabled.
	Matched int
	// Disabled are catalog ids not enabled in storage, in catalog order.
	Disabled []string
	// Unknown are ids enabled in storage without a catalog entry, sorted.
	Unknown []string
}

func (r *Registry) Inspect(ctx context.Context, source EnabledSource) (Report, error) {
	enabled, err := source.LoadEnabledIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load enabled tasks: %w", err)
	}

	report := Report{
		Catalog: len(r.defs),
		Enabled: len(enabled),
		Unknown: r.unknownIDs(enabled),
	}
	for _, def := range r.defs {
		if _, ok := enabled[def.ID]; ok {
			report.Matched++
			continue
		}
		report.Disabled = append(report.Disabled, def.ID)
	}
	return report, nil
}
