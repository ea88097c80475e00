package registry

import (
	"context"
	"errors"
	"testing"

	"eduparser/internal/catalog"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/scraper"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ids   []string
	err   error
	calls int
}

func (s *fakeSource) LoadEnabledIDs(ctx context.Context) (map[string]struct{}, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]struct{}, len(s.ids))
	for _, id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func nested(id string) scraper.Definition {
	return scraper.Definition{
		ID:   id,
		Name: id,
		Spec: scraper.Spec{
			Strategy:    scraper.StrategyNestedClass,
			URL:         "https://example.org/" + id,
			Marker:      "trPosBen",
			InnerMarker: "pos",
		},
	}
}

func ids(descs []scraper.Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.ID
	}
	return out
}

func TestNewDuplicateID(t *testing.T) {
	source := &fakeSource{}
	reg, err := New([]scraper.Definition{nested("hse_online_ai"), nested("b"), nested("hse_online_ai")}, &telemetry.Recorder{})
	require.Nil(t, reg)
	require.True(t, errors.Is(err, &scraper.ConfigError{Kind: scraper.ConfigDuplicateID}))

	var configErr *scraper.ConfigError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "hse_online_ai", configErr.TaskID)
	require.Zero(t, source.calls)
}

func TestNewMissingFields(t *testing.T) {
	valueColumn := 6
	cases := []struct {
		name   string
		def    scraper.Definition
		fields []string
	}{
		{
			name:   "table without class",
			def:    scraper.Definition{ID: "t", Spec: scraper.Spec{Strategy: scraper.StrategyTableLastRow, URL: "u"}},
			fields: []string{"table_class"},
		},
		{
			name:   "attribute offset without hints",
			def:    scraper.Definition{ID: "t", Spec: scraper.Spec{Strategy: scraper.StrategyAttributeOffset}},
			fields: []string{"url", "marker", "attribute"},
		},
		{
			name:   "nested without inner marker",
			def:    scraper.Definition{ID: "t", Spec: scraper.Spec{Strategy: scraper.StrategyNestedClass, URL: "u", Marker: "m"}},
			fields: []string{"inner_marker"},
		},
		{
			name:   "labelled spreadsheet without value column",
			def:    scraper.Definition{ID: "t", Spec: scraper.Spec{Strategy: scraper.StrategySpreadsheetRow, URL: "u", Label: "x"}},
			fields: []string{"value_column"},
		},
		{
			name:   "unknown strategy",
			def:    scraper.Definition{ID: "t", Spec: scraper.Spec{Strategy: "magic", URL: "u"}},
			fields: []string{`strategy (unknown "magic")`},
		},
		{
			name:   "empty id",
			def:    scraper.Definition{Spec: scraper.Spec{Strategy: scraper.StrategyNestedClass}},
			fields: []string{"id"},
		},
		{
			name: "complete spreadsheet",
			def: scraper.Definition{ID: "t", Spec: scraper.Spec{
				Strategy:    scraper.StrategySpreadsheetRow,
				URL:         "u",
				Label:       "x",
				ValueColumn: &valueColumn,
			}},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := New([]scraper.Definition{test.def}, &telemetry.Recorder{})
			if len(test.fields) == 0 {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, &scraper.ConfigError{Kind: scraper.ConfigMissingField}))

			var fields []string
			for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
				var configErr *scraper.ConfigError
				require.True(t, errors.As(e, &configErr))
				fields = append(fields, configErr.Field)
			}
			require.Empty(t, cmp.Diff(test.fields, fields))
		})
	}
}

func TestDiscover(t *testing.T) {
	tel := &telemetry.Recorder{}
	reg, err := New([]scraper.Definition{nested("c"), nested("a"), nested("b")}, tel)
	require.NoError(t, err)

	source := &fakeSource{ids: []string{"b", "c", "gone"}}

	enabled, err := reg.Discover(context.Background(), source, scraper.ModeEnabled)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, ids(enabled))
	require.Equal(t, 1, source.calls)
	for _, d := range enabled {
		require.True(t, d.Enabled)
	}

	all, err := reg.Discover(context.Background(), source, scraper.ModeAll)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a", "b"}, ids(all))
	require.False(t, all[1].Enabled)

	again, err := reg.Discover(context.Background(), source, scraper.ModeEnabled)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(enabled, again))

	warnings := tel.Reports("warning")
	require.Len(t, warnings, 3)
	require.Equal(t, []any{"gone"}, warnings[0].Params)
}

func TestDiscoverWithoutSource(t *testing.T) {
	reg, err := New([]scraper.Definition{nested("a")}, &telemetry.Recorder{})
	require.NoError(t, err)

	all, err := reg.Discover(context.Background(), nil, scraper.ModeAll)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids(all))

	_, err = reg.Discover(context.Background(), nil, scraper.ModeEnabled)
	require.Error(t, err)

	_, err = reg.Discover(context.Background(), nil, "some")
	require.Error(t, err)
}

func TestDiscoverSourceError(t *testing.T) {
	reg, err := New([]scraper.Definition{nested("a")}, &telemetry.Recorder{})
	require.NoError(t, err)

	boom := errors.New("database is locked")
	_, err = reg.Discover(context.Background(), &fakeSource{err: boom}, scraper.ModeEnabled)
	require.ErrorIs(t, err, boom)
}

func TestInspect(t *testing.T) {
	reg, err := New([]scraper.Definition{nested("a"), nested("b"), nested("c")}, &telemetry.Recorder{})
	require.NoError(t, err)

	report, err := reg.Inspect(context.Background(), &fakeSource{ids: []string{"z", "b", "y"}})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(Report{
		Catalog:  3,
		Enabled:  3,
		Matched:  1,
		Disabled: []string{"a", "c"},
		Unknown:  []string{"y", "z"},
	}, report))
}

func TestCatalogIsValid(t *testing.T) {
	defs, err := catalog.Load()
	require.NoError(t, err)

	reg, err := New(defs, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Len(t, reg.Definitions(), len(defs))
}
