package commands

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduparser/internal/alert"
	"eduparser/internal/components/chrono"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/fetch"
	"eduparser/internal/registry"
	"eduparser/internal/runner"
	"eduparser/internal/scraper"
	"eduparser/internal/store"
	"eduparser/internal/store/db"
	"eduparser/lib/testutil"

	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	summaries []runner.Summary
	err       error
}

func (n *fakeNotifier) Notify(ctx context.Context, summary runner.Summary, results []scraper.TaskResult) error {
	n.summaries = append(n.summaries, summary)
	return n.err
}

// testApp wires an app around an in-memory database and a catalog with one
// task reading the page served by srv.
func testApp(t *testing.T, srv *httptest.Server, notifier alert.Notifier) *app {
	t.Helper()

	clock, err := chrono.NewStandardImpl()
	require.NoError(t, err)
	tel := &telemetry.Recorder{}

	reg, err := registry.New([]scraper.Definition{{
		ID:   "hse_online_ai",
		Name: "ОНЛАЙН Искусственный интеллект",
		Spec: scraper.Spec{
			Strategy:    scraper.StrategyNestedClass,
			URL:         srv.URL,
			Marker:      "trPosBen",
			InnerMarker: "pos",
		},
	}}, tel)
	require.NoError(t, err)

	database := testutil.SetupDB(t, testutil.DBParams{Schema: db.Schema})
	st := store.New(database, clock, tel)
	_, err = st.SyncCatalog(context.Background(), reg.Definitions())
	require.NoError(t, err)

	return &app{
		cfg: Config{
			Fetch: fetch.Config{Retries: -1},
		},
		db:       database,
		store:    st,
		registry: reg,
		clock:    clock,
		tel:      tel,
		notifier: notifier,
	}
}

func page() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(`<div class="trPosBen"><span class="pos">12</span></div>`))
	}))
}

func TestRunSavesAndNotifies(t *testing.T) {
	srv := page()
	defer srv.Close()
	notifier := &fakeNotifier{}
	a := testApp(t, srv, notifier)

	summary, results, err := a.run(context.Background(), runner.Config{Mode: scraper.ModeEnabled}, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, summary.Succeeded)

	require.Len(t, notifier.summaries, 1)
	require.Equal(t, summary.RunID, notifier.summaries[0].RunID)

	stored, err := a.store.ResultsOn(context.Background(), chrono.Day(a.clock, a.clock.Now()))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 12, *stored[0].Count)
}

func TestRunSaveFailure(t *testing.T) {
	srv := page()
	defer srv.Close()
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	a := testApp(t, srv, notifier)

	_, err := a.db.Exec("drop table applicant_counts")
	require.NoError(t, err)

	summary, results, err := a.run(context.Background(), runner.Config{Mode: scraper.ModeEnabled}, true)
	require.ErrorIs(t, err, errSaveFailed)
	require.Len(t, results, 1)
	require.Equal(t, 1, summary.Succeeded)
	// the run is still reported when it could not be saved.
	require.Len(t, notifier.summaries, 1)

	_, _, err = a.run(context.Background(), runner.Config{Mode: scraper.ModeEnabled}, false)
	require.NoError(t, err)
}

func TestRunWithoutNotifier(t *testing.T) {
	srv := page()
	defer srv.Close()
	a := testApp(t, srv, nil)

	_, _, err := a.run(context.Background(), runner.Config{Mode: scraper.ModeEnabled}, false)
	require.NoError(t, err)
}
