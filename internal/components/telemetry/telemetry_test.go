package telemetry

import (
	"errors"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("runner", NewScopedAPI("daemon", rec))

	scoped.ReportBroken("runner.save-results", errors.New("disk full"))
	scoped.ReportWarning("runner.task", "hse_online_ai")
	scoped.ReportCount("runner.succeeded", 3)

	reports := rec.Reports("")
	require.Len(t, reports, 3)
	require.Equal(t, "daemon: runner: runner.save-results", reports[0].ID)
	require.Equal(t, "broken", reports[0].Level)
	require.Equal(t, []any{"hse_online_ai"}, reports[1].Params)
	require.Equal(t, int64(3), reports[2].Count)
	require.Len(t, rec.Reports("warning"), 1)
}

func TestInstrumentRestyReportsErrors(t *testing.T) {
	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().Get("http://127.0.0.1:0/")
	require.Error(t, err)

	require.Len(t, rec.Reports("debug"), 1)
	warnings := rec.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, report_resty_response, warnings[0].ID)
}
