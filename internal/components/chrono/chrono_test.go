package chrono

import (
	"testing"
	"time"

	"eduparser/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	clock, err := NewStandardImpl()
	require.NoError(t, err)

	// 22:30 UTC is already the next day in Moscow (UTC+3).
	late := time.Date(2024, 7, 20, 22, 30, 0, 0, time.UTC)
	require.Equal(t, "2024-07-21", Day(clock, late))
	require.Equal(t, "2024-07-20", Day(Fixed{At: late}, late))
}

func TestCron(t *testing.T) {
	clock, err := NewStandardImpl()
	require.NoError(t, err)
	tel := &telemetry.Recorder{}

	cron := NewStandardCron(clock, tel)
	defer cron.Stop()

	require.NoError(t, cron.Cron("0 9 * * *", func() {}))
	require.Error(t, cron.Cron("every day", func() {}))
}

func TestCronLoggerParams(t *testing.T) {
	logger := cronLogger{}
	params := logger.formatParams([]any{"entry", 1, "next", "09:00", "dangling"})
	require.Equal(t, []any{"entry: 1", "next: 09:00"}, params)
}
