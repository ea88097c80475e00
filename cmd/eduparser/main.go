package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"eduparser/cmd/eduparser/commands"
	"eduparser/lib/serviceutil"
	"eduparser/lib/telemetry"
)

func main() {
	ctx, stop := serviceutil.SignalContext(context.Background())
	defer stop()

	otel, err := telemetry.SetupFromEnv(ctx, "eduparser")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	code := commands.ExecuteContext(ctx)

	err = otel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	if code != 0 {
		os.Exit(code)
	}
}
