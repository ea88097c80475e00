package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"eduparser/internal/alert"
	"eduparser/internal/catalog"
	"eduparser/internal/components/chrono"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/registry"
	"eduparser/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg      Config
	db       *sql.DB
	store    *store.Store
	registry *registry.Registry
	clock    chrono.StandardImpl
	tel      telemetry.API
	// notifier is nil when alerting is not configured.
	notifier alert.Notifier
}

func openApp(ctx context.Context, cfg Config) (*app, error) {
	tel := telemetry.SlogAPI{}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return nil, fmt.Errorf("load clock: %w", err)
	}

	defs, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(defs, tel)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	db, err := cfg.Database.OpenDB()
	if err != nil {
		return nil, err
	}
	st := store.New(db, clock, tel)
	err = st.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		db:       db,
		store:    st,
		registry: reg,
		clock:    clock,
		tel:      tel,
	}
	if cfg.Alert.Enabled() {
		a.notifier = alert.NewEmail(cfg.Alert)
	}
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
