// Package store persists enabled flags and applicant counts in sqlite or a
// libsql server.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eduparser/internal/components/assert"
	"eduparser/internal/components/chrono"
	"eduparser/internal/components/telemetry"
	"eduparser/internal/scraper"
	"eduparser/internal/store/db"

	"github.com/google/uuid"
)

const (
	report_store_save_results = "store.save-results"
	report_store_sync_catalog = "store.sync-catalog"
)

type Store struct {
	db    *sql.DB
	qry   *db.Queries
	clock chrono.API
	tel   telemetry.API
}

func New(database *sql.DB, clock chrono.API, tel telemetry.API) *Store {
	assert.NotNil(database, "db")
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")
	return &Store{
		db:    database,
		qry:   db.New(database),
		clock: clock,
		tel:   telemetry.NewScopedAPI("store", tel),
	}
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) LoadEnabledIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.qry.ListEnabledScraperIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enabled ids: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// SaveResults stores the results of a run in one transaction. a task keeps at
// most one row per day, a later run of the same day replaces it.
func (s *Store) SaveResults(ctx context.Context, results []scraper.TaskResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save results: begin: %w", err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, res := range results {
		day := chrono.Day(s.clock, res.Timestamp)

		err = txqry.DeleteApplicantCount(ctx, db.DeleteApplicantCountParams{
			ScraperID: res.TaskID,
			Date:      day,
		})
		if err != nil {
			s.tel.ReportBroken(report_store_save_results, res.TaskID, err)
			return fmt.Errorf("save results: delete %s: %w", res.TaskID, err)
		}

		var count sql.NullInt64
		if res.Count != nil {
			count = sql.NullInt64{Int64: int64(*res.Count), Valid: true}
		}
		var errMsg sql.NullString
		if res.Error != "" {
			errMsg = sql.NullString{String: res.Error, Valid: true}
		}

		err = txqry.CreateApplicantCount(ctx, db.CreateApplicantCountParams{
			ID:         uuid.NewString(),
			ScraperID:  res.TaskID,
			Name:       res.Name,
			Count:      count,
			Status:     string(res.Status),
			Error:      errMsg,
			Date:       day,
			DurationMs: res.Duration.Milliseconds(),
			CreatedAt:  res.Timestamp.UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.tel.ReportBroken(report_store_save_results, res.TaskID, err)
			return fmt.Errorf("save results: insert %s: %w", res.TaskID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("save results: commit: %w", err)
	}
	return nil
}

// SyncCatalog makes sure every catalog entry has a config row. new entries
// are enabled, existing rows keep their flag and get the catalog's name. it
// returns the number of rows added.
func (s *Store) SyncCatalog(ctx context.Context, defs []scraper.Definition) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sync catalog: begin: %w", err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	now := s.clock.Now().UTC().Format(time.RFC3339)
	added := 0
	for _, def := range defs {
		n, err := txqry.CreateScraperConfig(ctx, db.CreateScraperConfigParams{
			ScraperID:  def.ID,
			Name:       def.Name,
			University: def.University,
			CreatedAt:  now,
		})
		if err != nil {
			s.tel.ReportBroken(report_store_sync_catalog, def.ID, err)
			return 0, fmt.Errorf("sync catalog: insert %s: %w", def.ID, err)
		}
		if n > 0 {
			added++
			continue
		}

		err = txqry.UpdateScraperConfigInfo(ctx, db.UpdateScraperConfigInfoParams{
			Name:       def.Name,
			University: def.University,
			ScraperID:  def.ID,
		})
		if err != nil {
			s.tel.ReportBroken(report_store_sync_catalog, def.ID, err)
			return 0, fmt.Errorf("sync catalog: update %s: %w", def.ID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("sync catalog: commit: %w", err)
	}
	return added, nil
}

// SetEnabled flips the enabled flag of the given tasks. unknown ids are an
// error and nothing is changed.
func (s *Store) SetEnabled(ctx context.Context, enabled bool, ids ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set enabled: begin: %w", err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	flag := db.DISABLED
	if enabled {
		flag = db.ENABLED
	}
	for _, id := range ids {
		n, err := txqry.SetScraperEnabled(ctx, db.SetScraperEnabledParams{
			Enabled:   flag,
			ScraperID: id,
		})
		if err != nil {
			return fmt.Errorf("set enabled %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("set enabled: unknown task %q, run sync first", id)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("set enabled: commit: %w", err)
	}
	return nil
}

// StoredResult is a row of applicant_counts.
type StoredResult struct {
	TaskID    string
	Name      string
	Count     *int
	Status    scraper.Status
	Error     string
	Date      string
	Duration  time.Duration
	CreatedAt time.Time
}

// ResultsOn lists the results stored for day (YYYY-MM-DD) ordered by task id.
func (s *Store) ResultsOn(ctx context.Context, day string) ([]StoredResult, error) {
	rows, err := s.qry.GetApplicantCountsOn(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("results on %s: %w", day, err)
	}

	out := make([]StoredResult, 0, len(rows))
	for _, row := range rows {
		res := StoredResult{
			TaskID:   row.ScraperID,
			Name:     row.Name,
			Status:   scraper.Status(row.Status),
			Error:    row.Error.String,
			Date:     row.Date,
			Duration: time.Duration(row.DurationMs) * time.Millisecond,
		}
		if row.Count.Valid {
			n := int(row.Count.Int64)
			res.Count = &n
		}
		res.CreatedAt, err = time.Parse(time.RFC3339, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("results on %s: created_at of %s: %w", day, row.ScraperID, err)
		}
		out = append(out, res)
	}
	return out, nil
}
