package testutil

import (
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

type DBParams struct {
	// if unspecified, the db is left empty
	Schema string
	// if unspecified, it will use `:memory:`
	Path string
}

// SetupDB opens a sqlite database for a test and closes it when the test
// ends. every connection to `:memory:` is its own database, so the pool is
// limited to a single connection.
func SetupDB(t testing.TB, params DBParams) *sql.DB {
	t.Helper()

	dbpath := ":memory:"
	if params.Path != "" {
		dbpath = params.Path
	}
	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if params.Schema == "" {
		return db
	}
	_, err = db.Exec(params.Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	return db
}
