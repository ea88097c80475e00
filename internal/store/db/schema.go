package db

import _ "embed"

//go:embed schema.sql
var Schema string

// enabled flags as stored in scrapers_config.
const (
	DISABLED int64 = iota
	ENABLED
)
