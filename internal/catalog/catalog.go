// Package catalog holds the static list of extraction tasks compiled into the
// binary.
package catalog

import (
	_ "embed"
	"fmt"

	"eduparser/internal/scraper"

	"github.com/titanous/json5"
)

//go:embed catalog.json5
var catalogFile []byte

type catalogData struct {
	Scrapers []scraper.Definition `json:"scrapers"`
}

// Load decodes the embedded catalog. the definitions are returned in file
// order and are not validated, see registry.New.
func Load() ([]scraper.Definition, error) {
	return Decode(catalogFile)
}

// Decode decodes a catalog in the embedded file's format.
func Decode(contents []byte) ([]scraper.Definition, error) {
	var data catalogData
	err := json5.Unmarshal(contents, &data)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return data.Scrapers, nil
}
