// Package loader reads listing catalogs from disk. The scraper pipeline
// hands over JSONL (one listing per line, appended as dealers update),
// and snapshots live in sqlite. Malformed records are skipped, not
// fatal: a partially unreadable catalog still browses.
package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// DefaultCatalogFile is where the scraper drops the catalog when no
// path is configured.
const DefaultCatalogFile = "catalog.jsonl"

// LoadCatalog reads a catalog from path, dispatching on extension:
// sqlite snapshots by .db/.sqlite/.sqlite3, JSONL otherwise. An empty
// path means DefaultCatalogFile in the working directory.
func LoadCatalog(path string) ([]model.Listing, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		path = filepath.Join(wd, DefaultCatalogFile)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadCatalogFromSQLite(path)
	}
	return LoadCatalogFromJSONL(path)
}

// LoadCatalogFromJSONL reads listings from a JSONL file. The file is an
// append log: when an id occurs more than once the last record wins,
// keeping the listing's first-seen position. Lines that do not parse or
// do not validate are skipped.
func LoadCatalogFromJSONL(path string) ([]model.Listing, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no catalog found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()

	var listings []model.Listing
	position := make(map[int64]int)

	scanner := bufio.NewScanner(file)
	// Listings with long descriptions can produce large lines
	const maxCapacity = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	skipped := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var l model.Listing
		if err := json.Unmarshal(line, &l); err != nil {
			skipped++
			continue
		}
		if err := l.Validate(); err != nil {
			skipped++
			continue
		}

		if at, seen := position[l.ID]; seen {
			listings[at] = l
			continue
		}
		position[l.ID] = len(listings)
		listings = append(listings, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}
	if skipped > 0 {
		log.Printf("Warning: skipped %d malformed catalog lines in %s", skipped, path)
	}
	return listings, nil
}
