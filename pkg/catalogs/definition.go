package catalogs

import (
	"github.com/agentstation/kepmap/pkg/table"
)

// PrepareFunc derives the in-memory table from the parsed catalog. It runs
// once per load, after the raw table has been read from disk or the archive,
// and must return a new table rather than modify its input.
type PrepareFunc func(*table.Table) (*table.Table, error)

// Definition describes one archive catalog.
type Definition struct {
	// Name is the archive table name; it also names the cache file.
	Name string
	// Key is the column rows are indexed by.
	Key string
	// Description is shown in catalog listings.
	Description string
	// Prepare, when set, transforms the parsed table at load time.
	Prepare PrepareFunc
}

func (d Definition) prepare(t *table.Table) (*table.Table, error) {
	if d.Prepare == nil {
		return t, nil
	}
	return d.Prepare(t)
}
