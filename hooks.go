package kepmap

import (
	"sync"

	"github.com/agentstation/kepmap/pkg/catalogs"
	"github.com/agentstation/kepmap/pkg/table"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for catalog events
type (
	// CatalogLoadedHook is called when a catalog is read from disk or downloaded
	CatalogLoadedHook func(catalog, source string, rows int)

	// CatalogRefreshedHook is called after a successful refresh with the row changes
	CatalogRefreshedHook func(catalog string, changes Changes)
)

// Hooks registers event callbacks.
type Hooks interface {
	// OnCatalogLoaded registers a callback for catalog loads
	OnCatalogLoaded(CatalogLoadedHook)

	// OnCatalogRefreshed registers a callback for catalog refreshes
	OnCatalogRefreshed(CatalogRefreshedHook)
}

// OnCatalogLoaded registers a callback for catalog loads.
func (c *client) OnCatalogLoaded(fn CatalogLoadedHook) { c.hooks.OnCatalogLoaded(fn) }

// OnCatalogRefreshed registers a callback for catalog refreshes.
func (c *client) OnCatalogRefreshed(fn CatalogRefreshedHook) { c.hooks.OnCatalogRefreshed(fn) }

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu          sync.RWMutex
	onLoaded    []CatalogLoadedHook
	onRefreshed []CatalogRefreshedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) OnCatalogLoaded(fn CatalogLoadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLoaded = append(h.onLoaded, fn)
}

func (h *hooks) OnCatalogRefreshed(fn CatalogRefreshedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRefreshed = append(h.onRefreshed, fn)
}

func (h *hooks) triggerLoaded(e catalogs.LoadEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onLoaded {
		hook(e.Catalog, e.Source, e.Table.Len())
	}
}

func (h *hooks) triggerRefreshed(catalog string, changes Changes) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRefreshed {
		hook(catalog, changes)
	}
}

// Changes lists the row keys that differ between two versions of a catalog.
type Changes struct {
	Added   []string `json:"added" yaml:"added"`
	Updated []string `json:"updated" yaml:"updated"`
	Removed []string `json:"removed" yaml:"removed"`
}

// Empty reports whether no row changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// Diff compares two versions of a catalog by key. A nil old table reports
// every row of next as added. A row whose columns changed, or whose values
// differ in any shared column, is updated; NaN equals NaN.
func Diff(old, next *table.Table) Changes {
	var ch Changes
	if next == nil {
		return ch
	}
	if old == nil {
		ch.Added = next.Keys()
		return ch
	}

	sameColumns := equalColumns(old, next)
	for _, key := range next.Keys() {
		newRow, _ := next.Row(key)
		oldRow, ok := old.Row(key)
		switch {
		case !ok:
			ch.Added = append(ch.Added, key)
		case !sameColumns || !equalRows(oldRow, newRow):
			ch.Updated = append(ch.Updated, key)
		}
	}
	for _, key := range old.Keys() {
		if _, ok := next.Row(key); !ok {
			ch.Removed = append(ch.Removed, key)
		}
	}
	return ch
}

func equalColumns(a, b *table.Table) bool {
	ac, bc := a.Columns(), b.Columns()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

func equalRows(a, b table.Row) bool {
	af, bf := a.Record().Fields, b.Record().Fields
	if len(af) != len(bf) {
		return false
	}
	for i := range af {
		if af[i].Name != bf[i].Name || !af[i].Value.Equal(bf[i].Value) {
			return false
		}
	}
	return true
}
