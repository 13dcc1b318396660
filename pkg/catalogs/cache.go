// Package catalogs loads archive catalogs lazily: an in-memory table when the
// process already has one, the local cache file when one exists, and a
// download from the archive otherwise. Loaded tables are immutable and are
// kept for the lifetime of the Cache unless Refresh replaces them.
package catalogs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/agentstation/kepmap/internal/cache"
	"github.com/agentstation/kepmap/internal/metrics"
	"github.com/agentstation/kepmap/internal/persistence"
	"github.com/agentstation/kepmap/internal/transport"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/logging"
	"github.com/agentstation/kepmap/pkg/table"
)

// Cache resolves catalog names to loaded tables.
type Cache struct {
	store   *persistence.Store
	archive *transport.Client
	memo    *cache.Cache[*table.Table]
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	hooks   []LoadHook

	mu   sync.RWMutex
	defs map[string]Definition

	// gens counts refreshes per catalog. A load that started before the
	// latest refresh must not replace the table it installed.
	genMu sync.Mutex
	gens  map[string]uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for load and refresh events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records load outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// LoadEvent describes a table that was just installed in memory.
type LoadEvent struct {
	Catalog string
	// Source is one of the metrics source labels: disk or archive.
	Source string
	Table  *table.Table
}

// LoadHook is called after a catalog is read from disk or downloaded.
type LoadHook func(LoadEvent)

// WithLoadHook adds a callback run after every disk read or download.
// Memory hits do not trigger it.
func WithLoadHook(fn LoadHook) Option {
	return func(c *Cache) {
		if fn != nil {
			c.hooks = append(c.hooks, fn)
		}
	}
}

// WithDefinitions registers catalog definitions.
func WithDefinitions(defs ...Definition) Option {
	return func(c *Cache) {
		for _, d := range defs {
			c.defs[d.Name] = d
		}
	}
}

// NewCache creates a cache persisting to store and downloading through archive.
func NewCache(store *persistence.Store, archive *transport.Client, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		archive: archive,
		memo:    cache.New[*table.Table](0, 0),
		logger:  logging.Default(),
		defs:    make(map[string]Definition),
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds or replaces a catalog definition.
func (c *Cache) Register(def Definition) error {
	if def.Name == "" {
		return errors.NewValidationError("name", def.Name, "catalog name is required")
	}
	if def.Key == "" {
		return errors.NewValidationError("key", def.Key, "catalog key column is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Name] = def
	return nil
}

// Definition returns the registered definition of name.
func (c *Cache) Definition(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[name]
	return d, ok
}

// Definitions returns every registered definition sorted by name.
func (c *Cache) Definitions() []Definition {
	c.mu.RLock()
	defs := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		defs = append(defs, d)
	}
	c.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Path returns the local cache file of a catalog.
func (c *Cache) Path(name string) string {
	return c.store.Path(name)
}

// Cached reports whether a local cache file exists for the catalog.
func (c *Cache) Cached(name string) bool {
	return c.store.Exists(name)
}

// Loaded reports whether the catalog is held in memory.
func (c *Cache) Loaded(name string) bool {
	_, ok := c.memo.Get(name)
	return ok
}

// Peek returns the in-memory table without loading it.
func (c *Cache) Peek(name string) (*table.Table, bool) {
	return c.memo.Get(name)
}

// LoadedNames returns the catalogs currently held in memory, sorted.
func (c *Cache) LoadedNames() []string {
	names := c.memo.Keys()
	sort.Strings(names)
	return names
}

// Load returns the catalog table, reading the local cache or downloading it
// on first use. Concurrent loads of one catalog share a single fetch.
func (c *Cache) Load(ctx context.Context, name string) (*table.Table, error) {
	if t, ok := c.memo.Get(name); ok {
		c.metrics.ObserveLoad(name, metrics.SourceMemory, t.Len())
		return t, nil
	}

	def, err := c.definition(name)
	if err != nil {
		return nil, err
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		if t, ok := c.memo.Get(name); ok {
			return t, nil
		}
		return c.load(ctx, def, c.generation(name))
	})
	if err != nil {
		c.metrics.IncrementFailure(name)
		return nil, err
	}
	return v.(*table.Table), nil
}

// Refresh downloads the catalog again, replaces the local cache file and the
// in-memory table. On failure the previous copies are left in place.
func (c *Cache) Refresh(ctx context.Context, name string) (*table.Table, error) {
	def, err := c.definition(name)
	if err != nil {
		return nil, err
	}

	v, err, _ := c.group.Do("refresh/"+name, func() (any, error) {
		gen := c.advance(name)
		c.logger.Info().Str("catalog", name).Msg("Refreshing catalog")
		raw, err := c.download(ctx, def)
		if err != nil {
			return nil, errors.NewCatalogUnavailableError(name, err)
		}
		return c.install(def, raw, metrics.SourceArchive, gen)
	})
	if err != nil {
		c.metrics.IncrementFailure(name)
		return nil, err
	}
	return v.(*table.Table), nil
}

// Status describes a registered catalog and its cache state.
type Status struct {
	Name        string            `json:"name" yaml:"name"`
	Key         string            `json:"key" yaml:"key"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Loaded      bool              `json:"loaded" yaml:"loaded"`
	Cached      bool              `json:"cached" yaml:"cached"`
	Info        *persistence.Info `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Status reports every registered catalog, reading cache metadata where present.
func (c *Cache) Status(ctx context.Context) []Status {
	defs := c.Definitions()
	out := make([]Status, len(defs))
	for i, d := range defs {
		s := Status{
			Name:        d.Name,
			Key:         d.Key,
			Description: d.Description,
			Loaded:      c.Loaded(d.Name),
			Cached:      c.Cached(d.Name),
		}
		if s.Cached {
			if info, err := c.store.Info(ctx, d.Name); err == nil {
				s.Info = &info
			} else {
				c.logger.Warn().Err(err).Str("catalog", d.Name).Msg("Unreadable catalog cache")
			}
		}
		out[i] = s
	}
	return out
}

func (c *Cache) definition(name string) (Definition, error) {
	def, ok := c.Definition(name)
	if !ok {
		return Definition{}, errors.NewUnknownIdentifierError("catalogs", name, nil)
	}
	return def, nil
}

// load reads the local copy, falling back to a download when it is missing
// or unreadable.
func (c *Cache) load(ctx context.Context, def Definition, gen uint64) (*table.Table, error) {
	raw, err := c.store.Load(ctx, def.Name)
	if err == nil {
		return c.install(def, raw, metrics.SourceDisk, gen)
	}
	if !errors.Is(err, persistence.ErrNotCached) {
		c.logger.Warn().Err(err).Str("catalog", def.Name).Msg("Discarding unreadable catalog cache")
	}

	c.logger.Info().Str("catalog", def.Name).Msg("Downloading catalog")
	raw, err = c.download(ctx, def)
	if err != nil {
		return nil, errors.NewCatalogUnavailableError(def.Name, err)
	}
	return c.install(def, raw, metrics.SourceArchive, gen)
}

func (c *Cache) generation(name string) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gens[name]
}

func (c *Cache) advance(name string) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gens[name]++
	return c.gens[name]
}

// download fetches and parses the catalog, then persists the parsed table.
// A persistence failure is logged; the downloaded table is still used.
func (c *Cache) download(ctx context.Context, def Definition) (*table.Table, error) {
	start := time.Now()
	body, err := c.archive.FetchTable(ctx, def.Name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	raw, err := table.ParseCSV(def.Name, def.Key, body)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveDownload(def.Name, start)

	source, _ := c.archive.TableURL(def.Name)
	if err := c.store.Save(ctx, raw, source); err != nil {
		c.logger.Warn().Err(err).Str("catalog", def.Name).Msg("Failed to persist catalog cache")
	}

	c.logger.Info().
		Str("catalog", def.Name).
		Int("rows", raw.Len()).
		Dur("duration", time.Since(start)).
		Msg("Downloaded catalog")
	return raw, nil
}

// install prepares a raw table and memoizes the result. A table read at an
// older generation than the current one yields to the table in memory.
func (c *Cache) install(def Definition, raw *table.Table, source string, gen uint64) (*table.Table, error) {
	t, err := def.prepare(raw)
	if err != nil {
		return nil, errors.WrapResource("prepare", "catalog", def.Name, err)
	}

	c.genMu.Lock()
	if c.gens[def.Name] != gen {
		if current, ok := c.memo.Get(def.Name); ok {
			c.genMu.Unlock()
			c.logger.Debug().Str("catalog", def.Name).Msg("Discarding table superseded by a refresh")
			return current, nil
		}
	}
	c.memo.Set(def.Name, t)
	c.genMu.Unlock()
	c.metrics.ObserveLoad(def.Name, source, t.Len())
	for _, hook := range c.hooks {
		hook(LoadEvent{Catalog: def.Name, Source: source, Table: t})
	}

	c.logger.Debug().
		Str("catalog", def.Name).
		Str("source", source).
		Int("rows", t.Len()).
		Msg("Catalog ready")
	return t, nil
}
