// Package kepmap provides the main entry point for looking up Kepler catalog
// data: stellar properties, Kepler Objects of Interest and the identifiers
// that connect them.
//
// A Client owns one catalog cache. Tables are downloaded from the NASA
// Exoplanet Archive on first use, stored under a local data directory and
// read from there by later processes. Lookups accept loosely formatted KOI
// identifiers (752, "KOI-752.01", "koi_752") and KIC numbers alike.
//
// Example usage:
//
//	client, err := kepmap.New(kepmap.WithDataDir("/tmp/kepler"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ra, dec, err := client.CandidateRaDec(ctx, "KOI-752.01")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mass, err := client.Distribution(ctx, 752, "mass")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(mass)
package kepmap

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/kepmap/internal/persistence"
	"github.com/agentstation/kepmap/internal/transport"
	"github.com/agentstation/kepmap/pkg/candidates"
	"github.com/agentstation/kepmap/pkg/catalogs"
	"github.com/agentstation/kepmap/pkg/distributions"
	"github.com/agentstation/kepmap/pkg/koi"
	"github.com/agentstation/kepmap/pkg/stellar"
	"github.com/agentstation/kepmap/pkg/table"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Identifiers normalizes candidate identifiers.
type Identifiers interface {
	// NormalizeIdentifier returns the canonical koi.Name of raw, or with
	// koi.AsNumber its int or float64 form.
	NormalizeIdentifier(raw any, opts ...koi.Option) (any, error)
}

// Catalogs loads and refreshes archive tables.
type Catalogs interface {
	// LoadCatalog returns a table, downloading it on first use.
	LoadCatalog(ctx context.Context, name string) (*table.Table, error)

	// RefreshCatalog downloads a table again and replaces the cached copy.
	RefreshCatalog(ctx context.Context, name string) (*table.Table, error)

	// Catalogs returns the underlying cache.
	Catalogs() *catalogs.Cache
}

// Lookups reads rows of the stellar and candidate tables.
type Lookups interface {
	StellarProperty(ctx context.Context, id any, props ...string) (table.Record, error)
	CandidateProperty(ctx context.Context, id any, prop string) (table.Value, error)
	CandidateRow(ctx context.Context, id any, columns ...string) (table.Record, error)
	CandidateRaDec(ctx context.Context, id any) (ra, dec float64, err error)
	CandidateMagnitudes(ctx context.Context, id any, bands ...string) (table.Record, error)
	CandidateMagnitude(ctx context.Context, id any, band string) (float64, error)
	Distribution(ctx context.Context, id any, prop string, unc ...distributions.Uncertainty) (distributions.DoubleGauss, error)

	Stellar() *stellar.Accessor
	Candidates() *candidates.Accessor
	Distributions() *distributions.Builder
}

// Client is the catalog lookup facade.
type Client interface {
	Identifiers
	Catalogs
	Lookups

	// AutoRefresher controls periodic re-downloads
	AutoRefresher

	// Hooks provides access to event callback registration
	Hooks

	// Close stops automatic refreshes.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	cache         *catalogs.Cache
	stellar       *stellar.Accessor
	candidates    *candidates.Accessor
	distributions *distributions.Builder
	hooks         *hooks

	// auto refresh state
	mu            sync.Mutex
	refreshTicker *time.Ticker
	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
}

// New creates a Client. Nothing is downloaded until the first lookup.
func New(opts ...Option) (Client, error) {
	o := defaults().apply(opts...)

	archiveOpts := []transport.Option{transport.WithTimeout(o.httpTimeout)}
	if o.httpClient != nil {
		archiveOpts = append(archiveOpts, transport.WithHTTPClient(o.httpClient))
	}

	c := &client{options: o, hooks: newHooks()}

	c.cache = catalogs.NewCache(
		persistence.New(o.dataDir),
		transport.New(o.archiveURL, archiveOpts...),
		catalogs.WithLogger(o.logger),
		catalogs.WithMetrics(o.metrics),
		catalogs.WithLoadHook(c.hooks.triggerLoaded),
		catalogs.WithDefinitions(
			stellar.Definition(o.stellarTable),
			candidates.Definition(o.candidateTable),
		),
	)

	c.candidates = candidates.New(c.cache, o.candidateTable, candidates.WithMetrics(o.metrics))
	c.stellar = stellar.New(c.cache, o.stellarTable,
		stellar.WithCandidates(c.candidates),
		stellar.WithMetrics(o.metrics),
	)
	c.distributions = distributions.NewBuilder(c.stellar)

	o.logger.Debug().
		Str("data_dir", o.dataDir).
		Str("archive", o.archiveURL).
		Msg("Created catalog client")

	if o.autoRefreshEnabled {
		if err := c.AutoRefreshOn(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NormalizeIdentifier implements Identifiers.
func (c *client) NormalizeIdentifier(raw any, opts ...koi.Option) (any, error) {
	return koi.Normalize(raw, opts...)
}

// Catalogs returns the catalog cache.
func (c *client) Catalogs() *catalogs.Cache { return c.cache }

// Stellar returns the stellar accessor.
func (c *client) Stellar() *stellar.Accessor { return c.stellar }

// Candidates returns the candidate accessor.
func (c *client) Candidates() *candidates.Accessor { return c.candidates }

// Distributions returns the distribution builder, which reads the stellar table.
func (c *client) Distributions() *distributions.Builder { return c.distributions }

// Close stops automatic refreshes.
func (c *client) Close() error {
	return c.AutoRefreshOff()
}
