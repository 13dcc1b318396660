package kepmap

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRefresher = (*client)(nil)

// AutoRefresher provides controls for periodic catalog refreshes.
type AutoRefresher interface {
	// AutoRefreshOn starts refreshing loaded catalogs at the configured interval
	AutoRefreshOn() error

	// AutoRefreshOff stops automatic refreshes
	AutoRefreshOff() error
}

// AutoRefreshOn starts a background loop re-downloading every catalog held in
// memory. Catalogs never loaded are left alone.
func (c *client) AutoRefreshOn() error {
	if c.options.autoRefreshInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRefreshInterval",
			Value:   c.options.autoRefreshInterval,
			Message: "refresh interval must be positive",
		}
	}

	// Stop any existing loop before starting a new one
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := time.NewTicker(c.options.autoRefreshInterval)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.refreshTicker, c.refreshCancel, c.refreshDone = ticker, cancel, done

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				if !c.refreshLoaded(ctx) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// AutoRefreshOff stops automatic refreshes and waits for a refresh in
// progress to return.
func (c *client) AutoRefreshOff() error {
	c.mu.Lock()
	ticker, cancel, done := c.refreshTicker, c.refreshCancel, c.refreshDone
	c.refreshTicker, c.refreshCancel, c.refreshDone = nil, nil, nil
	c.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return nil
}

// refreshLoaded refreshes each loaded catalog once. It returns false when the
// loop should stop.
func (c *client) refreshLoaded(parent context.Context) bool {
	for _, name := range c.cache.LoadedNames() {
		ctx, cancel := context.WithTimeout(parent, constants.RefreshContextTimeout)
		_, err := c.RefreshCatalog(ctx, name)
		cancel()

		if err != nil {
			if parent.Err() != nil || stderrors.Is(err, context.Canceled) {
				return false
			}
			// Log other errors but continue
			c.options.logger.Error().Err(err).Str("catalog", name).Msg("Auto refresh failed")
		}
	}
	return true
}
