package modelcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/notesmith/autotitle/internal/config"
	"github.com/notesmith/autotitle/internal/logger"
	"github.com/notesmith/autotitle/internal/metrics"
)

// Entry is the memoized catalogue state for one backend. It records the last
// successful model list, when it was fetched, and the last failure message,
// so a UI can show "last failure: ..." without re-querying.
type Entry struct {
	Models      []string
	LastUpdated time.Time
	LastError   string
}

// Fresh reports whether the entry can be served without a live query.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return len(e.Models) > 0 && now.Sub(e.LastUpdated) < ttl
}

// catalogClient queries a backend's model catalogue. Satisfied by
// *backends.Client.
type catalogClient interface {
	ListModels(ctx context.Context, backendID string, cfg config.GenerationConfig) ([]string, error)
}

// Cache memoizes model catalogues per backend with a TTL. Failed queries
// never discard a previously cached list: a backend that was reachable an
// hour ago keeps serving its stale catalogue instead of an empty one.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	loading map[string]bool

	ttl      time.Duration
	client   catalogClient
	snapshot func() config.GenerationConfig
	logger   *logger.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a model catalogue cache.
func New(client catalogClient, snapshot func() config.GenerationConfig, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = config.DefaultModelCacheTTL
	}

	return &Cache{
		entries:  make(map[string]*Entry),
		loading:  make(map[string]bool),
		ttl:      ttl,
		client:   client,
		snapshot: snapshot,
		logger:   log.WithComponent("model-cache"),
		now:      time.Now,
	}
}

// GetModels returns the cached model list for a backend, querying live only
// when the entry is stale or missing. On failure the previous list, if any,
// is returned and the error is memoized.
func (c *Cache) GetModels(ctx context.Context, backendID string) []string {
	c.mu.RLock()
	entry, exists := c.entries[backendID]
	if exists && entry.Fresh(c.now(), c.ttl) {
		models := copyModels(entry.Models)
		c.mu.RUnlock()
		metrics.ModelCacheHits.WithLabelValues(backendID).Inc()
		return models
	}
	c.mu.RUnlock()

	metrics.ModelCacheMisses.WithLabelValues(backendID).Inc()

	return c.query(ctx, backendID)
}

// RefreshModels queries the backend unconditionally, ignoring freshness. The
// per-backend loading flag is set for the duration of the query and cleared
// on every path out. Overlapping refreshes for the same backend are not
// deduplicated here; callers disable their refresh control while loading.
func (c *Cache) RefreshModels(ctx context.Context, backendID string) []string {
	c.setLoading(backendID, true)
	defer c.setLoading(backendID, false)

	return c.query(ctx, backendID)
}

// query performs the live catalogue fetch and folds the outcome into the
// cache entry.
func (c *Cache) query(ctx context.Context, backendID string) []string {
	models, err := c.client.ListModels(ctx, backendID, c.snapshot())

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[backendID]
	if !exists {
		entry = &Entry{}
		c.entries[backendID] = entry
	}

	if err != nil {
		// Keep the previous list and timestamp; only record the failure.
		entry.LastError = err.Error()

		metrics.CatalogRefreshes.WithLabelValues(backendID, "failure").Inc()
		c.logger.Warn("catalogue query failed, serving cached list",
			slog.String("backend", backendID),
			slog.Int("cached_models", len(entry.Models)),
			slog.String("error", err.Error()))

		return copyModels(entry.Models)
	}

	entry.Models = models
	entry.LastUpdated = c.now()
	entry.LastError = ""

	metrics.CatalogRefreshes.WithLabelValues(backendID, "success").Inc()
	c.logger.Debug("catalogue updated",
		slog.String("backend", backendID),
		slog.Int("models", len(models)))

	return copyModels(models)
}

// Lookup returns a copy of the cache entry for a backend.
func (c *Cache) Lookup(backendID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[backendID]
	if !exists {
		return Entry{}, false
	}

	return Entry{
		Models:      copyModels(entry.Models),
		LastUpdated: entry.LastUpdated,
		LastError:   entry.LastError,
	}, true
}

// IsLoading reports whether a refresh is in flight for a backend.
func (c *Cache) IsLoading(backendID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loading[backendID]
}

// Clear drops every cached entry. Entries are never deleted any other way.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
}

func (c *Cache) setLoading(backendID string, loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading[backendID] = loading
}

func copyModels(models []string) []string {
	if len(models) == 0 {
		return []string{}
	}
	out := make([]string, len(models))
	copy(out, models)
	return out
}
