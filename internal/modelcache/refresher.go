package modelcache

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/notesmith/autotitle/internal/logger"
)

// Refresher keeps backend catalogues warm by refreshing them on a cron
// schedule, so interactive callers rarely pay for a live query.
type Refresher struct {
	cache    *Cache
	cron     *cron.Cron
	backends []string
	logger   *logger.Logger
}

// NewRefresher schedules a periodic refresh of the given backends. schedule
// is a standard cron spec (e.g. "@hourly").
func NewRefresher(cache *Cache, schedule string, backendIDs []string, log *logger.Logger) (*Refresher, error) {
	r := &Refresher{
		cache:    cache,
		cron:     cron.New(),
		backends: backendIDs,
		logger:   log.WithComponent("catalog-refresher"),
	}

	if _, err := r.cron.AddFunc(schedule, r.refreshAll); err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins the refresh schedule.
func (r *Refresher) Start() {
	r.logger.Info("catalogue refresher started",
		slog.Int("backends", len(r.backends)))
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("catalogue refresher stopped")
}

// refreshAll refreshes each backend in turn. Backends are refreshed
// serially to keep at most one catalogue query in flight.
func (r *Refresher) refreshAll() {
	for _, backendID := range r.backends {
		models := r.cache.RefreshModels(context.Background(), backendID)
		r.logger.Debug("scheduled refresh completed",
			slog.String("backend", backendID),
			slog.Int("models", len(models)))
	}
}
