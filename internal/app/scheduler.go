package app

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// NewScheduler registers background jobs. The returned cron is not started.
func NewScheduler(deps *Dependencies, purgeSpec string) (*cron.Cron, error) {
	c := cron.New()
	if deps.MemoryCache == nil {
		return c, nil
	}
	_, err := c.AddFunc(purgeSpec, func() {
		purged := deps.MemoryCache.PurgeExpired()
		if purged > 0 {
			log.Debugf("purged %d expired calendar cache entries", purged)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cache purge schedule %q: %w", purgeSpec, err)
	}
	return c, nil
}
