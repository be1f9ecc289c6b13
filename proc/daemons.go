package proc

import (
	"context"

	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/sys"
)

// Register adds the scheduler daemon, which sweeps the message cache, delivers
// reminders and rotates the presence on the configured intervals. status may be nil.
func Register(cfg *sys.Config, cache *msgcache.Cache, delivery *Delivery, status *StatusRotator) {
	sys.RegisterDaemon(sys.LogScheduler, func(ctx context.Context) (bool, func(), func()) {
		jobs, err := NewJobs()
		if err != nil {
			sys.LogError(sys.MsgGenericError, err)
			return false, nil, nil
		}

		if err := jobs.Every("cache-sweep", cfg.CacheSweepInterval, func() {
			SweepCache(cache, cfg.CacheMaxAge)
		}); err != nil {
			sys.LogError(sys.MsgGenericError, err)
			return false, nil, nil
		}

		if err := jobs.Every("reminder-delivery", cfg.ReminderPollInterval, func() {
			_, _ = delivery.Tick(ctx)
		}); err != nil {
			sys.LogError(sys.MsgGenericError, err)
			return false, nil, nil
		}

		if status != nil {
			if err := jobs.Every("presence", cfg.StatusInterval, func() {
				_, _ = status.Rotate(ctx)
			}); err != nil {
				sys.LogError(sys.MsgGenericError, err)
				return false, nil, nil
			}
		}

		return true, jobs.Start, func() {
			if err := jobs.Shutdown(); err != nil {
				sys.LogError(sys.MsgGenericError, err)
			}
			sys.LogReminder(sys.MsgReminderSchedulerStopped)
		}
	})
}
