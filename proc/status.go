package proc

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/sys"
)

// StatusRotator cycles the bot presence through a few live numbers.
type StatusRotator struct {
	presence chat.Presence
	sources  []func(ctx context.Context) string
	last     string
	pick     func(n int) int
}

func NewStatusRotator(presence chat.Presence, reminders *reminder.Store, cache *msgcache.Cache) *StatusRotator {
	started := time.Now()
	return &StatusRotator{
		presence: presence,
		pick:     rand.IntN,
		sources: []func(ctx context.Context) string{
			func(ctx context.Context) string {
				n, err := reminders.Count(ctx)
				if err != nil || n == 0 {
					return ""
				}
				return fmt.Sprintf("Reminders: %d", n)
			},
			func(context.Context) string {
				channels, _ := cache.Stats()
				if channels == 0 {
					return ""
				}
				return fmt.Sprintf("Watching %d channel(s)", channels)
			},
			func(context.Context) string {
				uptime := time.Since(started)
				return fmt.Sprintf("Uptime: %dh %dm", int(uptime.Hours()), int(uptime.Minutes())%60)
			},
		},
	}
}

// Rotate picks a status other than the previous one when it can and applies it.
func (r *StatusRotator) Rotate(ctx context.Context) (string, error) {
	var available []string
	for _, src := range r.sources {
		if text := src(ctx); text != "" {
			available = append(available, text)
		}
	}
	if len(available) == 0 {
		return "", nil
	}

	choices := make([]string, 0, len(available))
	for _, s := range available {
		if s != r.last {
			choices = append(choices, s)
		}
	}
	if len(choices) == 0 {
		choices = available
	}

	status := choices[r.pick(len(choices))]
	if err := r.presence.SetStatus(ctx, status); err != nil {
		sys.LogScheduler(sys.MsgStatusUpdateFail, err)
		return "", err
	}
	r.last = status
	sys.LogDebug(sys.MsgStatusRotated, status)
	return status, nil
}
