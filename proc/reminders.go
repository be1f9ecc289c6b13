package proc

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/sys"
)

const (
	deliveryWorkers = 4
	deliveryTimeout = 30 * time.Second
	restoreTimeout  = 5 * time.Second
)

// Delivery sends reminders once they are due.
type Delivery struct {
	store   *reminder.Store
	sender  chat.Sender
	limiter *rate.Limiter
	timeout time.Duration
	batch   int
}

type DeliveryOption func(*Delivery)

// WithTickTimeout bounds how long one Tick may spend sending.
func WithTickTimeout(d time.Duration) DeliveryOption {
	return func(dl *Delivery) { dl.timeout = d }
}

// NewDelivery paces sends to perSecond messages. Each tick claims only as many reminders
// as the pace allows inside the tick timeout.
func NewDelivery(store *reminder.Store, sender chat.Sender, perSecond float64, opts ...DeliveryOption) *Delivery {
	d := &Delivery{
		store:   store,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond))),
		timeout: deliveryTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.batch = max(1, d.limiter.Burst()+int(perSecond*d.timeout.Seconds()))
	return d
}

// Tick claims the oldest due reminders and sends them. A claimed reminder whose send fails
// is dropped; one the pace left no time for goes back to the store for the next tick.
// It returns how many were sent.
func (d *Delivery) Tick(parentCtx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(parentCtx, d.timeout)
	defer cancel()

	due, err := d.store.ClaimDue(ctx, d.batch)
	if err != nil {
		sys.LogReminder(sys.MsgReminderFailedToQueryDue, err)
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	var (
		g      errgroup.Group
		sent   atomic.Int64
		mu     sync.Mutex
		unsent []reminder.Reminder
	)
	g.SetLimit(deliveryWorkers)
	for _, r := range due {
		g.Go(func() error {
			if err := d.limiter.Wait(ctx); err != nil {
				mu.Lock()
				unsent = append(unsent, r)
				mu.Unlock()
				return nil
			}
			if err := d.sender.Send(ctx, r.ChannelID, Render(r)); err != nil {
				sys.LogReminder(sys.MsgReminderFailedToSend, r.Activity, r.UserID, err)
				return nil
			}
			sent.Add(1)
			sys.LogReminder(sys.MsgReminderSent, r.Activity, r.UserID)
			return nil
		})
	}
	_ = g.Wait()

	return int(sent.Load()), d.restore(parentCtx, unsent)
}

func (d *Delivery) restore(parentCtx context.Context, unsent []reminder.Reminder) error {
	if len(unsent) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), restoreTimeout)
	defer cancel()

	n, err := d.store.Restore(ctx, unsent)
	if err != nil {
		sys.LogReminder(sys.MsgReminderFailedToRestore, len(unsent), err)
		return err
	}
	sys.LogReminder(sys.MsgReminderRestored, n)
	return nil
}

// Render fills the {user} and {activity} placeholders. Templates without {user} still
// ping the owner.
func Render(r reminder.Reminder) string {
	mention := "<@" + r.UserID.String() + ">"
	text := r.Message
	if !strings.Contains(text, "{user}") {
		text = "{user} " + text
	}
	return strings.NewReplacer("{user}", mention, "{activity}", r.Activity).Replace(text)
}
