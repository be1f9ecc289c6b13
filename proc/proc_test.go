package proc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/sys"
)

type sent struct {
	channel snowflake.ID
	content string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
	fail snowflake.ID
}

func (f *fakeSender) Send(_ context.Context, channelID snowflake.ID, content string) error {
	if channelID == f.fail {
		return errors.New("missing access")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{channelID, content})
	return nil
}

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "placeholders", template: "{user} time for {activity}!", want: "<@42> time for hunt!"},
		{name: "no mention", template: "go hunt", want: "<@42> go hunt"},
		{name: "default", template: sys.MsgReminderDefaultTemplate, want: "<@42> Hey! It's time for `%s`!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(reminder.Reminder{UserID: 42, Activity: "hunt", Message: tt.template})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDelivery_Tick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sys.OpenDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sys.CloseDatabase(db) })

	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	var offset atomic.Int64
	store := reminder.NewStore(db, reminder.WithClock(func() time.Time {
		return now.Add(time.Duration(offset.Load()))
	}))

	for _, p := range []reminder.UpsertParams{
		{UserID: 1, Activity: "hunt", TimeLeft: time.Minute, ChannelID: 10, Message: "{user} {activity}"},
		{UserID: 2, Activity: "hunt", TimeLeft: time.Minute, ChannelID: 66, Message: "{user} {activity}"},
		{UserID: 3, Activity: "daily", TimeLeft: time.Hour, ChannelID: 10, Message: "{user} {activity}"},
	} {
		_, _, err := store.Upsert(ctx, p)
		require.NoError(t, err)
	}

	sender := &fakeSender{fail: 66}
	d := NewDelivery(store, sender, 100)

	n, err := d.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	offset.Store(int64(2 * time.Minute))
	n, err = d.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []sent{{10, "<@1> hunt"}}, sender.sent)

	left, err := store.CountForUser(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, left, "failed sends are not retried")

	left, err = store.CountForUser(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, left)
}

func TestDelivery_TickLeavesBacklogInStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sys.OpenDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sys.CloseDatabase(db) })

	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	var offset atomic.Int64
	store := reminder.NewStore(db, reminder.WithClock(func() time.Time {
		return now.Add(time.Duration(offset.Load()))
	}))
	for user := snowflake.ID(1); user <= 5; user++ {
		_, _, err := store.Upsert(ctx, reminder.UpsertParams{
			UserID:    user,
			Activity:  "hunt",
			TimeLeft:  time.Duration(user) * time.Second,
			ChannelID: 10,
			Message:   "{user} {activity}",
		})
		require.NoError(t, err)
	}
	offset.Store(int64(time.Minute))

	// one send every 20s; a 100ms tick has room for the burst token only
	sender := &fakeSender{}
	d := NewDelivery(store, sender, 0.05, WithTickTimeout(100*time.Millisecond))

	n, err := d.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []sent{{10, "<@1> hunt"}}, sender.sent)

	left, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, left)

	// no token left: the claimed reminder goes back untouched
	n, err = d.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	left, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, left)

	r, err := store.Get(ctx, 2, "hunt")
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Second), r.EndTime)
}

func TestSweepCache(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := msgcache.New()
	cache.Store(chat.Message{ID: 1, ChannelID: 5, CreatedAt: now.Add(-time.Hour)})
	cache.Store(chat.Message{ID: 2, ChannelID: 5, CreatedAt: now})

	assert.Equal(t, 1, SweepCache(cache, 10*time.Minute))
	assert.Equal(t, 0, SweepCache(cache, 10*time.Minute))
}

func TestJobs_RunsTask(t *testing.T) {
	t.Parallel()

	jobs, err := NewJobs()
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, jobs.Every("tick", 20*time.Millisecond, func() { runs.Add(1) }))
	jobs.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, jobs.Shutdown())
}

type fakePresence struct {
	statuses []string
	err      error
}

func (f *fakePresence) SetStatus(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.statuses = append(f.statuses, text)
	return nil
}

func TestStatusRotator_SkipsEmptyAndRepeats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sys.OpenDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sys.CloseDatabase(db) })

	store := reminder.NewStore(db)
	cache := msgcache.New()
	presence := &fakePresence{}
	r := NewStatusRotator(presence, store, cache)
	r.pick = func(int) int { return 0 }

	// only uptime has something to say
	first, err := r.Rotate(ctx)
	require.NoError(t, err)
	assert.Contains(t, first, "Uptime")

	_, _, err = store.Upsert(ctx, reminder.UpsertParams{UserID: 1, Activity: "hunt", TimeLeft: time.Minute, ChannelID: 10})
	require.NoError(t, err)
	cache.Store(chat.Message{ID: 1, ChannelID: 5, CreatedAt: time.Now()})

	second, err := r.Rotate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Reminders: 1", second)

	third, err := r.Rotate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Watching 1 channel(s)", third, "the previous status is not repeated")

	assert.Equal(t, []string{first, second, third}, presence.statuses)
}

func TestStatusRotator_PresenceError(t *testing.T) {
	t.Parallel()

	presence := &fakePresence{err: errors.New("gateway closed")}
	r := &StatusRotator{
		presence: presence,
		pick:     func(int) int { return 0 },
		sources:  []func(context.Context) string{func(context.Context) string { return "x" }},
	}

	_, err := r.Rotate(context.Background())
	require.Error(t, err)
	assert.Empty(t, r.last)
}
