package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeineian/navi/sys"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	db, err := sys.OpenDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sys.CloseDatabase(db) })

	c := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	return NewStore(db, WithClock(c.Now)), c
}

func schedule(t *testing.T, s *Store, user snowflake.ID, activity string, left time.Duration) {
	t.Helper()
	_, _, err := s.Upsert(context.Background(), UpsertParams{
		UserID:    user,
		Activity:  activity,
		TimeLeft:  left,
		ChannelID: 1,
		Message:   "go!",
	})
	require.NoError(t, err)
}

func TestUpsert_OverwritesByKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)

	first, created, err := s.Upsert(ctx, UpsertParams{UserID: 7, Activity: "epic", TimeLeft: 600 * time.Second, ChannelID: 1, Message: "go!"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.Exists)
	assert.Equal(t, c.Now().Add(600*time.Second), first.EndTime)

	second, created, err := s.Upsert(ctx, UpsertParams{UserID: 7, Activity: "epic", TimeLeft: 30 * time.Second, ChannelID: 1, Message: "go now!"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := s.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.Now().Add(30*time.Second), list[0].EndTime)
	assert.Equal(t, "go now!", list[0].Message)
	assert.Equal(t, snowflake.ID(1), list[0].ChannelID)
}

func TestUpsert_HuntTwiceLeavesOneRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)

	schedule(t, s, 42, "hunt", time.Minute)
	schedule(t, s, 42, "HUNT", 2*time.Minute)
	schedule(t, s, 7, "hunt", time.Minute)

	n, err := s.CountForUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	r, err := s.Get(ctx, 42, "hunt")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(2*time.Minute), r.EndTime)
	assert.Equal(t, snowflake.ID(42), r.UserID)
}

func TestUpsert_RejectsEmptyActivity(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	_, _, err := s.Upsert(context.Background(), UpsertParams{UserID: 1, Activity: "  "})
	require.Error(t, err)
}

func TestDelete_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newStore(t)
	schedule(t, s, 3, "dungeon", time.Hour)

	deleted, err := s.Delete(ctx, 3, "dungeon")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(ctx, 3, "dungeon")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.Get(ctx, 3, "dungeon")
	require.ErrorIs(t, err, sys.ErrNotFound)

	var dbErr *sys.DatabaseError
	assert.NotErrorAs(t, err, &dbErr)
}

func TestListMatching(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newStore(t)
	schedule(t, s, 1, "hunt", time.Minute)
	schedule(t, s, 1, "quest", time.Hour)
	schedule(t, s, 2, "farm", 10*time.Minute)

	all, err := s.ListMatching(ctx, []string{"hunt", "farm"}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hunt", all[0].Activity)
	assert.Equal(t, "farm", all[1].Activity)

	mine, err := s.ListMatching(ctx, []string{"Hunt", "farm", "quest"}, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := s.ListMatching(ctx, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestShiftByPercentage_OnlyAllowList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)
	schedule(t, s, 1, "hunt", 100*time.Second)
	schedule(t, s, 1, "farm", 10*time.Minute)
	schedule(t, s, 1, "quest", time.Hour)

	moved, err := s.ShiftByPercentage(ctx, Shift{Activities: []string{"hunt", "farm"}, Percent: 10, Direction: Sooner})
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	hunt, err := s.Get(ctx, 1, "hunt")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(90*time.Second), hunt.EndTime)

	farm, err := s.Get(ctx, 1, "farm")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(9*time.Minute), farm.EndTime)

	quest, err := s.Get(ctx, 1, "quest")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(time.Hour), quest.EndTime)
}

func TestShiftByPercentage_UsesRemainingTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)
	schedule(t, s, 1, "adventure", time.Hour)
	c.Advance(40 * time.Minute)

	_, err := s.ShiftByPercentage(ctx, Shift{Activities: []string{"adventure"}, Percent: 50, Direction: Later})
	require.NoError(t, err)

	r, err := s.Get(ctx, 1, "adventure")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(30*time.Minute), r.EndTime)
}

func TestShiftByPercentage_Validation(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	for _, sh := range []Shift{
		{Activities: []string{"hunt"}, Percent: 0},
		{Activities: []string{"hunt"}, Percent: -5, Direction: Later},
		{Activities: []string{"hunt"}, Percent: 150, Direction: Sooner},
	} {
		_, err := s.ShiftByPercentage(context.Background(), sh)
		require.ErrorIs(t, err, ErrInvalidShift)
	}
}

func TestShiftByDuration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)
	schedule(t, s, 1, "hunt", 10*time.Minute)
	schedule(t, s, 1, "training", 5*time.Minute)
	schedule(t, s, 2, "hunt", 10*time.Minute)

	moved, err := s.ShiftByDuration(ctx, Shift{Activities: []string{"hunt", "training"}, UserID: 1, Delta: 8 * time.Minute, Direction: Sooner})
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	hunt, err := s.Get(ctx, 1, "hunt")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(2*time.Minute), hunt.EndTime)

	training, err := s.Get(ctx, 1, "training")
	require.NoError(t, err)
	assert.Equal(t, c.Now(), training.EndTime, "a shift past now is held at now")

	other, err := s.Get(ctx, 2, "hunt")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(10*time.Minute), other.EndTime)

	due, err := s.ClaimDue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "training", due[0].Activity)

	_, err = s.ShiftByDuration(ctx, Shift{Activities: []string{"hunt"}, Delta: 0})
	require.ErrorIs(t, err, ErrInvalidShift)
}

func TestClaimDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)
	schedule(t, s, 1, "hunt", time.Minute)
	schedule(t, s, 2, "hunt", 5*time.Minute)

	due, err := s.ClaimDue(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	c.Advance(time.Minute)
	due, err = s.ClaimDue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, snowflake.ID(1), due[0].UserID)
	assert.Equal(t, "go!", due[0].Message)
	assert.Equal(t, c.Now(), due[0].EndTime)

	due, err = s.ClaimDue(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, due, "claimed reminders are gone")

	n, err := s.CountForUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClaimDue_Limit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)
	schedule(t, s, 1, "hunt", 3*time.Minute)
	schedule(t, s, 2, "hunt", time.Minute)
	schedule(t, s, 3, "hunt", 2*time.Minute)
	schedule(t, s, 4, "hunt", time.Hour)
	c.Advance(5 * time.Minute)

	due, err := s.ClaimDue(ctx, 2)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, snowflake.ID(2), due[0].UserID, "oldest first")
	assert.Equal(t, snowflake.ID(3), due[1].UserID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "unclaimed reminders stay in the store")

	due, err = s.ClaimDue(ctx, 2)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, snowflake.ID(1), due[0].UserID)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, c := newStore(t)
	schedule(t, s, 1, "hunt", time.Minute)
	schedule(t, s, 2, "hunt", time.Minute)
	c.Advance(2 * time.Minute)

	due, err := s.ClaimDue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// user 2 rescheduled while the claim was in flight
	schedule(t, s, 2, "hunt", time.Hour)

	restored, err := s.Restore(ctx, due)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	back, err := s.Get(ctx, 1, "hunt")
	require.NoError(t, err)
	assert.Equal(t, due[0].EndTime, back.EndTime)
	assert.Equal(t, "go!", back.Message)

	kept, err := s.Get(ctx, 2, "hunt")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(time.Hour), kept.EndTime)

	restored, err = s.Restore(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, restored)
}
