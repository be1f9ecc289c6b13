// Package reminder persists one pending reminder per (user, activity) and moves them
// around when the game shortens or lengthens cooldowns.
package reminder

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/leeineian/navi/sys"
)

const table = "reminders"

var ErrInvalidShift = errors.New("reminder: invalid shift")

type Reminder struct {
	ID        int64
	UserID    snowflake.ID
	Activity  string
	EndTime   time.Time
	ChannelID snowflake.ID
	Message   string
	CreatedAt time.Time

	// Exists is true for reminders read back from the store.
	Exists bool
}

// UpsertParams schedules Activity for UserID TimeLeft from now. TimeLeft must not be negative.
type UpsertParams struct {
	UserID    snowflake.ID
	Activity  string
	TimeLeft  time.Duration
	ChannelID snowflake.ID
	Message   string
}

type Direction int

const (
	Sooner Direction = iota
	Later
)

func (d Direction) String() string {
	if d == Later {
		return "later"
	}
	return "sooner"
}

// Shift selects reminders by activity and, unless UserID is zero, by user. ShiftByPercentage
// reads Percent and ShiftByDuration reads Delta.
type Shift struct {
	Activities []string
	UserID     snowflake.ID
	Percent    float64
	Delta      time.Duration
	Direction  Direction
}

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Times are kept in UTC at second precision so that SQL comparisons on the text form hold.
func (s *Store) clock() time.Time {
	return dbTime(s.now())
}

func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

type row struct {
	ID        int64   `db:"id"`
	UserID    string  `db:"user_id"`
	Activity  string  `db:"activity"`
	EndTime   sqlTime `db:"end_time"`
	ChannelID string  `db:"channel_id"`
	Message   string  `db:"message"`
	CreatedAt sqlTime `db:"created_at"`
}

func (r row) reminder() Reminder {
	out := Reminder{
		ID:        r.ID,
		Activity:  r.Activity,
		EndTime:   r.EndTime.Time,
		Message:   r.Message,
		CreatedAt: r.CreatedAt.Time,
		Exists:    true,
	}
	out.UserID, _ = snowflake.Parse(r.UserID)
	out.ChannelID, _ = snowflake.Parse(r.ChannelID)
	return out
}

func reminders(rows []row) []Reminder {
	out := make([]Reminder, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.reminder())
	}
	return out
}

// sqlTime scans DATETIME columns whether the driver hands back a time.Time or the raw text,
// which happens for RETURNING clauses.
type sqlTime struct {
	time.Time
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("reminder: cannot scan %T into time", src)
}

func (t *sqlTime) parse(s string) error {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("reminder: unrecognized time %q", s)
}

const columns = "id, user_id, activity, end_time, channel_id, message, created_at"

// Upsert schedules a reminder, replacing the end time, channel and message of an existing
// one for the same user and activity. created reports whether no reminder existed before.
func (s *Store) Upsert(ctx context.Context, p UpsertParams) (*Reminder, bool, error) {
	activity := strings.ToLower(strings.TrimSpace(p.Activity))
	if activity == "" {
		return nil, false, errors.New("reminder: empty activity")
	}
	endTime := dbTime(s.now().Add(p.TimeLeft))

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, sys.DBError("begin", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	err = tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM reminders WHERE user_id = ? AND activity = ?`,
		p.UserID.String(), activity)
	if err != nil {
		return nil, false, sys.DBError("select", table, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reminders (user_id, activity, end_time, channel_id, message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, activity) DO UPDATE SET
			end_time = excluded.end_time,
			channel_id = excluded.channel_id,
			message = excluded.message
	`, p.UserID.String(), activity, endTime, p.ChannelID.String(), p.Message)
	if err != nil {
		return nil, false, sys.DBError("upsert", table, err)
	}

	var r row
	err = tx.GetContext(ctx, &r, `SELECT `+columns+` FROM reminders WHERE user_id = ? AND activity = ?`,
		p.UserID.String(), activity)
	if err != nil {
		return nil, false, sys.DBError("select", table, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, sys.DBError("commit", table, err)
	}

	out := r.reminder()
	return &out, existing == 0, nil
}

// Delete removes the reminder if there is one. Deleting nothing is not an error.
func (s *Store) Delete(ctx context.Context, userID snowflake.ID, activity string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ? AND activity = ?`,
		userID.String(), strings.ToLower(activity))
	if err != nil {
		return false, sys.DBError("delete", table, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Get returns sys.ErrNotFound when no reminder is scheduled.
func (s *Store) Get(ctx context.Context, userID snowflake.ID, activity string) (*Reminder, error) {
	var r row
	err := s.db.GetContext(ctx, &r, `SELECT `+columns+` FROM reminders WHERE user_id = ? AND activity = ?`,
		userID.String(), strings.ToLower(activity))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sys.ErrNotFound
	}
	if err != nil {
		return nil, sys.DBError("select", table, err)
	}
	out := r.reminder()
	return &out, nil
}

// ListMatching returns reminders whose activity is in activities, for userID or everyone
// when userID is zero. An empty allow-list matches nothing.
func (s *Store) ListMatching(ctx context.Context, activities []string, userID snowflake.ID) ([]Reminder, error) {
	rows, err := selectMatching(ctx, s.db, activities, userID)
	if err != nil {
		return nil, err
	}
	return reminders(rows), nil
}

func (s *Store) ListForUser(ctx context.Context, userID snowflake.ID) ([]Reminder, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+columns+` FROM reminders WHERE user_id = ? ORDER BY end_time ASC, activity ASC
	`, userID.String())
	if err != nil {
		return nil, sys.DBError("select", table, err)
	}
	return reminders(rows), nil
}

func (s *Store) CountForUser(ctx context.Context, userID snowflake.ID) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM reminders WHERE user_id = ?`, userID.String())
	return n, sys.DBError("count", table, err)
}

// Count returns the number of pending reminders across all users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM reminders`)
	return n, sys.DBError("count", table, err)
}

// ClaimDue deletes and returns up to limit reminders whose end time has passed, oldest
// first. A limit of zero or less claims all of them. A reminder is handed out at most once
// even with several pollers.
func (s *Store) ClaimDue(ctx context.Context, limit int) ([]Reminder, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows, `
		DELETE FROM reminders
		WHERE id IN (
			SELECT id FROM reminders
			WHERE end_time <= ?
			ORDER BY end_time, id
			LIMIT ?
		)
		RETURNING `+columns, s.clock(), limit)
	if err != nil {
		return nil, sys.DBError("claim", table, err)
	}
	out := reminders(rows)
	slices.SortFunc(out, func(a, b Reminder) int {
		if c := a.EndTime.Compare(b.EndTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Restore puts claimed reminders back with their original end times. A reminder that was
// rescheduled in the meantime keeps the newer schedule. It returns how many were restored.
func (s *Store) Restore(ctx context.Context, rs []Reminder) (int, error) {
	if len(rs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, sys.DBError("begin", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	restored := 0
	for _, r := range rs {
		created := r.CreatedAt
		if created.IsZero() {
			created = s.now()
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO reminders (user_id, activity, end_time, channel_id, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, activity) DO NOTHING
		`, r.UserID.String(), r.Activity, dbTime(r.EndTime), r.ChannelID.String(), r.Message, dbTime(created))
		if err != nil {
			return 0, sys.DBError("restore", table, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			restored++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, sys.DBError("commit", table, err)
	}
	return restored, nil
}

// ShiftByPercentage moves each matching reminder by Percent of the time it has left.
// It returns how many reminders were moved.
func (s *Store) ShiftByPercentage(ctx context.Context, sh Shift) (int, error) {
	if sh.Percent <= 0 || (sh.Direction == Sooner && sh.Percent > 100) {
		return 0, fmt.Errorf("%w: percent %.2f", ErrInvalidShift, sh.Percent)
	}
	return s.shift(ctx, sh, func(remaining time.Duration) time.Duration {
		return time.Duration(float64(remaining) * sh.Percent / 100)
	})
}

// ShiftByDuration moves each matching reminder by Delta.
func (s *Store) ShiftByDuration(ctx context.Context, sh Shift) (int, error) {
	if sh.Delta <= 0 {
		return 0, fmt.Errorf("%w: delta %s", ErrInvalidShift, sh.Delta)
	}
	return s.shift(ctx, sh, func(time.Duration) time.Duration { return sh.Delta })
}

// shift applies delta to every matching reminder in one transaction. Sooner results that
// land at or before now are set to now so the next delivery tick fires them.
func (s *Store) shift(ctx context.Context, sh Shift, delta func(remaining time.Duration) time.Duration) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, sys.DBError("begin", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := selectMatching(ctx, tx, sh.Activities, sh.UserID)
	if err != nil {
		return 0, err
	}

	now := s.clock()
	moved := 0
	for _, r := range rows {
		end := r.EndTime.Time
		remaining := max(end.Sub(now), 0)

		d := delta(remaining)
		if sh.Direction == Sooner {
			d = -d
		}
		next := dbTime(end.Add(d))
		if !next.After(now) {
			next = now
		}
		if next.Equal(end) {
			continue
		}

		if _, err := tx.ExecContext(ctx, `UPDATE reminders SET end_time = ? WHERE id = ?`, next, r.ID); err != nil {
			return 0, sys.DBError("update", table, err)
		}
		moved++
	}

	if err := tx.Commit(); err != nil {
		return 0, sys.DBError("commit", table, err)
	}
	return moved, nil
}

func selectMatching(ctx context.Context, q sqlx.QueryerContext, activities []string, userID snowflake.ID) ([]row, error) {
	if len(activities) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(activities))
	for i, a := range activities {
		lowered[i] = strings.ToLower(a)
	}

	query := `SELECT ` + columns + ` FROM reminders WHERE activity IN (?)`
	args := []any{lowered}
	if userID != 0 {
		query += ` AND user_id = ?`
		args = append(args, userID.String())
	}
	query += ` ORDER BY end_time ASC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("reminder: build query: %w", err)
	}

	var rows []row
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, sys.DBError("select", table, err)
	}
	return rows, nil
}
