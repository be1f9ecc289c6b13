// Package settings stores per-user preferences: whether tracking is on, the donor tier,
// and per-activity alert overrides.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/jmoiron/sqlx"

	"github.com/leeineian/navi/sys"
)

// ErrNotRegistered means the user never opted in. Callers skip the feature silently.
var ErrNotRegistered = fmt.Errorf("settings: user not registered: %w", sys.ErrNotFound)

const (
	MinMultiplier = 0.01
	MaxMultiplier = 10.0
)

type Alert struct {
	Activity   string  `db:"activity"`
	Enabled    bool    `db:"enabled"`
	Multiplier float64 `db:"multiplier"`
	Message    string  `db:"message"`
}

type User struct {
	ID        snowflake.ID
	Enabled   bool
	DonorTier DonorTier
	CreatedAt time.Time
	Alerts    map[string]Alert
}

// Alert returns the override for activity, or the default of enabled at 1x.
func (u User) Alert(activity string) Alert {
	if a, ok := u.Alerts[activity]; ok {
		return a
	}
	return Alert{Activity: activity, Enabled: true, Multiplier: 1.0}
}

// Tracks reports whether reminders for activity should be created for this user.
func (u User) Tracks(activity string) bool {
	return u.Enabled && u.Alert(activity).Enabled
}

// Update changes only the non-nil fields.
type Update struct {
	Enabled   *bool
	DonorTier *DonorTier
}

// AlertUpdate changes only the non-nil fields.
type AlertUpdate struct {
	Enabled    *bool
	Multiplier *float64
	Message    *string
}

type userRow struct {
	UserID    string    `db:"user_id"`
	Enabled   bool      `db:"enabled"`
	DonorTier int       `db:"donor_tier"`
	CreatedAt time.Time `db:"created_at"`
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Get loads a user and their alert overrides.
func (s *Store) Get(ctx context.Context, userID snowflake.ID) (*User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, enabled, donor_tier, created_at
		FROM users WHERE user_id = ?
	`, userID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, sys.DBError("select", "users", err)
	}

	var alerts []Alert
	err = s.db.SelectContext(ctx, &alerts, `
		SELECT activity, enabled, multiplier, message
		FROM alerts WHERE user_id = ?
	`, userID.String())
	if err != nil {
		return nil, sys.DBError("select", "alerts", err)
	}

	u := &User{
		ID:        userID,
		Enabled:   row.Enabled,
		DonorTier: DonorTier(row.DonorTier),
		CreatedAt: row.CreatedAt,
		Alerts:    make(map[string]Alert, len(alerts)),
	}
	for _, a := range alerts {
		u.Alerts[a.Activity] = a
	}
	return u, nil
}

// Register creates the user with tracking on. Registering twice turns tracking back on
// and keeps everything else.
func (s *Store) Register(ctx context.Context, userID snowflake.ID) (*User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, enabled) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET enabled = 1
	`, userID.String())
	if err != nil {
		return nil, sys.DBError("upsert", "users", err)
	}
	return s.Get(ctx, userID)
}

// Update applies the set fields of upd. Unregistered users get ErrNotRegistered.
func (s *Store) Update(ctx context.Context, userID snowflake.ID, upd Update) (*User, error) {
	var (
		sets []string
		args []any
	)
	if upd.Enabled != nil {
		sets = append(sets, "enabled = ?")
		args = append(args, *upd.Enabled)
	}
	if upd.DonorTier != nil {
		v := *upd.DonorTier
		if !v.Valid() {
			return nil, fmt.Errorf("settings: invalid donor tier %d", int(v))
		}
		sets = append(sets, "donor_tier = ?")
		args = append(args, int(v))
	}
	if len(sets) == 0 {
		return s.Get(ctx, userID)
	}

	args = append(args, userID.String())
	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE user_id = ?", args...)
	if err != nil {
		return nil, sys.DBError("update", "users", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotRegistered
	}
	return s.Get(ctx, userID)
}

// SetAlert overrides one activity for a registered user.
func (s *Store) SetAlert(ctx context.Context, userID snowflake.ID, activity string, upd AlertUpdate) (Alert, error) {
	if _, err := CooldownFor(activity); err != nil {
		return Alert{}, err
	}
	activity = strings.ToLower(activity)

	u, err := s.Get(ctx, userID)
	if err != nil {
		return Alert{}, err
	}

	alert := u.Alert(activity)
	if upd.Enabled != nil {
		alert.Enabled = *upd.Enabled
	}
	if upd.Multiplier != nil {
		v := *upd.Multiplier
		if v < MinMultiplier || v > MaxMultiplier {
			return Alert{}, fmt.Errorf("settings: multiplier %.2f out of range", v)
		}
		alert.Multiplier = v
	}
	if upd.Message != nil {
		alert.Message = *upd.Message
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (user_id, activity, enabled, multiplier, message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, activity) DO UPDATE SET
			enabled = excluded.enabled,
			multiplier = excluded.multiplier,
			message = excluded.message
	`, userID.String(), activity, alert.Enabled, alert.Multiplier, alert.Message)
	if err != nil {
		return Alert{}, sys.DBError("upsert", "alerts", err)
	}
	return alert, nil
}

// CooldownFor returns the user's effective cooldown for activity before any time has passed.
func (u User) CooldownFor(activity string) (time.Duration, error) {
	cd, err := CooldownFor(activity)
	if err != nil {
		return 0, err
	}
	factor := u.Alert(strings.ToLower(activity)).Multiplier
	if cd.DonorAffected {
		factor *= u.DonorTier.Multiplier()
	}
	return time.Duration(math.Round(float64(cd.Base) * factor)), nil
}
