// Package timestring turns the game's compound durations ("1d 2h 30m") into time.Duration
// and works out how much of a cooldown is left.
package timestring

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/settings"
)

const MaxDuration = 10 * 365 * 24 * time.Hour

var (
	ErrInvalidFormat = errors.New("timestring: invalid format")
	ErrOverflow      = errors.New("timestring: duration too large")
)

var now = time.Now

var (
	markdown = strings.NewReplacer("*", "", "_", "", "`", "", "~", "", "|", "")
	pattern  = regexp.MustCompile(`^(?:(\d+)\s*w)?\s*(?:(\d+)\s*d)?\s*(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?\s*(?:(\d+)\s*s)?$`)
	units    = [...]time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
)

// Parse reads weeks, days, hours, minutes and seconds in that order. Every unit is optional
// but at least one must be present.
func Parse(text string) (time.Duration, error) {
	clean := strings.ToLower(strings.TrimSpace(markdown.Replace(text)))
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidFormat)
	}

	m := pattern.FindStringSubmatch(clean)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	var (
		total time.Duration
		seen  bool
	)
	for i, unit := range units {
		raw := m[i+1]
		if raw == "" {
			continue
		}
		seen = true

		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n > int64(MaxDuration/unit) {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, text)
		}
		total += time.Duration(n) * unit
		if total > MaxDuration {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, text)
		}
	}
	if !seen {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	return total, nil
}

// Format renders d the way the game writes it, e.g. "1d 2h 3m 4s".
func Format(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Truncate(time.Second)
	var parts []string
	for i, unit := range units {
		if n := d / unit; n > 0 {
			parts = append(parts, strconv.FormatInt(int64(n), 10)+"wdhms"[i:i+1])
			d -= n * unit
		}
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// Elapsed is the time since msg was last written.
func Elapsed(msg chat.Message) time.Duration {
	return now().Sub(msg.Timestamp())
}

// TimeLeft is Parse(text) minus the time since msg was sent or last edited. A negative
// result means the cooldown is already over.
func TimeLeft(msg chat.Message, text string) (time.Duration, error) {
	d, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return d - Elapsed(msg), nil
}

// TimeLeftFromCooldown is the user's full cooldown for activity minus the time since msg.
// Used when msg marks the start of a cooldown rather than quoting what is left.
func TimeLeftFromCooldown(msg chat.Message, user settings.User, activity string) (time.Duration, error) {
	cd, err := user.CooldownFor(activity)
	if err != nil {
		return 0, err
	}
	return cd - Elapsed(msg), nil
}
