package track

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leeineian/navi/attrib"
	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
	"github.com/leeineian/navi/timestring"
)

// extractor recognizes one kind of game message. match must be cheap; handle does the work.
type extractor struct {
	name   string
	match  func(msg chat.Message) bool
	handle func(ctx context.Context, t *Tracker, msg chat.Message) error
}

var (
	waitRe        = regexp.MustCompile(`(?i)wait at least\s+\*\*([^*]+)\*\*`)
	authorCmdRe   = regexp.MustCompile(`[—-]\s*([a-z]+)\s*$`)
	startRe       = regexp.MustCompile(`^\*\*[^*]+\*\*\s+(found|is training|got|planted|harvested|is now in the dungeon)\b`)
	resetRe       = regexp.MustCompile(`(?i)^\*\*[^*]+\*\*'s\s+([a-z]+)\s+cooldown\s+(?:was|has been)\s+reset`)
	cookieRe      = regexp.MustCompile(`(?i)^\*\*[^*]+\*\*\s+ate a time cookie`)
	cookieDeltaRe = regexp.MustCompile(`\*\*([0-9wdhms ]+)\*\*\s*[.!]?\s*$`)
	eventRe       = regexp.MustCompile(`(?i)all cooldowns are (reduced|increased) by\s+\*\*(\d+(?:\.\d+)?)%\*\*`)
)

var startActivities = map[string]string{
	"found":                 "hunt",
	"is training":           "training",
	"got":                   "work",
	"planted":               "farm",
	"harvested":             "farm",
	"is now in the dungeon": "dungeon",
}

func defaultExtractors() []extractor {
	return []extractor{
		{name: "event", match: matchEvent, handle: handleEvent},
		{name: "cooldown", match: matchCooldownWait, handle: handleCooldownWait},
		{name: "reset", match: matchContent(resetRe), handle: handleReset},
		{name: "time-cookie", match: matchContent(cookieRe), handle: handleTimeCookie},
		{name: "start", match: matchContent(startRe), handle: handleStart},
	}
}

func matchContent(re *regexp.Regexp) func(chat.Message) bool {
	return func(msg chat.Message) bool { return re.MatchString(msg.Content) }
}

// --- Cooldown still running ---

func matchCooldownWait(msg chat.Message) bool {
	embed, ok := msg.FirstEmbed()
	return ok && waitRe.MatchString(embed.Text())
}

func handleCooldownWait(ctx context.Context, t *Tracker, msg chat.Message) error {
	embed, _ := msg.FirstEmbed()

	m := authorCmdRe.FindStringSubmatch(strings.ToLower(embed.AuthorName))
	if m == nil {
		return sys.PatternError("cooldown activity")
	}
	activity := m[1]
	if _, err := settings.CooldownFor(activity); err != nil {
		return sys.PatternError("cooldown activity " + activity)
	}

	wait := waitRe.FindStringSubmatch(embed.Text())
	if wait == nil {
		return sys.PatternError("cooldown time")
	}

	user, err := t.resolver.Resolve(ctx, msg, attrib.Strategy{
		Extract: attrib.FirstOf(attrib.FromAvatarURL(), attrib.FromEmbedAuthor(nil)),
		Pattern: t.patterns[activity],
	})
	if err != nil {
		return err
	}

	profile, err := t.profile(ctx, user, activity)
	if err != nil || profile == nil {
		return err
	}

	left, err := timestring.TimeLeft(msg, wait[1])
	if err != nil {
		return fmt.Errorf("%w: %w", sys.ErrPatternNotFound, err)
	}
	return t.schedule(ctx, msg, user, *profile, activity, left)
}

// --- Cooldown just started ---

func handleStart(ctx context.Context, t *Tracker, msg chat.Message) error {
	m := startRe.FindStringSubmatch(msg.Content)
	if m == nil {
		return sys.PatternError("start verb")
	}
	activity := startActivities[m[1]]

	user, err := t.resolver.Resolve(ctx, msg, attrib.Strategy{
		Extract: attrib.FromBoldName(),
		Pattern: t.patterns[activity],
	})
	if err != nil {
		return err
	}

	profile, err := t.profile(ctx, user, activity)
	if err != nil || profile == nil {
		return err
	}

	left, err := timestring.TimeLeftFromCooldown(msg, *profile, activity)
	if err != nil {
		return err
	}
	return t.schedule(ctx, msg, user, *profile, activity, left)
}

// --- Cooldown cancelled by the game ---

func handleReset(ctx context.Context, t *Tracker, msg chat.Message) error {
	m := resetRe.FindStringSubmatch(msg.Content)
	if m == nil {
		return sys.PatternError("reset activity")
	}
	activity := strings.ToLower(m[1])

	user, err := t.resolver.Resolve(ctx, msg, attrib.Strategy{Extract: attrib.FromBoldName()})
	if err != nil {
		return err
	}
	if _, err := t.settings.Get(ctx, user.ID); err != nil {
		return err
	}

	deleted, err := t.reminders.Delete(ctx, user.ID, activity)
	if err != nil {
		return err
	}
	if deleted {
		sys.LogTracker(sys.MsgTrackerDeleted, activity, user.ID)
	}
	return nil
}

// --- Time cookie ---

func handleTimeCookie(ctx context.Context, t *Tracker, msg chat.Message) error {
	m := cookieDeltaRe.FindStringSubmatch(msg.Content)
	if m == nil {
		return sys.PatternError("time cookie duration")
	}
	delta, err := timestring.Parse(m[1])
	if err != nil {
		return fmt.Errorf("%w: %w", sys.ErrPatternNotFound, err)
	}

	user, err := t.resolver.Resolve(ctx, msg, attrib.Strategy{
		Extract: attrib.FromBoldName(),
		Pattern: t.patterns[timeCookieKey],
	})
	if err != nil {
		return err
	}
	profile, err := t.settings.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	if !profile.Enabled {
		return nil
	}

	moved, err := t.reminders.ShiftByDuration(ctx, reminder.Shift{
		Activities: settings.Activities(),
		UserID:     user.ID,
		Delta:      delta,
		Direction:  reminder.Sooner,
	})
	if err != nil {
		return err
	}
	sys.LogTracker(sys.MsgTrackerShifted, moved, "time cookie "+timestring.Format(delta)+" for "+user.ID.String())
	return nil
}

// --- Global event ---

func matchEvent(msg chat.Message) bool {
	return eventRe.MatchString(eventText(msg))
}

func eventText(msg chat.Message) string {
	if embed, ok := msg.FirstEmbed(); ok {
		return msg.Content + "\n" + embed.Text()
	}
	return msg.Content
}

func handleEvent(ctx context.Context, t *Tracker, msg chat.Message) error {
	m := eventRe.FindStringSubmatch(eventText(msg))
	if m == nil {
		return sys.PatternError("event percentage")
	}
	percent, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return sys.PatternError("event percentage " + m[2])
	}

	dir := reminder.Sooner
	if strings.EqualFold(m[1], "increased") {
		dir = reminder.Later
	}

	moved, err := t.reminders.ShiftByPercentage(ctx, reminder.Shift{
		Activities: settings.EventActivities,
		Percent:    percent,
		Direction:  dir,
	})
	if err != nil {
		return err
	}
	sys.LogTracker(sys.MsgTrackerShifted, moved, fmt.Sprintf("%s %.0f%%", dir, percent))
	return nil
}
