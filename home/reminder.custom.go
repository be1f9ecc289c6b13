package home

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/sys"
	"github.com/leeineian/navi/timestring"
)

const customPrefix = "custom-"

func (c *commands) handleReminderCustom(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	content := c.reminderCustom(sys.AppContext, event.User().ID, event.Channel().ID(),
		data.String("when"), data.String("message"), time.Now().UTC())
	respondEphemeral(event, content)
}

// parseWhen accepts a strict timestring first and falls back to natural language.
func (c *commands) parseWhen(when string, now time.Time) (time.Duration, string) {
	d, err := timestring.Parse(when)
	switch {
	case err == nil:
		return d, ""
	case errors.Is(err, timestring.ErrOverflow):
		return 0, sys.ErrReminderTooLong
	}

	at, err := c.parser.ParseDate(when, now)
	if err != nil || at == nil {
		return 0, sys.ErrReminderParseFailed
	}
	d = at.Sub(now)
	if d <= 0 {
		return 0, sys.ErrReminderPastTime
	}
	if d > timestring.MaxDuration {
		return 0, sys.ErrReminderTooLong
	}
	return d, ""
}

func (c *commands) reminderCustom(ctx context.Context, userID, channelID snowflake.ID, when, message string, now time.Time) string {
	d, problem := c.parseWhen(when, now)
	if problem != "" {
		return problem
	}
	if d <= 0 {
		return sys.ErrReminderPastTime
	}

	message = strings.TrimSpace(message)
	activity := customPrefix + strconv.FormatInt(now.UnixMilli(), 36)
	r, _, err := c.Reminders.Upsert(ctx, reminder.UpsertParams{
		UserID:    userID,
		Activity:  activity,
		TimeLeft:  d,
		ChannelID: channelID,
		Message:   "{user} " + message,
	})
	if err != nil {
		sys.LogReminder(sys.MsgReminderFailedToSave, err)
		return sys.ErrReminderSaveFailed
	}
	return fmt.Sprintf(sys.MsgReminderSetSuccess, r.EndTime.Unix(), message)
}
