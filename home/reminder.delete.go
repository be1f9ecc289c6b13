package home

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/sys"
)

func (c *commands) handleReminderDelete(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	respondEphemeral(event, c.reminderDelete(sys.AppContext, event.User().ID, data.String("activity")))
}

func (c *commands) reminderDelete(ctx context.Context, userID snowflake.ID, activity string) string {
	activity = strings.ToLower(strings.TrimSpace(activity))
	deleted, err := c.Reminders.Delete(ctx, userID, activity)
	if err != nil {
		sys.LogReminder(sys.MsgReminderFailedToDelete, err)
		return sys.ErrReminderDeleteFailed
	}
	if !deleted {
		return fmt.Sprintf(sys.ErrReminderNotFound, activity)
	}
	return fmt.Sprintf(sys.MsgReminderDeleted, activity)
}
