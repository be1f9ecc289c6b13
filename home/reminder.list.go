package home

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/sys"
)

func (c *commands) handleReminderList(event *events.ApplicationCommandInteractionCreate) {
	respondEphemeral(event, c.reminderListText(sys.AppContext, event.User().ID))
}

func (c *commands) reminderListText(ctx context.Context, userID snowflake.ID) string {
	reminders, err := c.Reminders.ListForUser(ctx, userID)
	if err != nil {
		sys.LogReminder(sys.MsgReminderFailedToQuery, err)
		return sys.ErrReminderFetchFailed
	}
	if len(reminders) == 0 {
		return sys.MsgReminderNoActive
	}

	var content strings.Builder
	content.WriteString(fmt.Sprintf(sys.MsgReminderListHeader, len(reminders)))
	for i, r := range reminders {
		content.WriteString(fmt.Sprintf(sys.MsgReminderListItem, i+1, r.Activity, r.EndTime.Unix()))
	}
	return content.String()
}
