// Package home holds the slash commands players use to manage their reminders and settings.
package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/sho0pi/naturaltime"

	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
)

type Deps struct {
	Reminders *reminder.Store
	Settings  *settings.Store
	Cache     *msgcache.Cache
	Config    *sys.Config
}

type commands struct {
	Deps
	parser *naturaltime.Parser
}

func newCommands(deps Deps) (*commands, error) {
	parser, err := naturaltime.New()
	if err != nil {
		return nil, fmt.Errorf(sys.MsgReminderNaturalTimeFail, err)
	}
	return &commands{Deps: deps, parser: parser}, nil
}

// Register adds every command to the loader.
func Register(deps Deps) error {
	c, err := newCommands(deps)
	if err != nil {
		return err
	}
	c.registerReminder()
	c.registerSettings()
	c.registerDebug()
	return nil
}

// respondEphemeral answers with a private components v2 container.
func respondEphemeral(event *events.ApplicationCommandInteractionCreate, content string) {
	err := event.CreateMessage(discord.NewMessageCreate().
		WithIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
			),
		).
		WithEphemeral(true))
	if err != nil {
		sys.LogReminder(sys.MsgReminderRespondError, err)
	}
}

// Truncate cuts s to maxLen runes with a trailing ellipsis.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
