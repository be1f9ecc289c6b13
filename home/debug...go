package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"

	"github.com/leeineian/navi/proc"
	"github.com/leeineian/navi/sys"
)

func (c *commands) registerDebug() {
	adminPerm := discord.PermissionAdministrator

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "debug",
		Description:              "Inspect the bot",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "cache",
				Description: "Show the command cache and sweep it now",
			},
		},
	}, c.handleDebug)
}

func (c *commands) handleDebug(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	subCmd := data.SubCommandName
	if subCmd == nil {
		return
	}

	switch *subCmd {
	case "cache":
		respondEphemeral(event, c.debugCache())
	}
}

func (c *commands) debugCache() string {
	swept := proc.SweepCache(c.Cache, c.Config.CacheMaxAge)
	channels, messages := c.Cache.Stats()
	return fmt.Sprintf(sys.MsgDebugCacheStats, channels, messages, swept)
}
