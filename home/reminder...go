package home

import (
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/leeineian/navi/sys"
)

func (c *commands) registerReminder() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "reminder",
		Description: "Manage your reminders",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "list",
				Description: "Show your active reminders",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "custom",
				Description: "Set a reminder of your own",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "when",
						Description: "A timestring like 1h30m, or a phrase like 'tomorrow at 9am'",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "message",
						Description: "What to remind you about",
						Required:    true,
						MaxLength:   intPtr(200),
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "delete",
				Description: "Cancel one of your reminders",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:         "activity",
						Description:  "The reminder to cancel",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
		},
	}, c.handleReminder)

	sys.RegisterAutocompleteHandler("reminder", c.handleReminderAutocomplete)
}

func intPtr(n int) *int { return &n }

func (c *commands) handleReminder(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	subCmd := data.SubCommandName
	if subCmd == nil {
		return
	}

	switch *subCmd {
	case "list":
		c.handleReminderList(event)
	case "custom":
		c.handleReminderCustom(event, data)
	case "delete":
		c.handleReminderDelete(event, data)
	}
}

func (c *commands) handleReminderAutocomplete(event *events.AutocompleteInteractionCreate) {
	focused := event.Data.Focused()
	if focused.Name != "activity" {
		_ = event.AutocompleteResult(nil)
		return
	}

	list, err := c.Reminders.ListForUser(sys.AppContext, event.User().ID)
	if err != nil {
		_ = event.AutocompleteResult(nil)
		return
	}

	query := strings.ToLower(focused.String())
	var choices []discord.AutocompleteChoice
	for _, r := range list {
		if len(choices) >= 25 {
			break
		}
		if query != "" && !strings.Contains(r.Activity, query) {
			continue
		}
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  Truncate(r.Activity+" - "+r.EndTime.Format("Jan 2 15:04 UTC"), 100),
			Value: r.Activity,
		})
	}
	_ = event.AutocompleteResult(choices)
}
