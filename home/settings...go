package home

import (
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
)

func (c *commands) registerSettings() {
	tierChoices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(settings.DonorTiers()))
	for _, tier := range settings.DonorTiers() {
		tierChoices = append(tierChoices, discord.ApplicationCommandOptionChoiceString{Name: tier.String(), Value: tier.String()})
	}

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "settings",
		Description: "Your reminder settings",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "view",
				Description: "Show your settings",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "on",
				Description: "Start tracking your cooldowns",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "off",
				Description: "Stop tracking your cooldowns",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "donor",
				Description: "Set your donor tier so cooldowns are timed correctly",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "tier",
						Description: "Your donor tier",
						Required:    true,
						Choices:     tierChoices,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "alert",
				Description: "Tune the reminder for one activity",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:         "activity",
						Description:  "The activity",
						Required:     true,
						Autocomplete: true,
					},
					discord.ApplicationCommandOptionBool{
						Name:        "enabled",
						Description: "Whether to remind you",
						Required:    false,
					},
					discord.ApplicationCommandOptionFloat{
						Name:        "multiplier",
						Description: "Scale the cooldown, e.g. 0.5 for a pet that halves it",
						Required:    false,
					},
					discord.ApplicationCommandOptionString{
						Name:        "message",
						Description: "Custom text. {user} and {activity} are filled in",
						Required:    false,
						MaxLength:   intPtr(200),
					},
				},
			},
		},
	}, c.handleSettings)

	sys.RegisterAutocompleteHandler("settings", c.handleSettingsAutocomplete)
}

func (c *commands) handleSettings(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	subCmd := data.SubCommandName
	if subCmd == nil {
		return
	}

	userID := event.User().ID
	switch *subCmd {
	case "view":
		respondEphemeral(event, c.settingsView(sys.AppContext, userID))
	case "on":
		respondEphemeral(event, c.settingsToggle(sys.AppContext, userID, true))
	case "off":
		respondEphemeral(event, c.settingsToggle(sys.AppContext, userID, false))
	case "donor":
		respondEphemeral(event, c.settingsDonor(sys.AppContext, userID, data.String("tier")))
	case "alert":
		respondEphemeral(event, c.settingsAlert(sys.AppContext, userID, data.String("activity"), alertOptions(data)))
	}
}

func (c *commands) handleSettingsAutocomplete(event *events.AutocompleteInteractionCreate) {
	focused := event.Data.Focused()
	if focused.Name != "activity" {
		_ = event.AutocompleteResult(nil)
		return
	}

	query := strings.ToLower(focused.String())
	var choices []discord.AutocompleteChoice
	for _, activity := range settings.Activities() {
		if query != "" && !strings.Contains(activity, query) {
			continue
		}
		choices = append(choices, discord.AutocompleteChoiceString{Name: activity, Value: activity})
	}
	_ = event.AutocompleteResult(choices)
}
