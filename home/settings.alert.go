package home

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
)

func alertOptions(data discord.SlashCommandInteractionData) settings.AlertUpdate {
	var upd settings.AlertUpdate
	if v, ok := data.OptBool("enabled"); ok {
		upd.Enabled = &v
	}
	if v, ok := data.OptFloat("multiplier"); ok {
		upd.Multiplier = &v
	}
	if v, ok := data.OptString("message"); ok {
		upd.Message = &v
	}
	return upd
}

func (c *commands) settingsAlert(ctx context.Context, userID snowflake.ID, activity string, upd settings.AlertUpdate) string {
	if m := upd.Multiplier; m != nil && (*m < settings.MinMultiplier || *m > settings.MaxMultiplier) {
		return sys.ErrSettingsBadMultiplier
	}

	alert, err := c.Settings.SetAlert(ctx, userID, activity, upd)
	switch {
	case errors.Is(err, settings.ErrUnknownActivity):
		return sys.ErrSettingsUnknownAlert
	case errors.Is(err, settings.ErrNotRegistered):
		return sys.ErrSettingsNotRegistered
	case err != nil:
		sys.LogError(sys.MsgSettingsFailedToUpdate, userID, err)
		return sys.ErrSettingsUpdateFailed
	}
	return fmt.Sprintf(sys.MsgSettingsAlertUpdated, alert.Activity, alert.Enabled, alert.Multiplier)
}
