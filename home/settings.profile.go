package home

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
)

func (c *commands) settingsView(ctx context.Context, userID snowflake.ID) string {
	u, err := c.Settings.Get(ctx, userID)
	if errors.Is(err, settings.ErrNotRegistered) {
		return sys.ErrSettingsNotRegistered
	}
	if err != nil {
		sys.LogError(sys.MsgSettingsFailedToUpdate, userID, err)
		return sys.ErrSettingsUpdateFailed
	}

	state := "off"
	if u.Enabled {
		state = "on"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(sys.MsgSettingsViewHeader, state, u.DonorTier))
	for _, activity := range settings.Activities() {
		alert, ok := u.Alerts[activity]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf(sys.MsgSettingsViewAlert, activity, alert.Enabled, alert.Multiplier))
	}
	return sb.String()
}

func (c *commands) settingsToggle(ctx context.Context, userID snowflake.ID, on bool) string {
	if on {
		if _, err := c.Settings.Register(ctx, userID); err != nil {
			sys.LogError(sys.MsgSettingsFailedToUpdate, userID, err)
			return sys.ErrSettingsUpdateFailed
		}
		return sys.MsgSettingsEnabled
	}

	off := false
	_, err := c.Settings.Update(ctx, userID, settings.Update{Enabled: &off})
	if errors.Is(err, settings.ErrNotRegistered) {
		return sys.ErrSettingsNotRegistered
	}
	if err != nil {
		sys.LogError(sys.MsgSettingsFailedToUpdate, userID, err)
		return sys.ErrSettingsUpdateFailed
	}
	return sys.MsgSettingsDisabled
}

func (c *commands) settingsDonor(ctx context.Context, userID snowflake.ID, name string) string {
	tier, ok := settings.ParseDonorTier(name)
	if !ok {
		return sys.ErrSettingsUnknownTier
	}

	u, err := c.Settings.Update(ctx, userID, settings.Update{DonorTier: &tier})
	if errors.Is(err, settings.ErrNotRegistered) {
		return sys.ErrSettingsNotRegistered
	}
	if err != nil {
		sys.LogError(sys.MsgSettingsFailedToUpdate, userID, err)
		return sys.ErrSettingsUpdateFailed
	}
	return fmt.Sprintf(sys.MsgSettingsDonorUpdated, u.DonorTier)
}
