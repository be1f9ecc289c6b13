package sys

// --- Message Constants ---

const (
	// --- Infrastructure & Lifecycle ---
	MsgConfigFailedToLoad   = "Failed to load config: %v"
	MsgConfigMissingToken   = "DISCORD_TOKEN is not set in .env file"
	MsgConfigInvalid        = "invalid configuration: %w"
	MsgDatabaseInitSuccess  = "Database initialized successfully"
	MsgDatabasePragmaError  = "Failed to set pragma %s: %w"
	MsgDatabaseMigrated     = "Applied migrations (version %d)"
	MsgDatabaseNoMigrations = "No database migrations to apply"
	MsgDaemonStarting       = "Starting..."
	MsgBotStarting          = "Starting %s..."
	MsgBotReady             = "%s is ready! (ID: %s) (PID: %d) (Took: %dms)"
	MsgBotShutdown          = "Shutting down %s..."
	MsgBotKillingOld        = "Killing running instance... (PID: %d)"
	MsgBotOldTerminated     = "Old instance terminated."
	MsgBotRegisterFail      = "Command registration failed: %v"
	MsgGenericError         = "%v"

	// --- Command Loader & Registry ---
	MsgLoaderSyncCommands   = "Syncing %s commands..."
	MsgLoaderUpToDate       = "Commands are up to date. (Hash: %s)"
	MsgLoaderDevRegistered  = "[DEV] Registered: %s"
	MsgLoaderDevFail        = "[DEV] Registration failed: %v"
	MsgLoaderProdRegistered = "[PROD] Registered: %s"
	MsgLoaderProdFail       = "[PROD] Global registration failed: %w"
	MsgLoaderPanicRecovered = "Panic recovered in handler: %v"

	// --- Message Cache ---
	MsgCacheSwept      = "Swept %d cached message(s) older than %s"
	MsgCacheSweepEmpty = "Nothing to sweep"

	// --- Tracker ---
	MsgTrackerUnattributed   = "Could not attribute message %s in channel %s: %v"
	MsgTrackerPatternMissing = "Pattern not found (%s) in message %s (channel %s): %q"
	MsgTrackerScheduled      = "Scheduled %s for user %s in %s"
	MsgTrackerExpired        = "Skipped %s for user %s: cooldown already over (%s)"
	MsgTrackerDeleted        = "Cancelled %s for user %s"
	MsgTrackerShifted        = "Shifted %d reminder(s) (%s)"
	MsgTrackerReactFailed    = "Failed to mark message %s: %v"
	MsgTrackerHandlerFailed  = "Extractor %s failed on message %s: %v"

	// --- Scheduler ---
	MsgSchedulerJobAdded = "Scheduled job %s every %s"
	MsgStatusRotated     = "Status rotated to %q"
	MsgStatusUpdateFail  = "Failed to update status: %v"

	// --- Reminder System ---
	MsgReminderFailedToQueryDue = "Failed to query due reminders: %v"
	MsgReminderFailedToSend     = "Failed to send %s reminder for user %s: %v"
	MsgReminderSent             = "Sent %s reminder for user %s"
	MsgReminderRestored         = "Put %d unsent reminders back for the next tick"
	MsgReminderFailedToRestore  = "Failed to put %d unsent reminders back: %v"
	MsgReminderSchedulerStopped = "Shutting down Reminder System..."
	MsgReminderRespondError     = "Failed to respond to interaction: %v"
	MsgReminderFailedToQuery    = "Failed to query reminders: %v"
	MsgReminderFailedToSave     = "Failed to save reminder: %v"
	MsgReminderFailedToDelete   = "Failed to delete reminder: %v"
	MsgReminderNaturalTimeFail  = "failed to initialize naturaltime parser: %w"
	ErrReminderParseFailed      = "Failed to parse the time. Use a timestring like `1h30m`, or phrases like 'tomorrow' or 'in 2 hours'."
	ErrReminderTooLong          = "That is way too long. Reminders can be at most 10 years away."
	ErrReminderPastTime         = "The reminder time must be in the future!"
	ErrReminderSaveFailed       = "Failed to save reminder. Please try again."
	ErrReminderFetchFailed      = "Failed to retrieve your reminders."
	ErrReminderDeleteFailed     = "Failed to delete reminder."
	ErrReminderNotFound         = "You have no `%s` reminder."
	MsgReminderSetSuccess       = "Reminder set for <t:%d:R>\n\n%s"
	MsgReminderDeleted          = "Reminder `%s` deleted."
	MsgReminderNoActive         = "You have no active reminders."
	MsgReminderListHeader       = "**Your Reminders** (%d active)\n\n"
	MsgReminderListItem         = "%d. `%s` - <t:%d:R>\n"
	MsgReminderDefaultTemplate  = "{user} Hey! It's time for `%s`!"

	// --- Settings ---
	MsgSettingsEnabled        = "Reminders are **on**. Use the game as usual and I will keep track."
	MsgSettingsDisabled       = "Reminders are **off**. Your settings are kept."
	MsgSettingsDonorUpdated   = "Donor tier set to **%s**."
	MsgSettingsAlertUpdated   = "Alert `%s`: enabled=%t, multiplier=%.2f"
	ErrSettingsNotRegistered  = "You are not registered yet. Use `/settings on` first."
	ErrSettingsUpdateFailed   = "Failed to update your settings."
	ErrSettingsUnknownTier    = "Unknown donor tier."
	ErrSettingsUnknownAlert   = "Unknown activity."
	ErrSettingsBadMultiplier  = "Multiplier must be between 0.01 and 10."
	MsgSettingsFailedToUpdate = "Failed to update settings for %s: %v"
	MsgSettingsViewHeader     = "**Your Settings**\n> Reminders: **%s**\n> Donor tier: **%s**\n"
	MsgSettingsViewAlert      = "> `%s`: enabled=%t, multiplier=%.2f\n"

	// --- Debug ---
	MsgDebugCacheStats = "**Message Cache**\n> Channels: `%d`\n> Messages: `%d`\n> Swept now: `%d`"
)
