package sys

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jmoiron/sqlx"
)

// SafeGo runs a function in a new goroutine with panic recovery
func SafeGo(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				LogError(MsgLoaderPanicRecovered, r)
				fmt.Printf("%s\n", debug.Stack())
			}
		}()
		f()
	}()
}

// --- Global State & Setup ---

var (
	AppContext  context.Context = context.Background()
	StartupTime                 = time.Now()
	daemonsOnce sync.Once
)

var (
	commands              = []discord.ApplicationCommandCreate{}
	commandHandlers       = map[string]func(event *events.ApplicationCommandInteractionCreate){}
	autocompleteHandlers  = map[string]func(event *events.AutocompleteInteractionCreate){}
	messageHandlers       []func(event *events.MessageCreate)
	messageUpdateHandlers []func(event *events.MessageUpdate)
	onClientReadyCbs      []func(ctx context.Context, client *bot.Client)
)

func SetAppContext(ctx context.Context) {
	AppContext = ctx
}

// --- Bot Initialization ---

// CreateClient creates and configures a disgo client
func CreateClient(cfg *Config) (*bot.Client, error) {
	return disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMembers,
				gateway.IntentMessageContent,
				gateway.IntentGuildMessageReactions,
			),
			gateway.WithPresenceOpts(
				gateway.WithPlayingActivity("with cooldowns"),
				gateway.WithOnlineStatus(discord.OnlineStatusOnline),
			),
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(cache.FlagGuilds, cache.FlagMembers, cache.FlagChannels),
		),
		bot.WithMemberChunkingFilter(bot.MemberChunkingFilterAll),
		bot.WithEventListenerFunc(onApplicationCommandInteraction),
		bot.WithEventListenerFunc(onAutocompleteInteraction),
		bot.WithEventListenerFunc(onMessageCreate),
		bot.WithEventListenerFunc(onMessageUpdate),
		bot.WithEventListenerFunc(onReady),
		bot.WithLogger(slog.Default()),
		bot.WithRestClientConfigOpts(
			rest.WithHTTPClient(&http.Client{
				Timeout: 60 * time.Second,
			}),
		),
	)
}

// --- Command & Handler Registration ---

func RegisterCommand(cmd discord.ApplicationCommandCreate, handler func(event *events.ApplicationCommandInteractionCreate)) {
	commands = append(commands, cmd)
	switch c := cmd.(type) {
	case discord.SlashCommandCreate:
		commandHandlers[c.CommandName()] = handler
	case discord.UserCommandCreate:
		commandHandlers[c.CommandName()] = handler
	case discord.MessageCommandCreate:
		commandHandlers[c.CommandName()] = handler
	}
}

func RegisterAutocompleteHandler(cmdName string, handler func(event *events.AutocompleteInteractionCreate)) {
	autocompleteHandlers[cmdName] = handler
}

func RegisterMessageHandler(handler func(event *events.MessageCreate)) {
	messageHandlers = append(messageHandlers, handler)
}

func RegisterMessageUpdateHandler(handler func(event *events.MessageUpdate)) {
	messageUpdateHandlers = append(messageUpdateHandlers, handler)
}

func OnClientReady(cb func(ctx context.Context, client *bot.Client)) {
	onClientReadyCbs = append(onClientReadyCbs, cb)
}

// --- Command Syncing Logic ---

// calculateCommandHash generates a SHA256 hash of the commands slice
func calculateCommandHash(cmds []discord.ApplicationCommandCreate) string {
	data, err := json.Marshal(cmds)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RegisterCommands syncs commands to the dev guild when guildIDStr is set, globally otherwise.
// Registration is skipped when nothing changed since the last run.
func RegisterCommands(ctx context.Context, client *bot.Client, db *sqlx.DB, guildIDStr string) error {
	currentMode := "guild"
	if guildIDStr == "" {
		currentMode = "global"
	}
	LogInfo(MsgLoaderSyncCommands, strings.ToUpper(currentMode))

	currentHash := calculateCommandHash(commands)
	lastHash, _ := GetBotConfig(ctx, db, "last_cmd_hash")
	lastMode, _ := GetBotConfig(ctx, db, "last_reg_mode")
	lastGuildID, _ := GetBotConfig(ctx, db, "last_guild_id")

	if currentHash != "" && currentHash == lastHash && currentMode == lastMode && lastGuildID == guildIDStr {
		LogInfo(MsgLoaderUpToDate, currentHash[:8])
		return nil
	}

	if guildIDStr == "" {
		created, err := client.Rest.SetGlobalCommands(client.ApplicationID, commands)
		if err != nil {
			return fmt.Errorf(MsgLoaderProdFail, err)
		}
		for _, cmd := range created {
			LogInfo(MsgLoaderProdRegistered, cmd.Name())
		}
	} else {
		guildID, err := snowflake.Parse(guildIDStr)
		if err != nil {
			return fmt.Errorf("invalid GUILD_ID: %w", err)
		}
		created, err := client.Rest.SetGuildCommands(client.ApplicationID, guildID, commands)
		if err != nil {
			LogWarn(MsgLoaderDevFail, err)
			return nil
		}
		for _, cmd := range created {
			LogInfo(MsgLoaderDevRegistered, cmd.Name())
		}
	}

	_ = SetBotConfig(ctx, db, "last_reg_mode", currentMode)
	_ = SetBotConfig(ctx, db, "last_guild_id", guildIDStr)
	if currentHash != "" {
		_ = SetBotConfig(ctx, db, "last_cmd_hash", currentHash)
	}
	return nil
}

// --- Event Handlers ---

func onReady(event *events.Ready) {
	client := event.Client()
	botUser := event.User

	LogInfo(MsgBotReady, botUser.Username, botUser.ID.String(), os.Getpid(), time.Since(StartupTime).Milliseconds())

	TriggerClientReady(AppContext, client)
	StartDaemons(AppContext)
}

func TriggerClientReady(ctx context.Context, client *bot.Client) {
	for _, cb := range onClientReadyCbs {
		cb(ctx, client)
	}
}

func onApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	if h, ok := commandHandlers[event.Data.CommandName()]; ok {
		SafeGo(func() { h(event) })
	}
}

func onAutocompleteInteraction(event *events.AutocompleteInteractionCreate) {
	if h, ok := autocompleteHandlers[event.Data.CommandName]; ok {
		SafeGo(func() { h(event) })
	}
}

// Message handlers run inline on the gateway goroutine so that per-channel arrival order holds.
// They must hand slow work to SafeGo themselves.
func onMessageCreate(event *events.MessageCreate) {
	for _, h := range messageHandlers {
		runRecovered(func() { h(event) })
	}
}

func onMessageUpdate(event *events.MessageUpdate) {
	for _, h := range messageUpdateHandlers {
		runRecovered(func() { h(event) })
	}
}

func runRecovered(f func()) {
	defer func() {
		if r := recover(); r != nil {
			LogError(MsgLoaderPanicRecovered, r)
		}
	}()
	f()
}

// --- Daemon System ---

// DaemonStarter reports whether the daemon should run and returns its loop and shutdown hook.
type DaemonStarter func(ctx context.Context) (bool, func(), func())

type daemonEntry struct {
	starter DaemonStarter
	logger  func(format string, v ...any)
}

var (
	registeredDaemons   []daemonEntry
	activeShutdownHooks []func()
	activeShutdownMu    sync.Mutex
)

// RegisterDaemon registers a background daemon with a logger and start function
func RegisterDaemon(logger func(format string, v ...any), starter DaemonStarter) {
	registeredDaemons = append(registeredDaemons, daemonEntry{starter: starter, logger: logger})
}

// StartDaemons starts all registered daemons once per process
func StartDaemons(ctx context.Context) {
	daemonsOnce.Do(func() {
		type activeDaemon struct {
			entry daemonEntry
			run   func()
		}
		var active []activeDaemon

		for _, daemon := range registeredDaemons {
			if ok, run, shutdown := daemon.starter(ctx); ok && run != nil {
				if shutdown != nil {
					activeShutdownMu.Lock()
					activeShutdownHooks = append(activeShutdownHooks, shutdown)
					activeShutdownMu.Unlock()
				}
				active = append(active, activeDaemon{daemon, run})
			}
		}

		for _, ad := range active {
			ad.entry.logger(MsgDaemonStarting)
		}

		for _, ad := range active {
			go ad.run()
		}
	})
}

// ShutdownDaemons runs every shutdown hook and waits for them
func ShutdownDaemons() {
	activeShutdownMu.Lock()
	defer activeShutdownMu.Unlock()

	var wg sync.WaitGroup
	for _, shutdown := range activeShutdownHooks {
		wg.Add(1)
		go func(s func()) {
			defer wg.Done()
			s()
		}(shutdown)
	}
	wg.Wait()
}
