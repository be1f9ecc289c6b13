// Package track watches the game bot and turns its messages into reminders.
package track

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/attrib"
	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/msgcache"
	"github.com/leeineian/navi/reminder"
	"github.com/leeineian/navi/settings"
	"github.com/leeineian/navi/sys"
	"github.com/leeineian/navi/timestring"
)

// UnattributedReaction marks game messages the tracker could not act on.
const UnattributedReaction = "❓"

type Config struct {
	GameBotID       snowflake.ID
	CommandPrefixes []string
	StartPhrases    []string
}

type Tracker struct {
	cfg Config

	cache     *msgcache.Cache
	resolver  *attrib.Resolver
	reminders *reminder.Store
	settings  *settings.Store
	reactor   chat.Reactor

	patterns   map[string]*regexp.Regexp
	extractors []extractor
	spawn      func(func())
}

func New(cfg Config, cache *msgcache.Cache, resolver *attrib.Resolver, reminders *reminder.Store, store *settings.Store, reactor chat.Reactor) *Tracker {
	return &Tracker{
		cfg:        cfg,
		cache:      cache,
		resolver:   resolver,
		reminders:  reminders,
		settings:   store,
		reactor:    reactor,
		patterns:   commandPatterns(cfg.CommandPrefixes),
		extractors: defaultExtractors(),
		spawn:      sys.SafeGo,
	}
}

// Register hooks the tracker into the gateway listeners.
func (t *Tracker) Register() {
	sys.RegisterMessageHandler(func(event *events.MessageCreate) {
		t.OnMessageCreate(sys.AppContext, chat.FromDiscord(event.Message))
	})
	sys.RegisterMessageUpdateHandler(func(event *events.MessageUpdate) {
		t.OnMessageUpdate(sys.AppContext, chat.FromDiscord(event.Message))
	})
}

// OnMessageCreate caches player commands in arrival order and hands game bot messages
// to the extractors in the background, since attribution may wait on the cache.
func (t *Tracker) OnMessageCreate(ctx context.Context, msg chat.Message) {
	if msg.Author.ID == t.cfg.GameBotID {
		t.spawn(func() { _ = t.Handle(ctx, msg) })
		return
	}
	if t.isCandidate(msg) {
		t.cache.Store(msg)
	}
}

// OnMessageUpdate handles game bot messages that were edited in place.
func (t *Tracker) OnMessageUpdate(ctx context.Context, msg chat.Message) {
	if msg.Author.ID == t.cfg.GameBotID {
		t.spawn(func() { _ = t.Handle(ctx, msg) })
	}
}

func (t *Tracker) isCandidate(msg chat.Message) bool {
	if msg.Author.Bot {
		return false
	}
	content := strings.ToLower(strings.TrimSpace(msg.Content))
	if content == "" {
		return false
	}

	for _, prefix := range t.cfg.CommandPrefixes {
		if rest, ok := strings.CutPrefix(content, prefix); ok && (rest == "" || rest[0] == ' ') {
			return true
		}
	}

	if t.cfg.GameBotID != 0 {
		if msg.MentionsUser(t.cfg.GameBotID) {
			return true
		}
		id := t.cfg.GameBotID.String()
		if strings.HasPrefix(content, "<@"+id+">") || strings.HasPrefix(content, "<@!"+id+">") {
			return true
		}
	}

	for _, phrase := range t.cfg.StartPhrases {
		if phrase != "" && strings.HasPrefix(content, phrase) {
			return true
		}
	}
	return false
}

// Handle runs the first extractor that recognizes msg and reports its outcome. Soft
// failures get a reaction on the message; they never affect other messages.
func (t *Tracker) Handle(ctx context.Context, msg chat.Message) error {
	for _, ex := range t.extractors {
		if !ex.match(msg) {
			continue
		}
		err := ex.handle(ctx, t, msg)
		t.report(ctx, msg, ex.name, err)
		return err
	}
	return nil
}

func (t *Tracker) report(ctx context.Context, msg chat.Message, name string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, settings.ErrNotRegistered):
	case errors.Is(err, attrib.ErrUnattributed):
		sys.LogDebug(sys.MsgTrackerUnattributed, msg.ID, msg.ChannelID, err)
		t.mark(ctx, msg)
	case errors.Is(err, sys.ErrPatternNotFound), errors.Is(err, settings.ErrUnknownActivity):
		sys.LogWarn(sys.MsgTrackerPatternMissing, name+": "+err.Error(), msg.ID, msg.ChannelID, msg.Content)
		t.mark(ctx, msg)
	default:
		sys.LogError(sys.MsgTrackerHandlerFailed, name, msg.ID, err)
	}
}

func (t *Tracker) mark(ctx context.Context, msg chat.Message) {
	if t.reactor == nil {
		return
	}
	if err := t.reactor.React(ctx, msg.ChannelID, msg.ID, UnattributedReaction); err != nil {
		sys.LogWarn(sys.MsgTrackerReactFailed, msg.ID, err)
	}
}

// profile loads the user's settings. It returns nil and no error when the user has
// tracking or this activity switched off.
func (t *Tracker) profile(ctx context.Context, user chat.User, activity string) (*settings.User, error) {
	u, err := t.settings.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !u.Tracks(activity) {
		return nil, nil
	}
	return u, nil
}

func (t *Tracker) schedule(ctx context.Context, msg chat.Message, user chat.User, profile settings.User, activity string, left time.Duration) error {
	if left <= 0 {
		sys.LogTracker(sys.MsgTrackerExpired, activity, user.ID, left)
		return nil
	}

	template := profile.Alert(activity).Message
	if template == "" {
		template = fmt.Sprintf(sys.MsgReminderDefaultTemplate, activity)
	}

	_, _, err := t.reminders.Upsert(ctx, reminder.UpsertParams{
		UserID:    user.ID,
		Activity:  activity,
		TimeLeft:  left,
		ChannelID: msg.ChannelID,
		Message:   template,
	})
	if err != nil {
		return err
	}
	sys.LogTracker(sys.MsgTrackerScheduled, activity, user.ID, timestring.Format(left))
	return nil
}
