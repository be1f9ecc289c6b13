package attrib

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/msgcache"
)

const (
	guild   snowflake.ID = 10
	channel snowflake.ID = 20
)

var (
	bob     = chat.User{ID: 42, Name: "Bob"}
	gameBot = chat.User{ID: 555, Name: "RPG", Bot: true}
	huntCmd = regexp.MustCompile(`^rpg\s+(?:hunt|h)\b`)
	advCmd  = regexp.MustCompile(`^rpg\s+(?:adventure|adv)\b`)
)

type members map[snowflake.ID]chat.User

func (m members) Member(_ context.Context, guildID, userID snowflake.ID) (chat.User, bool) {
	if guildID != guild {
		return chat.User{}, false
	}
	u, ok := m[userID]
	return u, ok
}

func newResolver(t *testing.T) (*Resolver, *msgcache.Cache) {
	t.Helper()
	cache := msgcache.New(msgcache.WithRetryDelay(5*time.Millisecond), msgcache.WithGameBot(gameBot.ID))
	return NewResolver(cache, members{bob.ID: bob}), cache
}

func botMessage(content string) chat.Message {
	return chat.Message{
		ID:        900,
		ChannelID: channel,
		GuildID:   guild,
		Author:    gameBot,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func TestResolve_PlainTextBoldNameFromCache(t *testing.T) {
	t.Parallel()

	r, cache := newResolver(t)
	now := time.Now()
	cache.Store(chat.Message{ID: 1, ChannelID: channel, Author: bob, Content: "rpg hunt", CreatedAt: now.Add(-2 * time.Second)})

	user, err := r.Resolve(context.Background(), botMessage("**Bob** found a Slime!"), Strategy{
		Extract: FromBoldName(),
		Pattern: huntCmd,
	})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, user.ID)
}

func TestResolve_InteractionWins(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	alice := chat.User{ID: 7, Name: "Alice"}
	msg := botMessage("**Bob** found a Slime!")
	msg.Interaction = &alice

	user, err := r.Resolve(context.Background(), msg, Strategy{Extract: FromBoldName(), Pattern: huntCmd})
	require.NoError(t, err)
	assert.Equal(t, alice, user)
}

func TestResolve_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		msg   chat.Message
		strat Strategy
	}{
		{
			name:  "no strategy",
			msg:   botMessage("**Bob** found a Slime!"),
			strat: Strategy{},
		},
		{
			name:  "nothing to extract",
			msg:   botMessage("a wild slime appeared"),
			strat: Strategy{Extract: FromBoldName(), Pattern: huntCmd},
		},
		{
			name:  "name without cached command",
			msg:   botMessage("**Carol** found a Slime!"),
			strat: Strategy{Extract: FromBoldName(), Pattern: huntCmd},
		},
		{
			name: "id of someone outside the guild",
			msg: func() chat.Message {
				m := botMessage("")
				m.Embeds = []chat.Embed{{AuthorName: "Mallory — cooldown", AuthorIconURL: "https://cdn.discordapp.com/avatars/123456789012345678/abc.png"}}
				return m
			}(),
			strat: Strategy{Extract: FromAvatarURL()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newResolver(t)
			_, err := r.Resolve(context.Background(), tt.msg, tt.strat)
			require.ErrorIs(t, err, ErrUnattributed)
		})
	}
}

func TestResolve_WrongCommandIsNotAttributed(t *testing.T) {
	t.Parallel()

	r, cache := newResolver(t)
	cache.Store(chat.Message{ID: 1, ChannelID: channel, Author: bob, Content: "rpg farm", CreatedAt: time.Now()})

	_, err := r.Resolve(context.Background(), botMessage("**Bob** found a Slime!"), Strategy{Extract: FromBoldName(), Pattern: huntCmd})
	require.ErrorIs(t, err, ErrUnattributed)
	require.ErrorIs(t, err, msgcache.ErrNotFound)
}

func TestResolve_AvatarIDUsesMemberDirectory(t *testing.T) {
	t.Parallel()

	r, _ := newResolver(t)
	msg := botMessage("")
	msg.Embeds = []chat.Embed{{
		AuthorName:    "Bob — cooldowns",
		AuthorIconURL: "https://cdn.discordapp.com/avatars/42424242424242424/abc.png",
	}}
	r.Members = members{42424242424242424: bob}

	user, err := r.Resolve(context.Background(), msg, Strategy{Extract: FirstOf(FromAvatarURL(), FromEmbedAuthor(nil))})
	require.NoError(t, err)
	assert.Equal(t, bob, user)
}

func TestResolve_UnknownMemberFallsBackToCache(t *testing.T) {
	t.Parallel()

	dave := chat.User{ID: 424242424242424242, Name: "Dave"}
	embed := func(icon string) chat.Message {
		m := botMessage("")
		m.Embeds = []chat.Embed{{AuthorName: "Dave — adventure", AuthorIconURL: icon}}
		return m
	}

	tests := []struct {
		name    string
		cached  []chat.Message
		msg     chat.Message
		want    chat.User
		wantErr error
	}{
		{
			name:   "id matches cached command",
			cached: []chat.Message{{ID: 1, ChannelID: channel, Author: dave, Content: "rpg adv", CreatedAt: time.Now()}},
			msg:    embed("https://cdn.discordapp.com/avatars/424242424242424242/abc.png"),
			want:   dave,
		},
		{
			name:   "stale id falls back to author name",
			cached: []chat.Message{{ID: 1, ChannelID: channel, Author: dave, Content: "rpg adventure", CreatedAt: time.Now()}},
			msg:    embed("https://cdn.discordapp.com/avatars/111111111111111111/abc.png"),
			want:   dave,
		},
		{
			name:    "nothing cached",
			msg:     embed("https://cdn.discordapp.com/avatars/424242424242424242/abc.png"),
			wantErr: msgcache.ErrNotFound,
		},
		{
			name:    "other command cached",
			cached:  []chat.Message{{ID: 1, ChannelID: channel, Author: dave, Content: "rpg hunt", CreatedAt: time.Now()}},
			msg:     embed("https://cdn.discordapp.com/avatars/424242424242424242/abc.png"),
			wantErr: msgcache.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cache := newResolver(t)
			r.Members = members{}
			for _, m := range tt.cached {
				cache.Store(m)
			}

			user, err := r.Resolve(context.Background(), tt.msg, Strategy{
				Extract: FirstOf(FromAvatarURL(), FromEmbedAuthor(nil)),
				Pattern: advCmd,
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, ErrUnattributed)
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user)
		})
	}
}

func TestOriginOf(t *testing.T) {
	t.Parallel()

	msg := botMessage("hi")
	assert.IsType(t, PlainTextOrigin{}, OriginOf(msg))

	msg.Interaction = &bob
	assert.Equal(t, InteractionOrigin{User: bob}, OriginOf(msg))
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	withAuthor := func(name, icon string) chat.Message {
		return chat.Message{Embeds: []chat.Embed{{AuthorName: name, AuthorIconURL: icon}}}
	}

	tests := []struct {
		name    string
		extract Extractor
		msg     chat.Message
		want    Candidate
		ok      bool
	}{
		{name: "bold name", extract: FromBoldName(), msg: chat.Message{Content: "**Bob** found a Slime!"}, want: Candidate{Name: "Bob"}, ok: true},
		{name: "bold name with spaces", extract: FromBoldName(), msg: chat.Message{Content: "  **Mary Jane** is training"}, want: Candidate{Name: "Mary Jane"}, ok: true},
		{name: "bold not leading", extract: FromBoldName(), msg: chat.Message{Content: "you found **Bob**"}},
		{name: "empty bold", extract: FromBoldName(), msg: chat.Message{Content: "**** hi"}},
		{name: "author with dash", extract: FromEmbedAuthor(nil), msg: withAuthor("Bob — cooldowns", ""), want: Candidate{Name: "Bob"}, ok: true},
		{name: "author possessive", extract: FromEmbedAuthor(nil), msg: withAuthor("Bob's profile", ""), want: Candidate{Name: "Bob"}, ok: true},
		{name: "author plain", extract: FromEmbedAuthor(nil), msg: withAuthor("Ünïcode", ""), want: Candidate{Name: "Ünïcode"}, ok: true},
		{name: "author custom pattern", extract: FromEmbedAuthor(regexp.MustCompile(`^(.+?)'s horse$`)), msg: withAuthor("Bob's horse", ""), want: Candidate{Name: "Bob"}, ok: true},
		{name: "no embed", extract: FromEmbedAuthor(nil), msg: chat.Message{}},
		{name: "avatar id", extract: FromAvatarURL(), msg: withAuthor("", "https://cdn.discordapp.com/avatars/123456789012345678/a_x.gif"), want: Candidate{ID: 123456789012345678}, ok: true},
		{name: "default avatar has no id", extract: FromAvatarURL(), msg: withAuthor("", "https://cdn.discordapp.com/embed/avatars/1.png")},
		{name: "first of falls through", extract: FirstOf(nil, FromAvatarURL(), FromEmbedAuthor(nil)), msg: withAuthor("Bob — x", ""), want: Candidate{Name: "Bob"}, ok: true},
		{name: "first of merges id and name", extract: FirstOf(FromAvatarURL(), FromEmbedAuthor(nil)), msg: withAuthor("Bob — x", "https://cdn.discordapp.com/avatars/123456789012345678/x.png"), want: Candidate{ID: 123456789012345678, Name: "Bob"}, ok: true},
		{name: "first of with nothing", extract: FirstOf(FromAvatarURL(), FromBoldName()), msg: chat.Message{Content: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.extract(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
