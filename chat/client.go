package chat

import (
	"context"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Members looks up guild members by id.
type Members interface {
	Member(ctx context.Context, guildID, userID snowflake.ID) (User, bool)
}

// Reactor marks messages with an emoji reaction.
type Reactor interface {
	React(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error
}

// Sender posts plain text to a channel.
type Sender interface {
	Send(ctx context.Context, channelID snowflake.ID, content string) error
}

// MemberFetcher is the slice of the REST client used when the gateway cache misses.
type MemberFetcher interface {
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
}

// CacheMembers resolves members from the gateway cache and falls back to
// REST for members the cache has not seen yet.
type CacheMembers struct {
	Caches cache.Caches
	Rest   MemberFetcher
}

func (m CacheMembers) Member(ctx context.Context, guildID, userID snowflake.ID) (User, bool) {
	if member, ok := m.Caches.Member(guildID, userID); ok {
		return memberUser(member), true
	}
	if m.Rest == nil {
		return User{}, false
	}
	member, err := m.Rest.GetMember(guildID, userID, rest.WithCtx(ctx))
	if err != nil || member == nil {
		return User{}, false
	}
	m.Caches.AddMember(*member)
	return memberUser(*member), true
}

func memberUser(member discord.Member) User {
	return User{
		ID:   member.User.ID,
		Name: member.EffectiveName(),
		Bot:  member.User.Bot,
	}
}

// RestClient implements Reactor and Sender on top of the disgo REST client.
type RestClient struct {
	Rest rest.Rest
}

func (c RestClient) React(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error {
	return c.Rest.AddReaction(channelID, messageID, emoji, rest.WithCtx(ctx))
}

func (c RestClient) Send(ctx context.Context, channelID snowflake.ID, content string) error {
	_, err := c.Rest.CreateMessage(channelID, discord.MessageCreate{
		Content: content,
		AllowedMentions: &discord.AllowedMentions{
			Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
		},
	}, rest.WithCtx(ctx))
	return err
}

// Presence updates the bot's own activity text.
type Presence interface {
	SetStatus(ctx context.Context, text string) error
}

// GatewayPresence sets the playing activity over the gateway.
type GatewayPresence struct {
	Client *bot.Client
}

func (p GatewayPresence) SetStatus(ctx context.Context, text string) error {
	return p.Client.SetPresence(ctx,
		gateway.WithOnlineStatus(discord.OnlineStatusOnline),
		gateway.WithPlayingActivity(text),
	)
}
