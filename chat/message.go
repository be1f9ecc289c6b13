// Package chat holds the read-side view of Discord messages that the tracker works with,
// plus thin disgo-backed implementations of the few write operations it needs.
package chat

import (
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

type User struct {
	ID   snowflake.ID
	Name string
	Bot  bool
}

type EmbedField struct {
	Name  string
	Value string
}

type Embed struct {
	AuthorName    string
	AuthorIconURL string
	Title         string
	Description   string
	Fields        []EmbedField
	Footer        string
}

// Text joins every visible piece of the embed, one per line.
func (e Embed) Text() string {
	parts := []string{e.AuthorName, e.Title, e.Description}
	for _, f := range e.Fields {
		parts = append(parts, f.Name, f.Value)
	}
	parts = append(parts, e.Footer)

	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

type Message struct {
	ID        snowflake.ID
	ChannelID snowflake.ID
	GuildID   snowflake.ID
	Author    User
	Content   string
	Embeds    []Embed
	Mentions  []snowflake.ID
	CreatedAt time.Time
	EditedAt  *time.Time

	// Interaction is the user who invoked the slash command this message answers, if any.
	Interaction *User
}

// Timestamp is the last edit time, or the creation time for unedited messages.
func (m Message) Timestamp() time.Time {
	if m.EditedAt != nil && !m.EditedAt.IsZero() {
		return *m.EditedAt
	}
	return m.CreatedAt
}

// MentionsUser reports whether the message pings id.
func (m Message) MentionsUser(id snowflake.ID) bool {
	for _, mention := range m.Mentions {
		if mention == id {
			return true
		}
	}
	return false
}

// FirstEmbed returns the first embed, or a zero Embed and false.
func (m Message) FirstEmbed() (Embed, bool) {
	if len(m.Embeds) == 0 {
		return Embed{}, false
	}
	return m.Embeds[0], true
}

// FromDiscord converts a gateway message.
func FromDiscord(msg discord.Message) Message {
	out := Message{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		Author:    userFromDiscord(msg.Author),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		EditedAt:  msg.EditedTimestamp,
	}
	if msg.GuildID != nil {
		out.GuildID = *msg.GuildID
	}

	for _, u := range msg.Mentions {
		out.Mentions = append(out.Mentions, u.ID)
	}

	for _, e := range msg.Embeds {
		out.Embeds = append(out.Embeds, embedFromDiscord(e))
	}

	// interaction is deprecated and stops being sent; interaction_metadata replaces it.
	switch {
	case msg.InteractionMetadata != nil && msg.InteractionMetadata.User.ID != 0:
		u := userFromDiscord(msg.InteractionMetadata.User)
		out.Interaction = &u
	case msg.Interaction != nil:
		u := userFromDiscord(msg.Interaction.User)
		out.Interaction = &u
	}

	return out
}

func userFromDiscord(u discord.User) User {
	return User{
		ID:   u.ID,
		Name: u.EffectiveName(),
		Bot:  u.Bot,
	}
}

func embedFromDiscord(e discord.Embed) Embed {
	out := Embed{
		Title:       e.Title,
		Description: e.Description,
	}
	if e.Author != nil {
		out.AuthorName = e.Author.Name
		out.AuthorIconURL = e.Author.IconURL
	}
	if e.Footer != nil {
		out.Footer = e.Footer.Text
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, EmbedField{Name: f.Name, Value: f.Value})
	}
	return out
}
