package attrib

import (
	"regexp"
	"strings"

	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/chat"
)

// Candidate is what an extractor could read out of a message: a user id, a display name, or both.
type Candidate struct {
	ID   snowflake.ID
	Name string
}

func (c Candidate) empty() bool {
	return c.ID == 0 && c.Name == ""
}

// Extractor pulls a Candidate out of a plain text message.
type Extractor func(msg chat.Message) (Candidate, bool)

var (
	avatarIDRe = regexp.MustCompile(`avatars/(\d{15,21})/`)
	boldNameRe = regexp.MustCompile(`^\s*\*\*(.+?)\*\*`)
	// Embed authors read "Name - hunt" (either dash) or "Name's profile".
	authorNameRe = regexp.MustCompile(`^(.+?)(?:'s\s|\s+[—-]\s+|$)`)
)

// FromAvatarURL reads the user id out of the first embed's author icon URL.
func FromAvatarURL() Extractor {
	return func(msg chat.Message) (Candidate, bool) {
		embed, ok := msg.FirstEmbed()
		if !ok {
			return Candidate{}, false
		}
		m := avatarIDRe.FindStringSubmatch(embed.AuthorIconURL)
		if m == nil {
			return Candidate{}, false
		}
		id, err := snowflake.Parse(m[1])
		if err != nil {
			return Candidate{}, false
		}
		return Candidate{ID: id}, true
	}
}

// FromEmbedAuthor reads a display name from the first embed's author line. The first capture
// group of re is the name; a nil re uses the common "Name - command" shapes.
func FromEmbedAuthor(re *regexp.Regexp) Extractor {
	if re == nil {
		re = authorNameRe
	}
	return func(msg chat.Message) (Candidate, bool) {
		embed, ok := msg.FirstEmbed()
		if !ok || embed.AuthorName == "" {
			return Candidate{}, false
		}
		m := re.FindStringSubmatch(embed.AuthorName)
		if len(m) < 2 {
			return Candidate{}, false
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			return Candidate{}, false
		}
		return Candidate{Name: name}, true
	}
}

// FromBoldName reads the leading **Name** token of a plain message.
func FromBoldName() Extractor {
	return func(msg chat.Message) (Candidate, bool) {
		m := boldNameRe.FindStringSubmatch(msg.Content)
		if m == nil {
			return Candidate{}, false
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			return Candidate{}, false
		}
		return Candidate{Name: name}, true
	}
}

// FirstOf runs every extractor and merges what they found: the id from the first one
// that yields an id and the name from the first one that yields a name.
func FirstOf(extractors ...Extractor) Extractor {
	return func(msg chat.Message) (Candidate, bool) {
		var out Candidate
		for _, extract := range extractors {
			if extract == nil {
				continue
			}
			c, ok := extract(msg)
			if !ok {
				continue
			}
			if out.ID == 0 {
				out.ID = c.ID
			}
			if out.Name == "" {
				out.Name = c.Name
			}
			if out.ID != 0 && out.Name != "" {
				break
			}
		}
		return out, !out.empty()
	}
}
