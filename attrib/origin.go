// Package attrib works out which user a game bot message belongs to.
package attrib

import "github.com/leeineian/navi/chat"

// Origin is how a game bot message came to exist. It is either an InteractionOrigin
// or a PlainTextOrigin.
type Origin interface {
	origin()
}

// InteractionOrigin is a reply to a slash command. Discord names the invoking user.
type InteractionOrigin struct {
	User chat.User
}

// PlainTextOrigin is a reply to a typed command. The user has to be inferred from the text.
type PlainTextOrigin struct {
	Message chat.Message
}

func (InteractionOrigin) origin() {}
func (PlainTextOrigin) origin()   {}

// OriginOf classifies msg by the presence of interaction metadata.
func OriginOf(msg chat.Message) Origin {
	if msg.Interaction != nil && msg.Interaction.ID != 0 {
		return InteractionOrigin{User: *msg.Interaction}
	}
	return PlainTextOrigin{Message: msg}
}
