package attrib

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/disgoorg/snowflake/v2"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/msgcache"
)

var ErrUnattributed = errors.New("attrib: could not determine the acting user")

// Strategy describes how one kind of game message names its user when there is no
// interaction metadata. Pattern is the shape of the command that triggers the message and
// narrows the cache lookup when only a name is known.
type Strategy struct {
	Extract Extractor
	Pattern *regexp.Regexp
}

// Finder is the part of the message cache the resolver needs.
type Finder interface {
	Find(ctx context.Context, channelID snowflake.ID, q msgcache.Query) (chat.Message, error)
}

type Resolver struct {
	Cache   Finder
	Members chat.Members
}

func NewResolver(cache Finder, members chat.Members) *Resolver {
	return &Resolver{Cache: cache, Members: members}
}

// Resolve returns the user msg belongs to. Every failure wraps ErrUnattributed so callers
// can mark the message and move on.
func (r *Resolver) Resolve(ctx context.Context, msg chat.Message, strat Strategy) (chat.User, error) {
	switch o := OriginOf(msg).(type) {
	case InteractionOrigin:
		return o.User, nil
	case PlainTextOrigin:
		return r.resolvePlain(ctx, o.Message, strat)
	}
	return chat.User{}, ErrUnattributed
}

func (r *Resolver) resolvePlain(ctx context.Context, msg chat.Message, strat Strategy) (chat.User, error) {
	if strat.Extract == nil {
		return chat.User{}, fmt.Errorf("%w: no extraction strategy", ErrUnattributed)
	}

	cand, ok := strat.Extract(msg)
	if !ok || cand.empty() {
		return chat.User{}, fmt.Errorf("%w: no user named in message", ErrUnattributed)
	}

	var idErr error
	if cand.ID != 0 {
		user, err := r.resolveID(ctx, msg, cand.ID)
		if err == nil {
			return user, nil
		}
		idErr = err
		// The member may not be known to the directory yet; the command they typed still is.
		if found, err := r.Cache.Find(ctx, msg.ChannelID, msgcache.Query{
			Pattern: strat.Pattern,
			UserID:  cand.ID,
		}); err == nil {
			return found.Author, nil
		}
		if cand.Name == "" {
			return chat.User{}, idErr
		}
	}

	found, err := r.Cache.Find(ctx, msg.ChannelID, msgcache.Query{
		Pattern:  strat.Pattern,
		UserName: cand.Name,
	})
	if err != nil {
		if idErr != nil {
			return chat.User{}, fmt.Errorf("%w; no command from %q: %w", idErr, cand.Name, err)
		}
		return chat.User{}, fmt.Errorf("%w: no command from %q: %w", ErrUnattributed, cand.Name, err)
	}
	return found.Author, nil
}

func (r *Resolver) resolveID(ctx context.Context, msg chat.Message, id snowflake.ID) (chat.User, error) {
	if r.Members == nil || msg.GuildID == 0 {
		return chat.User{}, fmt.Errorf("%w: no member directory for user %s", ErrUnattributed, id)
	}
	user, ok := r.Members.Member(ctx, msg.GuildID, id)
	if !ok {
		return chat.User{}, fmt.Errorf("%w: user %s is not a member", ErrUnattributed, id)
	}
	return user, nil
}
