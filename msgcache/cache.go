// Package msgcache keeps a short per-channel history of user messages that look like game
// commands, so a game bot response can be traced back to the command that caused it.
package msgcache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/leeineian/navi/chat"
	"github.com/leeineian/navi/sys"
)

const (
	DefaultCapacity   = 50
	DefaultRetryDelay = 500 * time.Millisecond
)

var (
	ErrNoCriteria = errors.New("msgcache: find needs a pattern, a user id or a user name")
	ErrNotFound   = fmt.Errorf("msgcache: no matching message: %w", sys.ErrNotFound)
)

// Query selects a cached message. At least one field must be set.
type Query struct {
	Pattern  *regexp.Regexp
	UserID   snowflake.ID
	UserName string
}

func (q Query) empty() bool {
	return q.Pattern == nil && q.UserID == 0 && q.UserName == ""
}

type Cache struct {
	mu       sync.Mutex
	channels map[snowflake.ID][]chat.Message

	capacity   int
	retryDelay time.Duration
	botID      snowflake.ID
	now        func() time.Time
}

type Option func(*Cache)

// WithCapacity overrides the per-channel limit.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithRetryDelay overrides the pause before the second scan in Find.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Cache) { c.retryDelay = d }
}

// WithGameBot makes Find strip mentions of the game bot before matching patterns.
func WithGameBot(id snowflake.ID) Option {
	return func(c *Cache) { c.botID = id }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		channels:   make(map[snowflake.ID][]chat.Message),
		capacity:   DefaultCapacity,
		retryDelay: DefaultRetryDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store puts msg at the head of its channel list and drops the oldest entries beyond capacity.
func (c *Cache) Store(msg chat.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.channels[msg.ChannelID]
	next := make([]chat.Message, 0, min(len(list)+1, c.capacity))
	next = append(next, msg)
	next = append(next, list...)
	if len(next) > c.capacity {
		next = next[:c.capacity]
	}
	c.channels[msg.ChannelID] = next
}

// Find returns the most recent message in channelID that satisfies q. When the first scan
// misses, it waits once and scans again, since the game bot may answer before the command
// itself has been stored.
func (c *Cache) Find(ctx context.Context, channelID snowflake.ID, q Query) (chat.Message, error) {
	if q.empty() {
		return chat.Message{}, ErrNoCriteria
	}

	if msg, ok := c.scan(channelID, q); ok {
		return msg, nil
	}

	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return chat.Message{}, ctx.Err()
	case <-timer.C:
	}

	if msg, ok := c.scan(channelID, q); ok {
		return msg, nil
	}
	return chat.Message{}, ErrNotFound
}

func (c *Cache) scan(channelID snowflake.ID, q Query) (chat.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var wantName string
	if q.UserName != "" {
		wantName = NormalizeName(q.UserName)
	}

	for _, msg := range c.channels[channelID] {
		if q.UserID != 0 && msg.Author.ID != q.UserID {
			continue
		}
		if wantName != "" && NormalizeName(msg.Author.Name) != wantName {
			continue
		}
		if q.Pattern == nil {
			return msg, true
		}
		if q.Pattern.MatchString(c.commandText(msg.Content)) {
			return msg, true
		}
	}
	return chat.Message{}, false
}

// commandText lowercases content and removes game bot mentions so "@game hunt" reads as "hunt".
func (c *Cache) commandText(content string) string {
	text := strings.ToLower(content)
	if c.botID != 0 {
		id := c.botID.String()
		text = strings.ReplaceAll(text, "<@!"+id+">", "")
		text = strings.ReplaceAll(text, "<@"+id+">", "")
	}
	return strings.TrimSpace(text)
}

// Sweep drops every message created more than maxAge ago and returns how many were removed.
func (c *Cache) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxAge)
	removed := 0
	for channelID, list := range c.channels {
		kept := list[:0:0]
		for _, msg := range list {
			if msg.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, msg)
		}
		if len(kept) == 0 {
			delete(c.channels, channelID)
			continue
		}
		c.channels[channelID] = kept
	}
	return removed
}

// Stats reports the number of tracked channels and cached messages.
func (c *Cache) Stats() (channels, messages int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, list := range c.channels {
		messages += len(list)
	}
	return len(c.channels), messages
}

// NormalizeName folds a display name for comparison: markdown escapes removed, NFC, Unicode case fold.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "")
	name = norm.NFC.String(strings.TrimSpace(name))
	return cases.Fold().String(name)
}
