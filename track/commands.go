package track

import (
	"regexp"
	"strings"
)

// commandAliases are the ways a player can type each activity after the prefix.
var commandAliases = map[string][]string{
	"hunt":      {"hunt", "h"},
	"adventure": {"adventure", "adv"},
	"training":  {"training", "tr", "ultraining"},
	"work":      {"chop", "fish", "pickup", "mine", "axe", "net", "ladder", "boat", "pickaxe", "tractor", "chainsaw", "bigboat", "drill"},
	"farm":      {"farm"},
	"quest":     {"quest", "epic quest"},
	"lootbox":   {"buy"},
	"daily":     {"daily"},
	"weekly":    {"weekly"},
	"duel":      {"duel"},
	"arena":     {"arena", "big arena join"},
	"dungeon":   {"dungeon", "dung", "miniboss"},
	"horse":     {"horse breed", "horse race"},
	"epic":      {"use epic item"},
}

var timeCookieAliases = []string{"use time cookie", "eat time cookie"}

// commandPatterns builds one regexp per activity matching the lowercased command text as
// the cache sees it. The prefix is optional because mention-invoked commands lose it.
func commandPatterns(prefixes []string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(commandAliases)+1)
	for activity, aliases := range commandAliases {
		out[activity] = commandPattern(prefixes, aliases)
	}
	out[timeCookieKey] = commandPattern(prefixes, timeCookieAliases)
	return out
}

const timeCookieKey = "time-cookie"

func commandPattern(prefixes, aliases []string) *regexp.Regexp {
	quote := func(in []string) string {
		parts := make([]string, 0, len(in))
		for _, s := range in {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			parts = append(parts, strings.ReplaceAll(regexp.QuoteMeta(s), " ", `\s+`))
		}
		return strings.Join(parts, "|")
	}

	var sb strings.Builder
	sb.WriteString(`^`)
	if p := quote(prefixes); p != "" {
		sb.WriteString(`(?:(?:` + p + `)\s+)?`)
	}
	sb.WriteString(`(?:` + quote(aliases) + `)\b`)
	return regexp.MustCompile(sb.String())
}
