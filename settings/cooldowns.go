package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrUnknownActivity = errors.New("settings: unknown activity")

// Cooldown is the game's base wait for one activity.
type Cooldown struct {
	Base time.Duration
	// DonorAffected is false for the few activities the game does not shorten for donors.
	DonorAffected bool
}

// Cooldowns lists every activity tag the bot knows how to time.
var Cooldowns = map[string]Cooldown{
	"hunt":      {Base: time.Minute, DonorAffected: true},
	"adventure": {Base: time.Hour, DonorAffected: true},
	"training":  {Base: 15 * time.Minute, DonorAffected: true},
	"work":      {Base: 5 * time.Minute, DonorAffected: true},
	"farm":      {Base: 10 * time.Minute, DonorAffected: true},
	"quest":     {Base: 6 * time.Hour, DonorAffected: true},
	"lootbox":   {Base: 3 * time.Hour, DonorAffected: true},
	"daily":     {Base: 24 * time.Hour, DonorAffected: false},
	"weekly":    {Base: 7 * 24 * time.Hour, DonorAffected: false},
	"duel":      {Base: 2 * time.Hour, DonorAffected: false},
	"arena":     {Base: 24 * time.Hour, DonorAffected: true},
	"dungeon":   {Base: 12 * time.Hour, DonorAffected: false},
	"horse":     {Base: 24 * time.Hour, DonorAffected: true},
	"epic":      {Base: 30 * time.Minute, DonorAffected: false},
}

// EventActivities are the reminders a global cooldown event may shift.
var EventActivities = []string{"hunt", "adventure", "training", "work", "farm", "lootbox", "quest"}

// CooldownFor looks up an activity tag.
func CooldownFor(activity string) (Cooldown, error) {
	cd, ok := Cooldowns[strings.ToLower(activity)]
	if !ok {
		return Cooldown{}, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	return cd, nil
}

// Activities returns the known activity tags in alphabetical order.
func Activities() []string {
	names := make([]string, 0, len(Cooldowns))
	for name := range Cooldowns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DonorTier is the game's patreon level. Higher tiers shorten cooldowns.
type DonorTier int

const (
	TierNone DonorTier = iota
	TierDonor
	TierEpic
	TierSuper
)

var donorTiers = []struct {
	name       string
	multiplier float64
}{
	TierNone:  {"none", 1.0},
	TierDonor: {"donor", 0.9},
	TierEpic:  {"epic", 0.8},
	TierSuper: {"super", 0.65},
}

func (t DonorTier) Valid() bool {
	return t >= TierNone && int(t) < len(donorTiers)
}

func (t DonorTier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("DonorTier(%d)", int(t))
	}
	return donorTiers[t].name
}

// Multiplier scales a donor-affected cooldown.
func (t DonorTier) Multiplier() float64 {
	if !t.Valid() {
		return 1.0
	}
	return donorTiers[t].multiplier
}

// ParseDonorTier accepts a tier name.
func ParseDonorTier(name string) (DonorTier, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, tier := range donorTiers {
		if tier.name == name {
			return DonorTier(i), true
		}
	}
	return TierNone, false
}

// DonorTiers lists every tier, lowest first.
func DonorTiers() []DonorTier {
	out := make([]DonorTier, len(donorTiers))
	for i := range donorTiers {
		out[i] = DonorTier(i)
	}
	return out
}
