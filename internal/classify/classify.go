// Package classify turns raw combat log entries into typed, time-resolved
// events with cleaned actor names.
package classify

import (
	"math"
	"strings"

	"github.com/mfriera/go-dota-fights/internal/model"
)

const (
	heroPrefix     = "npc_dota_hero_"
	modifierPrefix = "modifier_"

	// The decoder emits this inflictor when the killing source is unknown.
	unknownInflictor = "dota_unknown"
)

// CleanName strips the hero unit prefix from a name, leaving e.g.
// "earthshaker" from "npc_dota_hero_earthshaker". Non-hero names pass
// through unchanged.
func CleanName(name string) string {
	if strings.HasPrefix(name, heroPrefix) {
		return name[len(heroPrefix):]
	}
	return name
}

// IsHero reports whether a unit name refers to a hero. Presence of the hero
// prefix is the sole criterion, matching how the replay names units.
func IsHero(name string) bool {
	return strings.Contains(name, heroPrefix)
}

// NormalizeAbility maps modifier-name variants onto their ability name so
// ABILITY and MODIFIER_ADD entries compare equal: "modifier_naga_siren_ensnare"
// and "naga_siren_ensnare" normalize to the same key.
func NormalizeAbility(name string) string {
	if strings.HasPrefix(name, modifierPrefix) {
		return name[len(modifierPrefix):]
	}
	return name
}

// Events classifies every raw entry against the match's time index. The
// returned slice preserves source order; no entry is dropped, unmapped type
// codes surface as UNKNOWN_<n>. Ability hit resolution is a separate pass
// (see the abilities package) because it needs the full classified list.
func Events(entries []model.CombatLogEntry, idx model.GameTimeIndex) []model.ClassifiedEvent {
	events := make([]model.ClassifiedEvent, 0, len(entries))
	for _, entry := range entries {
		gameTime := idx.TimeAt(entry.Tick)

		ability := entry.InflictorName
		if ability == unknownInflictor {
			ability = ""
		}

		events = append(events, model.ClassifiedEvent{
			CombatLogEntry: entry,
			GameTime:       round1(gameTime),
			GameTimeStr:    model.FormatGameTime(gameTime),
			Attacker:       CleanName(entry.AttackerName),
			AttackerIsHero: IsHero(entry.AttackerName),
			Target:         CleanName(entry.TargetName),
			TargetIsHero:   IsHero(entry.TargetName),
			Ability:        ability,
		})
	}
	return events
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
