// Package abilities resolves whether hero ability casts affected an enemy
// hero, by correlating ABILITY entries with nearby DAMAGE/MODIFIER_ADD
// entries from the same caster.
//
// This is proximity correlation over the combat log, not ground truth:
// abilities with long delays or channel mechanics can produce false
// negatives, and overlapping sources of the same modifier can produce false
// positives.
package abilities

import (
	"github.com/mfriera/go-dota-fights/internal/classify"
	"github.com/mfriera/go-dota-fights/internal/model"
)

// DefaultHitWindow is how long after a cast a correlated effect on an enemy
// hero still counts as a hit, in seconds.
const DefaultHitWindow = 2.0

// Key identifies a single ability cast.
type Key struct {
	Caster  string // cleaned hero name
	Ability string
	Tick    int
}

// HitIndex maps every hero ability cast in a match to its resolution.
// Self-targeting (no-target) abilities always apply to the caster and
// cannot miss, so they resolve to HitNotApplicable.
type HitIndex map[Key]model.HitResult

// noTargetAbilities are abilities with No Target cast behavior: they apply
// to the caster immediately, so hit/miss is meaningless for them. The table
// covers the commonly seen self-buff and self-mobility abilities; an ability
// missing here degrades to hit/miss resolution, never to an error.
var noTargetAbilities = map[string]struct{}{
	"abaddon_borrowed_time":             {},
	"alchemist_chemical_rage":           {},
	"bloodseeker_thirst":                {},
	"bristleback_warpath":               {},
	"centaur_double_edge":               {},
	"chaos_knight_phantasm":             {},
	"dragon_knight_elder_dragon_form":   {},
	"earthshaker_enchant_totem":         {},
	"faceless_void_time_walk":           {},
	"juggernaut_blade_fury":             {},
	"legion_commander_press_the_attack": {},
	"lifestealer_rage":                  {},
	"lycan_shapeshift":                  {},
	"medusa_mana_shield":                {},
	"naga_siren_mirror_image":           {},
	"nevermore_dark_lord":               {},
	"omniknight_guardian_angel":         {},
	"pangolier_gyroshell":               {},
	"phantom_lancer_doppelwalk":         {},
	"slark_shadow_dance":                {},
	"sven_gods_strength":                {},
	"terrorblade_metamorphosis":         {},
	"troll_warlord_battle_trance":       {},
	"ursa_enrage":                       {},
	"ursa_overpower":                    {},
	"windrunner_windrun":                {},
}

// IsNoTarget reports whether an ability is classified as self-only.
func IsNoTarget(ability string) bool {
	_, ok := noTargetAbilities[ability]
	return ok
}

// BuildIndex resolves every hero ability cast in events. hitWindow is the
// correlation window in seconds; pass DefaultHitWindow unless configured
// otherwise.
func BuildIndex(events []model.ClassifiedEvent, hitWindow float64) HitIndex {
	type cast struct {
		key  Key
		time float64
	}
	type effect struct {
		caster  string
		ability string // normalized
		time    float64
	}

	var casts []cast
	var effects []effect

	for _, e := range events {
		switch e.Type {
		case model.EntryAbility:
			if e.AttackerIsHero && e.Ability != "" {
				casts = append(casts, cast{
					key:  Key{Caster: e.Attacker, Ability: e.Ability, Tick: e.Tick},
					time: e.GameTime,
				})
			}
		case model.EntryDamage, model.EntryModifierAdd:
			if e.AttackerIsHero && e.TargetIsHero && e.Attacker != e.Target && e.Ability != "" {
				effects = append(effects, effect{
					caster:  e.Attacker,
					ability: classify.NormalizeAbility(e.Ability),
					time:    e.GameTime,
				})
			}
		}
	}

	index := make(HitIndex, len(casts))
	for _, c := range casts {
		if IsNoTarget(c.key.Ability) {
			index[c.key] = model.HitNotApplicable
			continue
		}
		normalized := classify.NormalizeAbility(c.key.Ability)
		outcome := model.HitMissed
		for _, ef := range effects {
			if ef.caster != c.key.Caster || ef.ability != normalized {
				continue
			}
			if ef.time >= c.time && ef.time <= c.time+hitWindow {
				outcome = model.HitLanded
				break
			}
		}
		index[c.key] = outcome
	}
	return index
}

// Annotate writes hit resolutions onto the ABILITY events in place. Hit
// stays HitNotApplicable for self-buff casts and for events that are not
// hero ability casts. Call before the event list is published; it must not
// run on shared data.
func Annotate(events []model.ClassifiedEvent, index HitIndex) {
	for i := range events {
		e := &events[i]
		if e.Type != model.EntryAbility || !e.AttackerIsHero || e.Ability == "" {
			continue
		}
		outcome, ok := index[Key{Caster: e.Attacker, Ability: e.Ability, Tick: e.Tick}]
		if !ok {
			outcome = model.HitMissed
		}
		e.Hit = outcome
	}
}
