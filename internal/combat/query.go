// Package combat answers queries over a classified event stream: filtered
// event listings, hero deaths, objective kills and pickups.
package combat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mfriera/go-dota-fights/internal/classify"
	"github.com/mfriera/go-dota-fights/internal/mapgeo"
	"github.com/mfriera/go-dota-fights/internal/model"
)

// Filter narrows an event query. Nil time bounds mean unbounded; an empty
// Types slice selects the default combat types.
type Filter struct {
	Start *float64
	End   *float64
	Hero  string // substring match against either actor, case-insensitive
	Types []model.EntryType
}

// DefaultTypes is the event type selection used when a filter leaves Types
// empty: the types that describe hero combat.
func DefaultTypes() []model.EntryType {
	return []model.EntryType{
		model.EntryDamage,
		model.EntryModifierAdd,
		model.EntryAbility,
		model.EntryDeath,
		model.EntryAbilityTrigger,
	}
}

// rune buff modifiers to display names. Bounty and wisdom runes grant no
// buff and cannot be tracked this way.
var runeModifiers = map[string]string{
	"modifier_rune_doubledamage": "Double Damage",
	"modifier_rune_haste":        "Haste",
	"modifier_rune_invis":        "Invisibility",
	"modifier_rune_regen":        "Regeneration",
	"modifier_rune_arcane":       "Arcane",
	"modifier_rune_shield":       "Shield",
}

// QueryService answers read queries over one replay's classified events.
type QueryService struct {
	events    []model.ClassifiedEvent
	positions model.HeroPositionIndex
}

func NewQueryService(events []model.ClassifiedEvent, positions model.HeroPositionIndex) *QueryService {
	return &QueryService{events: events, positions: positions}
}

func (f Filter) allows(e model.ClassifiedEvent) bool {
	if f.Start != nil && e.GameTime < *f.Start {
		return false
	}
	if f.End != nil && e.GameTime > *f.End {
		return false
	}
	if f.Hero != "" {
		h := strings.ToLower(f.Hero)
		if !strings.Contains(strings.ToLower(e.Attacker), h) &&
			!strings.Contains(strings.ToLower(e.Target), h) {
			return false
		}
	}
	return true
}

// Events returns the events matching the filter in stream order.
func (q *QueryService) Events(f Filter) []model.ClassifiedEvent {
	types := f.Types
	if len(types) == 0 {
		types = DefaultTypes()
	}
	want := make(map[model.EntryType]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}

	var out []model.ClassifiedEvent
	for _, e := range q.events {
		if _, ok := want[e.Type]; !ok {
			continue
		}
		if !f.allows(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// HeroDeaths returns every hero death matching the filter, sorted by game
// time. When includePosition is set, the victim's map location at the death
// tick is attached.
func (q *QueryService) HeroDeaths(f Filter, includePosition bool) []model.HeroDeath {
	var out []model.HeroDeath
	for _, e := range q.events {
		if e.Type != model.EntryDeath || !e.TargetIsHero {
			continue
		}
		if !f.allows(e) {
			continue
		}
		d := model.HeroDeath{
			GameTime:     e.GameTime,
			GameTimeStr:  e.GameTimeStr,
			Tick:         e.Tick,
			Killer:       e.Attacker,
			Victim:       e.Target,
			KillerIsHero: e.AttackerIsHero,
			Ability:      e.Ability,
		}
		if includePosition {
			d.Position = q.locate(e.Target, e.Tick)
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameTime < out[j].GameTime })
	return out
}

func (q *QueryService) locate(hero string, tick int) *model.MapLocation {
	pos, ok := q.positions.At(hero, tick)
	if !ok {
		return nil
	}
	loc := mapgeo.Classify(pos.X, pos.Y)
	return &loc
}

// RoshanKills returns Roshan deaths numbered 1..N in chronological order.
func (q *QueryService) RoshanKills() []model.RoshanKill {
	var out []model.RoshanKill
	for _, e := range q.deathsOf("roshan") {
		out = append(out, model.RoshanKill{
			GameTime:    e.GameTime,
			GameTimeStr: e.GameTimeStr,
			Killer:      e.Attacker,
			Team:        e.AttackerTeam.String(),
			KillNumber:  len(out) + 1,
		})
	}
	return out
}

// TormentorKills returns Tormentor deaths. The unit is named "miniboss" in
// the combat log.
func (q *QueryService) TormentorKills() []model.TormentorKill {
	var out []model.TormentorKill
	for _, e := range q.deathsOf("miniboss") {
		team := e.AttackerTeam.String()
		out = append(out, model.TormentorKill{
			GameTime:    e.GameTime,
			GameTimeStr: e.GameTimeStr,
			Killer:      e.Attacker,
			Team:        team,
			Side:        team,
		})
	}
	return out
}

// TowerKills returns tower destructions. Building names carry the owning
// faction as goodguys (Radiant) or badguys (Dire).
func (q *QueryService) TowerKills() []model.TowerKill {
	var out []model.TowerKill
	for _, e := range q.events {
		if e.Type != model.EntryDeath {
			continue
		}
		target := strings.ToLower(e.TargetName)
		if !strings.Contains(target, "tower") {
			continue
		}
		if !strings.Contains(target, "goodguys") && !strings.Contains(target, "badguys") {
			continue
		}

		team := "dire"
		if strings.Contains(target, "goodguys") {
			team = "radiant"
		}
		tier := 1
		switch {
		case strings.Contains(target, "tower2"):
			tier = 2
		case strings.Contains(target, "tower3"):
			tier = 3
		case strings.Contains(target, "tower4"):
			tier = 4
		}
		lane := buildingLane(target)
		if lane == "" && tier == 4 {
			lane = "base"
		}
		if lane == "" {
			lane = "unknown"
		}

		out = append(out, model.TowerKill{
			GameTime:     e.GameTime,
			GameTimeStr:  e.GameTimeStr,
			Tower:        fmt.Sprintf("%s_t%d_%s", team, tier, lane),
			Team:         team,
			Tier:         tier,
			Lane:         lane,
			Killer:       e.Attacker,
			KillerIsHero: e.AttackerIsHero,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameTime < out[j].GameTime })
	return out
}

// BarracksKills returns barracks destructions.
func (q *QueryService) BarracksKills() []model.BarracksKill {
	var out []model.BarracksKill
	for _, e := range q.events {
		if e.Type != model.EntryDeath {
			continue
		}
		target := strings.ToLower(e.TargetName)
		if !strings.Contains(target, "rax") {
			continue
		}
		if !strings.Contains(target, "goodguys") && !strings.Contains(target, "badguys") {
			continue
		}

		team := "dire"
		if strings.Contains(target, "goodguys") {
			team = "radiant"
		}
		raxType := "ranged"
		if strings.Contains(target, "melee") {
			raxType = "melee"
		}
		lane := buildingLane(target)
		if lane == "" {
			lane = "unknown"
		}

		out = append(out, model.BarracksKill{
			GameTime:     e.GameTime,
			GameTimeStr:  e.GameTimeStr,
			Barracks:     team + "_" + raxType + "_" + lane,
			Team:         team,
			Lane:         lane,
			Type:         raxType,
			Killer:       e.Attacker,
			KillerIsHero: e.AttackerIsHero,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameTime < out[j].GameTime })
	return out
}

// CourierKills returns courier deaths. The owner comes from the entry's
// target source. When includePosition is set and the killer is a hero, the
// killer's location at the kill tick is attached.
func (q *QueryService) CourierKills(includePosition bool) []model.CourierKill {
	var out []model.CourierKill
	for _, e := range q.deathsOf("courier") {
		k := model.CourierKill{
			GameTime:     e.GameTime,
			GameTimeStr:  e.GameTimeStr,
			Killer:       e.Attacker,
			KillerIsHero: e.AttackerIsHero,
			Owner:        classify.CleanName(e.TargetSourceName),
			Team:         e.TargetTeam.String(),
		}
		if includePosition && e.AttackerIsHero {
			k.Position = q.locate(e.Attacker, e.Tick)
		}
		out = append(out, k)
	}
	return out
}

// RunePickups returns power rune pickups, tracked through the buff modifier
// the rune grants.
func (q *QueryService) RunePickups(f Filter) []model.RunePickup {
	var out []model.RunePickup
	for _, e := range q.events {
		if e.Type != model.EntryModifierAdd || !e.TargetIsHero {
			continue
		}
		display, ok := runeModifiers[e.InflictorName]
		if !ok {
			continue
		}
		if !f.allows(e) {
			continue
		}
		out = append(out, model.RunePickup{
			GameTime:    e.GameTime,
			GameTimeStr: e.GameTimeStr,
			Hero:        e.Target,
			RuneType:    display,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameTime < out[j].GameTime })
	return out
}

// ItemPurchases returns hero item purchases, optionally filtered by hero.
func (q *QueryService) ItemPurchases(f Filter) []model.ItemPurchase {
	var out []model.ItemPurchase
	for _, e := range q.events {
		if e.Type != model.EntryPurchase {
			continue
		}
		if !strings.Contains(strings.ToLower(e.TargetName), "hero") {
			continue
		}
		if f.Hero != "" && !strings.Contains(strings.ToLower(e.Target), strings.ToLower(f.Hero)) {
			continue
		}
		item := e.ValueName
		if item == "" {
			item = e.InflictorName
		}
		out = append(out, model.ItemPurchase{
			GameTime:    e.GameTime,
			GameTimeStr: e.GameTimeStr,
			Hero:        e.Target,
			Item:        item,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameTime < out[j].GameTime })
	return out
}

// deathsOf returns death events whose raw target name contains needle,
// sorted by game time.
func (q *QueryService) deathsOf(needle string) []model.ClassifiedEvent {
	var out []model.ClassifiedEvent
	for _, e := range q.events {
		if e.Type != model.EntryDeath {
			continue
		}
		if !strings.Contains(strings.ToLower(e.TargetName), needle) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GameTime < out[j].GameTime })
	return out
}

func buildingLane(target string) string {
	switch {
	case strings.Contains(target, "_top"):
		return "top"
	case strings.Contains(target, "_mid"):
		return "mid"
	case strings.Contains(target, "_bot"):
		return "bot"
	}
	return ""
}
