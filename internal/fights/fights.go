// Package fights groups combat activity into discrete fights.
//
// Two independent algorithms live here: coarse time-window clustering of
// hero deaths into numbered fights, and connectivity-based boundary
// detection that isolates the exact combat-event subgraph of one fight
// around a reference time, even when several skirmishes overlap in time.
package fights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mfriera/go-dota-fights/internal/model"
)

// Defaults for the clustering thresholds.
const (
	DefaultFightWindow        = 15.0 // max seconds between deaths in one fight
	DefaultTeamfightThreshold = 3    // min deaths for a teamfight
	DefaultGapThreshold       = 3.0  // max seconds between connected events
	DefaultLookback           = 30.0 // search window before the reference time
	DefaultLookahead          = 2.0  // search window after the reference time
)

// Clusterer detects fights. The zero value is not usable; construct with
// NewClusterer.
type Clusterer struct {
	FightWindow        float64
	TeamfightThreshold int
	GapThreshold       float64
	Lookback           float64
	Lookahead          float64
}

// NewClusterer returns a Clusterer with the default thresholds.
func NewClusterer() *Clusterer {
	return &Clusterer{
		FightWindow:        DefaultFightWindow,
		TeamfightThreshold: DefaultTeamfightThreshold,
		GapThreshold:       DefaultGapThreshold,
		Lookback:           DefaultLookback,
		Lookahead:          DefaultLookahead,
	}
}

// DetectFights clusters hero deaths into fights: scanning deaths in time
// order, a death more than FightWindow seconds after the previous one starts
// a new fight. A pure function of the sorted input and the thresholds; an
// empty death list yields an empty result, not an error.
func (c *Clusterer) DetectFights(deaths []model.HeroDeath) model.FightResult {
	if len(deaths) == 0 {
		return model.FightResult{}
	}

	sorted := make([]model.HeroDeath, len(deaths))
	copy(sorted, deaths)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameTime < sorted[j].GameTime
	})

	var fights []model.Fight
	var current []model.HeroDeath

	for _, death := range sorted {
		if len(current) > 0 && death.GameTime-current[len(current)-1].GameTime > c.FightWindow {
			fights = append(fights, c.buildFight(current, len(fights)+1))
			current = nil
		}
		current = append(current, death)
	}
	fights = append(fights, c.buildFight(current, len(fights)+1))

	teamfights := 0
	for _, f := range fights {
		if f.IsTeamfight {
			teamfights++
		}
	}

	return model.FightResult{
		Fights:      fights,
		TotalDeaths: len(sorted),
		TotalFights: len(fights),
		Teamfights:  teamfights,
	}
}

func (c *Clusterer) buildFight(deaths []model.HeroDeath, number int) model.Fight {
	start := deaths[0].GameTime
	end := deaths[len(deaths)-1].GameTime

	seen := make(map[string]struct{})
	for _, d := range deaths {
		seen[d.Victim] = struct{}{}
		if d.KillerIsHero {
			seen[d.Killer] = struct{}{}
		}
	}
	participants := make([]string, 0, len(seen))
	for p := range seen {
		participants = append(participants, p)
	}
	sort.Strings(participants)

	return model.Fight{
		ID:           fmt.Sprintf("fight_%d", number),
		StartTime:    start,
		StartTimeStr: model.FormatGameTime(start),
		EndTime:      end,
		EndTimeStr:   model.FormatGameTime(end),
		Deaths:       deaths,
		Participants: participants,
		IsTeamfight:  len(deaths) >= c.TeamfightThreshold,
	}
}

// Teamfights returns only the fights with enough deaths to qualify.
func (c *Clusterer) Teamfights(deaths []model.HeroDeath) []model.Fight {
	result := c.DetectFights(deaths)
	var out []model.Fight
	for _, f := range result.Fights {
		if f.IsTeamfight {
			out = append(out, f)
		}
	}
	return out
}

// Skirmishes returns only the fights below the teamfight threshold.
func (c *Clusterer) Skirmishes(deaths []model.HeroDeath) []model.Fight {
	result := c.DetectFights(deaths)
	var out []model.Fight
	for _, f := range result.Fights {
		if !f.IsTeamfight {
			out = append(out, f)
		}
	}
	return out
}

// FightByID returns the fight with the given id ("fight_N"), or nil.
func FightByID(result model.FightResult, id string) *model.Fight {
	for i := range result.Fights {
		if result.Fights[i].ID == id {
			return &result.Fights[i]
		}
	}
	return nil
}

// FightAt returns the coarse fight containing (or nearest to) the reference
// time. When hero is non-empty, only fights involving that hero qualify.
// Returns nil when nothing matches.
func (c *Clusterer) FightAt(result model.FightResult, referenceTime float64, hero string) *model.Fight {
	heroLower := strings.ToLower(hero)
	involves := func(f *model.Fight) bool {
		if heroLower == "" {
			return true
		}
		for _, p := range f.Participants {
			if strings.Contains(strings.ToLower(p), heroLower) {
				return true
			}
		}
		return false
	}

	var best *model.Fight
	bestDist := 0.0
	for i := range result.Fights {
		f := &result.Fights[i]
		if !involves(f) {
			continue
		}
		if f.StartTime <= referenceTime && referenceTime <= f.EndTime+c.FightWindow {
			return f
		}
		mid := (f.StartTime + f.EndTime) / 2
		dist := mid - referenceTime
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best, bestDist = f, dist
		}
	}
	return best
}

// isHeroCombatType reports whether an entry type establishes fight
// participation when both sides are heroes. ABILITY_TRIGGER covers
// reflections (e.g. Lotus Orb: attacker = buff holder, target = original
// caster).
func isHeroCombatType(t model.EntryType) bool {
	switch t {
	case model.EntryDamage, model.EntryAbility, model.EntryModifierAdd,
		model.EntryDeath, model.EntryAbilityTrigger:
		return true
	}
	return false
}

// CombatSpan isolates the fight around referenceTime using participant
// connectivity over the classified event list. When anchorHero is non-empty
// the seed event must involve that hero; an anchor absent from every nearby
// hero-combat event yields an empty span (no fallback to the nearest
// unanchored fight).
func (c *Clusterer) CombatSpan(events []model.ClassifiedEvent, referenceTime float64, anchorHero string) model.FightSpan {
	searchStart := referenceTime - c.Lookback
	if searchStart < 0 {
		searchStart = 0
	}
	searchEnd := referenceTime + c.Lookahead

	// Events inside the bounded search window, restricted to the types that
	// describe combat.
	var window []model.ClassifiedEvent
	for _, e := range events {
		if !isHeroCombatType(e.Type) {
			continue
		}
		if e.GameTime < searchStart || e.GameTime > searchEnd {
			continue
		}
		window = append(window, e)
	}

	// Hero-vs-hero combat establishes connectivity; ability casts with no
	// hero target (AoE or self-cast) are folded back in afterwards.
	var heroCombat []model.ClassifiedEvent
	var looseCasts []model.ClassifiedEvent
	for _, e := range window {
		switch {
		case e.AttackerIsHero && e.TargetIsHero && e.Attacker != e.Target:
			heroCombat = append(heroCombat, e)
		case e.Type == model.EntryAbility && e.AttackerIsHero && !e.TargetIsHero:
			looseCasts = append(looseCasts, e)
		}
	}

	if len(heroCombat) == 0 {
		return emptySpan(referenceTime)
	}

	anchor := strings.ToLower(anchorHero)
	seed := -1
	seedDiff := 0.0
	for i, e := range heroCombat {
		if anchor != "" &&
			!strings.Contains(strings.ToLower(e.Attacker), anchor) &&
			!strings.Contains(strings.ToLower(e.Target), anchor) {
			continue
		}
		diff := e.GameTime - referenceTime
		if diff < 0 {
			diff = -diff
		}
		if seed < 0 || diff < seedDiff {
			seed, seedDiff = i, diff
		}
	}
	if seed < 0 {
		return emptySpan(referenceTime)
	}

	// Grow the connected component: an event joins when it shares a
	// participant with an already-accepted event within GapThreshold seconds.
	participants := map[string]struct{}{
		strings.ToLower(heroCombat[seed].Attacker): {},
		strings.ToLower(heroCombat[seed].Target):   {},
	}
	accepted := map[int]bool{seed: true}
	order := []int{seed}

	for added := true; added; {
		added = false
		for i, e := range heroCombat {
			if accepted[i] {
				continue
			}
			attacker := strings.ToLower(e.Attacker)
			target := strings.ToLower(e.Target)
			if _, ok := participants[attacker]; !ok {
				if _, ok := participants[target]; !ok {
					continue
				}
			}

			connected := false
			for _, j := range order {
				f := heroCombat[j]
				gap := e.GameTime - f.GameTime
				if gap < 0 {
					gap = -gap
				}
				if gap > c.GapThreshold {
					continue
				}
				fa := strings.ToLower(f.Attacker)
				ft := strings.ToLower(f.Target)
				if attacker == fa || attacker == ft || target == fa || target == ft {
					connected = true
					break
				}
			}
			if connected {
				accepted[i] = true
				order = append(order, i)
				participants[attacker] = struct{}{}
				participants[target] = struct{}{}
				added = true
			}
		}
	}

	start, end := heroCombat[seed].GameTime, heroCombat[seed].GameTime
	for _, i := range order {
		t := heroCombat[i].GameTime
		if t < start {
			start = t
		}
		if t > end {
			end = t
		}
	}

	// Re-scan the window: recover events inside the boundaries whose actors
	// both belong to the final participant set but that never contributed a
	// connectivity edge.
	var spanEvents []model.ClassifiedEvent
	for _, e := range window {
		if e.GameTime < start || e.GameTime > end {
			continue
		}
		if _, ok := participants[strings.ToLower(e.Attacker)]; !ok {
			continue
		}
		if _, ok := participants[strings.ToLower(e.Target)]; !ok {
			continue
		}
		spanEvents = append(spanEvents, e)
	}

	// Keep whiffed and AoE casts by participants in the narrative even
	// though they never created an edge.
	for _, e := range looseCasts {
		if _, ok := participants[strings.ToLower(e.Attacker)]; !ok {
			continue
		}
		if e.GameTime >= start-1 && e.GameTime <= end+1 {
			spanEvents = append(spanEvents, e)
		}
	}

	sort.SliceStable(spanEvents, func(i, j int) bool {
		return spanEvents[i].GameTime < spanEvents[j].GameTime
	})

	names := make([]string, 0, len(participants))
	for p := range participants {
		names = append(names, p)
	}
	sort.Strings(names)

	return model.FightSpan{
		Start:        start,
		StartStr:     model.FormatGameTime(start),
		End:          end,
		EndStr:       model.FormatGameTime(end),
		Duration:     end - start,
		Participants: names,
		TotalEvents:  len(spanEvents),
		Events:       spanEvents,
	}
}

func emptySpan(referenceTime float64) model.FightSpan {
	str := model.FormatGameTime(referenceTime)
	return model.FightSpan{
		Start:        referenceTime,
		StartStr:     str,
		End:          referenceTime,
		EndStr:       str,
		Participants: []string{},
		Events:       []model.ClassifiedEvent{},
	}
}
