package model

import "fmt"

// Team represents which side of the map a unit belongs to.
// Values match the team numbers encoded in replay combat log entries.
type Team int

const (
	TeamUnknown Team = 0
	TeamRadiant Team = 2
	TeamDire    Team = 3
)

func (t Team) String() string {
	switch t {
	case TeamRadiant:
		return "radiant"
	case TeamDire:
		return "dire"
	default:
		return "unknown"
	}
}

// EntryType is a combat log entry type. The numeric values are the raw type
// codes emitted by the replay decoder; unmapped codes keep their value and
// render as UNKNOWN_<n> instead of being dropped.
type EntryType int

const (
	EntryDamage         EntryType = 0
	EntryHeal           EntryType = 1
	EntryModifierAdd    EntryType = 2
	EntryModifierRemove EntryType = 3
	EntryDeath          EntryType = 4
	EntryAbility        EntryType = 5
	EntryItem           EntryType = 6
	EntryLocation       EntryType = 7
	EntryGold           EntryType = 8
	EntryGameState      EntryType = 9
	EntryXP             EntryType = 10
	EntryPurchase       EntryType = 11
	EntryBuyback        EntryType = 12
	EntryAbilityTrigger EntryType = 13
	EntryFirstBlood     EntryType = 18
)

func (t EntryType) String() string {
	switch t {
	case EntryDamage:
		return "DAMAGE"
	case EntryHeal:
		return "HEAL"
	case EntryModifierAdd:
		return "MODIFIER_ADD"
	case EntryModifierRemove:
		return "MODIFIER_REMOVE"
	case EntryDeath:
		return "DEATH"
	case EntryAbility:
		return "ABILITY"
	case EntryItem:
		return "ITEM"
	case EntryLocation:
		return "LOCATION"
	case EntryGold:
		return "GOLD"
	case EntryGameState:
		return "GAME_STATE"
	case EntryXP:
		return "XP"
	case EntryPurchase:
		return "PURCHASE"
	case EntryBuyback:
		return "BUYBACK"
	case EntryAbilityTrigger:
		return "ABILITY_TRIGGER"
	case EntryFirstBlood:
		return "FIRST_BLOOD"
	default:
		return fmt.Sprintf("UNKNOWN_%d", int(t))
	}
}

// Known reports whether the type code maps to a named entry type.
func (t EntryType) Known() bool {
	switch t {
	case EntryDamage, EntryHeal, EntryModifierAdd, EntryModifierRemove,
		EntryDeath, EntryAbility, EntryItem, EntryLocation, EntryGold,
		EntryGameState, EntryXP, EntryPurchase, EntryBuyback,
		EntryAbilityTrigger, EntryFirstBlood:
		return true
	}
	return false
}

// ---- Raw structures produced by the replay decoder ----

// CombatLogEntry is a raw combat log record. Names are the undecorated unit
// identifiers from the replay (e.g. "npc_dota_hero_earthshaker").
// Ticks are monotonically non-decreasing in the source stream.
type CombatLogEntry struct {
	Tick             int
	Type             EntryType
	AttackerName     string
	TargetName       string
	TargetSourceName string
	InflictorName    string // ability or item id, "" or "dota_unknown" when none
	Value            int
	ValueName        string
	AttackerTeam     Team
	TargetTeam       Team
}

// PlayerSnapshot is one player's state within an entity snapshot.
type PlayerSnapshot struct {
	PlayerID int
	HeroName string // full unit name, e.g. "npc_dota_hero_juggernaut"
	Level    int
	LastHits int
	Denies   int
	Gold     int
	X, Y     float64
}

// EntitySnapshot is a periodic world-state sample taken by the decoder.
type EntitySnapshot struct {
	Tick     int
	GameTime float64
	Players  []PlayerSnapshot
}

// ---- Derived indices ----

// Breakpoint is one (tick, game time) correlation point.
type Breakpoint struct {
	Tick int
	Time float64
}

// GameTimeIndex maps replay ticks to game time by linear interpolation over
// a sorted breakpoint table. Game time may be negative before the horn.
type GameTimeIndex struct {
	Breakpoints []Breakpoint // strictly increasing tick, non-decreasing time
}

// NewGameTimeIndex builds an index from unsorted breakpoints, dropping
// duplicate ticks so the strictly-increasing invariant holds.
func NewGameTimeIndex(points []Breakpoint) GameTimeIndex {
	sorted := make([]Breakpoint, len(points))
	copy(sorted, points)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Tick < sorted[j-1].Tick; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	out := sorted[:0]
	for _, bp := range sorted {
		if len(out) > 0 && out[len(out)-1].Tick == bp.Tick {
			continue
		}
		out = append(out, bp)
	}
	return GameTimeIndex{Breakpoints: out}
}

// TimeAt converts a tick to game time. Ticks before the first breakpoint
// clamp to the first breakpoint's time; ticks past the last breakpoint clamp
// to the last breakpoint's time (no extrapolation). An empty index returns 0.
func (idx GameTimeIndex) TimeAt(tick int) float64 {
	bps := idx.Breakpoints
	if len(bps) == 0 {
		return 0
	}
	if tick <= bps[0].Tick {
		return bps[0].Time
	}
	// Binary search for the first breakpoint with Tick > tick.
	lo, hi := 0, len(bps)
	for lo < hi {
		mid := (lo + hi) / 2
		if bps[mid].Tick <= tick {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(bps) {
		return bps[len(bps)-1].Time
	}
	before, after := bps[lo-1], bps[lo]
	frac := float64(tick-before.Tick) / float64(after.Tick-before.Tick)
	return before.Time + frac*(after.Time-before.Time)
}

// Position is a 2D world coordinate.
type Position struct {
	X, Y float64
}

// HeroPositionIndex maps snapshot-tick buckets to per-hero world positions.
// Lookups resolve to the nearest sampled tick, not an exact one.
type HeroPositionIndex struct {
	Ticks  []int // sorted snapshot ticks
	ByTick map[int]map[string]Position
}

// NewHeroPositionIndex builds a position index from snapshot data keyed by
// cleaned hero name.
func NewHeroPositionIndex(byTick map[int]map[string]Position) HeroPositionIndex {
	ticks := make([]int, 0, len(byTick))
	for t := range byTick {
		ticks = append(ticks, t)
	}
	for i := 1; i < len(ticks); i++ {
		for j := i; j > 0 && ticks[j] < ticks[j-1]; j-- {
			ticks[j], ticks[j-1] = ticks[j-1], ticks[j]
		}
	}
	return HeroPositionIndex{Ticks: ticks, ByTick: byTick}
}

// At returns the hero's position at the snapshot tick nearest to tick.
func (idx HeroPositionIndex) At(hero string, tick int) (Position, bool) {
	if len(idx.Ticks) == 0 {
		return Position{}, false
	}
	best, bestDiff := idx.Ticks[0], absInt(idx.Ticks[0]-tick)
	for _, t := range idx.Ticks[1:] {
		if d := absInt(t - tick); d < bestDiff {
			best, bestDiff = t, d
		}
	}
	pos, ok := idx.ByTick[best][hero]
	return pos, ok
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ---- Classified events ----

// HitResult is the ternary hit resolution for a hero ability cast. The zero
// value means hit/miss does not apply (self-buff ability, or not an ability
// event), so a freshly decoded or deserialized event defaults to it.
type HitResult int

const (
	HitNotApplicable HitResult = iota
	HitMissed
	HitLanded
)

// ClassifiedEvent is a raw entry augmented with resolved game time, cleaned
// actor names, and hero flags. For ABILITY events cast by heroes, Hit
// records whether the cast affected an enemy hero.
type ClassifiedEvent struct {
	CombatLogEntry

	GameTime       float64
	GameTimeStr    string
	Attacker       string
	AttackerIsHero bool
	Target         string
	TargetIsHero   bool
	Ability        string // "" when the entry has no meaningful inflictor
	Hit            HitResult
}

// MapLocation is a classified position on the map.
type MapLocation struct {
	X, Y     float64
	Region   string
	Lane     string // "" when not on a lane
	Location string // human-readable description
}

// HeroDeath is a death entry whose target is a hero.
type HeroDeath struct {
	GameTime     float64
	GameTimeStr  string
	Tick         int
	Killer       string
	Victim       string
	KillerIsHero bool
	Ability      string // killing blow ability, "" when unknown
	Position     *MapLocation
}

// ---- Fights ----

// Fight is a time-bounded cluster of hero deaths produced by coarse
// clustering. Deaths are sorted ascending by time; StartTime and EndTime are
// the first and last death times; Participants is the sorted union of
// victims and hero killers.
type Fight struct {
	ID           string
	StartTime    float64
	StartTimeStr string
	EndTime      float64
	EndTimeStr   string
	Deaths       []HeroDeath
	Participants []string
	IsTeamfight  bool
}

func (f *Fight) Duration() float64 {
	return f.EndTime - f.StartTime
}

func (f *Fight) TotalDeaths() int {
	return len(f.Deaths)
}

// FightResult aggregates all fights detected in a match.
type FightResult struct {
	Fights      []Fight
	TotalDeaths int
	TotalFights int
	Teamfights  int
}

func (r *FightResult) Skirmishes() int {
	return r.TotalFights - r.Teamfights
}

// FightSpan is the result of connectivity-based fight boundary detection
// around a reference time. Participants is the union of hero actors in the
// connected combat subgraph, a larger set than a coarse Fight's, since it
// includes combatants who did not die. An empty span has no participants
// and start == end == the reference time.
type FightSpan struct {
	Start        float64
	StartStr     string
	End          float64
	EndStr       string
	Duration     float64
	Participants []string
	TotalEvents  int
	Events       []ClassifiedEvent
}

// ---- Objective and pickup projections ----

type RoshanKill struct {
	GameTime    float64
	GameTimeStr string
	Killer      string
	Team        string // team that killed Roshan
	KillNumber  int    // 1..N in chronological order
}

type TormentorKill struct {
	GameTime    float64
	GameTimeStr string
	Killer      string
	Team        string
	Side        string // which side's Tormentor died
}

type TowerKill struct {
	GameTime     float64
	GameTimeStr  string
	Tower        string // e.g. "radiant_t1_mid"
	Team         string // team that lost the tower
	Tier         int
	Lane         string // top/mid/bot/base
	Killer       string
	KillerIsHero bool
}

type BarracksKill struct {
	GameTime     float64
	GameTimeStr  string
	Barracks     string // e.g. "radiant_melee_mid"
	Team         string // team that lost the barracks
	Lane         string
	Type         string // melee/ranged
	Killer       string
	KillerIsHero bool
}

type CourierKill struct {
	GameTime     float64
	GameTimeStr  string
	Killer       string
	KillerIsHero bool
	Owner        string
	Team         string // team whose courier died
	Position     *MapLocation
}

type RunePickup struct {
	GameTime    float64
	GameTimeStr string
	Hero        string
	RuneType    string // display name, e.g. "Double Damage"
}

type ItemPurchase struct {
	GameTime    float64
	GameTimeStr string
	Hero        string
	Item        string
}

// FormatGameTime renders seconds as an M:SS string. Negative times (before
// the horn) render with a leading minus, e.g. "-0:30".
func FormatGameTime(seconds float64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%s%d:%02d", sign, minutes, secs)
}
