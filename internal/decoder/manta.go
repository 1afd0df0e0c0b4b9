package decoder

import (
	"fmt"
	"os"
	"strings"

	"github.com/dotabuff/manta"
	"github.com/dotabuff/manta/dota"

	"github.com/mfriera/go-dota-fights/internal/model"
)

// snapshotInterval is how often (in replay ticks) world state is sampled.
// Dota replays run at 30 ticks per second, so this is one sample per ~30s
// of game time, enough resolution for interpolated time lookup and
// nearest-tick hero positions.
const snapshotInterval = 900

const heroClassPrefix = "CDOTA_Unit_Hero_"

// MantaDecoder decodes Source 2 .dem replays using dotabuff/manta.
type MantaDecoder struct{}

func NewMantaDecoder() *MantaDecoder {
	return &MantaDecoder{}
}

// DecodeCombatLog runs a full parse collecting every combat log entry.
// String table indices are resolved through the CombatLogNames table as
// entries arrive; unresolvable indices produce empty names rather than
// aborting the parse.
func (d *MantaDecoder) DecodeCombatLog(path string) ([]model.CombatLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	p, err := manta.NewStreamParser(f)
	if err != nil {
		return nil, fmt.Errorf("init replay parser: %w", err)
	}

	var entries []model.CombatLogEntry
	lookup := func(idx uint32) string {
		name, ok := p.LookupStringByIndex("CombatLogNames", int32(idx))
		if !ok {
			return ""
		}
		return name
	}

	p.Callbacks.OnCMsgDOTACombatLogEntry(func(m *dota.CMsgDOTACombatLogEntry) error {
		entries = append(entries, combatEntry(m, int(p.NetTick), lookup))
		return nil
	})

	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("parse replay %s: %w", path, err)
	}
	return entries, nil
}

// combatEntry converts one combat log message. Value doubles as a string
// table index for purchases and as a plain amount (damage, gold) for
// everything else, so ValueName is only resolved for purchase entries.
func combatEntry(m *dota.CMsgDOTACombatLogEntry, tick int, lookup func(uint32) string) model.CombatLogEntry {
	entry := model.CombatLogEntry{
		Tick:             tick,
		Type:             model.EntryType(m.GetType()),
		AttackerName:     lookup(m.GetAttackerName()),
		TargetName:       lookup(m.GetTargetName()),
		TargetSourceName: lookup(m.GetTargetSourceName()),
		InflictorName:    lookup(m.GetInflictorName()),
		Value:            int(m.GetValue()),
		AttackerTeam:     model.Team(m.GetAttackerTeam()),
		TargetTeam:       model.Team(m.GetTargetTeam()),
	}
	if entry.Type == model.EntryPurchase {
		entry.ValueName = lookup(m.GetValue())
	}
	return entry
}

// DecodeSnapshots runs a second pass over the replay sampling game time and
// hero state every snapshotInterval ticks.
func (d *MantaDecoder) DecodeSnapshots(path string) ([]model.EntitySnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	p, err := manta.NewStreamParser(f)
	if err != nil {
		return nil, fmt.Errorf("init replay parser: %w", err)
	}

	var (
		snapshots []model.EntitySnapshot
		gameRules *manta.Entity
		radiant   *manta.Entity
		dire      *manta.Entity
		heroes    = map[int32]*manta.Entity{}
		lastTick  = -snapshotInterval
	)

	p.OnEntity(func(e *manta.Entity, op manta.EntityOp) error {
		class := e.GetClassName()
		switch {
		case class == "CDOTAGamerulesProxy":
			if op&manta.EntityOpDeleted != 0 {
				gameRules = nil
			} else {
				gameRules = e
			}
		case class == "CDOTA_DataRadiant":
			if op&manta.EntityOpDeleted != 0 {
				radiant = nil
			} else {
				radiant = e
			}
		case class == "CDOTA_DataDire":
			if op&manta.EntityOpDeleted != 0 {
				dire = nil
			} else {
				dire = e
			}
		case strings.HasPrefix(class, heroClassPrefix):
			id, ok := e.GetInt32("m_iPlayerID")
			if !ok {
				return nil
			}
			if op&manta.EntityOpDeleted != 0 {
				delete(heroes, id)
			} else {
				heroes[id] = e
			}
		}
		return nil
	})

	p.Callbacks.OnCNETMsg_Tick(func(m *dota.CNETMsg_Tick) error {
		tick := int(m.GetTick())
		if tick-lastTick < snapshotInterval || gameRules == nil {
			return nil
		}
		gameTime, ok := gameRules.GetFloat32("m_pGameRules.m_fGameTime")
		if !ok {
			return nil
		}
		startTime, _ := gameRules.GetFloat32("m_pGameRules.m_flGameStartTime")
		lastTick = tick

		snap := model.EntitySnapshot{
			Tick:     tick,
			GameTime: float64(gameTime - startTime),
		}
		for id, h := range heroes {
			x, y, ok := worldPosition(h)
			if !ok {
				continue
			}
			ps := model.PlayerSnapshot{
				PlayerID: int(id),
				HeroName: heroUnitName(h.GetClassName()),
				X:        x,
				Y:        y,
			}
			if lvl, ok := h.GetInt32("m_iCurrentLevel"); ok {
				ps.Level = int(lvl)
			}
			teamData := radiant
			if onDire(id) {
				teamData = dire
			}
			readFarmStats(&ps, teamData, teamSlot(id))
			snap.Players = append(snap.Players, ps)
		}
		snapshots = append(snapshots, snap)
		return nil
	})

	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("parse replay %s: %w", path, err)
	}
	return snapshots, nil
}

// Player ids 0-4 are the radiant slots and 5-9 the dire slots; the team
// data vectors are indexed by the slot within the team.

func onDire(playerID int32) bool {
	return playerID >= 5
}

func teamSlot(playerID int32) int {
	return int(playerID % 5)
}

// readFarmStats fills last hits, denies and gold from the per-team data
// entity. Missing entity or properties leave the fields at zero.
func readFarmStats(ps *model.PlayerSnapshot, teamData *manta.Entity, slot int) {
	if teamData == nil {
		return
	}
	if v, ok := teamData.GetInt32(fmt.Sprintf("m_vecDataTeam.%04d.m_iLastHitCount", slot)); ok {
		ps.LastHits = int(v)
	}
	if v, ok := teamData.GetInt32(fmt.Sprintf("m_vecDataTeam.%04d.m_iDenyCount", slot)); ok {
		ps.Denies = int(v)
	}
	reliable, _ := teamData.GetInt32(fmt.Sprintf("m_vecDataTeam.%04d.m_iReliableGold", slot))
	unreliable, _ := teamData.GetInt32(fmt.Sprintf("m_vecDataTeam.%04d.m_iUnreliableGold", slot))
	ps.Gold = int(reliable + unreliable)
}

// worldPosition converts Source 2 cell plus intra-cell offset coordinates
// into world units.
func worldPosition(e *manta.Entity) (float64, float64, bool) {
	cellX, okX := e.GetUint64("CBodyComponent.m_cellX")
	cellY, okY := e.GetUint64("CBodyComponent.m_cellY")
	if !okX || !okY {
		return 0, 0, false
	}
	vecX, _ := e.GetFloat32("CBodyComponent.m_vecX")
	vecY, _ := e.GetFloat32("CBodyComponent.m_vecY")
	x := (float64(cellX)-128)*128 + float64(vecX)
	y := (float64(cellY)-128)*128 + float64(vecY)
	return x, y, true
}

// heroUnitName derives the npc unit name from the entity class, e.g.
// "CDOTA_Unit_Hero_ShadowShaman" becomes "npc_dota_hero_shadow_shaman".
func heroUnitName(class string) string {
	suffix := strings.TrimPrefix(class, heroClassPrefix)
	var b strings.Builder
	b.WriteString("npc_dota_hero_")
	for i, r := range suffix {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
