package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfriera/go-dota-fights/internal/model"
	"github.com/mfriera/go-dota-fights/internal/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func joinParticipants(names []string) string {
	return strings.Join(names, ", ")
}

// PrintFightSummary prints the match-level fight counts followed by a
// per-fight table.
func PrintFightSummary(w io.Writer, result model.FightResult) {
	fmt.Fprintf(w, "\nFights: %d  |  Teamfights: %d  |  Skirmishes: %d  |  Deaths: %d\n\n",
		result.TotalFights, result.Teamfights, result.Skirmishes(), result.TotalDeaths)

	table := newTable(w)
	table.Header("ID", "START", "END", "DUR", "DEATHS", "TYPE", "PARTICIPANTS")
	for i := range result.Fights {
		f := &result.Fights[i]
		kind := "skirmish"
		if f.IsTeamfight {
			kind = "teamfight"
		}
		table.Append(
			f.ID,
			f.StartTimeStr,
			f.EndTimeStr,
			fmt.Sprintf("%.0fs", f.Duration()),
			strconv.Itoa(f.TotalDeaths()),
			kind,
			joinParticipants(f.Participants),
		)
	}
	table.Render()
}

// PrintFight prints one fight's deaths in order.
func PrintFight(w io.Writer, f *model.Fight) {
	kind := "skirmish"
	if f.IsTeamfight {
		kind = "teamfight"
	}
	fmt.Fprintf(w, "\n%s (%s)  %s – %s  |  %d deaths  |  %s\n\n",
		f.ID, kind, f.StartTimeStr, f.EndTimeStr, f.TotalDeaths(), joinParticipants(f.Participants))
	PrintDeaths(w, f.Deaths)
}

// PrintFightSpan prints a connectivity span header and its event narrative.
func PrintFightSpan(w io.Writer, span model.FightSpan) {
	if len(span.Participants) == 0 {
		fmt.Fprintf(w, "\nNo fight found around %s.\n", span.StartStr)
		return
	}
	fmt.Fprintf(w, "\nFight %s – %s (%.1fs)  |  %d events  |  %s\n\n",
		span.StartStr, span.EndStr, span.Duration, span.TotalEvents, joinParticipants(span.Participants))
	PrintEvents(w, span.Events)
}

// PrintDeaths prints hero deaths with killing ability and map location.
func PrintDeaths(w io.Writer, deaths []model.HeroDeath) {
	table := newTable(w)
	table.Header("TIME", "VICTIM", "KILLER", "ABILITY", "LOCATION")
	for _, d := range deaths {
		ability := d.Ability
		if ability == "" {
			ability = "attack"
		}
		location := ""
		if d.Position != nil {
			location = d.Position.Location
		}
		table.Append(d.GameTimeStr, d.Victim, d.Killer, ability, location)
	}
	table.Render()
}

// PrintEvents prints classified combat events. ABILITY rows show whether the
// cast connected with an enemy hero.
func PrintEvents(w io.Writer, events []model.ClassifiedEvent) {
	table := newTable(w)
	table.Header("TIME", "TYPE", "ATTACKER", "TARGET", "ABILITY", "VALUE", "HIT")
	for i := range events {
		e := &events[i]
		value := ""
		if e.Value != 0 {
			value = strconv.Itoa(e.Value)
		}
		hit := ""
		switch e.Hit {
		case model.HitLanded:
			hit = "hit"
		case model.HitMissed:
			hit = "miss"
		}
		table.Append(e.GameTimeStr, e.Type.String(), e.Attacker, e.Target, e.Ability, value, hit)
	}
	table.Render()
}

// PrintObjectives prints Roshan, Tormentor, tower and barracks kills in one
// report.
func PrintObjectives(w io.Writer, roshan []model.RoshanKill, tormentors []model.TormentorKill, towers []model.TowerKill, barracks []model.BarracksKill) {
	if len(roshan) > 0 {
		fmt.Fprintln(w, "\nRoshan:")
		table := newTable(w)
		table.Header("#", "TIME", "KILLER", "TEAM")
		for _, k := range roshan {
			table.Append(strconv.Itoa(k.KillNumber), k.GameTimeStr, k.Killer, k.Team)
		}
		table.Render()
	}

	if len(tormentors) > 0 {
		fmt.Fprintln(w, "\nTormentors:")
		table := newTable(w)
		table.Header("TIME", "KILLER", "TEAM")
		for _, k := range tormentors {
			table.Append(k.GameTimeStr, k.Killer, k.Team)
		}
		table.Render()
	}

	if len(towers) > 0 {
		fmt.Fprintln(w, "\nTowers:")
		table := newTable(w)
		table.Header("TIME", "TOWER", "KILLER")
		for _, k := range towers {
			killer := k.Killer
			if !k.KillerIsHero {
				killer = "creeps"
			}
			table.Append(k.GameTimeStr, k.Tower, killer)
		}
		table.Render()
	}

	if len(barracks) > 0 {
		fmt.Fprintln(w, "\nBarracks:")
		table := newTable(w)
		table.Header("TIME", "BARRACKS", "KILLER")
		for _, k := range barracks {
			killer := k.Killer
			if !k.KillerIsHero {
				killer = "creeps"
			}
			table.Append(k.GameTimeStr, k.Barracks, killer)
		}
		table.Render()
	}
}

// PrintCourierKills prints courier deaths.
func PrintCourierKills(w io.Writer, kills []model.CourierKill) {
	table := newTable(w)
	table.Header("TIME", "KILLER", "OWNER", "TEAM", "LOCATION")
	for _, k := range kills {
		location := ""
		if k.Position != nil {
			location = k.Position.Location
		}
		table.Append(k.GameTimeStr, k.Killer, k.Owner, k.Team, location)
	}
	table.Render()
}

// PrintRunePickups prints power rune pickups.
func PrintRunePickups(w io.Writer, pickups []model.RunePickup) {
	table := newTable(w)
	table.Header("TIME", "HERO", "RUNE")
	for _, p := range pickups {
		table.Append(p.GameTimeStr, p.Hero, p.RuneType)
	}
	table.Render()
}

// PrintItemPurchases prints item purchases.
func PrintItemPurchases(w io.Writer, purchases []model.ItemPurchase) {
	table := newTable(w)
	table.Header("TIME", "HERO", "ITEM")
	for _, p := range purchases {
		table.Append(p.GameTimeStr, p.Hero, p.Item)
	}
	table.Render()
}

// PrintCacheStats prints replay cache statistics.
func PrintCacheStats(w io.Writer, stats storage.CacheStats, ids []string) {
	fmt.Fprintf(w, "\nCached replays: %d  |  Size: %.1f MiB  |  Expired: %d\n",
		stats.Entries, float64(stats.TotalBytes)/(1<<20), stats.ExpiredCount)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
