package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/fights"
	"github.com/mfriera/go-dota-fights/internal/model"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var (
	fightsID   string
	fightsAt   float64
	fightsHero string
	fightsType string
)

var fightsCmd = &cobra.Command{
	Use:   "fights <replay.dem>",
	Short: "Detect fights by clustering hero deaths",
	Args:  cobra.ExactArgs(1),
	RunE:  runFights,
}

func init() {
	fightsCmd.Flags().StringVar(&fightsID, "id", "", "show one fight in detail (e.g. fight_3)")
	fightsCmd.Flags().Float64Var(&fightsAt, "at", 0, "show the fight at this game time (seconds)")
	fightsCmd.Flags().StringVar(&fightsHero, "hero", "", "with --at, only fights involving this hero")
	fightsCmd.Flags().StringVar(&fightsType, "type", "all", "filter the summary: all, teamfight or skirmish")
}

// newClusterer builds a fight clusterer from the loaded configuration.
func newClusterer() *fights.Clusterer {
	c := fights.NewClusterer()
	c.FightWindow = appConfig.Fights.Window
	c.TeamfightThreshold = appConfig.Fights.TeamfightThreshold
	c.GapThreshold = appConfig.Fights.GapThreshold
	c.Lookback = appConfig.Fights.Lookback
	c.Lookahead = appConfig.Fights.Lookahead
	return c
}

func runFights(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	q := combat.NewQueryService(pr.Events, pr.Positions)
	deaths := q.HeroDeaths(combat.Filter{}, false)
	result := newClusterer().DetectFights(deaths)

	if fightsID != "" {
		f := fights.FightByID(result, fightsID)
		if f == nil {
			return fmt.Errorf("no fight %q (detected %d fights)", fightsID, result.TotalFights)
		}
		report.PrintFight(os.Stdout, f)
		return nil
	}

	if cmd.Flags().Changed("at") {
		f := newClusterer().FightAt(result, fightsAt, fightsHero)
		if f == nil {
			return fmt.Errorf("no fight near %s", model.FormatGameTime(fightsAt))
		}
		report.PrintFight(os.Stdout, f)
		return nil
	}

	switch fightsType {
	case "all":
	case "teamfight":
		result = summarize(newClusterer().Teamfights(deaths))
	case "skirmish":
		result = summarize(newClusterer().Skirmishes(deaths))
	default:
		return fmt.Errorf("unknown fight type %q (want all, teamfight or skirmish)", fightsType)
	}

	report.PrintFightSummary(os.Stdout, result)
	return nil
}

func summarize(subset []model.Fight) model.FightResult {
	out := model.FightResult{Fights: subset, TotalFights: len(subset)}
	for _, f := range subset {
		out.TotalDeaths += len(f.Deaths)
		if f.IsTeamfight {
			out.Teamfights++
		}
	}
	return out
}
