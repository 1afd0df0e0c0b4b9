package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var (
	deathsHero       string
	deathsStart      float64
	deathsEnd        float64
	deathsNoPosition bool
)

var deathsCmd = &cobra.Command{
	Use:   "deaths <replay.dem>",
	Short: "List hero deaths with killer, ability and map location",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeaths,
}

func init() {
	deathsCmd.Flags().StringVar(&deathsHero, "hero", "", "only deaths involving this hero")
	deathsCmd.Flags().Float64Var(&deathsStart, "start", 0, "only deaths after this game time (seconds)")
	deathsCmd.Flags().Float64Var(&deathsEnd, "end", 0, "only deaths before this game time (seconds)")
	deathsCmd.Flags().BoolVar(&deathsNoPosition, "no-position", false, "skip map position lookup")
}

func runDeaths(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	f := combat.Filter{Hero: deathsHero}
	if cmd.Flags().Changed("start") {
		f.Start = &deathsStart
	}
	if cmd.Flags().Changed("end") {
		f.End = &deathsEnd
	}

	q := combat.NewQueryService(pr.Events, pr.Positions)
	deaths := q.HeroDeaths(f, !deathsNoPosition)
	report.PrintDeaths(os.Stdout, deaths)
	return nil
}
