package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/model"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var (
	combatlogHero  string
	combatlogStart float64
	combatlogEnd   float64
	combatlogTypes []int
)

var combatlogCmd = &cobra.Command{
	Use:   "combatlog <replay.dem>",
	Short: "List classified combat log events",
	Long: "List combat log events with resolved game times and hero names. " +
		"Ability casts by heroes are annotated with whether they affected an enemy hero.",
	Args: cobra.ExactArgs(1),
	RunE: runCombatlog,
}

func init() {
	combatlogCmd.Flags().StringVar(&combatlogHero, "hero", "", "only events involving this hero")
	combatlogCmd.Flags().Float64Var(&combatlogStart, "start", 0, "only events after this game time (seconds)")
	combatlogCmd.Flags().Float64Var(&combatlogEnd, "end", 0, "only events before this game time (seconds)")
	combatlogCmd.Flags().IntSliceVar(&combatlogTypes, "types", nil, "event type ids to include (default: damage, modifiers, abilities, deaths)")
}

func runCombatlog(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	f := combat.Filter{Hero: combatlogHero}
	if cmd.Flags().Changed("start") {
		f.Start = &combatlogStart
	}
	if cmd.Flags().Changed("end") {
		f.End = &combatlogEnd
	}
	for _, t := range combatlogTypes {
		f.Types = append(f.Types, model.EntryType(t))
	}

	q := combat.NewQueryService(pr.Events, pr.Positions)
	report.PrintEvents(os.Stdout, q.Events(f))
	return nil
}
