package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var objectivesCmd = &cobra.Command{
	Use:   "objectives <replay.dem>",
	Short: "List Roshan, Tormentor, tower and barracks kills",
	Args:  cobra.ExactArgs(1),
	RunE:  runObjectives,
}

func runObjectives(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	q := combat.NewQueryService(pr.Events, pr.Positions)
	report.PrintObjectives(os.Stdout, q.RoshanKills(), q.TormentorKills(), q.TowerKills(), q.BarracksKills())
	return nil
}
