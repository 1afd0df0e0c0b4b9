package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/report"
)

var (
	fightAt   float64
	fightHero string
)

var fightCmd = &cobra.Command{
	Use:   "fight <replay.dem>",
	Short: "Reconstruct the exact fight around a point in time",
	Long: "Walk the combat event graph around a reference time and return only the " +
		"connected fight: its boundaries, participants and full event narrative. " +
		"Concurrent fights elsewhere on the map are excluded.",
	Args: cobra.ExactArgs(1),
	RunE: runFight,
}

func init() {
	fightCmd.Flags().Float64Var(&fightAt, "at", 0, "reference game time in seconds")
	fightCmd.Flags().StringVar(&fightHero, "hero", "", "anchor the fight on this hero")
	fightCmd.MarkFlagRequired("at")
}

func runFight(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	span := newClusterer().CombatSpan(pr.Events, fightAt, fightHero)
	report.PrintFightSpan(os.Stdout, span)
	return nil
}
