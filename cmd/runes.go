package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var runesHero string

var runesCmd = &cobra.Command{
	Use:   "runes <replay.dem>",
	Short: "List power rune pickups",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunes,
}

func init() {
	runesCmd.Flags().StringVar(&runesHero, "hero", "", "only pickups by this hero")
}

func runRunes(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	q := combat.NewQueryService(pr.Events, pr.Positions)
	report.PrintRunePickups(os.Stdout, q.RunePickups(combat.Filter{Hero: runesHero}))
	return nil
}
