package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var purchasesHero string

var purchasesCmd = &cobra.Command{
	Use:   "purchases <replay.dem>",
	Short: "List item purchases",
	Args:  cobra.ExactArgs(1),
	RunE:  runPurchases,
}

func init() {
	purchasesCmd.Flags().StringVar(&purchasesHero, "hero", "", "only purchases by this hero")
}

func runPurchases(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	q := combat.NewQueryService(pr.Events, pr.Positions)
	report.PrintItemPurchases(os.Stdout, q.ItemPurchases(combat.Filter{Hero: purchasesHero}))
	return nil
}
