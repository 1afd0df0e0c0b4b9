package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/combat"
	"github.com/mfriera/go-dota-fights/internal/report"
)

var couriersNoPosition bool

var couriersCmd = &cobra.Command{
	Use:   "couriers <replay.dem>",
	Short: "List courier kills",
	Args:  cobra.ExactArgs(1),
	RunE:  runCouriers,
}

func init() {
	couriersCmd.Flags().BoolVar(&couriersNoPosition, "no-position", false, "skip map position lookup")
}

func runCouriers(cmd *cobra.Command, args []string) error {
	pr, closeCache, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	defer closeCache()

	q := combat.NewQueryService(pr.Events, pr.Positions)
	report.PrintCourierKills(os.Stdout, q.CourierKills(!couriersNoPosition))
	return nil
}
