package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/report"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the parsed replay cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(time.Now())
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}
		ids, err := db.ListReplayIDs()
		if err != nil {
			return fmt.Errorf("list cached replays: %w", err)
		}
		report.PrintCacheStats(os.Stdout, stats, ids)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.PurgeExpired(time.Now())
		if err != nil {
			return fmt.Errorf("purge cache: %w", err)
		}
		fmt.Printf("Removed %d expired entries.\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.DeleteAllReplays()
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Printf("Removed %d entries.\n", n)
		return nil
	},
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop <match-id>",
	Short: "Remove one cached replay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteReplay(args[0]); err != nil {
			return fmt.Errorf("drop %s: %w", args[0], err)
		}
		fmt.Printf("Dropped %s.\n", args[0])
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheDropCmd)
}
