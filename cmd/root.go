package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfriera/go-dota-fights/internal/config"
	"github.com/mfriera/go-dota-fights/internal/decoder"
	"github.com/mfriera/go-dota-fights/internal/replaycache"
	"github.com/mfriera/go-dota-fights/internal/storage"
)

var (
	cfgPath   string
	cacheDB   string
	verbose   bool
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dotafights",
	Short: "Dota 2 replay fight analysis tool",
	Long:  "Parse Dota 2 .dem replays and reconstruct deaths, fights and objective timings from the combat log.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cacheDB != "" {
			cfg.Cache.Path = cacheDB
		}
		appConfig = cfg
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&cacheDB, "cache-db", "", "path to replay cache database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(deathsCmd)
	rootCmd.AddCommand(combatlogCmd)
	rootCmd.AddCommand(fightsCmd)
	rootCmd.AddCommand(fightCmd)
	rootCmd.AddCommand(objectivesCmd)
	rootCmd.AddCommand(couriersCmd)
	rootCmd.AddCommand(runesCmd)
	rootCmd.AddCommand(purchasesCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openStore opens the cache database, creating its directory when needed.
func openStore() (*storage.DB, error) {
	path := appConfig.Cache.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return db, nil
}

// loadReplay opens the cache and loads the given replay through it. The
// returned close function must be called when done.
func loadReplay(path string) (*replaycache.ParsedReplay, func(), error) {
	db, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	cache := replaycache.New(decoder.NewMantaDecoder(), db,
		replaycache.WithTTL(appConfig.Cache.TTL()),
		replaycache.WithHitWindow(appConfig.Fights.HitWindow))

	pr, err := cache.Load(path)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return pr, func() { db.Close() }, nil
}
