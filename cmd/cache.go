package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/kedare/netscope/internal/cache"
	"github.com/kedare/netscope/internal/logger"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local response cache",
	Long:  "Commands for inspecting and emptying the SQLite database caching successful API listings between runs.",
}

func withStore(fn func(cmd *cobra.Command, store *cache.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer func() { _ = store.Close() }()

		return fn(cmd, store)
	}
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache information",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, store *cache.Store) error {
		count, err := store.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count cache entries: %w", err)
		}

		size := "unknown"
		if stat, err := os.Stat(store.Path()); err == nil {
			size = humanize.Bytes(uint64(stat.Size())) // #nosec G115 -- file sizes are non-negative
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Cache Information")
		fmt.Fprintln(out, "=================")
		fmt.Fprintf(out, "Path:     %s\n", store.Path())
		fmt.Fprintf(out, "Size:     %s\n", size)
		fmt.Fprintf(out, "Entries:  %d\n", count)
		fmt.Fprintf(out, "TTL:      %s\n", store.TTL())

		return nil
	}),
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, store *cache.Store) error {
		removed, err := store.Prune(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}

		logger.Log.Infof("Removed %d expired entries", removed)

		return nil
	}),
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cache entries",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, store *cache.Store) error {
		if err := store.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		logger.Log.Info("Cache cleared")

		return nil
	}),
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cachePruneCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
