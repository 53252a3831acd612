package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/config"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/driver"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove cached unit results",
		Long:  "Remove the unit results that check --disk-cache stored under [build].cache_dir.",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
}

func runClean(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, _, err = config.Discover(".")
	}
	if err != nil {
		return err
	}
	cache, err := driver.OpenDiskCache(cfg.Build.CacheDir, "ucb")
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean %q: %w", cache.Dir(), err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed cached units in %s\n", cache.Dir())
	return nil
}
