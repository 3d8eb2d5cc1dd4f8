// Copyright International Livestock Research Institute, 2026.

package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilri/bibmerge/internal/enrich"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the enrichment request cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached response counts per service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openConfiguredCache(cmd)
		if err != nil {
			return err
		}
		defer cache.Close()

		counts, err := cache.Counts(cmd.Context())
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Println("cache is empty")
			return nil
		}

		services := make([]string, 0, len(counts))
		for s := range counts {
			services = append(services, s)
		}
		sort.Strings(services)

		total := 0
		for _, s := range services {
			fmt.Printf("%-12s %d\n", s, counts[s])
			total += counts[s]
		}
		fmt.Printf("%-12s %d\n", "total", total)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached responses older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openConfiguredCache(cmd)
		if err != nil {
			return err
		}
		defer cache.Close()

		maxAge, _ := cmd.Flags().GetDuration("max-age")
		removed, err := cache.Prune(cmd.Context(), maxAge)
		if err != nil {
			return err
		}
		fmt.Printf("pruned %d cached responses older than %s\n", removed, maxAge)
		return nil
	},
}

func openConfiguredCache(cmd *cobra.Command) (*enrich.Cache, error) {
	path, _ := cmd.Flags().GetString("cache")
	if path == "" {
		cfg, err := loadPipelineConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Enrich.CachePath
	}
	return enrich.OpenCache(path)
}

func init() {
	cacheStatsCmd.Flags().String("cache", "", "request cache path (default from config)")
	cachePruneCmd.Flags().String("cache", "", "request cache path (default from config)")
	cachePruneCmd.Flags().Duration("max-age", 30*24*time.Hour, "delete entries older than this")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
