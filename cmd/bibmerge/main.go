// Copyright International Livestock Research Institute, 2026.

// Package main is the entry point for the bibmerge CLI. bibmerge
// consolidates bibliographic exports from CGIAR institutional
// repositories into one deduplicated, normalized, enriched dataset.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ilri/bibmerge/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the bibmerge CLI.
var rootCmd = &cobra.Command{
	Use:   "bibmerge",
	Short: "Merge CGIAR repository exports into one publication dataset",
	Long: `bibmerge consolidates bibliographic metadata harvested from eight CGIAR
institutional repositories into a single canonical dataset. It maps each
repository's export onto a common schema, merges duplicate records by DOI
and title, normalizes countries, regions, and publishers against fixed
vocabularies, fills gaps from CrossRef, Unpaywall, and OpenAlex, and
writes the primary and combined CSV views used by review collaborators.

Each step of the pipeline is also available as its own subcommand for
inspection and cache maintenance.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibmerge.yaml or ~/.config/bibmerge/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibmerge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibmerge"))
		}
	}

	viper.SetEnvPrefix("BIBMERGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
