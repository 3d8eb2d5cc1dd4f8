// Copyright International Livestock Research Institute, 2026.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilri/bibmerge/internal/mapping"
	"github.com/ilri/bibmerge/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the supported source repositories in priority order",
	Long: `Sources lists every repository bibmerge can ingest, in the priority
order used to break ties when merging duplicate records. A source
without a field mapping cannot be ingested and is marked as such.`,
	Run: func(cmd *cobra.Command, args []string) {
		for i, src := range types.SourcePriority {
			_, mapped := mapping.SourceMappings[src]
			status := ""
			if !mapped {
				status = "  (no field mapping)"
			}
			fmt.Printf("%d. %s%s\n", i+1, src, status)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
