// Copyright International Livestock Research Institute, 2026.

// Package pipeline wires the processing stages into one run: map each
// source export onto the canonical schema, deduplicate, normalize
// vocabulary fields, enrich from external services, classify, and
// write the two output views. Each stage consumes the previous stage's
// record set whole; there is no cross-stage streaming.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ilri/bibmerge/internal/classify"
	"github.com/ilri/bibmerge/internal/dedupe"
	"github.com/ilri/bibmerge/internal/enrich"
	"github.com/ilri/bibmerge/internal/mapping"
	"github.com/ilri/bibmerge/internal/normalize"
	"github.com/ilri/bibmerge/internal/output"
	"github.com/ilri/bibmerge/pkg/types"
)

const defaultHTTPTimeout = 30 * time.Second

// Run executes the full pipeline. Progress and per-stage summaries go
// to w. Inputs are processed in the configured order, which is also
// the source priority order used to break merge ties, so the input
// list should stay in the documented ranking.
func Run(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
	vocab, err := normalize.Load()
	if err != nil {
		return fmt.Errorf("loading vocabularies: %w", err)
	}

	var records []*types.Record
	for _, input := range cfg.Merge.Inputs {
		mapped, stats, err := mapping.MapFile(input.Source, input.Path, w)
		if err != nil {
			return fmt.Errorf("mapping %s: %w", input.Source, err)
		}
		fmt.Fprintf(w, "%s: %d mapped, %d dropped\n", input.Source, stats.Mapped, stats.Dropped)
		records = append(records, mapped...)
	}
	fmt.Fprintf(w, "total input records: %d\n", len(records))

	result, err := dedupe.Deduplicate(records, w)
	if err != nil {
		return err
	}
	blocklist, err := dedupe.LoadBlocklist(cfg.Merge.DOIBlocklist, cfg.Merge.URLBlocklist)
	if err != nil {
		return err
	}
	result = blocklist.Filter(result, w)
	fmt.Fprintf(w, "deduplicated: %d records (%d DOI duplicates, %d title duplicates, %d blocklisted)\n",
		len(result.Records), result.DOIDups, result.TitleDups, result.Blocklisted)

	normStats := normalize.Apply(vocab, result.Records, w)
	fmt.Fprintf(w, "normalized: %d countries mapped, %d dropped, %d publishers mapped\n",
		normStats.CountriesMapped, normStats.CountriesDropped, normStats.PublishersMapped)

	if err := runEnrichment(ctx, cfg.Enrich, vocab, result.Records, w); err != nil {
		return err
	}

	classStats := classify.Run(result.Records)
	fmt.Fprintf(w, "classified: %d original research, %d excluded\n",
		classStats.Original, classStats.Total()-classStats.Original)

	if err := output.WriteFiles(cfg.Output, result.Records); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s and %s\n", cfg.Output.PrimaryPath, cfg.Output.CombinedPath)
	return nil
}

func runEnrichment(ctx context.Context, cfg types.EnrichConfig, vocab *normalize.Vocabulary, records []*types.Record, w io.Writer) error {
	cache, err := enrich.OpenCache(cfg.CachePath)
	if err != nil {
		return err
	}
	defer cache.Close()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	engine := &enrich.Engine{
		Client: &http.Client{Timeout: timeout},
		Cache:  cache,
		Vocab:  vocab,
		Config: cfg,
	}

	stats := engine.Run(ctx, records, w)
	fmt.Fprintf(w, "enriched: %s\n", stats.Summary())
	return nil
}
