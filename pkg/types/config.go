// Copyright International Livestock Research Institute, 2026.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that call external services.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bibmerge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceInput names the filtered CSV export for one repository.
type SourceInput struct {
	// Source identifies the repository the file was harvested from.
	Source SourceID `json:"source" yaml:"source"`

	// Path is the filtered CSV produced by the harvesting client.
	Path string `json:"path" yaml:"path"`
}

// MergeConfig holds settings for mapping and deduplication.
type MergeConfig struct {
	// Inputs lists the per-source filtered CSV files, one per repository.
	Inputs []SourceInput `json:"inputs" yaml:"inputs"`

	// DOIBlocklist is an optional CSV of DOIs to exclude (miscataloged
	// preprints, book chapters). One DOI per row under a "doi" header.
	DOIBlocklist string `json:"doi_blocklist,omitempty" yaml:"doi_blocklist,omitempty"`

	// URLBlocklist is an optional CSV of repository URLs to exclude.
	URLBlocklist string `json:"url_blocklist,omitempty" yaml:"url_blocklist,omitempty"`
}

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// CachePath is the SQLite file backing the request cache.
	CachePath string `json:"cache_path" yaml:"cache_path"`

	// ContactEmail is sent to CrossRef, Unpaywall, and OpenAlex for
	// polite-pool access. Optional but strongly recommended.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`

	// Workers bounds concurrent outbound requests (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// MaxRetries is the retry budget for rate-limited requests.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// OutputConfig holds settings for the output writer.
type OutputConfig struct {
	// PrimaryPath receives the original-research-only dataset.
	PrimaryPath string `json:"primary_path" yaml:"primary_path"`

	// CombinedPath receives the broader combined dataset.
	CombinedPath string `json:"combined_path" yaml:"combined_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Merge  MergeConfig  `json:"merge" yaml:"merge"`
	Enrich EnrichConfig `json:"enrich" yaml:"enrich"`
	Output OutputConfig `json:"output" yaml:"output"`
}
