// Copyright International Livestock Research Institute, 2026.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/ilri/bibmerge/pkg/types"
)

// loadPipelineConfig parses the config file viper located into the
// pipeline configuration. viper handles discovery and environment
// overrides for scalar settings; the structured pipeline layout (input
// list, output paths) comes straight from the YAML.
func loadPipelineConfig() (types.PipelineConfig, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		return types.PipelineConfig{}, fmt.Errorf("no config file found; create bibmerge.yaml or pass --config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.PipelineConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *types.PipelineConfig) {
	if cfg.Enrich.UserAgent == "" {
		cfg.Enrich.UserAgent = "bibmerge/" + version
	}
	if cfg.Enrich.CachePath == "" {
		cfg.Enrich.CachePath = "cache/requests.db"
	}
	if cfg.Enrich.ContactEmail == "" {
		if email := viper.GetString("contact_email"); email != "" {
			cfg.Enrich.ContactEmail = email
		} else {
			cfg.Enrich.ContactEmail = loadedSecrets.ContactEmail()
		}
	}
	if cfg.Output.PrimaryPath == "" {
		cfg.Output.PrimaryPath = "output/primary.csv"
	}
	if cfg.Output.CombinedPath == "" {
		cfg.Output.CombinedPath = "output/combined.csv"
	}
}

func validate(cfg types.PipelineConfig) error {
	if len(cfg.Merge.Inputs) == 0 {
		return fmt.Errorf("merge.inputs is empty")
	}
	for _, input := range cfg.Merge.Inputs {
		if types.PriorityRank(input.Source) >= len(types.SourcePriority) {
			return fmt.Errorf("unknown source %q", input.Source)
		}
		if input.Path == "" {
			return fmt.Errorf("source %s has no input path", input.Source)
		}
	}
	return nil
}
