// Copyright International Livestock Research Institute, 2026.

// Package output serializes the final record set into the two CSV
// views handed to collaborators: a primary view restricted to original
// research, and a broader combined view. The combined view never
// carries the original-research column; for records outside the
// primary review the classifier can only assert exclusion causes, and
// writing "false" would present them as confirmed non-original
// research.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ilri/bibmerge/pkg/types"
)

// listSeparator joins multi-valued fields inside one CSV cell.
const listSeparator = "; "

// originalResearchColumn heads the flag column in the primary view.
const originalResearchColumn = "Original research"

// baseHeader is the column order shared by both views.
var baseHeader = []string{
	"Title",
	"Authors",
	"Author affiliations",
	"Abstract",
	"Funders",
	"DOI",
	"Year",
	"Journal",
	"ISSN",
	"Volume",
	"Issue",
	"Pages",
	"Publisher",
	"Keywords",
	"Countries",
	"Regions",
	"Continents",
	"Access rights",
	"Usage rights",
	"Repository link",
	"Source(s)",
}

// WritePrimary writes the original-research-only view: records labeled
// original research, with the flag column appended.
func WritePrimary(w io.Writer, records []*types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, baseHeader...), originalResearchColumn)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		if rec.IsOriginalResearch == nil || !*rec.IsOriginalResearch {
			continue
		}
		if err := cw.Write(append(row(rec), "TRUE")); err != nil {
			return fmt.Errorf("writing record %q: %w", rec.Title, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCombined writes every record, without the original-research
// column.
func WriteCombined(w io.Writer, records []*types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(baseHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("writing record %q: %w", rec.Title, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes both views to the configured paths, creating
// parent directories as needed.
func WriteFiles(cfg types.OutputConfig, records []*types.Record) error {
	if err := writeFile(cfg.PrimaryPath, records, WritePrimary); err != nil {
		return err
	}
	return writeFile(cfg.CombinedPath, records, WriteCombined)
}

func writeFile(path string, records []*types.Record, write func(io.Writer, []*types.Record) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// row renders one record in baseHeader order. Dates are reduced to the
// year; collaborators filter on publication year, not day.
func row(rec *types.Record) []string {
	year := ""
	if rec.IssueDate.Year != 0 {
		year = strconv.Itoa(rec.IssueDate.Year)
	}

	sources := make([]string, len(rec.MergeGroup))
	for i, s := range rec.MergeGroup {
		sources[i] = string(s)
	}

	return []string{
		rec.Title,
		strings.Join(rec.Authors, listSeparator),
		strings.Join(rec.Affiliations, listSeparator),
		rec.Abstract,
		strings.Join(rec.Funders, listSeparator),
		rec.DOI,
		year,
		rec.Journal,
		rec.ISSN,
		rec.Volume,
		rec.Issue,
		rec.Pages,
		rec.Publisher,
		strings.Join(rec.Subjects, listSeparator),
		strings.Join(rec.Countries, listSeparator),
		strings.Join(rec.Regions, listSeparator),
		strings.Join(rec.Continents, listSeparator),
		rec.AccessRights,
		rec.License,
		rec.RepositoryLink,
		strings.Join(sources, listSeparator),
	}
}
