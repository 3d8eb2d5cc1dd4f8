// Copyright International Livestock Research Institute, 2026.

// Package mapping converts source-native CSV rows into canonical records.
// Each repository export carries its own column names; a static ColumnMap
// per source translates them. Rows that cannot yield a title and an
// in-range issue date are dropped and counted, never defaulted.
package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ilri/bibmerge/pkg/types"
)

// Stats holds counts from a mapping run.
type Stats struct {
	Mapped  int
	Dropped int
}

// Total returns the number of rows processed.
func (s Stats) Total() int { return s.Mapped + s.Dropped }

// MapFile reads a source-native CSV export and maps it to canonical
// records. Per-row drops are reported on w; only file-level problems
// (unreadable file, unknown source) return an error.
func MapFile(src types.SourceID, path string, w io.Writer) ([]*types.Record, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening source export %s: %w", path, err)
	}
	defer f.Close()

	return MapCSV(src, f, w)
}

// MapCSV maps a source-native CSV stream to canonical records.
func MapCSV(src types.SourceID, r io.Reader, w io.Writer) ([]*types.Record, Stats, error) {
	cm, ok := SourceMappings[src]
	if !ok {
		return nil, Stats{}, fmt.Errorf("no column mapping for source %q", src)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("reading CSV header for %s: %w", src, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var records []*types.Record
	var stats Stats
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Fprintf(w, "dropped %s row %d: malformed CSV: %v\n", src, line, err)
			stats.Dropped++
			continue
		}

		rec, err := mapRow(src, cm, cols, row)
		if err != nil {
			fmt.Fprintf(w, "dropped %s row %d: %v\n", src, line, err)
			stats.Dropped++
			continue
		}
		records = append(records, rec)
		stats.Mapped++
	}

	return records, stats, nil
}

// mapRow builds one canonical record from a source row, or returns an
// error when a required field cannot be derived.
func mapRow(src types.SourceID, cm ColumnMap, cols map[string]int, row []string) (*types.Record, error) {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return CleanString(row[idx])
	}

	title := get(cm.Title)
	if title == "" {
		return nil, fmt.Errorf("missing title")
	}

	issued, err := publicationDate(get(cm.Date), get(cm.DateOnline))
	if err != nil {
		return nil, err
	}
	if !issued.InRange() {
		return nil, fmt.Errorf("issue date %s outside %d-%d", issued, types.MinYear, types.MaxYear)
	}

	rec := &types.Record{
		SourceID:       src,
		Title:          title,
		DOI:            types.NormalizeDOI(get(cm.DOI)),
		Abstract:       get(cm.Abstract),
		IssueDate:      issued,
		Type:           get(cm.Type),
		Journal:        get(cm.Journal),
		ISSN:           get(cm.ISSN),
		Volume:         get(cm.Volume),
		Issue:          get(cm.Issue),
		Pages:          get(cm.Pages),
		Publisher:      get(cm.Publisher),
		License:        get(cm.License),
		AccessRights:   get(cm.AccessRights),
		RepositoryLink: get(cm.Link),
		MergeGroup:     []types.SourceID{src},
	}

	// Multi-column list fields concatenate in declared order. Some
	// sources split authors or subjects across two columns.
	rec.Authors = splitMulti(concatColumns(cm.Authors, get))
	rec.Affiliations = splitMulti(concatColumns(cm.Affiliations, get))
	rec.Funders = splitMulti(get(cm.Funders))
	rec.Countries = splitMulti(get(cm.Countries))
	rec.Subjects = CleanSubjects(concatColumns(cm.Subjects, get))

	return rec, nil
}

// concatColumns joins the values of several native columns with "; ",
// skipping empty cells.
func concatColumns(names []string, get func(string) string) string {
	var parts []string
	for _, name := range names {
		if v := get(name); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "; ")
}

// splitMulti splits a "; "-delimited cell into trimmed values.
func splitMulti(cell string) []string {
	if cell == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(cell, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanSubjects splits, lowercases, and de-duplicates a subject cell.
// Trailing periods left over from sentence-style keyword lists are
// stripped ("spectroscopy." becomes "spectroscopy"). First occurrence
// order is preserved.
func CleanSubjects(cell string) []string {
	if cell == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(cell, ";") {
		s := strings.ToLower(strings.TrimSpace(part))
		s = strings.TrimSuffix(s, ".")
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// CleanString collapses newlines and repeated spaces. Some titles and
// subjects arrive with embedded CR/LF from repository metadata.
func CleanString(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// publicationDate picks the publication date as the earlier of the
// issue date and the online date, the convention CrossRef uses. An
// online date in 2011 is ignored in favor of the issue date, since the
// inclusion window starts at 2012 and early-online dates just under
// the window are misleading.
func publicationDate(issued, online string) (types.IssueDate, error) {
	var issuedDate, onlineDate types.IssueDate
	var issuedOK, onlineOK bool

	if issued != "" {
		if d, err := types.ParseIssueDate(issued); err == nil {
			issuedDate, issuedOK = d, true
		}
	}
	if online != "" {
		if d, err := types.ParseIssueDate(online); err == nil {
			onlineDate, onlineOK = d, true
		}
	}

	switch {
	case issuedOK && onlineOK:
		if earlier(issuedDate, onlineDate) || onlineDate.Year == 2011 {
			return issuedDate, nil
		}
		return onlineDate, nil
	case issuedOK:
		return issuedDate, nil
	case onlineOK:
		return onlineDate, nil
	default:
		return types.IssueDate{}, fmt.Errorf("missing or unparseable issue date")
	}
}

// earlier reports whether a sorts before b. Unknown month/day compare
// as zero, so "2015" sorts before "2015-03".
func earlier(a, b types.IssueDate) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Day < b.Day
}
