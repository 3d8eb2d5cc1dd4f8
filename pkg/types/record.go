// Copyright International Livestock Research Institute, 2026.

// Package types defines shared data structures for the bibmerge pipeline:
// the canonical record, the source registry, and per-stage configuration.
package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceID identifies one of the eight institutional repositories.
type SourceID string

const (
	SourceCGSpace   SourceID = "CGSpace DSpace"
	SourceMELSpace  SourceID = "MELSpace DSpace"
	SourceWorldFish SourceID = "WorldFish DSpace"
	SourceCIFOR     SourceID = "CIFOR DSpace"
	SourceIFPRI     SourceID = "IFPRI Library"
	SourceIRRI      SourceID = "IRRI Library"
	SourceICRISAT   SourceID = "ICRISAT OAR"
	SourceCIMMYT    SourceID = "CIMMYT DSpace"
)

// SourcePriority orders the eight sources by collection size and
// observed metadata richness. Deduplication uses this order to break
// ties when choosing a merge base and to pick scalar values when the
// base record leaves a field empty.
var SourcePriority = []SourceID{
	SourceCGSpace,
	SourceMELSpace,
	SourceWorldFish,
	SourceCIFOR,
	SourceIFPRI,
	SourceIRRI,
	SourceICRISAT,
	SourceCIMMYT,
}

// PriorityRank returns the position of s in SourcePriority, or
// len(SourcePriority) for an unknown source so unknowns sort last.
func PriorityRank(s SourceID) int {
	for i, id := range SourcePriority {
		if id == s {
			return i
		}
	}
	return len(SourcePriority)
}

// MinYear and MaxYear bound the issue-date inclusion window.
const (
	MinYear = 2012
	MaxYear = 2023
)

// IssueDate is a publication date with year, year-month, or full-day
// precision. Month and Day are zero when unknown.
type IssueDate struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month,omitempty" yaml:"month,omitempty"`
	Day   int `json:"day,omitempty" yaml:"day,omitempty"`
}

// ParseIssueDate parses "YYYY", "YYYY-MM", or "YYYY-MM-DD".
func ParseIssueDate(s string) (IssueDate, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, "-", 3)

	var d IssueDate
	var layout string
	switch len(parts) {
	case 1:
		layout = "2006"
	case 2:
		layout = "2006-01"
	default:
		layout = "2006-01-02"
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return d, fmt.Errorf("parsing issue date %q: %w", s, err)
	}

	d.Year = t.Year()
	if len(parts) >= 2 {
		d.Month = int(t.Month())
	}
	if len(parts) >= 3 {
		d.Day = t.Day()
	}
	return d, nil
}

// IsZero reports whether the date is unset.
func (d IssueDate) IsZero() bool { return d.Year == 0 }

// InRange reports whether the year falls within [MinYear, MaxYear].
func (d IssueDate) InRange() bool { return d.Year >= MinYear && d.Year <= MaxYear }

// String renders the date at its original precision.
func (d IssueDate) String() string {
	switch {
	case d.Year == 0:
		return ""
	case d.Month == 0:
		return strconv.Itoa(d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// Record is the canonical representation of one publication. The schema
// mapper creates one Record per source row; deduplication merges
// records describing the same publication; normalization, enrichment,
// and classification mutate survivors in place.
type Record struct {
	// SourceID is the origin repository. Immutable after mapping.
	SourceID SourceID `json:"source_id" yaml:"source_id"`

	// Title is the publication title with normalized whitespace. Required.
	Title string `json:"title" yaml:"title"`

	// DOI is the bare, uppercase-normalized DOI ("10.X/Y"), or empty.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the publication abstract, when the source carries one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Subjects holds keyword and topic terms in stable insertion order.
	Subjects []string `json:"subjects,omitempty" yaml:"subjects,omitempty"`

	// IssueDate is the publication date. Required, within [2012, 2023].
	IssueDate IssueDate `json:"issue_date" yaml:"issue_date"`

	// Countries holds canonical country short names. Post-normalization
	// it contains only values from the country vocabulary.
	Countries []string `json:"countries,omitempty" yaml:"countries,omitempty"`

	// Regions and Continents are derived from Countries.
	Regions    []string `json:"regions,omitempty" yaml:"regions,omitempty"`
	Continents []string `json:"continents,omitempty" yaml:"continents,omitempty"`

	// Affiliations holds organization names. Only CGIAR center names
	// are normalized; other strings are kept as supplied.
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`

	// Funders lists funding bodies as supplied by the source.
	Funders []string `json:"funders,omitempty" yaml:"funders,omitempty"`

	// Type is the source-native output type (e.g. "Journal Article"),
	// used by the research-type classifier.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	ISSN    string `json:"issn,omitempty" yaml:"issn,omitempty"`
	Volume  string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue   string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages   string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Publisher is the normalized publisher name, or empty.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// License is the usage-rights value (e.g. "CC-BY-4.0").
	License string `json:"license,omitempty" yaml:"license,omitempty"`

	// AccessRights is the open-access status (e.g. "Gold Open Access").
	AccessRights string `json:"access_rights,omitempty" yaml:"access_rights,omitempty"`

	// RepositoryLink is the source repository item URL.
	RepositoryLink string `json:"repository_link,omitempty" yaml:"repository_link,omitempty"`

	// IsOriginalResearch is set by the classifier for the primary
	// dataset only. Nil means unclassified; the combined view never
	// exposes this field.
	IsOriginalResearch *bool `json:"is_original_research,omitempty" yaml:"is_original_research,omitempty"`

	// MergeGroup records every source that contributed to this record.
	// Always has at least one element; more than one marks a merge.
	MergeGroup []SourceID `json:"merge_group" yaml:"merge_group"`
}

// InMergeGroup reports whether s already appears in the merge group.
func (r *Record) InMergeGroup(s SourceID) bool {
	for _, id := range r.MergeGroup {
		if id == s {
			return true
		}
	}
	return false
}

// AddToMergeGroup appends s to the merge group if not already present.
func (r *Record) AddToMergeGroup(s SourceID) {
	if !r.InMergeGroup(s) {
		r.MergeGroup = append(r.MergeGroup, s)
	}
}

// FieldCount returns the number of populated canonical fields. The
// deduplicator uses it to pick the richest record in a cluster as the
// merge base.
func (r *Record) FieldCount() int {
	n := 0
	for _, s := range []string{
		r.Title, r.DOI, r.Abstract, r.Journal, r.ISSN, r.Volume,
		r.Issue, r.Pages, r.Publisher, r.License, r.AccessRights,
		r.RepositoryLink,
	} {
		if s != "" {
			n++
		}
	}
	for _, l := range [][]string{
		r.Authors, r.Subjects, r.Countries, r.Affiliations, r.Funders,
	} {
		if len(l) > 0 {
			n++
		}
	}
	if !r.IssueDate.IsZero() {
		n++
	}
	return n
}

// NormalizeDOI repairs common DOI defects seen in repository metadata
// and returns the bare DOI in uppercase, or "" when the input does not
// reduce to a DOI. Handled forms include "doi:" prefixes, resolver
// URLs (doi.org, dx.doi.org, publisher full-text URLs), a leading "0."
// typo, stray spaces inside the scheme, and zero-width characters.
func NormalizeDOI(raw string) string {
	doi := strings.TrimSpace(raw)
	if doi == "" {
		return ""
	}

	doi = strings.ReplaceAll(doi, "​", "")
	doi = strings.ReplaceAll(doi, "https:// doi.org/", "")
	doi = strings.ReplaceAll(doi, "http://dx.doi.org/DOI:", "")
	doi = strings.ReplaceAll(doi, "https://www.tandfonline.com/doi/full/", "")

	for _, prefix := range []string{
		"https://doi.org/", "http://doi.org/",
		"https://dx.doi.org/", "http://dx.doi.org/",
	} {
		doi = strings.TrimPrefix(doi, prefix)
	}

	// "doi:10.1088/..." and "DOI: 10.1088/..." forms.
	lower := strings.ToLower(doi)
	if strings.HasPrefix(lower, "doi:") {
		doi = strings.TrimSpace(doi[len("doi:"):])
	}

	// A known typo drops the leading "1" from the directory indicator.
	if strings.HasPrefix(doi, "0.") {
		doi = "1" + doi
	}

	doi = strings.TrimSpace(doi)
	if !strings.HasPrefix(doi, "10.") {
		return ""
	}
	return strings.ToUpper(doi)
}
