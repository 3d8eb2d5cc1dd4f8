// Copyright International Livestock Research Institute, 2026.

// Package classify labels records as original research or not, using
// deterministic rules over the source-native type field, subjects, and
// title. The rules can only assert exclusion causes; a record with no
// exclusion marker and a plausible type is taken to be original
// research. The label feeds the primary output view only.
package classify

import (
	"strings"

	"github.com/ilri/bibmerge/pkg/types"
)

// exclusionMarkers are words that, appearing in the type, subjects, or
// title, mark a record as something other than original research.
var exclusionMarkers = []string{
	"review",
	"synthesis",
	"opinion",
	"perspective",
	"editorial",
	"commentary",
	"correction",
	"erratum",
}

// excludedTypes are source-native type values that never describe
// original research, beyond what the marker words already catch.
var excludedTypes = map[string]bool{
	"book":             true,
	"book chapter":     true,
	"brief":            true,
	"working paper":    true,
	"conference paper": true,
}

// Stats counts classification outcomes, with exclusions broken down by
// the field that triggered them.
type Stats struct {
	Original int
	Excluded map[string]int
}

// Total returns the number of records classified.
func (s Stats) Total() int {
	n := s.Original
	for _, c := range s.Excluded {
		n += c
	}
	return n
}

// Run labels every record in place and returns outcome counts. Records
// keep their label regardless of outcome; the output writer decides
// which view exposes it.
func Run(records []*types.Record) Stats {
	stats := Stats{Excluded: make(map[string]int)}
	for _, rec := range records {
		field, excluded := exclusionCause(rec)
		v := !excluded
		rec.IsOriginalResearch = &v
		if excluded {
			stats.Excluded[field]++
		} else {
			stats.Original++
		}
	}
	return stats
}

// exclusionCause reports which field, if any, disqualifies a record.
// Fields are checked in order of reliability: an explicit type beats a
// subject term, which beats a title word.
func exclusionCause(rec *types.Record) (string, bool) {
	if t := fold(rec.Type); t != "" {
		if excludedTypes[t] {
			return "type", true
		}
		if containsMarker(t) {
			return "type", true
		}
	}
	for _, subj := range rec.Subjects {
		if containsMarker(fold(subj)) {
			return "subject", true
		}
	}
	if containsMarker(fold(rec.Title)) {
		return "title", true
	}
	return "", false
}

// containsMarker reports whether any exclusion marker appears as a
// whole word in the folded text. Whole-word matching keeps
// "peer-reviewed journal" from tripping the "review" marker.
func containsMarker(folded string) bool {
	if folded == "" {
		return false
	}
	for _, word := range strings.Fields(folded) {
		for _, marker := range exclusionMarkers {
			if word == marker || word == marker+"s" {
				return true
			}
		}
	}
	return false
}

// fold lowercases text and strips punctuation to bare words.
func fold(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
