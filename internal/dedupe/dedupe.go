// Copyright International Livestock Research Institute, 2026.

// Package dedupe clusters canonical records that describe the same
// publication and merges each cluster into a single survivor.
//
// Matching is deliberately conservative: identical normalized DOIs are
// authoritative, and records without a DOI partner match only on exact
// normalized-title equality. No fuzzy or edit-distance matching is
// attempted, so a missed duplicate is possible but a false merge is not.
package dedupe

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/ilri/bibmerge/pkg/types"
)

// Result holds the surviving records and per-run removal counts.
type Result struct {
	Records     []*types.Record
	DOIDups     int
	TitleDups   int
	Blocklisted int
}

// Removed returns the total number of records merged away or excluded.
func (r Result) Removed() int { return r.DOIDups + r.TitleDups + r.Blocklisted }

// Deduplicate clusters records by DOI, then by normalized title, and
// merges each cluster. Input order determines output order of
// survivors (first cluster member anchors the position). A cluster
// holding two distinct DOIs indicates a broken matching assumption and
// returns an error; the run must not paper over it.
func Deduplicate(records []*types.Record, w io.Writer) (Result, error) {
	type cluster struct {
		doi     string
		members []*types.Record
	}

	var clusters []*cluster
	byDOI := make(map[string]*cluster)
	byTitle := make(map[string]*cluster)

	for _, rec := range records {
		titleKey := NormalizeTitle(rec.Title)

		if rec.DOI != "" {
			if c, ok := byDOI[rec.DOI]; ok {
				c.members = append(c.members, rec)
				continue
			}
			// A DOI-less title cluster with the same title absorbs this
			// record and adopts its DOI. A title cluster that already
			// carries a different DOI stays separate: titles collide
			// across genuinely different publications, DOIs do not.
			if titleKey != "" {
				if c, ok := byTitle[titleKey]; ok && c.doi == "" {
					c.doi = rec.DOI
					c.members = append(c.members, rec)
					byDOI[rec.DOI] = c
					continue
				}
			}
			c := &cluster{doi: rec.DOI, members: []*types.Record{rec}}
			byDOI[rec.DOI] = c
			clusters = append(clusters, c)
			if titleKey != "" {
				if _, taken := byTitle[titleKey]; !taken {
					byTitle[titleKey] = c
				}
			}
			continue
		}

		// DOI-less records join an existing cluster only on exact
		// normalized-title equality.
		if titleKey != "" {
			if c, ok := byTitle[titleKey]; ok {
				c.members = append(c.members, rec)
				continue
			}
		}
		c := &cluster{members: []*types.Record{rec}}
		clusters = append(clusters, c)
		if titleKey != "" {
			byTitle[titleKey] = c
		}
	}

	var result Result
	for _, c := range clusters {
		if err := checkIntegrity(c.doi, c.members); err != nil {
			return Result{}, err
		}
		merged := mergeCluster(c.members)
		result.Records = append(result.Records, merged)

		dups := len(c.members) - 1
		if dups > 0 {
			if c.doi != "" {
				result.DOIDups += dups
			} else {
				result.TitleDups += dups
			}
			fmt.Fprintf(w, "merged %d records: %s\n", len(c.members), merged.Title)
		}
	}

	return result, nil
}

// checkIntegrity verifies that a cluster carries at most one distinct
// DOI. The matching policy never places two DOI-bearing records with
// different DOIs in one cluster, so a violation is a data-integrity
// defect that aborts the run.
func checkIntegrity(doi string, members []*types.Record) error {
	for _, m := range members {
		if m.DOI != "" && doi != "" && m.DOI != doi {
			return fmt.Errorf("dedup integrity: cluster for DOI %s contains conflicting DOI %s (title %q)",
				doi, m.DOI, m.Title)
		}
	}
	return nil
}

// mergeCluster merges cluster members into one record. The base is the
// member with the most populated fields, tie-broken by source priority.
// List fields are set-unioned preserving base order; scalar fields keep
// the base value, falling back to the first non-empty value in source
// priority order.
func mergeCluster(members []*types.Record) *types.Record {
	if len(members) == 1 {
		return members[0]
	}

	ordered := make([]*types.Record, len(members))
	copy(ordered, members)
	sort.SliceStable(ordered, func(i, j int) bool {
		return types.PriorityRank(ordered[i].SourceID) < types.PriorityRank(ordered[j].SourceID)
	})

	base := ordered[0]
	for _, m := range ordered[1:] {
		if m.FieldCount() > base.FieldCount() {
			base = m
		}
	}

	for _, m := range ordered {
		base.AddToMergeGroup(m.SourceID)
		if m == base {
			continue
		}

		base.Authors = unionList(base.Authors, m.Authors)
		base.Subjects = unionList(base.Subjects, m.Subjects)
		base.Countries = unionList(base.Countries, m.Countries)
		base.Affiliations = unionList(base.Affiliations, m.Affiliations)
		base.Funders = unionList(base.Funders, m.Funders)

		fillScalar(&base.DOI, m.DOI)
		fillScalar(&base.Abstract, m.Abstract)
		fillScalar(&base.Publisher, m.Publisher)
		fillScalar(&base.Journal, m.Journal)
		fillScalar(&base.ISSN, m.ISSN)
		fillScalar(&base.Volume, m.Volume)
		fillScalar(&base.Issue, m.Issue)
		fillScalar(&base.Pages, m.Pages)
		fillScalar(&base.License, m.License)
		fillScalar(&base.AccessRights, m.AccessRights)
		fillScalar(&base.RepositoryLink, m.RepositoryLink)
		fillScalar(&base.Type, m.Type)
	}

	return base
}

// unionList appends values of src not already in dst, preserving order.
func unionList(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}

// fillScalar sets *dst to v only when *dst is empty. Callers walk
// cluster members in source priority order, so the first non-empty
// value in that order wins.
func fillScalar(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// NormalizeTitle case-folds, strips punctuation, and collapses
// whitespace so titles differing only in that boilerplate compare equal.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Blocklist holds DOIs and repository URLs excluded from the dataset
// (miscataloged preprints, book chapters, withdrawn items).
type Blocklist struct {
	DOIs map[string]bool
	URLs map[string]bool
}

// Filter removes blocklisted records from a deduplicated result,
// updating the Blocklisted count.
func (b Blocklist) Filter(result Result, w io.Writer) Result {
	if len(b.DOIs) == 0 && len(b.URLs) == 0 {
		return result
	}

	kept := result.Records[:0]
	for _, rec := range result.Records {
		if rec.DOI != "" && b.DOIs[rec.DOI] {
			fmt.Fprintf(w, "excluded by DOI blocklist: %s\n", rec.DOI)
			result.Blocklisted++
			continue
		}
		if rec.RepositoryLink != "" && b.URLs[rec.RepositoryLink] {
			fmt.Fprintf(w, "excluded by URL blocklist: %s\n", rec.RepositoryLink)
			result.Blocklisted++
			continue
		}
		kept = append(kept, rec)
	}
	result.Records = kept
	return result
}
