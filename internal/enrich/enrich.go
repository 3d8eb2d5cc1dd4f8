// Copyright International Livestock Research Institute, 2026.

// Package enrich fills missing record fields from external
// bibliographic services: publisher and license from CrossRef, access
// rights from Unpaywall, affiliations from OpenAlex, and countries
// from a vocabulary scan over title and abstract. Every outbound call
// goes through a durable request cache, and any single-record failure
// leaves the field empty rather than halting the run.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/ilri/bibmerge/internal/httputil"
	"github.com/ilri/bibmerge/internal/normalize"
	"github.com/ilri/bibmerge/pkg/types"
)

// Outcome classifies one field-fetch attempt.
type Outcome int

const (
	// OutcomeFound means the service returned a usable value.
	OutcomeFound Outcome = iota
	// OutcomeEmpty means the service answered but had nothing for us.
	OutcomeEmpty
	// OutcomeFailed means a network or decoding error; the field stays
	// empty and the failure is counted.
	OutcomeFailed
)

// Stats aggregates field-fetch outcomes across a run.
type Stats struct {
	mu sync.Mutex

	PublishersFilled   int
	LicensesFilled     int
	AccessFilled       int
	AffiliationsFilled int
	CountriesFilled    int
	AbstractsWithheld  int
	Empty              int
	Failed             int
}

func (s *Stats) count(outcome Outcome, filled *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch outcome {
	case OutcomeFound:
		*filled++
	case OutcomeEmpty:
		s.Empty++
	case OutcomeFailed:
		s.Failed++
	}
}

// Summary renders the run totals in one line.
func (s *Stats) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf(
		"publishers: %d, licenses: %d, access rights: %d, affiliations: %d, countries: %d, abstracts withheld: %d, empty: %d, failed: %d",
		s.PublishersFilled, s.LicensesFilled, s.AccessFilled,
		s.AffiliationsFilled, s.CountriesFilled, s.AbstractsWithheld,
		s.Empty, s.Failed)
}

// maxResponseBytes caps how much of a service response is read and
// cached. The largest CrossRef work records are well under this.
const maxResponseBytes = 4 << 20

const defaultWorkers = 4

// perServiceCap bounds concurrent in-flight requests to one service,
// independent of the worker count, to respect usage policies.
const perServiceCap = 2

// Engine queries external services to fill missing record fields.
type Engine struct {
	Client *http.Client
	Cache  *Cache
	Vocab  *normalize.Vocabulary
	Config types.EnrichConfig

	semOnce sync.Once
	sems    map[string]chan struct{}
}

// Run enriches all records, mutating them in place, and returns the
// aggregated outcome counts. Records are independent, so they are
// distributed over a bounded worker pool; the cache serializes writes
// and a per-service cap limits outbound concurrency.
func (e *Engine) Run(ctx context.Context, records []*types.Record, w io.Writer) *Stats {
	workers := e.Config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	stats := &Stats{}
	jobs := make(chan *types.Record)
	var wg sync.WaitGroup

	var logMu sync.Mutex
	logf := func(format string, args ...any) {
		logMu.Lock()
		defer logMu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				e.enrichRecord(ctx, rec, stats, logf)
			}
		}()
	}

	for _, rec := range records {
		select {
		case <-ctx.Done():
			// Abandon remaining records; the cache keeps whatever was
			// fetched so the next run resumes cheaply.
			close(jobs)
			wg.Wait()
			return stats
		case jobs <- rec:
		}
	}
	close(jobs)
	wg.Wait()

	return stats
}

// enrichRecord fills each still-missing field class for one record.
func (e *Engine) enrichRecord(ctx context.Context, rec *types.Record, stats *Stats, logf func(string, ...any)) {
	needCrossref := rec.DOI != "" && (rec.Publisher == "" || rec.License == "")
	if needCrossref {
		work, outcome, err := e.fetchCrossref(ctx, rec.DOI)
		if err != nil {
			logf("warning: CrossRef lookup failed for %s: %v\n", rec.DOI, err)
		}
		if outcome == OutcomeFound {
			if rec.Publisher == "" {
				if work.Publisher != "" {
					rec.Publisher = e.Vocab.Publisher(work.Publisher)
					stats.count(OutcomeFound, &stats.PublishersFilled)
				} else {
					stats.count(OutcomeEmpty, nil)
				}
			}
			if rec.License == "" {
				if license := licenseFromCrossref(work); license != "" {
					rec.License = license
					stats.count(OutcomeFound, &stats.LicensesFilled)
				} else {
					stats.count(OutcomeEmpty, nil)
				}
			}
		} else {
			stats.count(outcome, nil)
		}
	}

	if rec.AccessRights == "" && rec.DOI != "" {
		rights, outcome, err := e.fetchAccessRights(ctx, rec.DOI)
		if err != nil {
			logf("warning: Unpaywall lookup failed for %s: %v\n", rec.DOI, err)
		}
		if outcome == OutcomeFound {
			rec.AccessRights = rights
		}
		stats.count(outcome, &stats.AccessFilled)
	}

	if len(rec.Affiliations) == 0 {
		centers, outcome, err := e.fetchAffiliations(ctx, rec.DOI, rec.Title)
		if err != nil {
			logf("warning: OpenAlex lookup failed for %q: %v\n", rec.Title, err)
		}
		if outcome == OutcomeFound {
			rec.Affiliations = centers
		}
		stats.count(outcome, &stats.AffiliationsFilled)
	}

	if len(rec.Countries) == 0 {
		if countries := e.scanCountries(rec); len(countries) > 0 {
			rec.Countries = countries
			rec.Regions, rec.Continents = deriveGeo(e.Vocab, countries)
			stats.count(OutcomeFound, &stats.CountriesFilled)
		}
	}

	if withheld := e.filterAbstract(ctx, rec, logf); withheld {
		stats.mu.Lock()
		stats.AbstractsWithheld++
		stats.mu.Unlock()
	}
}

// filterAbstract withholds a record's abstract unless it may be
// redistributed: the work is Creative Commons licensed, or the
// publisher deposited the abstract at CrossRef (depositing grants
// redistribution under CrossRef's metadata terms). Anything else is
// dropped rather than risk distributing copyrighted text. Reports
// whether the abstract was withheld.
func (e *Engine) filterAbstract(ctx context.Context, rec *types.Record, logf func(string, ...any)) bool {
	if rec.Abstract == "" {
		return false
	}
	if strings.Contains(rec.License, "CC-") {
		return false
	}

	if rec.DOI != "" {
		work, outcome, err := e.fetchCrossref(ctx, rec.DOI)
		if err != nil {
			logf("warning: CrossRef abstract check failed for %s: %v\n", rec.DOI, err)
		}
		if outcome == OutcomeFound && work.Abstract != "" {
			return false
		}
	}

	rec.Abstract = ""
	return true
}

// cachedGET performs a GET through the request cache. Cache hits never
// touch the network. On a miss the raw body is cached before
// returning, including 404 responses; other non-200 statuses are not
// cached and surface as errors.
func (e *Engine) cachedGET(ctx context.Context, service, key, reqURL string) ([]byte, int, error) {
	if body, status, ok, err := e.Cache.Get(ctx, service, key); err != nil {
		return nil, 0, err
	} else if ok {
		return body, status, nil
	}

	e.acquire(service)
	defer e.release(service)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.Config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, e.Client, req, e.Config.MaxRetries)
	if err != nil {
		return nil, 0, fmt.Errorf("%s request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, 0, fmt.Errorf("%s returned HTTP %d", service, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s response: %w", service, err)
	}

	if err := e.Cache.Put(ctx, service, key, resp.StatusCode, body); err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func (e *Engine) acquire(service string) {
	e.semOnce.Do(func() {
		e.sems = map[string]chan struct{}{
			serviceCrossref:  make(chan struct{}, perServiceCap),
			serviceUnpaywall: make(chan struct{}, perServiceCap),
			serviceOpenAlex:  make(chan struct{}, perServiceCap),
		}
	})
	e.sems[service] <- struct{}{}
}

func (e *Engine) release(service string) {
	<-e.sems[service]
}

// scanCountries looks for exact canonical country-name mentions in the
// record's title and abstract. A last-resort heuristic: many records
// legitimately have no country.
func (e *Engine) scanCountries(rec *types.Record) []string {
	text := foldText(rec.Title + " " + rec.Abstract)
	if text == "" {
		return nil
	}

	var found []string
	for _, name := range e.Vocab.CountryNames() {
		if strings.Contains(text, foldText(name)) {
			found = append(found, name)
		}
	}
	// Map iteration order leaks through CountryNames; sort for
	// deterministic output.
	sort.Strings(found)
	return found
}

// foldText lowercases text and replaces punctuation with spaces so
// country names match on word boundaries. The result is padded with a
// leading and trailing space to keep boundary checks uniform.
func foldText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}

func deriveGeo(v *normalize.Vocabulary, countries []string) (regions, continents []string) {
	seenR := make(map[string]bool)
	seenC := make(map[string]bool)
	for _, c := range countries {
		if r, ok := v.Region(c); ok && !seenR[r] {
			seenR[r] = true
			regions = append(regions, r)
		}
		if ct, ok := v.Continent(c); ok && !seenC[ct] {
			seenC[ct] = true
			continents = append(continents, ct)
		}
	}
	return regions, continents
}
