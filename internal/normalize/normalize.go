// Copyright International Livestock Research Institute, 2026.

// Package normalize canonicalizes country, region, continent, and
// publisher fields against fixed reference vocabularies. The tables
// are embedded YAML loaded once at startup; nothing here touches the
// network.
package normalize

import (
	"embed"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ilri/bibmerge/pkg/types"
)

//go:embed data/countries.yaml data/publishers.yaml data/centers.yaml
var dataFS embed.FS

// countryEntry mirrors one entry of data/countries.yaml.
type countryEntry struct {
	Name      string   `yaml:"name"`
	Aliases   []string `yaml:"aliases"`
	Region    string   `yaml:"region"`
	Continent string   `yaml:"continent"`
}

// aliasEntry mirrors one entry of the publisher and center tables.
type aliasEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Vocabulary holds the read-only lookup structures built from the
// embedded reference tables.
type Vocabulary struct {
	countryByToken   map[string]string // folded token to short name
	regionByName     map[string]string
	continentByName  map[string]string
	publisherByToken map[string]string
	centerByToken    map[string]string
}

// Load parses the embedded reference tables into lookup maps. Called
// once at process start; the result is never mutated afterwards.
func Load() (*Vocabulary, error) {
	v := &Vocabulary{
		countryByToken:   make(map[string]string),
		regionByName:     make(map[string]string),
		continentByName:  make(map[string]string),
		publisherByToken: make(map[string]string),
		centerByToken:    make(map[string]string),
	}

	var countries []countryEntry
	if err := loadYAML("data/countries.yaml", &countries); err != nil {
		return nil, err
	}
	for _, c := range countries {
		if c.Name == "" || c.Region == "" || c.Continent == "" {
			return nil, fmt.Errorf("country vocabulary entry %+v missing name, region, or continent", c)
		}
		v.countryByToken[fold(c.Name)] = c.Name
		for _, a := range c.Aliases {
			v.countryByToken[fold(a)] = c.Name
		}
		v.regionByName[c.Name] = c.Region
		v.continentByName[c.Name] = c.Continent
	}

	var publishers []aliasEntry
	if err := loadYAML("data/publishers.yaml", &publishers); err != nil {
		return nil, err
	}
	for _, p := range publishers {
		v.publisherByToken[fold(p.Name)] = p.Name
		for _, a := range p.Aliases {
			v.publisherByToken[fold(a)] = p.Name
		}
	}

	var centers []aliasEntry
	if err := loadYAML("data/centers.yaml", &centers); err != nil {
		return nil, err
	}
	for _, c := range centers {
		v.centerByToken[fold(c.Name)] = c.Name
		for _, a := range c.Aliases {
			v.centerByToken[fold(a)] = c.Name
		}
	}

	return v, nil
}

func loadYAML(path string, out any) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	return nil
}

// fold normalizes a lookup token: lowercase, collapsed whitespace,
// trailing periods stripped.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	return strings.Join(strings.Fields(s), " ")
}

// Country maps a raw country-like token to its canonical short name.
func (v *Vocabulary) Country(token string) (string, bool) {
	name, ok := v.countryByToken[fold(token)]
	return name, ok
}

// Region returns the UN sub-region for a canonical country short name.
func (v *Vocabulary) Region(country string) (string, bool) {
	r, ok := v.regionByName[country]
	return r, ok
}

// Continent returns the continent for a canonical country short name.
func (v *Vocabulary) Continent(country string) (string, bool) {
	c, ok := v.continentByName[country]
	return c, ok
}

// Publisher maps a raw publisher string to its preferred form. Unlike
// countries, unmatched publishers pass through unchanged: the field is
// supplementary, not a search key.
func (v *Vocabulary) Publisher(raw string) string {
	if name, ok := v.publisherByToken[fold(raw)]; ok {
		return name
	}
	return strings.TrimSpace(raw)
}

// Center maps an organization string to a canonical CGIAR center name.
// Matching is containment-based: "International Livestock Research
// Institute (ILRI), Nairobi, Kenya" matches the ILRI entry.
func (v *Vocabulary) Center(raw string) (string, bool) {
	folded := fold(raw)
	if name, ok := v.centerByToken[folded]; ok {
		return name, true
	}
	for token, name := range v.centerByToken {
		// Acronyms only match as the whole token; containment on a
		// three-letter acronym would false-positive constantly.
		if len(token) <= 12 {
			continue
		}
		if strings.Contains(folded, token) {
			return name, true
		}
	}
	return "", false
}

// CountryNames returns every canonical short name, for vocabulary
// scans over free text.
func (v *Vocabulary) CountryNames() []string {
	names := make([]string, 0, len(v.regionByName))
	for name := range v.regionByName {
		names = append(names, name)
	}
	return names
}

// Stats counts normalization outcomes for the run summary.
type Stats struct {
	CountriesMapped  int
	CountriesDropped int
	PublishersMapped int
}

// Apply canonicalizes countries, derives regions and continents, and
// normalizes publishers on every record, in place. Unmatched country
// tokens are dropped and logged; unmatched publishers pass through.
func Apply(v *Vocabulary, records []*types.Record, w io.Writer) Stats {
	var stats Stats
	for _, rec := range records {
		rec.Countries = v.normalizeCountries(rec, w, &stats)
		rec.Regions, rec.Continents = v.derive(rec.Countries)

		if rec.Publisher != "" {
			mapped := v.Publisher(rec.Publisher)
			if mapped != rec.Publisher {
				stats.PublishersMapped++
			}
			rec.Publisher = mapped
		}

		rec.License = AlignLicense(rec.License)
		rec.AccessRights = AlignAccessRights(rec.AccessRights)
	}
	return stats
}

func (v *Vocabulary) normalizeCountries(rec *types.Record, w io.Writer, stats *Stats) []string {
	var out []string
	seen := make(map[string]bool)
	for _, token := range rec.Countries {
		name, ok := v.Country(token)
		if !ok {
			stats.CountriesDropped++
			fmt.Fprintf(w, "unmatched country %q dropped (%s: %s)\n", token, rec.SourceID, rec.Title)
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
			stats.CountriesMapped++
		}
	}
	return out
}

// derive computes the region and continent sets for a record's
// canonical countries, preserving first-occurrence order.
func (v *Vocabulary) derive(countries []string) (regions, continents []string) {
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

// AlignLicense applies the small phrase alignments that keep
// repository license values consistent with the enriched ones.
func AlignLicense(license string) string {
	return strings.ReplaceAll(license, "Attribution 4.0", "CC-BY-4.0")
}

// AlignAccessRights maps repository access-rights phrasings onto the
// forms the open-access service reports.
func AlignAccessRights(rights string) string {
	replacements := [][2]string{
		{"Closed access", "Limited Access"},
		{"Gold open access", "Gold Open Access"},
		{"Open access", "Open Access"},
	}
	for _, r := range replacements {
		rights = strings.ReplaceAll(rights, r[0], r[1])
	}
	return rights
}
