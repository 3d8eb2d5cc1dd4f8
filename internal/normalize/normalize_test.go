// Copyright International Livestock Research Institute, 2026.

package normalize

import (
	"bytes"
	"io"
	"testing"

	"github.com/ilri/bibmerge/pkg/types"
)

func loadVocab(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

// --- country lookup ---

func TestCountryAliases(t *testing.T) {
	v := loadVocab(t)
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"Kenya", "Kenya", true},
		{"KENYA", "Kenya", true},
		{" kenya ", "Kenya", true},
		{"United Republic of Tanzania", "Tanzania", true},
		{"Viet Nam", "Vietnam", true},
		{"Ivory Coast", "Cote d'Ivoire", true},
		{"Côte d'Ivoire", "Cote d'Ivoire", true},
		{"Democratic Republic of the Congo", "DR Congo", true},
		{"Swaziland", "Eswatini", true},
		{"Lao PDR", "Laos", true},
		{"USA", "United States", true},
		{"Tibet", "", false},
		{"Atlantis", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := v.Country(tt.token)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Country(%q) = %q, %v; want %q, %v", tt.token, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// Every canonical country maps to exactly one region and one continent.
func TestCountryRoundTrip(t *testing.T) {
	v := loadVocab(t)
	for _, name := range v.CountryNames() {
		region, ok := v.Region(name)
		if !ok || region == "" {
			t.Errorf("country %q has no region", name)
		}
		continent, ok := v.Continent(name)
		if !ok || continent == "" {
			t.Errorf("country %q has no continent", name)
		}
		// The canonical name must resolve to itself.
		if short, ok := v.Country(name); !ok || short != name {
			t.Errorf("canonical name %q does not round-trip: got %q", name, short)
		}
	}
}

// --- publisher lookup ---

func TestPublisherAliases(t *testing.T) {
	v := loadVocab(t)
	tests := []struct{ raw, want string }{
		{"Elsevier BV", "Elsevier"},
		{"Elsevier B.V.", "Elsevier"},
		{"ELSEVIER", "Elsevier"},
		{"Springer Science and Business Media LLC", "Springer"},
		{"Informa UK Limited", "Taylor & Francis"},
		{"MDPI AG", "MDPI"},
		{"Wageningen Academic Publishers", "Wageningen Academic Publishers"}, // pass-through
		{"", ""},
	}
	for _, tt := range tests {
		if got := v.Publisher(tt.raw); got != tt.want {
			t.Errorf("Publisher(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

// --- center lookup ---

func TestCenterMatching(t *testing.T) {
	v := loadVocab(t)
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"ILRI", "International Livestock Research Institute", true},
		{"International Livestock Research Institute", "International Livestock Research Institute", true},
		{"International Livestock Research Institute (ILRI), Nairobi, Kenya", "International Livestock Research Institute", true},
		{"WorldFish Center", "WorldFish", true},
		{"University of Nairobi", "", false},
		{"Wageningen University and Research", "", false},
	}
	for _, tt := range tests {
		got, ok := v.Center(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Center(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

// --- Apply ---

func TestApplyNormalizesRecord(t *testing.T) {
	v := loadVocab(t)
	var buf bytes.Buffer

	rec := &types.Record{
		SourceID:  types.SourceCGSpace,
		Title:     "Test record",
		Countries: []string{"KENYA", "Viet Nam", "Narnia", "Kenya"},
		Publisher: "Elsevier B.V.",
		License:   "Attribution 4.0 International",
	}

	stats := Apply(v, []*types.Record{rec}, &buf)

	if len(rec.Countries) != 2 || rec.Countries[0] != "Kenya" || rec.Countries[1] != "Vietnam" {
		t.Errorf("Countries = %v", rec.Countries)
	}
	if len(rec.Regions) != 2 || rec.Regions[0] != "Eastern Africa" || rec.Regions[1] != "South-eastern Asia" {
		t.Errorf("Regions = %v", rec.Regions)
	}
	// Both countries are in different continents here.
	if len(rec.Continents) != 2 || rec.Continents[0] != "Africa" || rec.Continents[1] != "Asia" {
		t.Errorf("Continents = %v", rec.Continents)
	}
	if rec.Publisher != "Elsevier" {
		t.Errorf("Publisher = %q", rec.Publisher)
	}
	if rec.License != "CC-BY-4.0 International" {
		t.Errorf("License = %q", rec.License)
	}

	if stats.CountriesDropped != 1 {
		t.Errorf("CountriesDropped = %d, want 1", stats.CountriesDropped)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Narnia")) {
		t.Errorf("drop log missing unmatched token:\n%s", buf.String())
	}
}

func TestApplySharedContinent(t *testing.T) {
	v := loadVocab(t)
	rec := &types.Record{
		SourceID:  types.SourceCGSpace,
		Countries: []string{"Kenya", "Ethiopia", "Nigeria"},
	}
	Apply(v, []*types.Record{rec}, io.Discard)

	if len(rec.Regions) != 2 {
		t.Errorf("Regions = %v, want Eastern and Western Africa", rec.Regions)
	}
	if len(rec.Continents) != 1 || rec.Continents[0] != "Africa" {
		t.Errorf("Continents = %v, want just Africa", rec.Continents)
	}
}

// --- phrase alignment ---

func TestAlignAccessRights(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Closed access", "Limited Access"},
		{"Gold open access", "Gold Open Access"},
		{"Open access", "Open Access"},
		{"Green Open Access", "Green Open Access"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := AlignAccessRights(tt.in); got != tt.want {
			t.Errorf("AlignAccessRights(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
