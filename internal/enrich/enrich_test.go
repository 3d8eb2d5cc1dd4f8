// Copyright International Livestock Research Institute, 2026.

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilri/bibmerge/pkg/types"
)

func TestScanCountries(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		title    string
		abstract string
		want     []string
	}{
		{
			name:  "country in title",
			title: "Dairy value chains in Kenya",
			want:  []string{"Kenya"},
		},
		{
			name:     "countries in abstract",
			title:    "Smallholder dairy systems",
			abstract: "Surveys were conducted in Ethiopia and Uganda between 2015 and 2018.",
			want:     []string{"Ethiopia", "Uganda"},
		},
		{
			name:  "Nigeria does not also match Niger",
			title: "Cassava production trends in Nigeria",
			want:  []string{"Nigeria"},
		},
		{
			name:  "punctuation does not break the match",
			title: "Livestock markets (Kenya, Tanzania): a review of constraints",
			want:  []string{"Kenya", "Tanzania"},
		},
		{
			name:  "no mention",
			title: "A global meta-analysis of feed conversion ratios",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &types.Record{Title: tt.title, Abstract: tt.abstract}
			assert.Equal(t, tt.want, e.scanCountries(rec))
		})
	}
}

func TestDeriveGeo(t *testing.T) {
	e := newTestEngine(t)

	regions, continents := deriveGeo(e.Vocab, []string{"Kenya", "Ethiopia", "India"})
	assert.Equal(t, []string{"Eastern Africa", "Southern Asia"}, regions)
	assert.Equal(t, []string{"Africa", "Asia"}, continents)
}

// TestRunFillsMissingFields drives the whole engine against fake
// services and checks that only the gaps are filled.
func TestRunFillsMissingFields(t *testing.T) {
	var crossrefCalls, unpaywallCalls, openalexCalls atomic.Int32

	crossrefSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		crossrefCalls.Add(1)
		fmt.Fprint(w, `{"message":{"publisher":"Elsevier B.V.","license":[
			{"URL":"http://creativecommons.org/licenses/by/4.0/","content-version":"vor"}]}}`)
	}))
	defer crossrefSrv.Close()
	unpaywallSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unpaywallCalls.Add(1)
		fmt.Fprint(w, `{"is_oa": true, "oa_status": "hybrid"}`)
	}))
	defer unpaywallSrv.Close()
	openalexSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		openalexCalls.Add(1)
		fmt.Fprint(w, `{"authorships":[{"institutions":[{"display_name":"ILRI"}]}]}`)
	}))
	defer openalexSrv.Close()

	oldCR, oldUP, oldOA := CrossrefAPIBase, UnpaywallAPIBase, OpenAlexAPIBase
	CrossrefAPIBase = crossrefSrv.URL + "/"
	UnpaywallAPIBase = unpaywallSrv.URL + "/"
	OpenAlexAPIBase = openalexSrv.URL + "/works"
	defer func() {
		CrossrefAPIBase, UnpaywallAPIBase, OpenAlexAPIBase = oldCR, oldUP, oldOA
	}()

	e := newTestEngine(t)
	e.Config.Workers = 2

	records := []*types.Record{
		{
			SourceID: types.SourceCGSpace,
			Title:    "Dairy intensification in Kenya",
			DOI:      "10.1016/J.AGSY.2020.102905",
		},
		{
			// Fully populated: the engine must not touch it.
			SourceID:     types.SourceMELSpace,
			Title:        "Wheat breeding in Morocco",
			DOI:          "10.1000/COMPLETE",
			Publisher:    "CABI",
			License:      "CC-BY-NC-4.0",
			AccessRights: "Open Access",
			Affiliations: []string{"International Center for Agricultural Research in the Dry Areas"},
			Countries:    []string{"Morocco"},
		},
	}

	var log bytes.Buffer
	stats := e.Run(context.Background(), records, &log)

	assert.Equal(t, "Elsevier", records[0].Publisher)
	assert.Equal(t, "CC-BY-4.0", records[0].License)
	assert.Equal(t, "Hybrid Open Access", records[0].AccessRights)
	assert.Equal(t, []string{"International Livestock Research Institute"}, records[0].Affiliations)
	assert.Equal(t, []string{"Kenya"}, records[0].Countries)
	assert.Equal(t, []string{"Eastern Africa"}, records[0].Regions)
	assert.Equal(t, []string{"Africa"}, records[0].Continents)

	assert.Equal(t, "CABI", records[1].Publisher)
	assert.Equal(t, "CC-BY-NC-4.0", records[1].License)

	assert.Equal(t, 1, stats.PublishersFilled)
	assert.Equal(t, 1, stats.LicensesFilled)
	assert.Equal(t, 1, stats.AccessFilled)
	assert.Equal(t, 1, stats.AffiliationsFilled)
	assert.Equal(t, 1, stats.CountriesFilled)
	assert.Equal(t, 0, stats.Failed)

	assert.Equal(t, int32(1), crossrefCalls.Load())
	assert.Equal(t, int32(1), unpaywallCalls.Load())
	assert.Equal(t, int32(1), openalexCalls.Load())
	assert.Empty(t, log.String())
}

// TestRunIsIdempotent checks that a second pass over already-enriched
// records changes nothing and touches the network for nothing.
func TestRunIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"message":{"publisher":"Wiley","license":[]}}`)
	}))
	defer srv.Close()

	old := CrossrefAPIBase
	CrossrefAPIBase = srv.URL + "/"
	defer func() { CrossrefAPIBase = old }()

	e := newTestEngine(t)

	records := []*types.Record{{
		SourceID:     types.SourceIFPRI,
		Title:        "Food policy outcomes in Bangladesh",
		DOI:          "10.2499/EXAMPLE",
		License:      "CC-BY-3.0",
		AccessRights: "Open Access",
		Affiliations: []string{"International Food Policy Research Institute"},
		Countries:    []string{"Bangladesh"},
	}}

	var log bytes.Buffer
	e.Run(context.Background(), records, &log)
	first := *records[0]

	e.Run(context.Background(), records, &log)
	assert.Equal(t, first, *records[0])
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunNonFatalFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	oldCR, oldUP, oldOA := CrossrefAPIBase, UnpaywallAPIBase, OpenAlexAPIBase
	CrossrefAPIBase = srv.URL + "/"
	UnpaywallAPIBase = srv.URL + "/"
	OpenAlexAPIBase = srv.URL + "/works"
	defer func() {
		CrossrefAPIBase, UnpaywallAPIBase, OpenAlexAPIBase = oldCR, oldUP, oldOA
	}()

	e := newTestEngine(t)

	records := []*types.Record{
		{SourceID: types.SourceCGSpace, Title: "Goat genetics in Ethiopia", DOI: "10.1/a"},
		{SourceID: types.SourceCGSpace, Title: "Rice yields in Vietnam", DOI: "10.1/b"},
	}

	var log bytes.Buffer
	stats := e.Run(context.Background(), records, &log)

	// Every record still came through; the failures were counted and
	// logged, and the vocabulary scan still ran.
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Ethiopia"}, records[0].Countries)
	assert.Equal(t, []string{"Vietnam"}, records[1].Countries)
	assert.NotZero(t, stats.Failed)
	assert.Contains(t, log.String(), "warning:")
}

// TestRunWithholdsCopyrightedAbstracts checks that abstracts survive
// only for Creative Commons works or when the publisher deposited the
// abstract at CrossRef.
func TestRunWithholdsCopyrightedAbstracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "10.1/DEPOSITED") {
			fmt.Fprint(w, `{"message":{"publisher":"Wiley","abstract":"<jats:p>Deposited.</jats:p>","license":[]}}`)
			return
		}
		fmt.Fprint(w, `{"message":{"publisher":"Wiley","license":[]}}`)
	}))
	defer srv.Close()

	old := CrossrefAPIBase
	CrossrefAPIBase = srv.URL + "/"
	defer func() { CrossrefAPIBase = old }()

	e := newTestEngine(t)

	base := types.Record{
		SourceID:     types.SourceCGSpace,
		AccessRights: "Limited Access",
		Affiliations: []string{"International Livestock Research Institute"},
		Countries:    []string{"Kenya"},
	}
	ccLicensed := base
	ccLicensed.Title = "Goat market participation"
	ccLicensed.DOI = "10.1/CC"
	ccLicensed.Abstract = "Survey results from three counties."
	ccLicensed.License = "CC-BY-NC-ND-4.0"
	deposited := base
	deposited.Title = "Tick resistance in zebu cattle"
	deposited.DOI = "10.1/DEPOSITED"
	deposited.Abstract = "Heritability estimates from station herds."
	deposited.Publisher = "Wiley"
	deposited.License = "Copyrighted; all rights reserved"
	undeposited := base
	undeposited.Title = "Fodder shrub adoption"
	undeposited.DOI = "10.1/UNDEPOSITED"
	undeposited.Abstract = "Adoption rates across agroecological zones."
	undeposited.Publisher = "Wiley"
	undeposited.License = "Copyrighted; all rights reserved"
	noDOI := base
	noDOI.Title = "Pastoral mobility patterns"
	noDOI.Abstract = "GPS collar traces from two districts."
	noDOI.License = "Copyrighted; all rights reserved"

	records := []*types.Record{&ccLicensed, &deposited, &undeposited, &noDOI}

	var log bytes.Buffer
	stats := e.Run(context.Background(), records, &log)

	assert.Equal(t, "Survey results from three counties.", ccLicensed.Abstract)
	assert.Equal(t, "Heritability estimates from station herds.", deposited.Abstract)
	assert.Empty(t, undeposited.Abstract)
	assert.Empty(t, noDOI.Abstract)
	assert.Equal(t, 2, stats.AbstractsWithheld)
}

func TestCachedGETRejectsUncacheableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	e := newTestEngine(t)

	_, _, err := e.cachedGET(context.Background(), serviceCrossref, "10.1/x", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")

	_, _, ok, err := e.Cache.Get(context.Background(), serviceCrossref, "10.1/x")
	require.NoError(t, err)
	assert.False(t, ok)
}
