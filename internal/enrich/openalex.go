// Copyright International Livestock Research Institute, 2026.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// OpenAlexAPIBase is the OpenAlex works endpoint. Declared as a var so
// tests can substitute an httptest server.
var OpenAlexAPIBase = "https://api.openalex.org/works"

const serviceOpenAlex = "openalex"

// OpenAlex API JSON structures. Only the authorship institutions are
// extracted; everything else in the work record is ignored.
type openalexWork struct {
	Authorships []openalexAuthorship `json:"authorships"`
}

type openalexAuthorship struct {
	Institutions []openalexInstitution `json:"institutions"`
}

type openalexInstitution struct {
	DisplayName string `json:"display_name"`
}

type openalexSearchResponse struct {
	Results []openalexWork `json:"results"`
}

// fetchAffiliations queries OpenAlex for a work's author institutions,
// by DOI when available and by title search otherwise. Only strings
// recognizable as CGIAR center names are kept; free-text institution
// strings from the scholarly graph are too inconsistent to trust.
func (e *Engine) fetchAffiliations(ctx context.Context, doi, title string) ([]string, Outcome, error) {
	var work *openalexWork
	var outcome Outcome
	var err error

	if doi != "" {
		work, outcome, err = e.openalexByDOI(ctx, doi)
	} else {
		work, outcome, err = e.openalexByTitle(ctx, title)
	}
	if err != nil || outcome != OutcomeFound {
		return nil, outcome, err
	}

	var centers []string
	seen := make(map[string]bool)
	for _, a := range work.Authorships {
		for _, inst := range a.Institutions {
			name, ok := e.Vocab.Center(inst.DisplayName)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			centers = append(centers, name)
		}
	}
	if len(centers) == 0 {
		return nil, OutcomeEmpty, nil
	}
	return centers, OutcomeFound, nil
}

func (e *Engine) openalexByDOI(ctx context.Context, doi string) (*openalexWork, Outcome, error) {
	// OpenAlex accepts the DOI resolver URL as a work identifier.
	reqURL := OpenAlexAPIBase + "/https://doi.org/" + url.PathEscape(doi)
	if e.Config.ContactEmail != "" {
		reqURL += "?mailto=" + url.QueryEscape(e.Config.ContactEmail)
	}

	body, status, err := e.cachedGET(ctx, serviceOpenAlex, "doi:"+doi, reqURL)
	if err != nil {
		return nil, OutcomeFailed, err
	}
	if status == http.StatusNotFound {
		return nil, OutcomeEmpty, nil
	}

	var work openalexWork
	if err := json.Unmarshal(body, &work); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("parsing OpenAlex response for %s: %w", doi, err)
	}
	return &work, OutcomeFound, nil
}

func (e *Engine) openalexByTitle(ctx context.Context, title string) (*openalexWork, Outcome, error) {
	if title == "" {
		return nil, OutcomeEmpty, nil
	}

	params := url.Values{
		"filter":   {"title.search:" + title},
		"per_page": {"1"},
	}
	if e.Config.ContactEmail != "" {
		params.Set("mailto", e.Config.ContactEmail)
	}
	reqURL := OpenAlexAPIBase + "?" + params.Encode()

	body, status, err := e.cachedGET(ctx, serviceOpenAlex, "title:"+title, reqURL)
	if err != nil {
		return nil, OutcomeFailed, err
	}
	if status == http.StatusNotFound {
		return nil, OutcomeEmpty, nil
	}

	var sr openalexSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("parsing OpenAlex search response: %w", err)
	}
	if len(sr.Results) == 0 {
		return nil, OutcomeEmpty, nil
	}
	return &sr.Results[0], OutcomeFound, nil
}
