// Copyright International Livestock Research Institute, 2026.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CrossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var CrossrefAPIBase = "https://api.crossref.org/works/"

const serviceCrossref = "crossref"

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Publisher string            `json:"publisher"`
	Abstract  string            `json:"abstract"`
	License   []crossrefLicense `json:"license"`
}

type crossrefLicense struct {
	URL            string `json:"URL"`
	ContentVersion string `json:"content-version"`
}

// fetchCrossref retrieves the CrossRef work record for a DOI through
// the cache. A 404 means the DOI is not registered at CrossRef; that
// is an empty result, not an error.
func (e *Engine) fetchCrossref(ctx context.Context, doi string) (*crossrefWork, Outcome, error) {
	reqURL := CrossrefAPIBase + url.PathEscape(doi)
	if e.Config.ContactEmail != "" {
		reqURL += "?mailto=" + url.QueryEscape(e.Config.ContactEmail)
	}

	body, status, err := e.cachedGET(ctx, serviceCrossref, doi, reqURL)
	if err != nil {
		return nil, OutcomeFailed, err
	}
	if status == http.StatusNotFound {
		return nil, OutcomeEmpty, nil
	}

	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("parsing CrossRef response for %s: %w", doi, err)
	}
	return &cr.Message, OutcomeFound, nil
}

// tdmLicenses maps publisher text-and-data-mining license URLs to the
// rights statement they imply in practice. Correct for the large
// publishers by inspection, wrong for some corner cases.
var tdmLicenses = map[string]bool{
	"https://www.elsevier.com/tdm/userlicense/1.0/":                     true,
	"http://www.elsevier.com/open-access/userlicense/1.0/":              true,
	"https://www.elsevier.com/legal/tdmrep-license":                     true,
	"http://www.springer.com/tdm":                                       true,
	"https://www.springer.com/tdm":                                      true,
	"https://www.springernature.com/gp/researchers/text-and-data-mining": true,
	"http://onlinelibrary.wiley.com/termsAndConditions#vor":             true,
	"http://doi.wiley.com/10.1002/tdm_license_1.1":                      true,
	"https://www.cambridge.org/core/terms":                              true,
	"https://academic.oup.com/pages/standard-publication-reuse-rights":  true,
}

const allRightsReserved = "Copyrighted; all rights reserved"

// licenseFromCrossref picks the preferred license URL from a CrossRef
// work and reduces it to a short rights statement. Content versions
// are preferred in the order accepted manuscript, version of record,
// text-and-data-mining, unspecified. URLs that reduce to nothing
// usable return "" so repository metadata can fill the gap.
func licenseFromCrossref(work *crossrefWork) string {
	if len(work.License) == 0 {
		return ""
	}

	byVersion := make(map[string]string, len(work.License))
	for _, l := range work.License {
		byVersion[l.ContentVersion] = l.URL
	}

	var chosen string
	for _, version := range []string{"am", "vor", "tdm", "unspecified"} {
		if u, ok := byVersion[version]; ok {
			chosen = u
			break
		}
	}
	if chosen == "" {
		return ""
	}

	if tdmLicenses[chosen] {
		return allRightsReserved
	}
	if strings.Contains(chosen, "creativecommons.org") {
		return creativeCommonsCode(chosen)
	}
	// Anything else that still looks like a URL is undeterminable.
	if strings.Contains(chosen, "http") {
		return ""
	}
	return chosen
}

// creativeCommonsCode reduces a Creative Commons license URL to a
// short code such as CC-BY-4.0 or CC-BY-NC-ND-3.0-IGO.
func creativeCommonsCode(u string) string {
	if strings.Contains(u, "publicdomain/zero/1.0") {
		return "CC0-1.0"
	}

	u = strings.ReplaceAll(u, "/legalcode", "")
	u = strings.ReplaceAll(u, "/deed.en_GB", "")
	u = strings.TrimRight(u, "/")

	parts := strings.Split(u, "/")
	if strings.Contains(u, "igo") {
		if len(parts) < 3 {
			return ""
		}
		license, version, variation := parts[len(parts)-3], parts[len(parts)-2], parts[len(parts)-1]
		return strings.ToUpper(fmt.Sprintf("CC-%s-%s-%s", license, version, variation))
	}
	if len(parts) < 2 {
		return ""
	}
	license, version := parts[len(parts)-2], parts[len(parts)-1]
	return strings.ToUpper(fmt.Sprintf("CC-%s-%s", license, version))
}
