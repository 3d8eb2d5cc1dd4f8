// Copyright International Livestock Research Institute, 2026.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// UnpaywallAPIBase is the Unpaywall v2 endpoint. Declared as a var so
// tests can substitute an httptest server.
var UnpaywallAPIBase = "https://api.unpaywall.org/v2/"

const serviceUnpaywall = "unpaywall"

type unpaywallResponse struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
}

// fetchAccessRights queries Unpaywall for a DOI's open-access status
// and maps it to the access-rights phrasing used across the dataset.
func (e *Engine) fetchAccessRights(ctx context.Context, doi string) (string, Outcome, error) {
	reqURL := UnpaywallAPIBase + url.PathEscape(doi)
	if e.Config.ContactEmail != "" {
		reqURL += "?email=" + url.QueryEscape(e.Config.ContactEmail)
	}

	body, status, err := e.cachedGET(ctx, serviceUnpaywall, doi, reqURL)
	if err != nil {
		return "", OutcomeFailed, err
	}
	if status == http.StatusNotFound {
		return "", OutcomeEmpty, nil
	}

	var up unpaywallResponse
	if err := json.Unmarshal(body, &up); err != nil {
		return "", OutcomeFailed, fmt.Errorf("parsing Unpaywall response for %s: %w", doi, err)
	}
	return accessRightsFromStatus(up), OutcomeFound, nil
}

// accessRightsFromStatus maps Unpaywall's oa_status to a phrase.
func accessRightsFromStatus(up unpaywallResponse) string {
	if !up.IsOA {
		return "Limited Access"
	}
	switch up.OAStatus {
	case "gold":
		return "Gold Open Access"
	case "green":
		return "Green Open Access"
	case "hybrid":
		return "Hybrid Open Access"
	case "bronze":
		return "Bronze Open Access"
	default:
		return "Open Access"
	}
}
