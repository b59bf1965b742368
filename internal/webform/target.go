// Package webform drives the destination form: field filling, submission,
// and submission verification.
package webform

import (
	"fmt"
	"net/url"
	"strings"
)

// Target identifies the destination web form for a batch.
type Target struct {
	BaseURL            string
	FormID             string
	SubmissionEndpoint string
	SuccessURLPatterns []string
}

// NewTarget derives a Target from a form URL and form id. The submission
// endpoint and success patterns follow the form host so the same derivation
// covers the production form and the local mock server.
func NewTarget(formURL, formID string) Target {
	origin := originOf(formURL)
	return Target{
		BaseURL:            formURL,
		FormID:             formID,
		SubmissionEndpoint: fmt.Sprintf("%s/api/submit/%s", origin, formID),
		SuccessURLPatterns: []string{
			"/api/submit/" + formID,
			"/b/form/" + formID + "/success",
			"submission",
		},
	}
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(rawURL, "/")
	}
	return u.Scheme + "://" + u.Host
}

// matchesAny reports whether candidate contains any of the patterns.
func matchesAny(candidate string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(candidate, p) {
			return true
		}
	}
	return false
}
