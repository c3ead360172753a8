package quota

import (
	"net/url"
	"strings"
)

// SourceDomain extracts the quota key from a recipe's origin URL: the
// lower-cased host with any leading "www." stripped. Returns "" for empty
// or unparsable input, which the ledger treats as "no source attribution".
func SourceDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
