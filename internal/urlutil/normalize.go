package urlutil

import (
	"net/url"
	"strings"
)

// sessionKeys are query parameter names that carry session identifiers.
// Matched case-insensitively and removed during normalization because the
// same page is reachable with any (or no) session token.
var sessionKeys = map[string]bool{
	"sessionid": true,
	"sid":       true,
	"phpsessid": true,
}

// Normalize canonicalizes a raw URL string into the comparable form used
// as the frontier's identity key. It returns "" when the input is empty,
// unparsable, or not an http(s) URL.
//
// The canonical form has:
//   - no fragment
//   - no utm_* or session-id query parameters (case-insensitive match)
//   - remaining query parameters re-encoded sorted by key
//
// Trailing slashes and path case are left untouched so the output stays
// byte-compatible with URLs already published in sitemaps.
//
// Normalize is a pure function and safe for concurrent use. It is
// idempotent: Normalize(Normalize(u)) == Normalize(u) for any valid u.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = cleanQuery(u.RawQuery)

	return u.String()
}

// cleanQuery drops tracking and session parameters and re-encodes the
// survivors sorted lexicographically by key. Blank values are kept:
// "?a=" and "?a=1" are distinct URLs on some sites.
func cleanQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// An unparsable query is kept verbatim rather than discarded;
		// dropping it could conflate distinct pages.
		return rawQuery
	}

	for key := range values {
		if isTrackingKey(key) {
			delete(values, key)
		}
	}

	// url.Values.Encode sorts by key, which gives the stable canonical
	// ordering the dedup identity depends on.
	return values.Encode()
}

// isTrackingKey reports whether a query parameter key identifies a
// tracking or session parameter that never affects page content.
func isTrackingKey(key string) bool {
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "utm_") {
		return true
	}
	return sessionKeys[lower]
}
