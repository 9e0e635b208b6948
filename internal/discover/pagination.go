package discover

import (
	"net/url"
	"strconv"
	"strings"
)

// pageParam is the query parameter the pagination heuristic looks for.
const pageParam = "page"

// expandPagination synthesizes look-ahead page URLs for every candidate
// whose query string carries an all-digit page parameter. A candidate
// with page=3 and a lookahead of 5 yields page=4 through page=8. The
// returned URLs are normalized but not yet scope-filtered.
//
// Listing pages frequently render only a "next" link while the site has
// hundreds of numbered pages behind it; probing a handful ahead lets the
// crawl walk the whole sequence one visit at a time.
func (d *Discoverer) expandPagination(candidates []string) []string {
	var expanded []string
	for _, candidate := range candidates {
		if !strings.Contains(candidate, pageParam+"=") {
			continue
		}

		u, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		values := u.Query()
		current := values.Get(pageParam)
		n, err := strconv.Atoi(current)
		if err != nil || !isAllDigits(current) {
			continue
		}

		for inc := 1; inc <= d.lookahead; inc++ {
			values.Set(pageParam, strconv.Itoa(n+inc))
			u.RawQuery = values.Encode()
			expanded = append(expanded, u.String())
		}
	}
	return expanded
}

// isAllDigits reports whether s is non-empty and consists only of ASCII
// digits. strconv.Atoi alone would also accept a leading sign.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
