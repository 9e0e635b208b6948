package urlutil

import (
	"net/url"
	"strings"
)

// HostSet is the set of hosts a crawl is allowed to touch.
// Keys are lowercase host[:port] values as they appear in URLs.
type HostSet map[string]bool

// NewHostSet builds a HostSet from a list of host names.
// Host names are lowercased; empty entries are ignored.
func NewHostSet(hosts []string) HostSet {
	set := make(HostSet, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = true
		}
	}
	return set
}

// InScope reports whether the URL's host belongs to the allowed set.
// Host comparison is case-insensitive. Any parse failure yields false:
// the filter fails closed so malformed candidates can never leak into
// the frontier.
func (s HostSet) InScope(rawURL string) bool {
	if len(s) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return s[strings.ToLower(u.Host)]
}

// Hosts returns the members of the set in unspecified order,
// useful for logging and report output.
func (s HostSet) Hosts() []string {
	hosts := make([]string, 0, len(s))
	for h := range s {
		hosts = append(hosts, h)
	}
	return hosts
}
