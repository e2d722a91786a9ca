package validation

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrInvalidLink     = errors.New("Please enter a valid video link.")
	ErrUnsupportedHost = errors.New("This platform does not support embedding.")
)

// ValidateVideoLink accepts any http(s) URL whose host is not on the deny-list.
// A host matches a listed entry when it equals it or is a subdomain of it.
func ValidateVideoLink(link string, denyHosts []string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ErrInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidLink
	}
	if IsUnsupportedHost(u.Hostname(), denyHosts) {
		return ErrUnsupportedHost
	}
	return nil
}

// IsUnsupportedHost reports whether host is on the deny-list.
func IsUnsupportedHost(host string, denyHosts []string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, d := range denyHosts {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
