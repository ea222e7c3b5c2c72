// Package urlutil joins app base URLs with routes and pulls apart the
// pieces the suites assert on.
package urlutil

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// BuildAbsolute builds an absolute URL from a base origin and a path.
// Absolute http(s) paths are returned unchanged.
func BuildAbsolute(base, path string) string {
	base = NormalizeBaseURL(base)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/")
}

// Pathname returns the percent-encoded path of raw, as location.pathname
// reports it, or "" when raw does not parse. An absolute URL without a path
// has pathname "/".
func Pathname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Path == "" && u.Host != "" {
		return "/"
	}
	return u.EscapedPath()
}

// DialAddress returns host:port for base, filling in the scheme's default
// port.
func DialAddress(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%q has no host", base)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
