package shortstore

import (
	"errors"
	"strings"
)

const (
	schemePrefixHTTP  = "http://"
	schemePrefixHTTPS = "https://"
)

// checkSyntax applies the store's lexical URL rules: a case-insensitive
// http:// or https:// prefix and a non-empty authority containing a dot.
// Everything after the authority is accepted uncritically; URLs are never
// parsed structurally or resolved.
func checkSyntax(raw string) error {
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, schemePrefixHTTP) && !strings.HasPrefix(lower, schemePrefixHTTPS) {
		return errors.New("url must start with http:// or https://")
	}

	authority := authorityOf(raw)
	if authority == "" {
		return errors.New("url has no authority")
	}
	if !strings.Contains(authority, ".") {
		return errors.New("url authority has no dot")
	}
	return nil
}

// checkDomain validates a configured domain: non-empty, no slash, at least
// one dot. A domain failing these rules could never appear in a URL that
// passes checkSyntax, so every short URL composed under it would be
// unresolvable.
func checkDomain(domain string) error {
	if domain == "" {
		return errors.New("domain cannot be empty")
	}
	if strings.Contains(domain, "/") {
		return errors.New("domain cannot contain a slash")
	}
	if !strings.Contains(domain, ".") {
		return errors.New("domain must contain a dot")
	}
	return nil
}

// segment returns the nth "/"-delimited segment of raw, or "" when absent.
func segment(raw string, n int) string {
	parts := strings.Split(raw, "/")
	if n >= len(parts) {
		return ""
	}
	return parts[n]
}

// authorityOf returns the lowercased authority of a URL: the third
// "/"-delimited segment, host[:port].
func authorityOf(raw string) string {
	return strings.ToLower(segment(raw, 2))
}

// aliasOf returns the alias of a short URL: the fourth "/"-delimited
// segment with case preserved. Aliases are case sensitive.
func aliasOf(raw string) string {
	return segment(raw, 3)
}

// schemeOf returns "https" or "http" for a URL that passed checkSyntax.
func schemeOf(raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), schemePrefixHTTPS) {
		return "https"
	}
	return "http"
}

// composeShortURL assembles <scheme>://<domain>/<alias>.
func composeShortURL(scheme, domain, alias string) string {
	return scheme + "://" + domain + "/" + alias
}
