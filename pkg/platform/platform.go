// Package platform identifies which supported site a URL belongs to and
// rewrites it into the canonical form the extractors expect.
package platform

import (
	"net/url"
	"strings"

	errs "vidscraper/pkg/errors"
)

// Platform is the tag of a supported site
type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
)

// All lists the supported platforms in dispatch order.
var All = []Platform{Instagram, Facebook}

func (p Platform) String() string {
	return string(p)
}

// Classification is the result of Classify
type Classification struct {
	Platform Platform
	URL      string
}

var (
	instagramDomains = []string{"instagram.com"}
	facebookDomains  = []string{"facebook.com", "fb.com", "fb.watch"}
)

// Classify returns the platform of raw together with its normalized URL.
// It performs no I/O.
func Classify(raw string) (Classification, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{}, errs.NewURLError("url is empty")
	}

	p, ok := Detect(trimmed)
	if !ok {
		return Classification{}, errs.NewURLError("unsupported platform for url: " + trimmed)
	}

	return Classification{Platform: p, URL: Normalize(p, trimmed)}, nil
}

// Detect matches raw against the domain signatures of every platform.
func Detect(raw string) (Platform, bool) {
	lower := strings.ToLower(raw)
	if containsAny(lower, instagramDomains) {
		return Instagram, true
	}
	if containsAny(lower, facebookDomains) {
		return Facebook, true
	}
	return "", false
}

// Normalize rewrites raw into the canonical URL for p. Applying it twice
// yields the same result as applying it once.
func Normalize(p Platform, raw string) string {
	switch p {
	case Instagram:
		return normalizeInstagram(raw)
	case Facebook:
		return normalizeFacebook(raw)
	default:
		return raw
	}
}

func normalizeInstagram(raw string) string {
	base := stripQuery(raw)
	return strings.TrimRight(base, "/") + "/"
}

func normalizeFacebook(raw string) string {
	if strings.Contains(strings.ToLower(raw), "fb.watch") {
		return raw
	}

	if id := queryParam(raw, "v"); id != "" {
		return "https://www.facebook.com/watch/?v=" + url.QueryEscape(id)
	}

	return stripQuery(raw)
}

func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

func queryParam(raw, key string) string {
	i := strings.Index(raw, "?")
	if i < 0 {
		return ""
	}
	query := raw[i+1:]
	if j := strings.Index(query, "#"); j >= 0 {
		query = query[:j]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return ""
	}
	return values.Get(key)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
