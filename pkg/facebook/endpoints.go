package facebook

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// BaseURL is the desktop site
	BaseURL = "https://www.facebook.com"

	// MobileHost serves the lighter markup the mobile strategy reads
	MobileHost = "m.facebook.com"

	// MobileUserAgent is sent with mobile site requests
	MobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
)

// videoIDPatterns are tried in order; the first match names the video
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=(\d+)`),
	regexp.MustCompile(`/videos/(?:[^/?#]+/)?(\d+)`),
	regexp.MustCompile(`/reel/(\d+)`),
	regexp.MustCompile(`/share/[rv]/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`fb\.watch/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/posts/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`story_fbid=([A-Za-z0-9_-]+)`),
}

// GetWatchURL returns the canonical watch page of a numeric video id
func GetWatchURL(id string) string {
	return BaseURL + "/watch/?v=" + id
}

// GetMobileURL swaps the host of a facebook.com or fb.com URL for the
// mobile one. Short links are returned unchanged.
func GetMobileURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := strings.ToLower(u.Host)
	if host == "facebook.com" || host == "fb.com" ||
		strings.HasSuffix(host, ".facebook.com") || strings.HasSuffix(host, ".fb.com") {
		u.Host = MobileHost
	}
	return u.String()
}
