package instagram

import (
	"fmt"
	"regexp"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// AppID is the web client application id the post endpoint expects
	AppID = "936619743392459"
)

// shortcodePatterns are tried in order; the first match names the post
var shortcodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`instagram\.com/(?:[A-Za-z0-9_.]+/)?p/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`instagram\.com/(?:[A-Za-z0-9_.]+/)?reels?/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`instagram\.com/(?:[A-Za-z0-9_.]+/)?tv/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`instagram\.com/stories/[A-Za-z0-9_.]+/(\d+)`),
}

// GetAPIURL returns the JSON endpoint of a post
func GetAPIURL(shortcode string) string {
	return fmt.Sprintf("%s/p/%s/?__a=1&__d=dis", BaseURL, shortcode)
}

// GetPostURL constructs the URL for a specific post
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", BaseURL, shortcode)
}
