package facebook

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/extractor"
	"vidscraper/pkg/htmlquery"
	"vidscraper/pkg/metadata"
)

// jsonString matches the body of a JSON string literal, escapes included
const jsonString = `"((?:[^"\\]|\\.)*)"`

// videoURLPatterns are ordered best quality first
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"browser_native_hd_url"\s*:\s*` + jsonString),
	regexp.MustCompile(`"playable_url_quality_hd"\s*:\s*` + jsonString),
	regexp.MustCompile(`"hd_src(?:_no_ratelimit)?"\s*:\s*` + jsonString),
	regexp.MustCompile(`"browser_native_sd_url"\s*:\s*` + jsonString),
	regexp.MustCompile(`"playable_url"\s*:\s*` + jsonString),
	regexp.MustCompile(`"sd_src(?:_no_ratelimit)?"\s*:\s*` + jsonString),
}

var photoSignals = []string{
	`"__typename":"Photo"`,
	`"__isMedia":"Photo"`,
	`"media_type":"photo"`,
}

// htmlTechnique reads the desktop page. It is the only technique that
// sees enough of the post to tell a photo from a video.
type htmlTechnique struct{}

func (htmlTechnique) Name() string { return "html" }

func (htmlTechnique) Apply(p *extractor.Page) extractor.Outcome {
	videoURL := scanVideoURL(p.Doc.Raw())
	if videoURL == "" {
		videoURL = ogVideo(p.Doc)
	}

	if videoURL == "" {
		if isPhotoPage(p) {
			return extractor.Rejected(errs.NewParseError("facebook", errs.KindNotAVideo,
				"post "+p.Target.ID+" is a photo"))
		}
		return extractor.NotFound("no video url in page")
	}

	meta := metadata.NewFacebook(p.Target.URL)
	meta.VideoURL = videoURL
	describe(meta, p.Doc)
	return extractor.Found(meta)
}

// mobileTechnique reads the mobile page, where the video sits in
// data-store attributes or behind a redirect link
type mobileTechnique struct{}

func (mobileTechnique) Name() string { return "mobile_html" }

func (mobileTechnique) Apply(p *extractor.Page) extractor.Outcome {
	videoURL := dataStoreSource(p.Doc)
	if videoURL == "" {
		videoURL = redirectSource(p.Doc)
	}
	if videoURL == "" {
		videoURL = scanVideoURL(p.Doc.Raw())
	}
	if videoURL == "" {
		videoURL = ogVideo(p.Doc)
	}
	if videoURL == "" {
		videoURL = p.Doc.Attr("video[src]", "src")
	}
	if videoURL == "" {
		return extractor.NotFound("no video url in mobile page")
	}

	meta := metadata.NewFacebook(p.Target.URL)
	meta.VideoURL = videoURL
	describe(meta, p.Doc)
	return extractor.Found(meta)
}

func scanVideoURL(raw string) string {
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			if u := htmlquery.Unquote(m[1]); u != "" {
				return u
			}
		}
	}
	return ""
}

func ogVideo(doc *htmlquery.Document) string {
	return doc.Meta("og:video:secure_url", "og:video:url", "og:video")
}

// isPhotoPage looks for photo signals in the post URL, the canonical URL
// of the page and its markup
func isPhotoPage(p *extractor.Page) bool {
	doc := p.Doc
	for _, u := range []string{p.Target.URL, doc.Meta("og:url")} {
		if strings.Contains(strings.ToLower(u), "/photo") {
			return true
		}
	}
	if strings.Contains(strings.ToLower(doc.Meta("og:type")), "photo") {
		return true
	}
	raw := doc.Raw()
	for _, signal := range photoSignals {
		if strings.Contains(raw, signal) {
			return true
		}
	}
	return false
}

func dataStoreSource(doc *htmlquery.Document) string {
	for _, store := range doc.Attrs("[data-store]", "data-store") {
		var v struct {
			Src string `json:"src"`
		}
		if err := json.Unmarshal([]byte(store), &v); err == nil && v.Src != "" {
			return v.Src
		}
	}
	return ""
}

func redirectSource(doc *htmlquery.Document) string {
	for _, href := range doc.Attrs(`a[href*="video_redirect"]`, "href") {
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		if src := u.Query().Get("src"); src != "" {
			return src
		}
	}
	return ""
}
