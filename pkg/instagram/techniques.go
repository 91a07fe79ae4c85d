package instagram

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vidscraper/pkg/extractor"
	"vidscraper/pkg/htmlquery"
	"vidscraper/pkg/metadata"
)

// jsonLDTechnique reads the schema.org VideoObject embedded in the page
type jsonLDTechnique struct{}

func (jsonLDTechnique) Name() string { return "json_ld" }

func (jsonLDTechnique) Apply(p *extractor.Page) extractor.Outcome {
	reason := "no VideoObject in json-ld"
	for _, obj := range p.Doc.JSONLD() {
		video := videoObject(obj)
		if video == nil {
			continue
		}
		meta := fromVideoObject(p.Target.URL, video, obj)
		if meta.VideoURL != "" {
			return extractor.Found(meta)
		}
		reason = "VideoObject without contentUrl"
	}
	return extractor.NotFound(reason)
}

// videoObject returns obj itself when it is a VideoObject, or the
// VideoObject it nests under "video" (SocialMediaPosting does that).
func videoObject(obj map[string]interface{}) map[string]interface{} {
	if hasType(obj, "VideoObject") {
		return obj
	}
	switch v := obj["video"].(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				return m
			}
		}
	}
	return nil
}

func hasType(obj map[string]interface{}, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == want
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func fromVideoObject(sourceURL string, video, parent map[string]interface{}) *metadata.Instagram {
	meta := metadata.NewInstagram(sourceURL)
	meta.VideoURL = ldString(video["contentUrl"])
	meta.ThumbnailURL = firstNonEmpty(ldString(video["thumbnailUrl"]), ldString(parent["image"]))
	meta.Caption = firstNonEmpty(
		ldString(video["description"]), ldString(video["caption"]),
		ldString(parent["articleBody"]), ldString(parent["description"]),
	)

	if date := firstNonEmpty(ldString(video["uploadDate"]), ldString(parent["dateCreated"]), ldString(parent["datePublished"])); date != "" {
		meta.Timestamp = metadata.NormalizeTimestamp(date)
	}
	if d, ok := metadata.ParseISODuration(ldString(video["duration"])); ok {
		meta.Duration = &d
	}

	meta.Author = ldAuthor(video["author"])
	if meta.Author == "" {
		meta.Author = ldAuthor(parent["author"])
	}

	for _, src := range []map[string]interface{}{video, parent} {
		applyInteractionStats(meta, src["interactionStatistic"])
	}
	if meta.Comments == nil {
		if n, ok := ldCount(firstValue(video["commentCount"], parent["commentCount"])); ok {
			meta.Comments = &n
		}
	}
	return meta
}

func applyInteractionStats(meta *metadata.Instagram, v interface{}) {
	var stats []interface{}
	switch s := v.(type) {
	case []interface{}:
		stats = s
	case map[string]interface{}:
		stats = []interface{}{s}
	}

	for _, item := range stats {
		stat, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		kind := ldString(stat["interactionType"])
		if m, ok := stat["interactionType"].(map[string]interface{}); ok {
			kind = ldString(m["@type"])
		}
		n, ok := ldCount(stat["userInteractionCount"])
		if !ok {
			continue
		}

		switch {
		case strings.HasSuffix(kind, "LikeAction") && meta.Likes == nil:
			meta.Likes = &n
		case strings.HasSuffix(kind, "CommentAction") && meta.Comments == nil:
			meta.Comments = &n
		case strings.HasSuffix(kind, "WatchAction") && meta.Views == nil:
			meta.Views = &n
		}
	}
}

// ldString flattens the string-or-list-or-object values JSON-LD allows
func ldString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []interface{}:
		for _, item := range s {
			if str := ldString(item); str != "" {
				return str
			}
		}
	case map[string]interface{}:
		return firstNonEmpty(ldString(s["url"]), ldString(s["@id"]))
	}
	return ""
}

func ldAuthor(v interface{}) string {
	switch a := v.(type) {
	case string:
		return strings.TrimPrefix(strings.TrimSpace(a), "@")
	case []interface{}:
		for _, item := range a {
			if name := ldAuthor(item); name != "" {
				return name
			}
		}
	case map[string]interface{}:
		if alt := ldString(a["alternateName"]); alt != "" {
			return strings.TrimPrefix(alt, "@")
		}
		return ldString(a["name"])
	}
	return ""
}

func ldCount(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		return metadata.ParseCount(n)
	}
	return 0, false
}

func firstValue(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

var (
	sharedDataPrefix     = regexp.MustCompile(`window\._sharedData\s*=\s*`)
	additionalDataPrefix = regexp.MustCompile(`window\.__additionalDataLoaded\(\s*['"][^'"]*['"]\s*,\s*`)

	rawVideoURLPattern   = regexp.MustCompile(`"video_url"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	rawDisplayURLPattern = regexp.MustCompile(`"display_url"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// pageStateTechnique digs the post out of the state the page bootstraps
// its scripts with
type pageStateTechnique struct{}

func (pageStateTechnique) Name() string { return "page_state" }

func (pageStateTechnique) Apply(p *extractor.Page) extractor.Outcome {
	for _, blob := range stateBlobs(p.Doc.Scripts()) {
		var state interface{}
		if err := json.Unmarshal([]byte(blob), &state); err != nil {
			continue
		}

		node := findMediaNode(state, p.Target.ID)
		if node == nil {
			node = findMediaNode(state, "")
		}
		if node == nil {
			continue
		}
		if meta := fromStateNode(p.Target.URL, node); meta != nil && meta.VideoURL != "" {
			return extractor.Found(meta)
		}
	}

	// the state is sometimes assigned piecewise and never parses whole
	if m := rawVideoURLPattern.FindStringSubmatch(p.Doc.Raw()); m != nil {
		meta := metadata.NewInstagram(p.Target.URL)
		meta.VideoURL = htmlquery.Unquote(m[1])
		if d := rawDisplayURLPattern.FindStringSubmatch(p.Doc.Raw()); d != nil {
			meta.ThumbnailURL = htmlquery.Unquote(d[1])
		}
		return extractor.FoundIfVideo(meta, "empty video_url in page source")
	}

	return extractor.NotFound("no video in page state")
}

func stateBlobs(scripts []htmlquery.Script) []string {
	var blobs []string
	for _, s := range scripts {
		text := strings.TrimSpace(s.Text)
		switch {
		case sharedDataPrefix.MatchString(text):
			loc := sharedDataPrefix.FindStringIndex(text)
			blobs = append(blobs, trimJSON(text[loc[1]:]))
		case additionalDataPrefix.MatchString(text):
			loc := additionalDataPrefix.FindStringIndex(text)
			blobs = append(blobs, trimJSON(text[loc[1]:]))
		case s.Type == "application/json":
			blobs = append(blobs, text)
		}
	}
	return blobs
}

// trimJSON cuts the trailing ");" or ";" off an assignment
func trimJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// findMediaNode walks v depth-first for an object carrying a video. When
// shortcode is set the object must also name that post.
func findMediaNode(v interface{}, shortcode string) map[string]interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		if hasVideo(node) && (shortcode == "" || node["shortcode"] == shortcode || node["code"] == shortcode) {
			return node
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := findMediaNode(node[k], shortcode); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, child := range node {
			if found := findMediaNode(child, shortcode); found != nil {
				return found
			}
		}
	}
	return nil
}

func hasVideo(node map[string]interface{}) bool {
	if s, ok := node["video_url"].(string); ok && s != "" {
		return true
	}
	versions, ok := node["video_versions"].([]interface{})
	return ok && len(versions) > 0
}

func fromStateNode(sourceURL string, node map[string]interface{}) *metadata.Instagram {
	raw, err := json.Marshal(node)
	if err != nil {
		return nil
	}

	if _, ok := node["video_versions"]; ok {
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil
		}
		if item.MediaType == 0 {
			item.MediaType = itemVideo
		}
		meta, _ := fromItem(sourceURL, &item)
		return meta
	}

	var media ShortcodeMedia
	if err := json.Unmarshal(raw, &media); err != nil {
		return nil
	}
	media.IsVideo = media.IsVideo || media.VideoURL != ""
	meta, _ := fromShortcodeMedia(sourceURL, &media)
	return meta
}

var (
	// "1,234 likes, 56 comments - user on March 3, 2024: "caption"."
	ogDescriptionPattern = regexp.MustCompile(`(?s)^\s*([\d.,]+[KkMm]?)\s+likes?,\s*([\d.,]+[KkMm]?)\s+comments?\s*-\s*(\S+)\s+on\s+([^:]+?)\s*:\s*"?(.*?)"?\s*\.?\s*$`)
	// "User Name on Instagram: "caption""
	ogTitlePattern = regexp.MustCompile(`(?s)^(.+?)\s+on Instagram\s*:\s*"?(.*?)"?\s*$`)
)

// openGraphTechnique reads the og: meta tags, the last thing a logged-out
// page still carries
type openGraphTechnique struct{}

func (openGraphTechnique) Name() string { return "open_graph" }

func (openGraphTechnique) Apply(p *extractor.Page) extractor.Outcome {
	doc := p.Doc
	videoURL := doc.Meta("og:video:secure_url", "og:video", "og:video:url")
	if videoURL == "" {
		return extractor.NotFound("no og:video tag")
	}

	meta := metadata.NewInstagram(p.Target.URL)
	meta.VideoURL = videoURL
	meta.ThumbnailURL = doc.Meta("og:image", "og:image:secure_url")

	desc := doc.Meta("og:description", "description")
	if m := ogDescriptionPattern.FindStringSubmatch(desc); m != nil {
		if n, ok := metadata.ParseCount(m[1]); ok {
			meta.Likes = &n
		}
		if n, ok := metadata.ParseCount(m[2]); ok {
			meta.Comments = &n
		}
		meta.Author = m[3]
		meta.Timestamp = parseOGDate(m[4])
		meta.Caption = m[5]
	} else if m := ogTitlePattern.FindStringSubmatch(doc.Meta("og:title")); m != nil {
		meta.Author = m[1]
		meta.Caption = m[2]
	} else {
		meta.Caption = desc
	}

	if d, err := strconv.ParseFloat(doc.Meta("og:video:duration", "video:duration"), 64); err == nil && d > 0 {
		meta.Duration = &d
	}
	return extractor.Found(meta)
}

func parseOGDate(s string) string {
	if t, err := time.Parse("January 2, 2006", strings.TrimSpace(s)); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}
