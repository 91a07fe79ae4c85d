package facebook

import (
	"regexp"
	"strconv"
	"strings"

	"vidscraper/pkg/htmlquery"
	"vidscraper/pkg/metadata"
)

var (
	messagePattern   = regexp.MustCompile(`"message"\s*:\s*\{\s*"text"\s*:\s*` + jsonString)
	thumbnailPattern = regexp.MustCompile(`"(?:preferred_thumbnail|thumbnailImage)"\s*:\s*\{(?:\s*"image"\s*:\s*\{)?\s*"uri"\s*:\s*` + jsonString)

	ownerIDPattern   = regexp.MustCompile(`"owner"\s*:\s*\{[^{}]*?"id"\s*:\s*"(\d+)"`)
	ownerNamePattern = regexp.MustCompile(`"owner"\s*:\s*\{[^{}]*?"name"\s*:\s*` + jsonString)
	pageIDPattern    = regexp.MustCompile(`"(?:pageID|page_id)"\s*:\s*"?(\d+)`)

	durationMsPattern  = regexp.MustCompile(`"playable_duration_in_ms"\s*:\s*(\d+)`)
	durationSecPattern = regexp.MustCompile(`"length_in_second"\s*:\s*([\d.]+)`)
	publishTimePattern = regexp.MustCompile(`"(?:publish_time|creation_time)"\s*:\s*(\d+)`)

	reactionCountPattern = regexp.MustCompile(`"reaction_count"\s*:\s*\{\s*"count"\s*:\s*(\d+)`)
	commentCountPattern  = regexp.MustCompile(`"(?:comment_count"\s*:\s*\{\s*"total_count|total_comment_count)"\s*:\s*(\d+)`)
	shareCountPattern    = regexp.MustCompile(`"share_count"\s*:\s*\{\s*"count"\s*:\s*(\d+)`)

	// top reactions come either type-first or count-first
	reactionTypeFirst  = regexp.MustCompile(`"reaction_type"\s*:\s*"([A-Z]+)"[^{]*?"reaction_count"\s*:\s*(\d+)`)
	reactionCountFirst = regexp.MustCompile(`"reaction_count"\s*:\s*(\d+)[^}]*?"reaction_type"\s*:\s*"([A-Z]+)"`)

	liveSignals = []*regexp.Regexp{
		regexp.MustCompile(`"is_live_streaming"\s*:\s*true`),
		regexp.MustCompile(`"broadcast_status"\s*:\s*"LIVE"`),
		regexp.MustCompile(`"isLive"\s*:\s*true`),
	}
)

// reactionNames maps the markup's reaction types to breakdown keys
var reactionNames = map[string]string{
	"LIKE":    "like",
	"LOVE":    "love",
	"HAHA":    "haha",
	"WOW":     "wow",
	"SORRY":   "sad",
	"ANGER":   "angry",
	"SUPPORT": "care",
}

// describe fills everything but the video URL from the page. Fields the
// markup does not carry stay absent.
func describe(meta *metadata.Facebook, doc *htmlquery.Document) {
	raw := doc.Raw()

	meta.Caption = firstNonEmpty(
		submatch(messagePattern, raw, true),
		doc.Meta("og:description", "description"),
		doc.Meta("og:title"),
		pageTitle(doc),
	)
	meta.ThumbnailURL = firstNonEmpty(doc.Meta("og:image"), submatch(thumbnailPattern, raw, true))

	meta.PageID = firstNonEmpty(submatch(ownerIDPattern, raw, false), submatch(pageIDPattern, raw, false))
	meta.PageName = submatch(ownerNamePattern, raw, true)
	meta.Author = meta.PageName

	if ms, err := strconv.ParseFloat(submatch(durationMsPattern, raw, false), 64); err == nil {
		d := ms / 1000
		meta.Duration = &d
	} else if sec, err := strconv.ParseFloat(submatch(durationSecPattern, raw, false), 64); err == nil {
		meta.Duration = &sec
	} else if sec, err := strconv.ParseFloat(doc.Meta("og:video:duration", "video:duration"), 64); err == nil {
		meta.Duration = &sec
	}

	if ts, err := strconv.ParseInt(submatch(publishTimePattern, raw, false), 10, 64); err == nil {
		meta.Timestamp = metadata.UnixToISO(ts)
	} else if published := doc.Meta("article:published_time", "video:release_date"); published != "" {
		meta.Timestamp = metadata.NormalizeTimestamp(published)
	}

	meta.Likes = count(reactionCountPattern, raw)
	meta.Comments = count(commentCountPattern, raw)
	meta.Shares = count(shareCountPattern, raw)
	meta.Reactions = reactions(raw)
	meta.IsLive = isLive(raw)
}

func reactions(raw string) map[string]int64 {
	breakdown := map[string]int64{}
	add := func(kind, n string) {
		name, ok := reactionNames[kind]
		if !ok {
			return
		}
		if _, seen := breakdown[name]; seen {
			return
		}
		if v, err := strconv.ParseInt(n, 10, 64); err == nil {
			breakdown[name] = v
		}
	}

	for _, m := range reactionTypeFirst.FindAllStringSubmatch(raw, -1) {
		add(m[1], m[2])
	}
	for _, m := range reactionCountFirst.FindAllStringSubmatch(raw, -1) {
		add(m[2], m[1])
	}

	if len(breakdown) == 0 {
		return nil
	}
	return breakdown
}

func isLive(raw string) bool {
	for _, re := range liveSignals {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}

func submatch(re *regexp.Regexp, raw string, quoted bool) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	if quoted {
		return strings.TrimSpace(htmlquery.Unquote(m[1]))
	}
	return m[1]
}

func count(re *regexp.Regexp, raw string) *int64 {
	n, err := strconv.ParseInt(submatch(re, raw, false), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// pageTitle is the <title> text unless it is the bare site name
func pageTitle(doc *htmlquery.Document) string {
	title := doc.Title()
	if strings.EqualFold(title, "facebook") {
		return ""
	}
	return title
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
