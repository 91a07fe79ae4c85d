package metadata

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@([A-Za-z0-9_.]+)`)

	isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	countPattern       = regexp.MustCompile(`^([\d.,]+)\s*([KkMmBb])?$`)
)

// ExtractHashtags returns the hashtags in text without the leading '#',
// in order of appearance. Duplicates are kept.
func ExtractHashtags(text string) []string {
	tags := []string{}
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

// ExtractMentions returns the @usernames in text without the leading '@',
// in order of appearance. Email addresses are not mentions.
func ExtractMentions(text string) []string {
	mentions := []string{}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(m[1], ".")
		if name != "" {
			mentions = append(mentions, name)
		}
	}
	return mentions
}

// ParseCount parses display counts such as "1,234", "1.2K" or "3M".
func ParseCount(s string) (int64, bool) {
	m := countPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	digits := m[1]
	multiplier := 1.0
	switch strings.ToUpper(m[2]) {
	case "K":
		multiplier = 1e3
	case "M":
		multiplier = 1e6
	case "B":
		multiplier = 1e9
	}

	if multiplier == 1 {
		// plain counts use ',' and '.' as thousands separators
		digits = strings.NewReplacer(",", "", ".", "").Replace(digits)
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return int64(f*multiplier + 0.5), true
}

// ParseISODuration converts an ISO-8601 duration like "PT1M3S" to seconds.
func ParseISODuration(s string) (float64, bool) {
	m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, false
	}

	var total float64
	units := []float64{86400, 3600, 60, 1}
	matched := false
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0, false
		}
		total += v * unit
		matched = true
	}
	return total, matched
}

// UnixToISO formats a unix timestamp in seconds as RFC 3339 UTC.
func UnixToISO(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// NormalizeTimestamp returns s as RFC 3339 UTC when it parses as one of the
// common date layouts, or s unchanged otherwise.
func NormalizeTimestamp(s string) string {
	s = strings.TrimSpace(s)
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return s
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v
func Float64(v float64) *float64 { return &v }

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
