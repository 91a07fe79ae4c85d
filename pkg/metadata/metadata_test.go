package metadata

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscraper/pkg/platform"
)

func TestExtractHashtagsAndMentions(t *testing.T) {
	assert.Equal(t, []string{"sunset", "beach"}, ExtractHashtags("Check #sunset and #beach!"))
	assert.Equal(t, []string{"alice", "bob"}, ExtractMentions("ping @alice and @bob"))

	assert.Equal(t, []string{"a", "a"}, ExtractHashtags("#a #a"))
	assert.Equal(t, []string{"café"}, ExtractHashtags("au #café"))
	assert.Empty(t, ExtractHashtags(""))
	assert.NotNil(t, ExtractHashtags(""))

	assert.Equal(t, []string{"first.last"}, ExtractMentions("@first.last. mail me at me@example.com"))
	assert.Empty(t, ExtractMentions("no mentions here"))
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1,234", 1234, true},
		{"42", 42, true},
		{"1.2K", 1200, true},
		{"3M", 3000000, true},
		{"2,5K", 2500, true},
		{" 7 ", 7, true},
		{"many", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"PT1M3S", 63, true},
		{"PT1H", 3600, true},
		{"PT12.5S", 12.5, true},
		{"P1DT1S", 86401, true},
		{"PT", 0, false},
		{"15", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseISODuration(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.0001, tt.in)
	}
}

func TestTimestamps(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", UnixToISO(1700000000))
	assert.Equal(t, "2024-01-02T03:04:05Z", NormalizeTimestamp("2024-01-02T04:04:05+01:00"))
	assert.Equal(t, "2024-01-02T00:00:00Z", NormalizeTimestamp("2024-01-02"))
	assert.Equal(t, "yesterday", NormalizeTimestamp("yesterday"))
}

func TestMatchAndFold(t *testing.T) {
	records := []VideoMetadata{
		NewInstagram("https://www.instagram.com/p/A/"),
		NewFacebook("https://www.facebook.com/watch/?v=1"),
	}

	var names []string
	for _, r := range records {
		names = append(names, Fold(r,
			func(m *Instagram) string { return "ig:" + m.URL },
			func(m *Facebook) string { return "fb:" + m.URL },
		))
	}

	assert.Equal(t, []string{
		"ig:https://www.instagram.com/p/A/",
		"fb:https://www.facebook.com/watch/?v=1",
	}, names)
	assert.Equal(t, platform.Instagram, records[0].Platform())
	assert.Equal(t, platform.Facebook, records[1].Base().Platform)
}

func TestJSONOmitsAbsentFields(t *testing.T) {
	m := NewFacebook("https://www.facebook.com/watch/?v=1")
	m.VideoURL = "https://video.example/v.mp4"
	m.Shares = Int64(0)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "facebook", raw["platform"])
	assert.Equal(t, float64(0), raw["shares"])
	assert.NotContains(t, raw, "likes")
	assert.NotContains(t, raw, "duration")
	assert.NotContains(t, raw, "reactions")
}

func TestSaveAndLoad(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "ABC123.mp4")

	m := NewInstagram("https://www.instagram.com/reel/ABC123/")
	m.Type = TypeReel
	m.Caption = "Hello #world @friend"
	m.Hashtags = ExtractHashtags(m.Caption)
	m.Mentions = ExtractMentions(m.Caption)
	m.Views = Int64(1500)
	m.Duration = Float64(12.5)

	require.False(t, Exists(videoPath))
	require.NoError(t, Save(m, videoPath))
	require.True(t, Exists(videoPath))

	loaded, err := Load(videoPath)
	require.NoError(t, err)

	ig, ok := loaded.(*Instagram)
	require.True(t, ok)
	assert.Equal(t, m, ig)
}

func TestUnmarshalUnknownPlatform(t *testing.T) {
	_, err := Unmarshal([]byte(`{"platform":"tiktok"}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestFormattedCaption(t *testing.T) {
	m := NewInstagram("u")
	m.Caption = "line one\nline   two is longer"

	assert.Equal(t, "line one line two is longer", FormattedCaption(m, 100))
	assert.Equal(t, "line on...", FormattedCaption(m, 10))
}
