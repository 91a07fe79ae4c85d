package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "vidscraper/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantPlatform Platform
		wantURL      string
	}{
		{
			name:         "instagram post with tracking query",
			input:        "https://www.instagram.com/p/ABC123?igshid=xyz",
			wantPlatform: Instagram,
			wantURL:      "https://www.instagram.com/p/ABC123/",
		},
		{
			name:         "instagram reel with repeated slashes",
			input:        "https://instagram.com/reel/Cx9//",
			wantPlatform: Instagram,
			wantURL:      "https://instagram.com/reel/Cx9/",
		},
		{
			name:         "instagram mixed case host",
			input:        "HTTPS://WWW.Instagram.COM/tv/XYZ#frag",
			wantPlatform: Instagram,
			wantURL:      "HTTPS://WWW.Instagram.COM/tv/XYZ/",
		},
		{
			name:         "facebook watch with extra params",
			input:        "https://www.facebook.com/watch/?v=12345&foo=bar",
			wantPlatform: Facebook,
			wantURL:      "https://www.facebook.com/watch/?v=12345",
		},
		{
			name:         "facebook video path with query",
			input:        "https://www.facebook.com/page/videos/987654321/?ref=share",
			wantPlatform: Facebook,
			wantURL:      "https://www.facebook.com/page/videos/987654321/",
		},
		{
			name:         "fb.watch short link untouched",
			input:        "https://fb.watch/abcDEF/?mibextid=1",
			wantPlatform: Facebook,
			wantURL:      "https://fb.watch/abcDEF/?mibextid=1",
		},
		{
			name:         "fb.com alias",
			input:        "https://fb.com/watch?v=42",
			wantPlatform: Facebook,
			wantURL:      "https://www.facebook.com/watch/?v=42",
		},
		{
			name:         "surrounding whitespace",
			input:        "  https://www.instagram.com/p/A1/  ",
			wantPlatform: Instagram,
			wantURL:      "https://www.instagram.com/p/A1/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlatform, got.Platform)
			assert.Equal(t, tt.wantURL, got.URL)
		})
	}
}

func TestClassifyRejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"https://www.youtube.com/watch?v=1",
		"https://tiktok.com/@user/video/1",
		"not a url",
	}

	for _, input := range inputs {
		_, err := Classify(input)
		require.Error(t, err, input)
		assert.True(t, errs.IsURL(err), input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.instagram.com/p/ABC123?igshid=xyz",
		"https://www.instagram.com/stories/someone/3141592/",
		"https://www.instagram.com/reel/R1///?a=b#c",
		"https://www.facebook.com/watch/?v=12345&foo=bar",
		"https://m.facebook.com/story.php?story_fbid=99&id=1",
		"https://www.facebook.com/reel/555?s=1",
		"https://fb.watch/xyz/",
		"https://www.facebook.com/watch/?v=12%2634",
		"https://www.facebook.com/watch/?v=a+b",
	}

	for _, input := range inputs {
		c, err := Classify(input)
		require.NoError(t, err)
		again := Normalize(c.Platform, c.URL)
		assert.Equal(t, c.URL, again, input)
	}
}

func TestNormalizeEscapesVideoID(t *testing.T) {
	got := Normalize(Facebook, "https://www.facebook.com/watch/?v=12%2634&foo=bar")
	assert.Equal(t, "https://www.facebook.com/watch/?v=12%2634", got)
}

func TestDetect(t *testing.T) {
	p, ok := Detect("https://business.facebook.com/x")
	assert.True(t, ok)
	assert.Equal(t, Facebook, p)

	_, ok = Detect("https://example.com")
	assert.False(t, ok)
}
